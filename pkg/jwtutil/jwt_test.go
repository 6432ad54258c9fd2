package jwtutil

import "testing"

func newTestUtil(key string) *JWTUtil {
	return NewJWTUtil(&JWTConfig{SigningKey: key, ExpirationHours: 1})
}

func TestGenerateAndValidateToken(t *testing.T) {
	util := newTestUtil("test-signing-key")

	token, err := util.GenerateToken("alice@acme.test", "user-1", "tenant-1", "tenant_admin")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := util.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.Email != "alice@acme.test" {
		t.Errorf("email = %q, want %q", claims.Email, "alice@acme.test")
	}
	if claims.UserID != "user-1" {
		t.Errorf("user_id = %q, want %q", claims.UserID, "user-1")
	}
	if claims.TenantID != "tenant-1" {
		t.Errorf("tenant_id = %q, want %q", claims.TenantID, "tenant-1")
	}
	if claims.Role != "tenant_admin" {
		t.Errorf("role = %q, want %q", claims.Role, "tenant_admin")
	}
}

func TestValidateTokenWrongKey(t *testing.T) {
	token, err := newTestUtil("key-one").GenerateToken("bob@acme.test", "user-2", "", "super_admin")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if _, err := newTestUtil("key-two").ValidateToken(token); err == nil {
		t.Fatal("expected validation error for token signed with a different key")
	}
}

func TestValidateTokenGarbage(t *testing.T) {
	if _, err := newTestUtil("key").ValidateToken("not.a.token"); err == nil {
		t.Fatal("expected validation error for malformed token")
	}
}

package logger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func TestFromContextReturnsInstalledLogger(t *testing.T) {
	l := zap.NewNop()
	ctx := WithContext(context.Background(), l)
	if FromContext(ctx) != l {
		t.Fatal("FromContext did not return the installed logger")
	}
}

func TestFromContextFallsBackToGlobal(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Fatal("FromContext returned nil without an installed logger")
	}
}

func TestToEchoInstallsRequestContextLogger(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	l := zap.NewNop()
	ToEcho(c, l)

	if FromEcho(c) != l {
		t.Error("FromEcho did not return the request-scoped logger")
	}
	if FromContext(c.Request().Context()) != l {
		t.Error("FromContext did not see the logger installed by ToEcho")
	}
}

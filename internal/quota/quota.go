// Package quota enforces per-tenant resource ceilings. A reservation must
// run inside the same transaction as the create it guards; the tenant row
// lock serializes concurrent reservations so two requests can never both
// observe count < max and both succeed.
package quota

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/internal/apperr"
	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/internal/store"
	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/pkg/logger"
	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/prometheus"
)

// Kind selects which ceiling a reservation counts against.
type Kind string

const (
	KindUser    Kind = "user"
	KindProject Kind = "project"
)

// Reserve checks the tenant's ceiling for kind and denies when the count
// of live rows has reached it. tx must be a transaction-bound store; the
// create that follows commits in the same transaction or not at all.
func Reserve(ctx context.Context, tx store.Store, tenantID string, kind Kind) error {
	tenant, err := tx.TenantByIDForUpdate(ctx, tenantID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("tenant not found")
		}
		return apperr.Internal(err)
	}

	var count int64
	var limit int
	switch kind {
	case KindUser:
		count, err = tx.CountUsers(ctx, tenantID)
		limit = tenant.MaxUsers
	case KindProject:
		count, err = tx.CountProjects(ctx, tenantID)
		limit = tenant.MaxProjects
	default:
		return apperr.Internal(fmt.Errorf("unknown quota kind %q", kind))
	}
	if err != nil {
		return apperr.Internal(err)
	}

	if count >= int64(limit) {
		logger.FromContext(ctx).Warn("Quota limit reached",
			zap.String("tenant_id", tenantID),
			zap.String("resource", string(kind)),
			zap.Int("limit", limit))
		prometheus.RecordQuotaDenial(tenantID, string(kind))
		return apperr.Forbidden("%s limit reached (%d max for %s plan)",
			kind, limit, tenant.SubscriptionPlan)
	}
	return nil
}

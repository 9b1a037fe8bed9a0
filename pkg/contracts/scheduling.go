package contracts

import (
	"context"
	"time"

	"clinicsched/pkg/model"
)

// AppointmentLookup returns appointments intersecting q.Window for the scope
// dimension set in q.
type AppointmentLookup interface {
	FindOverlapping(ctx context.Context, q model.OverlapQuery) ([]*model.Appointment, error)
}

// BlockedTimeLookup returns blocked times in q.TenantID intersecting q.Window
// that may apply to the provider, resource or user in q.
type BlockedTimeLookup interface {
	FindOverlapping(ctx context.Context, q model.OverlapQuery) ([]*model.BlockedTime, error)
}

// WorkingHoursSource returns the effective working hours for a provider,
// falling back to the tenant default. An empty map means closed.
type WorkingHoursSource interface {
	Effective(ctx context.Context, tenantID, providerID string) (model.WorkingHours, error)
}

// Suggester proposes free slots of the given duration for a scope.
type Suggester interface {
	Suggest(ctx context.Context, scope model.Scope, duration time.Duration) ([]model.Slot, error)
}

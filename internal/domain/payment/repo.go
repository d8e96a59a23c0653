package payment

import "context"

// EntitlementRepository persists the premium records written by the webhook
// success branch. A nil entitlement with a nil error means no record exists.
type EntitlementRepository interface {
	Upsert(ctx context.Context, ent *Entitlement) error
	GetByUserID(ctx context.Context, userID string) (*Entitlement, error)
}

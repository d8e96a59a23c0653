package payment

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type entitlementRepoPG struct{ pool *pgxpool.Pool }

func NewEntitlementRepoPG(pool *pgxpool.Pool) EntitlementRepository {
	return &entitlementRepoPG{pool: pool}
}

func (r *entitlementRepoPG) Upsert(ctx context.Context, ent *Entitlement) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO entitlements (user_id, order_id, premium, granted_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET
			order_id = EXCLUDED.order_id,
			premium = EXCLUDED.premium,
			granted_at = EXCLUDED.granted_at`,
		ent.UserID, ent.OrderID, ent.Premium, ent.GrantedAt)
	return err
}

func (r *entitlementRepoPG) GetByUserID(ctx context.Context, userID string) (*Entitlement, error) {
	var ent Entitlement
	err := r.pool.QueryRow(ctx, `
		SELECT user_id, order_id, premium, granted_at
		FROM entitlements WHERE user_id = $1`, userID).
		Scan(&ent.UserID, &ent.OrderID, &ent.Premium, &ent.GrantedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ent, nil
}

package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/viralacademy/academy-api/internal/domain"
)

type SubscriptionRepository struct {
	db *sqlx.DB
}

func NewSubscriptionRepo(db *sqlx.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

const subscriptionColumns = `id, user_id, stripe_customer_id, stripe_subscription_id, status, current_period_end, created_at, updated_at`

func (r *SubscriptionRepository) Upsert(ctx context.Context, sub *domain.Subscription) (*domain.Subscription, error) {
	const query = `
        INSERT INTO subscription (user_id, stripe_customer_id, stripe_subscription_id, status, current_period_end)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (stripe_subscription_id) DO UPDATE
        SET status = EXCLUDED.status,
            current_period_end = EXCLUDED.current_period_end,
            updated_at = NOW()
        RETURNING ` + subscriptionColumns

	var upserted domain.Subscription
	if err := r.db.QueryRowxContext(ctx, query,
		sub.UserID,
		sub.StripeCustomerID,
		sub.StripeSubscriptionID,
		sub.Status,
		nullTimePtr(sub.CurrentPeriodEnd),
	).StructScan(&upserted); err != nil {
		return nil, err
	}
	return &upserted, nil
}

func (r *SubscriptionRepository) FindByStripeSubscriptionID(ctx context.Context, stripeSubID string) (*domain.Subscription, error) {
	const query = `SELECT ` + subscriptionColumns + ` FROM subscription WHERE stripe_subscription_id = $1`
	var sub domain.Subscription
	if err := r.db.GetContext(ctx, &sub, query, stripeSubID); err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *SubscriptionRepository) FindByUser(ctx context.Context, userID uuid.UUID) (*domain.Subscription, error) {
	const query = `
        SELECT ` + subscriptionColumns + `
        FROM subscription
        WHERE user_id = $1
        ORDER BY updated_at DESC
        LIMIT 1`
	var sub domain.Subscription
	if err := r.db.GetContext(ctx, &sub, query, userID); err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *SubscriptionRepository) UpdateStatus(ctx context.Context, stripeSubID string, status domain.SubscriptionStatus) (*domain.Subscription, error) {
	const query = `
        UPDATE subscription
        SET status = $2, updated_at = NOW()
        WHERE stripe_subscription_id = $1
        RETURNING ` + subscriptionColumns

	var sub domain.Subscription
	if err := r.db.QueryRowxContext(ctx, query, stripeSubID, status).StructScan(&sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

func nullTimePtr(ptr *time.Time) sql.NullTime {
	if ptr == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *ptr, Valid: true}
}

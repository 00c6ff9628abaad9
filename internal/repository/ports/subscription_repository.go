package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/viralacademy/academy-api/internal/domain"
)

type SubscriptionRepository interface {
	Upsert(ctx context.Context, sub *domain.Subscription) (*domain.Subscription, error)
	FindByStripeSubscriptionID(ctx context.Context, stripeSubID string) (*domain.Subscription, error)
	FindByUser(ctx context.Context, userID uuid.UUID) (*domain.Subscription, error)
	UpdateStatus(ctx context.Context, stripeSubID string, status domain.SubscriptionStatus) (*domain.Subscription, error)
}

package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/viralacademy/academy-api/internal/domain"
)

type UserRepository interface {
	CreateEmailUser(ctx context.Context, email string, passwordHash, passwordSalt []byte, role domain.UserRole) (*domain.User, error)
	UpsertGoogleUser(ctx context.Context, email string, fullName, imageURL *string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	// FirstByRoles returns the oldest account holding any of the given roles,
	// in creation order. Used by the import owner-resolution policy.
	FirstByRoles(ctx context.Context, roles ...domain.UserRole) (*domain.User, error)
}

package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/viralacademy/academy-api/internal/domain"
)

type CertificateRepository interface {
	Create(ctx context.Context, cert *domain.Certificate) (*domain.Certificate, error)
	FindByUserAndCourse(ctx context.Context, userID, courseID uuid.UUID) (*domain.Certificate, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Certificate, error)
}

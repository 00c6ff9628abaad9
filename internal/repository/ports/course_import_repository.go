package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/viralacademy/academy-api/internal/domain"
)

type CourseImportRepository interface {
	CreateJob(ctx context.Context, job *domain.CourseImportJob) (*domain.CourseImportJob, error)
	FindJobByID(ctx context.Context, id uuid.UUID) (*domain.CourseImportJob, error)
	ListJobs(ctx context.Context, limit int) ([]domain.CourseImportJob, error)
}

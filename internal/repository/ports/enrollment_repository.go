package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/viralacademy/academy-api/internal/domain"
)

type EnrollmentRepository interface {
	Enroll(ctx context.Context, userID, courseID uuid.UUID) (*domain.Enrollment, error)
	FindByUserAndCourse(ctx context.Context, userID, courseID uuid.UUID) (*domain.Enrollment, error)
	MarkLessonComplete(ctx context.Context, userID, lessonID uuid.UUID) (*domain.LessonProgress, error)
	CountCompletedLessons(ctx context.Context, userID, courseID uuid.UUID) (int, error)
	ListProgress(ctx context.Context, userID uuid.UUID) ([]domain.CourseProgress, error)
}

package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/viralacademy/academy-api/internal/domain"
)

// CourseCreate is the nested creation spec the committer hands to the store:
// one course with all of its modules and lessons, created as a single grouped
// operation.
type CourseCreate struct {
	Slug        string
	Title       string
	Description *string
	Thumbnail   *string
	Level       domain.CourseLevel
	Category    string
	MentorID    uuid.UUID
	Published   bool
	Modules     []ModuleCreate
}

type ModuleCreate struct {
	Title    string
	Position int
	Lessons  []LessonCreate
}

type LessonCreate struct {
	Title           string
	Position        int
	VideoURL        *string
	Content         *string
	DurationMinutes *int
	Published       bool
}

type CourseRepository interface {
	SlugExists(ctx context.Context, slug string) (bool, error)
	CreateWithContent(ctx context.Context, spec CourseCreate) (*domain.Course, error)
	FindBySlug(ctx context.Context, slug string) (*domain.Course, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Course, error)
	List(ctx context.Context, filter domain.CourseFilter, sort domain.CourseSort) ([]domain.Course, error)
	ListContent(ctx context.Context, courseID uuid.UUID) ([]domain.CourseModule, error)
	FindLessonByID(ctx context.Context, lessonID uuid.UUID) (*domain.Lesson, error)
	FindLessonCourse(ctx context.Context, lessonID uuid.UUID) (uuid.UUID, error)
	CountPublishedLessons(ctx context.Context, courseID uuid.UUID) (int, error)
	SetPublished(ctx context.Context, courseID uuid.UUID, published bool) error
}

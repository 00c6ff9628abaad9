package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/viralacademy/academy-api/internal/domain"
	"github.com/viralacademy/academy-api/internal/repository/ports"
)

var (
	ErrCourseNotFound = errors.New("course not found")
	ErrLessonNotFound = errors.New("lesson not found")
)

type CourseService struct {
	courses ports.CourseRepository
}

func NewCourseService(courses ports.CourseRepository) *CourseService {
	return &CourseService{courses: courses}
}

// List returns the catalog visible to the given user. Students only see
// published courses; mentors and admins see everything so they can review
// freshly imported content.
func (s *CourseService) List(ctx context.Context, viewer *domain.User, filter domain.CourseFilter, sort domain.CourseSort) ([]domain.Course, error) {
	if viewer == nil || !viewer.CanMentor() {
		published := true
		filter.Published = &published
	}
	return s.courses.List(ctx, filter, sort)
}

// GetBySlug returns a course with its full module and lesson tree.
func (s *CourseService) GetBySlug(ctx context.Context, viewer *domain.User, slug string) (*domain.Course, error) {
	course, err := s.courses.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	if !course.Published && (viewer == nil || !viewer.CanMentor()) {
		return nil, ErrCourseNotFound
	}
	modules, err := s.courses.ListContent(ctx, course.ID)
	if err != nil {
		return nil, err
	}
	course.Modules = modules
	return course, nil
}

func (s *CourseService) GetLesson(ctx context.Context, lessonID uuid.UUID) (*domain.Lesson, error) {
	lesson, err := s.courses.FindLessonByID(ctx, lessonID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLessonNotFound
		}
		return nil, err
	}
	return lesson, nil
}

// SetPublished flips a course's visibility. Used after reviewing imported
// legacy content.
func (s *CourseService) SetPublished(ctx context.Context, courseID uuid.UUID, published bool) error {
	if err := s.courses.SetPublished(ctx, courseID, published); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrCourseNotFound
		}
		return err
	}
	return nil
}

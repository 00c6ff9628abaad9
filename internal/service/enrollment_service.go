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
	ErrNotEnrolled         = errors.New("not enrolled in this course")
	ErrMembershipRequired  = errors.New("active membership required")
	ErrCourseNotEnrollable = errors.New("course is not open for enrollment")
)

type EnrollmentService struct {
	enrollments   ports.EnrollmentRepository
	courses       ports.CourseRepository
	subscriptions ports.SubscriptionRepository
}

func NewEnrollmentService(enrollments ports.EnrollmentRepository, courses ports.CourseRepository, subscriptions ports.SubscriptionRepository) *EnrollmentService {
	return &EnrollmentService{
		enrollments:   enrollments,
		courses:       courses,
		subscriptions: subscriptions,
	}
}

// Enroll joins a member to a published course. Mentors and admins bypass the
// membership check so they can review their own content.
func (s *EnrollmentService) Enroll(ctx context.Context, user *domain.User, courseID uuid.UUID) (*domain.Enrollment, error) {
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	if !course.Published {
		return nil, ErrCourseNotEnrollable
	}
	if !user.CanMentor() {
		if err := s.requireActiveMembership(ctx, user.ID); err != nil {
			return nil, err
		}
	}
	return s.enrollments.Enroll(ctx, user.ID, courseID)
}

// CompleteLesson records a lesson as done. The lesson's course is resolved
// server side so clients cannot record progress on courses they never joined.
func (s *EnrollmentService) CompleteLesson(ctx context.Context, user *domain.User, lessonID uuid.UUID) (*domain.LessonProgress, error) {
	courseID, err := s.courses.FindLessonCourse(ctx, lessonID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLessonNotFound
		}
		return nil, err
	}
	if _, err := s.enrollments.FindByUserAndCourse(ctx, user.ID, courseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotEnrolled
		}
		return nil, err
	}
	return s.enrollments.MarkLessonComplete(ctx, user.ID, lessonID)
}

func (s *EnrollmentService) Progress(ctx context.Context, userID uuid.UUID) ([]domain.CourseProgress, error) {
	return s.enrollments.ListProgress(ctx, userID)
}

func (s *EnrollmentService) requireActiveMembership(ctx context.Context, userID uuid.UUID) error {
	sub, err := s.subscriptions.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrMembershipRequired
		}
		return err
	}
	if !sub.IsActive() {
		return ErrMembershipRequired
	}
	return nil
}

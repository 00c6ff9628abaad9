package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/viralacademy/academy-api/internal/domain"
	"github.com/viralacademy/academy-api/internal/repository/ports"
)

type fakeCatalogRepo struct {
	courses         map[uuid.UUID]*domain.Course
	lessonCourse    map[uuid.UUID]uuid.UUID
	lessonsByCourse map[uuid.UUID]int
}

func newFakeCatalogRepo() *fakeCatalogRepo {
	return &fakeCatalogRepo{
		courses:         map[uuid.UUID]*domain.Course{},
		lessonCourse:    map[uuid.UUID]uuid.UUID{},
		lessonsByCourse: map[uuid.UUID]int{},
	}
}

func (f *fakeCatalogRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.Course, error) {
	if course, ok := f.courses[id]; ok {
		return course, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeCatalogRepo) FindLessonCourse(_ context.Context, lessonID uuid.UUID) (uuid.UUID, error) {
	if courseID, ok := f.lessonCourse[lessonID]; ok {
		return courseID, nil
	}
	return uuid.Nil, sql.ErrNoRows
}

func (f *fakeCatalogRepo) CountPublishedLessons(_ context.Context, courseID uuid.UUID) (int, error) {
	return f.lessonsByCourse[courseID], nil
}

func (f *fakeCatalogRepo) SlugExists(context.Context, string) (bool, error) {
	return false, errors.New("not implemented")
}
func (f *fakeCatalogRepo) CreateWithContent(context.Context, ports.CourseCreate) (*domain.Course, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeCatalogRepo) FindBySlug(context.Context, string) (*domain.Course, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeCatalogRepo) List(context.Context, domain.CourseFilter, domain.CourseSort) ([]domain.Course, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeCatalogRepo) ListContent(context.Context, uuid.UUID) ([]domain.CourseModule, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeCatalogRepo) FindLessonByID(context.Context, uuid.UUID) (*domain.Lesson, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeCatalogRepo) SetPublished(context.Context, uuid.UUID, bool) error {
	return errors.New("not implemented")
}

type fakeProgressRepo struct {
	enrollments map[uuid.UUID]map[uuid.UUID]bool
	completed   map[uuid.UUID]map[uuid.UUID]int
	marked      []uuid.UUID
	progress    []domain.CourseProgress
}

func newFakeProgressRepo() *fakeProgressRepo {
	return &fakeProgressRepo{
		enrollments: map[uuid.UUID]map[uuid.UUID]bool{},
		completed:   map[uuid.UUID]map[uuid.UUID]int{},
	}
}

func (f *fakeProgressRepo) enroll(userID, courseID uuid.UUID) {
	if f.enrollments[userID] == nil {
		f.enrollments[userID] = map[uuid.UUID]bool{}
	}
	f.enrollments[userID][courseID] = true
}

func (f *fakeProgressRepo) Enroll(_ context.Context, userID, courseID uuid.UUID) (*domain.Enrollment, error) {
	f.enroll(userID, courseID)
	return &domain.Enrollment{ID: uuid.New(), UserID: userID, CourseID: courseID, CreatedAt: time.Now()}, nil
}

func (f *fakeProgressRepo) FindByUserAndCourse(_ context.Context, userID, courseID uuid.UUID) (*domain.Enrollment, error) {
	if f.enrollments[userID][courseID] {
		return &domain.Enrollment{UserID: userID, CourseID: courseID}, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeProgressRepo) MarkLessonComplete(_ context.Context, userID, lessonID uuid.UUID) (*domain.LessonProgress, error) {
	f.marked = append(f.marked, lessonID)
	return &domain.LessonProgress{ID: uuid.New(), UserID: userID, LessonID: lessonID, CompletedAt: time.Now()}, nil
}

func (f *fakeProgressRepo) CountCompletedLessons(_ context.Context, userID, courseID uuid.UUID) (int, error) {
	return f.completed[userID][courseID], nil
}

func (f *fakeProgressRepo) ListProgress(context.Context, uuid.UUID) ([]domain.CourseProgress, error) {
	return f.progress, nil
}

func newEnrollmentFixture() (*EnrollmentService, *fakeCatalogRepo, *fakeProgressRepo, *fakeSubscriptionRepo) {
	catalog := newFakeCatalogRepo()
	progress := newFakeProgressRepo()
	subs := newFakeSubscriptionRepo()
	return NewEnrollmentService(progress, catalog, subs), catalog, progress, subs
}

func TestEnrollRequiresActiveMembership(t *testing.T) {
	svc, catalog, _, subs := newEnrollmentFixture()
	courseID := uuid.New()
	catalog.courses[courseID] = &domain.Course{ID: courseID, Published: true}
	student := &domain.User{ID: uuid.New(), Role: domain.RoleStudent}

	if _, err := svc.Enroll(context.Background(), student, courseID); !errors.Is(err, ErrMembershipRequired) {
		t.Fatalf("without subscription err = %v, want ErrMembershipRequired", err)
	}

	subs.byStripeID["sub_1"] = &domain.Subscription{UserID: student.ID, StripeSubscriptionID: "sub_1", Status: domain.SubscriptionStatusPastDue}
	if _, err := svc.Enroll(context.Background(), student, courseID); !errors.Is(err, ErrMembershipRequired) {
		t.Fatalf("with past_due subscription err = %v, want ErrMembershipRequired", err)
	}

	subs.byStripeID["sub_1"].Status = domain.SubscriptionStatusActive
	enrollment, err := svc.Enroll(context.Background(), student, courseID)
	if err != nil {
		t.Fatalf("with active subscription err = %v", err)
	}
	if enrollment.CourseID != courseID {
		t.Fatalf("enrollment course = %s, want %s", enrollment.CourseID, courseID)
	}
}

func TestEnrollMentorBypassesMembership(t *testing.T) {
	svc, catalog, _, _ := newEnrollmentFixture()
	courseID := uuid.New()
	catalog.courses[courseID] = &domain.Course{ID: courseID, Published: true}
	mentor := &domain.User{ID: uuid.New(), Role: domain.RoleMentor}

	if _, err := svc.Enroll(context.Background(), mentor, courseID); err != nil {
		t.Fatalf("mentor enroll err = %v", err)
	}
}

func TestEnrollRejectsUnknownOrUnpublishedCourse(t *testing.T) {
	svc, catalog, _, _ := newEnrollmentFixture()
	admin := &domain.User{ID: uuid.New(), Role: domain.RoleAdmin}

	if _, err := svc.Enroll(context.Background(), admin, uuid.New()); !errors.Is(err, ErrCourseNotFound) {
		t.Fatalf("unknown course err = %v, want ErrCourseNotFound", err)
	}

	courseID := uuid.New()
	catalog.courses[courseID] = &domain.Course{ID: courseID, Published: false}
	if _, err := svc.Enroll(context.Background(), admin, courseID); !errors.Is(err, ErrCourseNotEnrollable) {
		t.Fatalf("unpublished course err = %v, want ErrCourseNotEnrollable", err)
	}
}

func TestCompleteLessonRequiresEnrollment(t *testing.T) {
	svc, catalog, progress, _ := newEnrollmentFixture()
	courseID := uuid.New()
	lessonID := uuid.New()
	catalog.lessonCourse[lessonID] = courseID
	student := &domain.User{ID: uuid.New(), Role: domain.RoleStudent}

	if _, err := svc.CompleteLesson(context.Background(), student, uuid.New()); !errors.Is(err, ErrLessonNotFound) {
		t.Fatalf("unknown lesson err = %v, want ErrLessonNotFound", err)
	}
	if _, err := svc.CompleteLesson(context.Background(), student, lessonID); !errors.Is(err, ErrNotEnrolled) {
		t.Fatalf("not enrolled err = %v, want ErrNotEnrolled", err)
	}

	progress.enroll(student.ID, courseID)
	record, err := svc.CompleteLesson(context.Background(), student, lessonID)
	if err != nil {
		t.Fatalf("enrolled complete err = %v", err)
	}
	if record.LessonID != lessonID {
		t.Fatalf("progress lesson = %s, want %s", record.LessonID, lessonID)
	}
	if len(progress.marked) != 1 || progress.marked[0] != lessonID {
		t.Fatalf("marked lessons = %v, want just %s", progress.marked, lessonID)
	}
}

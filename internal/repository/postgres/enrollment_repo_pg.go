package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/viralacademy/academy-api/internal/domain"
)

type EnrollmentRepository struct {
	db *sqlx.DB
}

func NewEnrollmentRepo(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

func (r *EnrollmentRepository) Enroll(ctx context.Context, userID, courseID uuid.UUID) (*domain.Enrollment, error) {
	const query = `
        INSERT INTO enrollment (user_id, course_id)
        VALUES ($1, $2)
        ON CONFLICT (user_id, course_id) DO UPDATE SET user_id = enrollment.user_id
        RETURNING id, user_id, course_id, created_at`

	var enrollment domain.Enrollment
	if err := r.db.QueryRowxContext(ctx, query, userID, courseID).StructScan(&enrollment); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (r *EnrollmentRepository) FindByUserAndCourse(ctx context.Context, userID, courseID uuid.UUID) (*domain.Enrollment, error) {
	const query = `
        SELECT id, user_id, course_id, created_at
        FROM enrollment
        WHERE user_id = $1 AND course_id = $2`
	var enrollment domain.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, userID, courseID); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (r *EnrollmentRepository) MarkLessonComplete(ctx context.Context, userID, lessonID uuid.UUID) (*domain.LessonProgress, error) {
	const query = `
        INSERT INTO lesson_progress (user_id, lesson_id)
        VALUES ($1, $2)
        ON CONFLICT (user_id, lesson_id) DO UPDATE SET user_id = lesson_progress.user_id
        RETURNING id, user_id, lesson_id, completed_at`

	var progress domain.LessonProgress
	if err := r.db.QueryRowxContext(ctx, query, userID, lessonID).StructScan(&progress); err != nil {
		return nil, err
	}
	return &progress, nil
}

func (r *EnrollmentRepository) CountCompletedLessons(ctx context.Context, userID, courseID uuid.UUID) (int, error) {
	const query = `
        SELECT COUNT(*)
        FROM lesson_progress p
        JOIN lesson l ON l.id = p.lesson_id
        JOIN course_module m ON m.id = l.module_id
        WHERE p.user_id = $1 AND m.course_id = $2 AND l.published = TRUE`
	var count int
	if err := r.db.GetContext(ctx, &count, query, userID, courseID); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *EnrollmentRepository) ListProgress(ctx context.Context, userID uuid.UUID) ([]domain.CourseProgress, error) {
	const query = `
        SELECT c.id AS course_id,
               c.slug AS course_slug,
               c.title AS course_title,
               COUNT(l.id) FILTER (WHERE l.published) AS lessons_total,
               COUNT(p.id) FILTER (WHERE l.published) AS lessons_completed
        FROM enrollment e
        JOIN course c ON c.id = e.course_id
        LEFT JOIN course_module m ON m.course_id = c.id
        LEFT JOIN lesson l ON l.module_id = m.id
        LEFT JOIN lesson_progress p ON p.lesson_id = l.id AND p.user_id = e.user_id
        WHERE e.user_id = $1
        GROUP BY c.id, c.slug, c.title
        ORDER BY c.title ASC`

	progress := make([]domain.CourseProgress, 0)
	if err := r.db.SelectContext(ctx, &progress, query, userID); err != nil {
		return nil, err
	}
	return progress, nil
}

package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/viralacademy/academy-api/internal/domain"
	"github.com/viralacademy/academy-api/internal/repository/ports"
)

type CourseRepository struct {
	db *sqlx.DB
}

func NewCourseRepo(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

const courseColumns = `id, slug, title, description, thumbnail_url, level, category, mentor_id, published, created_at, updated_at`

func (r *CourseRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM course WHERE slug = $1)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, slug); err != nil {
		return false, err
	}
	return exists, nil
}

// CreateWithContent inserts one course together with all of its modules and
// lessons inside a single transaction. A failure anywhere rolls back the
// whole course; other courses in the same batch are unaffected.
func (r *CourseRepository) CreateWithContent(ctx context.Context, spec ports.CourseCreate) (*domain.Course, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	const courseInsert = `
        INSERT INTO course (slug, title, description, thumbnail_url, level, category, mentor_id, published)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING ` + courseColumns

	var course domain.Course
	if err := tx.QueryRowxContext(ctx, courseInsert,
		spec.Slug,
		spec.Title,
		spec.Description,
		spec.Thumbnail,
		spec.Level,
		spec.Category,
		spec.MentorID,
		spec.Published,
	).StructScan(&course); err != nil {
		return nil, err
	}

	const moduleInsert = `
        INSERT INTO course_module (course_id, title, position)
        VALUES ($1, $2, $3)
        RETURNING id, course_id, title, position`

	const lessonInsert = `
        INSERT INTO lesson (module_id, title, position, video_url, content, duration_minutes, published)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, module_id, title, position, video_url, content, duration_minutes, published`

	for _, moduleSpec := range spec.Modules {
		var module domain.CourseModule
		if err := tx.QueryRowxContext(ctx, moduleInsert, course.ID, moduleSpec.Title, moduleSpec.Position).StructScan(&module); err != nil {
			return nil, err
		}
		for _, lessonSpec := range moduleSpec.Lessons {
			var lesson domain.Lesson
			if err := tx.QueryRowxContext(ctx, lessonInsert,
				module.ID,
				lessonSpec.Title,
				lessonSpec.Position,
				lessonSpec.VideoURL,
				lessonSpec.Content,
				lessonSpec.DurationMinutes,
				lessonSpec.Published,
			).StructScan(&lesson); err != nil {
				return nil, err
			}
			module.Lessons = append(module.Lessons, lesson)
		}
		course.Modules = append(course.Modules, module)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *CourseRepository) FindBySlug(ctx context.Context, slug string) (*domain.Course, error) {
	const query = `SELECT ` + courseColumns + ` FROM course WHERE slug = $1`
	var course domain.Course
	if err := r.db.GetContext(ctx, &course, query, slug); err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *CourseRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Course, error) {
	const query = `SELECT ` + courseColumns + ` FROM course WHERE id = $1`
	var course domain.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *CourseRepository) List(ctx context.Context, filter domain.CourseFilter, sort domain.CourseSort) ([]domain.Course, error) {
	clauses := []string{"TRUE"}
	params := []any{}

	if filter.Published != nil {
		params = append(params, *filter.Published)
		clauses = append(clauses, fmt.Sprintf("published = $%d", len(params)))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		params = append(params, "%"+search+"%")
		clauses = append(clauses, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", len(params), len(params)))
	}
	if len(filter.Categories) > 0 {
		params = append(params, pq.StringArray(filter.Categories))
		clauses = append(clauses, fmt.Sprintf("category = ANY($%d)", len(params)))
	}
	if filter.Level != nil {
		params = append(params, *filter.Level)
		clauses = append(clauses, fmt.Sprintf("level = $%d", len(params)))
	}

	order := "created_at DESC"
	switch sort {
	case domain.CourseSortTitleAsc:
		order = "title ASC"
	case domain.CourseSortTitleDesc:
		order = "title DESC"
	}

	query := `SELECT ` + courseColumns + ` FROM course WHERE ` + strings.Join(clauses, " AND ") +
		` ORDER BY ` + order

	if filter.Limit > 0 {
		params = append(params, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(params))
	}
	if filter.Offset > 0 {
		params = append(params, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(params))
	}

	courses := make([]domain.Course, 0)
	if err := r.db.SelectContext(ctx, &courses, query, params...); err != nil {
		return nil, err
	}
	return courses, nil
}

// ListContent loads a course's modules with their lessons, ordered by
// position.
func (r *CourseRepository) ListContent(ctx context.Context, courseID uuid.UUID) ([]domain.CourseModule, error) {
	const moduleQuery = `
        SELECT id, course_id, title, position
        FROM course_module
        WHERE course_id = $1
        ORDER BY position ASC`

	modules := make([]domain.CourseModule, 0)
	if err := r.db.SelectContext(ctx, &modules, moduleQuery, courseID); err != nil {
		return nil, err
	}
	if len(modules) == 0 {
		return modules, nil
	}

	const lessonQuery = `
        SELECT l.id, l.module_id, l.title, l.position, l.video_url, l.content, l.duration_minutes, l.published
        FROM lesson l
        JOIN course_module m ON m.id = l.module_id
        WHERE m.course_id = $1
        ORDER BY m.position ASC, l.position ASC`

	lessons := make([]domain.Lesson, 0)
	if err := r.db.SelectContext(ctx, &lessons, lessonQuery, courseID); err != nil {
		return nil, err
	}

	byModule := make(map[uuid.UUID]*domain.CourseModule, len(modules))
	for i := range modules {
		byModule[modules[i].ID] = &modules[i]
	}
	for _, lesson := range lessons {
		if module, ok := byModule[lesson.ModuleID]; ok {
			module.Lessons = append(module.Lessons, lesson)
		}
	}
	return modules, nil
}

func (r *CourseRepository) FindLessonByID(ctx context.Context, lessonID uuid.UUID) (*domain.Lesson, error) {
	const query = `
        SELECT id, module_id, title, position, video_url, content, duration_minutes, published
        FROM lesson
        WHERE id = $1`
	var lesson domain.Lesson
	if err := r.db.GetContext(ctx, &lesson, query, lessonID); err != nil {
		return nil, err
	}
	return &lesson, nil
}

// FindLessonCourse resolves which course a lesson belongs to.
func (r *CourseRepository) FindLessonCourse(ctx context.Context, lessonID uuid.UUID) (uuid.UUID, error) {
	const query = `
        SELECT m.course_id
        FROM lesson l
        JOIN course_module m ON m.id = l.module_id
        WHERE l.id = $1`
	var courseID uuid.UUID
	if err := r.db.GetContext(ctx, &courseID, query, lessonID); err != nil {
		return uuid.Nil, err
	}
	return courseID, nil
}

func (r *CourseRepository) CountPublishedLessons(ctx context.Context, courseID uuid.UUID) (int, error) {
	const query = `
        SELECT COUNT(*)
        FROM lesson l
        JOIN course_module m ON m.id = l.module_id
        WHERE m.course_id = $1 AND l.published = TRUE`
	var count int
	if err := r.db.GetContext(ctx, &count, query, courseID); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *CourseRepository) SetPublished(ctx context.Context, courseID uuid.UUID, published bool) error {
	const query = `UPDATE course SET published = $2, updated_at = NOW() WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, courseID, published)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

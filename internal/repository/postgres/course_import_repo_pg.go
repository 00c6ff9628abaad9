package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/viralacademy/academy-api/internal/domain"
)

type CourseImportRepository struct {
	db *sqlx.DB
}

func NewCourseImportRepo(db *sqlx.DB) *CourseImportRepository {
	return &CourseImportRepository{db: db}
}

const importJobColumns = `id, uploaded_by, variant, status, file_key, courses_imported, modules_imported, lessons_imported, errors, submitted_at, created_at`

func (r *CourseImportRepository) CreateJob(ctx context.Context, job *domain.CourseImportJob) (*domain.CourseImportJob, error) {
	const query = `
        INSERT INTO course_import_job (
            uploaded_by, variant, status, file_key,
            courses_imported, modules_imported, lessons_imported, errors, submitted_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING ` + importJobColumns

	var inserted domain.CourseImportJob
	if err := r.db.QueryRowxContext(ctx, query,
		job.UploadedBy,
		job.Variant,
		job.Status,
		nullStringPtr(job.FileKey),
		job.CoursesImported,
		job.ModulesImported,
		job.LessonsImported,
		job.Errors,
		job.SubmittedAt,
	).StructScan(&inserted); err != nil {
		return nil, err
	}
	return &inserted, nil
}

func (r *CourseImportRepository) FindJobByID(ctx context.Context, id uuid.UUID) (*domain.CourseImportJob, error) {
	const query = `SELECT ` + importJobColumns + ` FROM course_import_job WHERE id = $1`
	var job domain.CourseImportJob
	if err := r.db.GetContext(ctx, &job, query, id); err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *CourseImportRepository) ListJobs(ctx context.Context, limit int) ([]domain.CourseImportJob, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
        SELECT ` + importJobColumns + `
        FROM course_import_job
        ORDER BY submitted_at DESC
        LIMIT $1`
	jobs := make([]domain.CourseImportJob, 0)
	if err := r.db.SelectContext(ctx, &jobs, query, limit); err != nil {
		return nil, err
	}
	return jobs, nil
}

package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/viralacademy/academy-api/internal/domain"
)

type CertificateRepository struct {
	db *sqlx.DB
}

func NewCertificateRepo(db *sqlx.DB) *CertificateRepository {
	return &CertificateRepository{db: db}
}

const certificateColumns = `id, user_id, course_id, serial_code, signature_key, issued_at`

func (r *CertificateRepository) Create(ctx context.Context, cert *domain.Certificate) (*domain.Certificate, error) {
	const query = `
        INSERT INTO certificate (user_id, course_id, serial_code, signature_key)
        VALUES ($1, $2, $3, $4)
        RETURNING ` + certificateColumns

	var inserted domain.Certificate
	if err := r.db.QueryRowxContext(ctx, query,
		cert.UserID,
		cert.CourseID,
		cert.SerialCode,
		nullStringPtr(cert.SignatureKey),
	).StructScan(&inserted); err != nil {
		return nil, err
	}
	return &inserted, nil
}

func (r *CertificateRepository) FindByUserAndCourse(ctx context.Context, userID, courseID uuid.UUID) (*domain.Certificate, error) {
	const query = `SELECT ` + certificateColumns + ` FROM certificate WHERE user_id = $1 AND course_id = $2`
	var cert domain.Certificate
	if err := r.db.GetContext(ctx, &cert, query, userID, courseID); err != nil {
		return nil, err
	}
	return &cert, nil
}

func (r *CertificateRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Certificate, error) {
	const query = `SELECT ` + certificateColumns + ` FROM certificate WHERE user_id = $1 ORDER BY issued_at DESC`
	certs := make([]domain.Certificate, 0)
	if err := r.db.SelectContext(ctx, &certs, query, userID); err != nil {
		return nil, err
	}
	return certs, nil
}

func nullStringPtr(ptr *string) sql.NullString {
	if ptr == nil || *ptr == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *ptr, Valid: true}
}

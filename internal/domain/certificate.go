package domain

import (
	"time"

	"github.com/google/uuid"
)

// Certificate is issued at most once per user and course; the unique
// constraint on (user_id, course_id) makes issuance idempotent.
type Certificate struct {
	ID           uuid.UUID `db:"id" json:"id"`
	UserID       uuid.UUID `db:"user_id" json:"user_id"`
	CourseID     uuid.UUID `db:"course_id" json:"course_id"`
	SerialCode   string    `db:"serial_code" json:"serial_code"`
	SignatureKey *string   `db:"signature_key" json:"signature_key,omitempty"`
	IssuedAt     time.Time `db:"issued_at" json:"issued_at"`
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

type Enrollment struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	CourseID  uuid.UUID `db:"course_id" json:"course_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type LessonProgress struct {
	ID          uuid.UUID `db:"id" json:"id"`
	UserID      uuid.UUID `db:"user_id" json:"user_id"`
	LessonID    uuid.UUID `db:"lesson_id" json:"lesson_id"`
	CompletedAt time.Time `db:"completed_at" json:"completed_at"`
}

// CourseProgress summarizes one enrollment for the progress endpoint.
type CourseProgress struct {
	CourseID         uuid.UUID `db:"course_id" json:"course_id"`
	CourseSlug       string    `db:"course_slug" json:"course_slug"`
	CourseTitle      string    `db:"course_title" json:"course_title"`
	LessonsTotal     int       `db:"lessons_total" json:"lessons_total"`
	LessonsCompleted int       `db:"lessons_completed" json:"lessons_completed"`
}

func (p CourseProgress) Completed() bool {
	return p.LessonsTotal > 0 && p.LessonsCompleted >= p.LessonsTotal
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

type CourseLevel string

const (
	CourseLevelBeginner     CourseLevel = "beginner"
	CourseLevelIntermediate CourseLevel = "intermediate"
	CourseLevelAdvanced     CourseLevel = "advanced"
)

type Course struct {
	ID          uuid.UUID   `db:"id" json:"id"`
	Slug        string      `db:"slug" json:"slug"`
	Title       string      `db:"title" json:"title"`
	Description *string     `db:"description" json:"description,omitempty"`
	Thumbnail   *string     `db:"thumbnail_url" json:"thumbnail_url,omitempty"`
	Level       CourseLevel `db:"level" json:"level"`
	Category    string      `db:"category" json:"category"`
	MentorID    uuid.UUID   `db:"mentor_id" json:"mentor_id"`
	Published   bool        `db:"published" json:"published"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at" json:"updated_at"`

	Modules []CourseModule `db:"-" json:"modules,omitempty"`
}

type CourseModule struct {
	ID       uuid.UUID `db:"id" json:"id"`
	CourseID uuid.UUID `db:"course_id" json:"course_id"`
	Title    string    `db:"title" json:"title"`
	Position int       `db:"position" json:"position"`

	Lessons []Lesson `db:"-" json:"lessons,omitempty"`
}

type Lesson struct {
	ID              uuid.UUID `db:"id" json:"id"`
	ModuleID        uuid.UUID `db:"module_id" json:"module_id"`
	Title           string    `db:"title" json:"title"`
	Position        int       `db:"position" json:"position"`
	VideoURL        *string   `db:"video_url" json:"video_url,omitempty"`
	Content         *string   `db:"content" json:"content,omitempty"`
	DurationMinutes *int      `db:"duration_minutes" json:"duration_minutes,omitempty"`
	Published       bool      `db:"published" json:"published"`
}

// CourseFilter narrows the public catalog listing.
type CourseFilter struct {
	Search     string
	Categories []string
	Level      *CourseLevel
	// Published nil means no visibility filter; the catalog sets it for
	// non-mentor viewers.
	Published *bool
	Limit     int
	Offset    int
}

type CourseSort string

const (
	CourseSortNewest    CourseSort = "newest"
	CourseSortTitleAsc  CourseSort = "title_asc"
	CourseSortTitleDesc CourseSort = "title_desc"
)

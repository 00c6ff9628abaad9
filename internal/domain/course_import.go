package domain

import (
	"time"

	"github.com/google/uuid"
)

type CourseImportVariant string

const (
	CourseImportVariantGeneric    CourseImportVariant = "generic"
	CourseImportVariantLegacy     CourseImportVariant = "legacy"
	CourseImportVariantLegacyFlat CourseImportVariant = "legacy_flat"
)

type CourseImportStatus string

const (
	CourseImportStatusCompleted CourseImportStatus = "completed"
	CourseImportStatusFailed    CourseImportStatus = "failed"
)

// CourseImportJob is the persisted audit record of one import request. The
// report it stores is exactly what the importer endpoint returned.
type CourseImportJob struct {
	ID              uuid.UUID           `db:"id" json:"id"`
	UploadedBy      uuid.UUID           `db:"uploaded_by" json:"uploaded_by"`
	Variant         CourseImportVariant `db:"variant" json:"variant"`
	Status          CourseImportStatus  `db:"status" json:"status"`
	FileKey         *string             `db:"file_key" json:"file_key,omitempty"`
	CoursesImported int                 `db:"courses_imported" json:"courses_imported"`
	ModulesImported int                 `db:"modules_imported" json:"modules_imported"`
	LessonsImported int                 `db:"lessons_imported" json:"lessons_imported"`
	Errors          ImportErrorList     `db:"errors" json:"errors"`
	SubmittedAt     time.Time           `db:"submitted_at" json:"submitted_at"`
	CreatedAt       time.Time           `db:"created_at" json:"created_at"`
}

// CourseImportReport is the response payload of every importer variant.
type CourseImportReport struct {
	Success  bool                 `json:"success"`
	Message  string               `json:"message"`
	Imported int                  `json:"imported"`
	Errors   []string             `json:"errors"`
	Details  *CourseImportDetails `json:"details,omitempty"`
}

type CourseImportDetails struct {
	Courses int `json:"courses"`
	Modules int `json:"modules"`
	Lessons int `json:"lessons"`
}

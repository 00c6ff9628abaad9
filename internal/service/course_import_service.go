package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/viralacademy/academy-api/internal/domain"
	"github.com/viralacademy/academy-api/internal/importer"
	"github.com/viralacademy/academy-api/internal/repository/ports"
)

var (
	ErrImportEmptyFile   = errors.New("file contains no data rows")
	ErrImportUnparseable = errors.New("file could not be parsed")
	ErrImportTooLarge    = errors.New("file exceeds maximum size")
	ErrImportBadColumns  = errors.New("file is missing required columns")
	ErrImportJobNotFound = errors.New("import job not found")
)

// OwnerPolicy decides which account newly imported courses are assigned to.
type OwnerPolicy string

const (
	// OwnerPolicyUploader assigns courses to the admin running the import.
	OwnerPolicyUploader OwnerPolicy = "uploader"
	// OwnerPolicyFirstMentor assigns courses to the oldest admin/mentor
	// account, falling back to the uploader when none exists.
	OwnerPolicyFirstMentor OwnerPolicy = "first-mentor"
)

type CourseImportServiceConfig struct {
	Bucket       string
	MaxFileBytes int64
	// OwnerPolicyOverride, when set, applies to every variant regardless of
	// its default.
	OwnerPolicyOverride OwnerPolicy
}

type CourseImportService struct {
	courses       ports.CourseRepository
	users         ports.UserRepository
	jobs          ports.CourseImportRepository
	storage       ports.ObjectStorage
	bucket        string
	maxFileBytes  int64
	ownerOverride OwnerPolicy
	now           func() time.Time
}

func NewCourseImportService(courses ports.CourseRepository, users ports.UserRepository, jobs ports.CourseImportRepository, storage ports.ObjectStorage, cfg CourseImportServiceConfig) *CourseImportService {
	maxFile := cfg.MaxFileBytes
	if maxFile <= 0 {
		maxFile = 8 * 1024 * 1024
	}
	override := cfg.OwnerPolicyOverride
	if override != OwnerPolicyUploader && override != OwnerPolicyFirstMentor {
		override = ""
	}
	return &CourseImportService{
		courses:       courses,
		users:         users,
		jobs:          jobs,
		storage:       storage,
		bucket:        cfg.Bucket,
		maxFileBytes:  maxFile,
		ownerOverride: override,
		now:           time.Now,
	}
}

// variantConfig is the only thing that differs between the three importer
// endpoints: which columns to expect, who owns the result, and whether the
// imported content goes live immediately.
type variantConfig struct {
	variant     domain.CourseImportVariant
	ownerPolicy OwnerPolicy
	publish     bool
	withDetails bool
}

var (
	genericVariant = variantConfig{
		variant:     domain.CourseImportVariantGeneric,
		ownerPolicy: OwnerPolicyUploader,
		publish:     true,
	}
	legacyVariant = variantConfig{
		variant:     domain.CourseImportVariantLegacy,
		ownerPolicy: OwnerPolicyFirstMentor,
		publish:     false,
		withDetails: true,
	}
	legacyFlatVariant = variantConfig{
		variant:     domain.CourseImportVariantLegacyFlat,
		ownerPolicy: OwnerPolicyFirstMentor,
		publish:     false,
		withDetails: true,
	}
)

// ImportGeneric handles the platform's own CSV template: one file, one row
// per lesson with repeated course/module identity columns.
func (s *CourseImportService) ImportGeneric(ctx context.Context, uploader *domain.User, filename string, contents []byte) (*domain.CourseImportReport, *domain.CourseImportJob, error) {
	if err := s.checkSize(contents); err != nil {
		return nil, nil, err
	}
	rows, err := importer.Parse(contents, importer.GenericSchema())
	if err != nil {
		return nil, nil, translateParseError(err)
	}
	fileKey := s.archive(ctx, uploader.ID, filename, contents)
	return s.run(ctx, uploader, genericVariant, rows, nil, fileKey)
}

// LegacyFiles are the three exports of the legacy multi-file variant. Topics
// and lessons reference their container through a Parent id column.
type LegacyFiles struct {
	Courses []byte
	Topics  []byte
	Lessons []byte
}

func (s *CourseImportService) ImportLegacy(ctx context.Context, uploader *domain.User, files LegacyFiles) (*domain.CourseImportReport, *domain.CourseImportJob, error) {
	for _, contents := range [][]byte{files.Courses, files.Topics, files.Lessons} {
		if err := s.checkSize(contents); err != nil {
			return nil, nil, err
		}
	}
	courseRows, err := importer.Parse(files.Courses, importer.LegacyCourseSchema())
	if err != nil {
		return nil, nil, translateParseError(err)
	}
	topicRows, err := importer.Parse(files.Topics, importer.LegacyTopicSchema())
	if err != nil {
		return nil, nil, translateParseError(err)
	}
	lessonRows, err := importer.Parse(files.Lessons, importer.LegacyLessonSchema())
	if err != nil {
		return nil, nil, translateParseError(err)
	}

	rows, joinErrors := joinLegacyFiles(courseRows, topicRows, lessonRows)
	fileKey := s.archive(ctx, uploader.ID, "legacy-lessons.csv", files.Lessons)
	return s.run(ctx, uploader, legacyVariant, rows, joinErrors, fileKey)
}

// ImportLegacyFlat handles the pre-joined single-file legacy export with
// curso_/modulo_/leccion_ columns.
func (s *CourseImportService) ImportLegacyFlat(ctx context.Context, uploader *domain.User, filename string, contents []byte) (*domain.CourseImportReport, *domain.CourseImportJob, error) {
	if err := s.checkSize(contents); err != nil {
		return nil, nil, err
	}
	rows, err := importer.Parse(contents, importer.LegacyFlatSchema())
	if err != nil {
		return nil, nil, translateParseError(err)
	}
	fileKey := s.archive(ctx, uploader.ID, filename, contents)
	return s.run(ctx, uploader, legacyFlatVariant, rows, nil, fileKey)
}

func (s *CourseImportService) GetJob(ctx context.Context, jobID uuid.UUID) (*domain.CourseImportJob, error) {
	job, err := s.jobs.FindJobByID(ctx, jobID)
	if err != nil {
		return nil, ErrImportJobNotFound
	}
	return job, nil
}

func (s *CourseImportService) ListJobs(ctx context.Context, limit int) ([]domain.CourseImportJob, error) {
	return s.jobs.ListJobs(ctx, limit)
}

// run is the pipeline shared by all variants: fold rows into drafts, resolve
// the owner, commit draft by draft, then build the report and audit record.
// No error below course granularity aborts the batch.
func (s *CourseImportService) run(ctx context.Context, uploader *domain.User, variant variantConfig, rows []importer.Row, priorErrors []string, fileKey *string) (*domain.CourseImportReport, *domain.CourseImportJob, error) {
	builder := importer.NewBuilder()
	for _, row := range rows {
		builder.Add(row)
	}
	drafts := builder.Courses()

	batchErrors := append([]string{}, priorErrors...)
	batchErrors = append(batchErrors, builder.Errors()...)

	ownerID := s.resolveOwner(ctx, uploader, variant)

	var coursesImported, modulesImported, lessonsImported int
	for _, draft := range drafts {
		exists, err := s.courses.SlugExists(ctx, draft.Slug)
		if err != nil {
			batchErrors = append(batchErrors, fmt.Sprintf("course %q failed: %v", draft.Title, err))
			continue
		}
		if exists {
			batchErrors = append(batchErrors, fmt.Sprintf("course %q skipped: already exists", draft.Title))
			continue
		}
		modules := draft.Modules()
		if len(modules) == 0 {
			batchErrors = append(batchErrors, fmt.Sprintf("course %q skipped: no modules", draft.Title))
			continue
		}

		created, err := s.courses.CreateWithContent(ctx, buildCourseSpec(draft, modules, ownerID, variant.publish))
		if err != nil {
			batchErrors = append(batchErrors, fmt.Sprintf("course %q failed: %v", draft.Title, err))
			continue
		}
		coursesImported++
		modulesImported += len(created.Modules)
		for _, module := range created.Modules {
			lessonsImported += len(module.Lessons)
		}
	}

	report := &domain.CourseImportReport{
		Success:  coursesImported > 0 || len(batchErrors) == 0,
		Imported: coursesImported,
		Errors:   batchErrors,
	}
	if report.Errors == nil {
		report.Errors = []string{}
	}
	switch {
	case coursesImported == 0:
		report.Message = "no courses were imported"
	case len(batchErrors) > 0:
		report.Message = fmt.Sprintf("imported %d course(s) with %d issue(s)", coursesImported, len(batchErrors))
	default:
		report.Message = fmt.Sprintf("imported %d course(s)", coursesImported)
	}
	if variant.withDetails {
		report.Details = &domain.CourseImportDetails{
			Courses: coursesImported,
			Modules: modulesImported,
			Lessons: lessonsImported,
		}
	}

	status := domain.CourseImportStatusCompleted
	if !report.Success {
		status = domain.CourseImportStatusFailed
	}
	job, err := s.jobs.CreateJob(ctx, &domain.CourseImportJob{
		UploadedBy:      uploader.ID,
		Variant:         variant.variant,
		Status:          status,
		FileKey:         fileKey,
		CoursesImported: coursesImported,
		ModulesImported: modulesImported,
		LessonsImported: lessonsImported,
		Errors:          domain.ImportErrorList(report.Errors),
		SubmittedAt:     s.now(),
	})
	if err != nil {
		// The courses are already committed; a lost audit row must not turn
		// a finished import into a client-visible failure.
		return report, nil, nil
	}
	return report, job, nil
}

func buildCourseSpec(draft *importer.CourseDraft, modules []*importer.ModuleDraft, ownerID uuid.UUID, publish bool) ports.CourseCreate {
	spec := ports.CourseCreate{
		Slug:        draft.Slug,
		Title:       draft.Title,
		Description: optional(draft.Description),
		Thumbnail:   optional(draft.Thumbnail),
		Level:       domain.CourseLevel(draft.Level),
		Category:    draft.Category,
		MentorID:    ownerID,
		Published:   publish,
	}
	for _, module := range modules {
		moduleSpec := ports.ModuleCreate{Title: module.Title, Position: module.Position}
		for _, lesson := range module.Lessons {
			lessonSpec := ports.LessonCreate{
				Title:     lesson.Title,
				Position:  lesson.Position,
				VideoURL:  optional(lesson.VideoURL),
				Content:   optional(lesson.Content),
				Published: publish,
			}
			if lesson.DurationMinutes > 0 {
				minutes := lesson.DurationMinutes
				lessonSpec.DurationMinutes = &minutes
			}
			moduleSpec.Lessons = append(moduleSpec.Lessons, lessonSpec)
		}
		spec.Modules = append(spec.Modules, moduleSpec)
	}
	return spec
}

func (s *CourseImportService) resolveOwner(ctx context.Context, uploader *domain.User, variant variantConfig) uuid.UUID {
	policy := variant.ownerPolicy
	if s.ownerOverride != "" {
		policy = s.ownerOverride
	}
	if policy == OwnerPolicyFirstMentor {
		if owner, err := s.users.FirstByRoles(ctx, domain.RoleAdmin, domain.RoleMentor); err == nil {
			return owner.ID
		}
	}
	return uploader.ID
}

// joinLegacyFiles denormalizes the three-file export back into flat rows so
// the same hierarchy builder handles both legacy shapes. Orphan references
// are rejected like any other bad row; courses no lesson resolves to are
// reported as having no modules.
func joinLegacyFiles(courseRows, topicRows, lessonRows []importer.Row) ([]importer.Row, []string) {
	var errs []string

	coursesByID := make(map[string]importer.Row, len(courseRows))
	courseOrder := make([]string, 0, len(courseRows))
	for _, row := range courseRows {
		id := row.Get(importer.FieldCourseID)
		if _, ok := coursesByID[id]; !ok {
			coursesByID[id] = row
			courseOrder = append(courseOrder, id)
		}
	}

	topicsByID := make(map[string]importer.Row, len(topicRows))
	for _, row := range topicRows {
		parent := row.Get(importer.FieldParentID)
		if _, ok := coursesByID[parent]; !ok {
			errs = append(errs, fmt.Sprintf("topics row %d: parent course %s not found", row.Line, parent))
			continue
		}
		topicsByID[row.Get(importer.FieldModuleID)] = row
	}

	joined := make([]importer.Row, 0, len(lessonRows))
	referenced := make(map[string]bool, len(courseRows))
	for _, row := range lessonRows {
		parent := row.Get(importer.FieldParentID)
		topic, ok := topicsByID[parent]
		if !ok {
			errs = append(errs, fmt.Sprintf("lessons row %d: parent topic %s not found", row.Line, parent))
			continue
		}
		course := coursesByID[topic.Get(importer.FieldParentID)]
		referenced[topic.Get(importer.FieldParentID)] = true

		joined = append(joined, importer.NewRow(row.Line, map[importer.Field]string{
			importer.FieldCourseID:          course.Get(importer.FieldCourseID),
			importer.FieldCourseTitle:       course.Get(importer.FieldCourseTitle),
			importer.FieldCourseSlug:        course.Get(importer.FieldCourseSlug),
			importer.FieldCourseDescription: course.Get(importer.FieldCourseDescription),
			importer.FieldCourseThumbnail:   course.Get(importer.FieldCourseThumbnail),
			importer.FieldCourseLevel:       course.Get(importer.FieldCourseLevel),
			importer.FieldCourseCategory:    course.Get(importer.FieldCourseCategory),
			importer.FieldModuleID:          topic.Get(importer.FieldModuleID),
			importer.FieldModuleTitle:       topic.Get(importer.FieldModuleTitle),
			importer.FieldModuleOrder:       topic.Get(importer.FieldModuleOrder),
			importer.FieldLessonID:          row.Get(importer.FieldLessonID),
			importer.FieldLessonTitle:       row.Get(importer.FieldLessonTitle),
			importer.FieldLessonOrder:       row.Get(importer.FieldLessonOrder),
			importer.FieldLessonContent:     row.Get(importer.FieldLessonContent),
			importer.FieldLessonVideo:       row.Get(importer.FieldLessonVideo),
			importer.FieldLessonDuration:    row.Get(importer.FieldLessonDuration),
		}))
	}

	for _, id := range courseOrder {
		if !referenced[id] {
			errs = append(errs, fmt.Sprintf("course %q skipped: no modules", coursesByID[id].Get(importer.FieldCourseTitle)))
		}
	}
	return joined, errs
}

func (s *CourseImportService) checkSize(contents []byte) error {
	if len(contents) == 0 {
		return ErrImportEmptyFile
	}
	if s.maxFileBytes > 0 && int64(len(contents)) > s.maxFileBytes {
		return ErrImportTooLarge
	}
	return nil
}

// archive stores the uploaded file for later audit. Best effort: an
// unavailable object store must not fail the import itself.
func (s *CourseImportService) archive(ctx context.Context, uploadedBy uuid.UUID, filename string, contents []byte) *string {
	if s.storage == nil || s.bucket == "" {
		return nil
	}
	name := strings.TrimSpace(filename)
	if name == "" {
		name = "upload.csv"
	}
	name = strings.ReplaceAll(filepath.Base(name), " ", "_")
	objectName := fmt.Sprintf("imports/%s/%d-%s", uploadedBy, s.now().UnixNano(), name)
	if _, err := s.storage.Upload(ctx, s.bucket, objectName, "text/csv", bytes.NewReader(contents), int64(len(contents))); err != nil {
		return nil
	}
	return &objectName
}

func translateParseError(err error) error {
	switch {
	case errors.Is(err, importer.ErrEmptyFile):
		return ErrImportEmptyFile
	case errors.Is(err, importer.ErrMissingColumns):
		return fmt.Errorf("%w: %v", ErrImportBadColumns, err)
	default:
		return fmt.Errorf("%w: %v", ErrImportUnparseable, err)
	}
}

func optional(value string) *string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return &value
}

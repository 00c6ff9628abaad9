package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/viralacademy/academy-api/internal/domain"
	"github.com/viralacademy/academy-api/internal/repository/ports"
)

type fakeCourseRepo struct {
	existing map[string]bool
	failFor  map[string]error
	created  []ports.CourseCreate
}

func (f *fakeCourseRepo) SlugExists(_ context.Context, slug string) (bool, error) {
	return f.existing[slug], nil
}

func (f *fakeCourseRepo) CreateWithContent(_ context.Context, spec ports.CourseCreate) (*domain.Course, error) {
	if err := f.failFor[spec.Slug]; err != nil {
		return nil, err
	}
	f.created = append(f.created, spec)
	course := &domain.Course{ID: uuid.New(), Slug: spec.Slug, Title: spec.Title, Published: spec.Published}
	for _, m := range spec.Modules {
		module := domain.CourseModule{ID: uuid.New(), Title: m.Title, Position: m.Position}
		for _, l := range m.Lessons {
			module.Lessons = append(module.Lessons, domain.Lesson{ID: uuid.New(), Title: l.Title, Position: l.Position})
		}
		course.Modules = append(course.Modules, module)
	}
	return course, nil
}

func (f *fakeCourseRepo) FindBySlug(context.Context, string) (*domain.Course, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeCourseRepo) FindByID(context.Context, uuid.UUID) (*domain.Course, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeCourseRepo) List(context.Context, domain.CourseFilter, domain.CourseSort) ([]domain.Course, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeCourseRepo) ListContent(context.Context, uuid.UUID) ([]domain.CourseModule, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeCourseRepo) FindLessonByID(context.Context, uuid.UUID) (*domain.Lesson, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeCourseRepo) FindLessonCourse(context.Context, uuid.UUID) (uuid.UUID, error) {
	return uuid.Nil, errors.New("not implemented")
}
func (f *fakeCourseRepo) CountPublishedLessons(context.Context, uuid.UUID) (int, error) {
	return 0, errors.New("not implemented")
}
func (f *fakeCourseRepo) SetPublished(context.Context, uuid.UUID, bool) error {
	return errors.New("not implemented")
}

type fakeImportUserRepo struct {
	firstMentor *domain.User
}

func (f *fakeImportUserRepo) CreateEmailUser(context.Context, string, []byte, []byte, domain.UserRole) (*domain.User, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeImportUserRepo) UpsertGoogleUser(context.Context, string, *string, *string) (*domain.User, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeImportUserRepo) FindByEmail(context.Context, string) (*domain.User, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeImportUserRepo) FindByID(context.Context, uuid.UUID) (*domain.User, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeImportUserRepo) FirstByRoles(context.Context, ...domain.UserRole) (*domain.User, error) {
	if f.firstMentor == nil {
		return nil, errors.New("no mentor")
	}
	return f.firstMentor, nil
}

type fakeJobRepo struct {
	jobs []domain.CourseImportJob
	fail bool
}

func (f *fakeJobRepo) CreateJob(_ context.Context, job *domain.CourseImportJob) (*domain.CourseImportJob, error) {
	if f.fail {
		return nil, errors.New("insert failed")
	}
	job.ID = uuid.New()
	job.CreatedAt = time.Now()
	f.jobs = append(f.jobs, *job)
	return job, nil
}

func (f *fakeJobRepo) FindJobByID(_ context.Context, id uuid.UUID) (*domain.CourseImportJob, error) {
	for i := range f.jobs {
		if f.jobs[i].ID == id {
			return &f.jobs[i], nil
		}
	}
	return nil, errors.New("not found")
}

func (f *fakeJobRepo) ListJobs(context.Context, int) ([]domain.CourseImportJob, error) {
	return f.jobs, nil
}

type fakeStorage struct {
	objects map[string][]byte
	fail    bool
}

func (f *fakeStorage) Upload(_ context.Context, _, objectName, _ string, reader io.Reader, _ int64) (string, error) {
	if f.fail {
		return "", errors.New("storage unavailable")
	}
	data, _ := io.ReadAll(reader)
	if f.objects == nil {
		f.objects = make(map[string][]byte)
	}
	f.objects[objectName] = data
	return objectName, nil
}

func (f *fakeStorage) PresignGet(_ context.Context, bucket, objectName string, _ time.Duration) (string, error) {
	if f.fail {
		return "", errors.New("storage unavailable")
	}
	return "https://storage.test/" + bucket + "/" + objectName, nil
}

func newImportFixture() (*CourseImportService, *fakeCourseRepo, *fakeImportUserRepo, *fakeJobRepo, *fakeStorage) {
	courses := &fakeCourseRepo{existing: map[string]bool{}, failFor: map[string]error{}}
	users := &fakeImportUserRepo{}
	jobs := &fakeJobRepo{}
	storage := &fakeStorage{}
	svc := NewCourseImportService(courses, users, jobs, storage, CourseImportServiceConfig{Bucket: "uploads"})
	return svc, courses, users, jobs, storage
}

func uploader() *domain.User {
	return &domain.User{ID: uuid.New(), Email: "admin@example.com", Role: domain.RoleAdmin}
}

const genericCSV = "course_title,module_title,module_order,lesson_title,lesson_order,video_url\n" +
	"Go Basics,Getting Started,1,Installing Go,1,https://youtu.be/dQw4w9WgXcQ\n" +
	"Go Basics,Getting Started,1,Hello World,2,\n" +
	"Go Basics,Functions,2,Defining Functions,1,\n"

func TestImportGenericBuildsHierarchy(t *testing.T) {
	svc, courses, _, jobs, storage := newImportFixture()
	admin := uploader()

	report, job, err := svc.ImportGeneric(context.Background(), admin, "courses.csv", []byte(genericCSV))
	if err != nil {
		t.Fatalf("ImportGeneric: %v", err)
	}
	if !report.Success {
		t.Fatalf("expected success, got %+v", report)
	}
	if report.Imported != 1 {
		t.Fatalf("imported = %d, want 1", report.Imported)
	}
	if len(report.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", report.Errors)
	}
	if report.Details != nil {
		t.Fatalf("generic variant must not carry details, got %+v", report.Details)
	}

	if len(courses.created) != 1 {
		t.Fatalf("created %d courses, want 1", len(courses.created))
	}
	spec := courses.created[0]
	if spec.Slug != "go-basics" {
		t.Fatalf("slug = %q", spec.Slug)
	}
	if spec.MentorID != admin.ID {
		t.Fatalf("generic import must assign the uploader as owner")
	}
	if !spec.Published {
		t.Fatalf("generic import must publish the course")
	}
	if len(spec.Modules) != 2 {
		t.Fatalf("modules = %d, want 2", len(spec.Modules))
	}
	first := spec.Modules[0]
	if first.Title != "Getting Started" || first.Position != 1 || len(first.Lessons) != 2 {
		t.Fatalf("unexpected first module: %+v", first)
	}
	if got := *first.Lessons[0].VideoURL; got != "https://www.youtube.com/watch?v=dQw4w9WgXcQ" {
		t.Fatalf("video url = %q", got)
	}

	if job == nil || job.Status != domain.CourseImportStatusCompleted {
		t.Fatalf("job = %+v", job)
	}
	if job.CoursesImported != 1 || job.ModulesImported != 2 || job.LessonsImported != 3 {
		t.Fatalf("job counts = %d/%d/%d", job.CoursesImported, job.ModulesImported, job.LessonsImported)
	}
	if job.FileKey == nil {
		t.Fatalf("job must reference the archived upload")
	}
	if _, ok := storage.objects[*job.FileKey]; !ok {
		t.Fatalf("archived object %q not stored", *job.FileKey)
	}
	if len(jobs.jobs) != 1 {
		t.Fatalf("jobs persisted = %d, want 1", len(jobs.jobs))
	}
}

func TestImportGenericIsIdempotentOnReimport(t *testing.T) {
	svc, courses, _, _, _ := newImportFixture()
	admin := uploader()

	first, _, err := svc.ImportGeneric(context.Background(), admin, "courses.csv", []byte(genericCSV))
	if err != nil {
		t.Fatalf("first import: %v", err)
	}
	if first.Imported != 1 {
		t.Fatalf("first imported = %d", first.Imported)
	}
	courses.existing["go-basics"] = true

	second, job, err := svc.ImportGeneric(context.Background(), admin, "courses.csv", []byte(genericCSV))
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if second.Imported != 0 {
		t.Fatalf("re-import created courses: %+v", second)
	}
	if second.Success {
		t.Fatalf("a fully skipped import must not report success")
	}
	if len(second.Errors) != 1 || !strings.Contains(second.Errors[0], "already exists") {
		t.Fatalf("errors = %v", second.Errors)
	}
	if len(courses.created) != 1 {
		t.Fatalf("repo gained %d courses total, want 1", len(courses.created))
	}
	if job == nil || job.Status != domain.CourseImportStatusFailed {
		t.Fatalf("skipped-everything job must be recorded as failed, got %+v", job)
	}
}

func TestImportGenericIsolatesCourseFailures(t *testing.T) {
	svc, courses, _, _, _ := newImportFixture()
	courses.failFor["broken-course"] = errors.New("constraint violation")

	csv := "course_title,module_title,module_order,lesson_title,lesson_order\n" +
		"Broken Course,M1,1,L1,1\n" +
		"Good Course,M1,1,L1,1\n"
	report, _, err := svc.ImportGeneric(context.Background(), uploader(), "mix.csv", []byte(csv))
	if err != nil {
		t.Fatalf("ImportGeneric: %v", err)
	}
	if report.Imported != 1 {
		t.Fatalf("imported = %d, want 1", report.Imported)
	}
	if !report.Success {
		t.Fatalf("a partially successful batch still succeeds")
	}
	if len(report.Errors) != 1 || !strings.Contains(report.Errors[0], `course "Broken Course" failed`) {
		t.Fatalf("errors = %v", report.Errors)
	}
	if len(courses.created) != 1 || courses.created[0].Slug != "good-course" {
		t.Fatalf("created = %+v", courses.created)
	}
}

func TestImportGenericCollectsRowRejections(t *testing.T) {
	svc, _, _, _, _ := newImportFixture()

	csv := "course_title,module_title,lesson_title\n" +
		"Go Basics,,Orphan Lesson\n" +
		"Go Basics,Getting Started,Installing Go\n"
	report, _, err := svc.ImportGeneric(context.Background(), uploader(), "rows.csv", []byte(csv))
	if err != nil {
		t.Fatalf("ImportGeneric: %v", err)
	}
	if report.Imported != 1 {
		t.Fatalf("imported = %d, want 1", report.Imported)
	}
	if len(report.Errors) != 1 || !strings.Contains(report.Errors[0], "row 2") {
		t.Fatalf("errors = %v", report.Errors)
	}
}

func TestImportGenericRejectsUnusableFiles(t *testing.T) {
	svc, _, _, _, _ := newImportFixture()
	admin := uploader()

	if _, _, err := svc.ImportGeneric(context.Background(), admin, "empty.csv", nil); !errors.Is(err, ErrImportEmptyFile) {
		t.Fatalf("nil contents: %v", err)
	}
	if _, _, err := svc.ImportGeneric(context.Background(), admin, "header.csv", []byte("course_title,module_title,lesson_title\n")); !errors.Is(err, ErrImportEmptyFile) {
		t.Fatalf("header only: %v", err)
	}
	if _, _, err := svc.ImportGeneric(context.Background(), admin, "bad.csv", []byte("foo,bar\n1,2\n")); !errors.Is(err, ErrImportBadColumns) {
		t.Fatalf("wrong columns: %v", err)
	}

	small := NewCourseImportService(&fakeCourseRepo{}, &fakeImportUserRepo{}, &fakeJobRepo{}, nil, CourseImportServiceConfig{MaxFileBytes: 10})
	if _, _, err := small.ImportGeneric(context.Background(), admin, "big.csv", []byte(genericCSV)); !errors.Is(err, ErrImportTooLarge) {
		t.Fatalf("oversized: %v", err)
	}
}

func TestImportLegacyJoinsThreeFiles(t *testing.T) {
	svc, courses, users, _, _ := newImportFixture()
	mentor := &domain.User{ID: uuid.New(), Email: "mentor@example.com", Role: domain.RoleMentor}
	users.firstMentor = mentor

	files := LegacyFiles{
		Courses: []byte("ID,post_title,post_content\n10,Curso de Go,Aprende Go\n20,Curso Vacio,Sin contenido\n"),
		Topics:  []byte("ID,post_title,post_parent,menu_order\n100,Introduccion,10,1\n"),
		Lessons: []byte("ID,post_title,post_parent,menu_order,video\n1000,Instalacion,100,1,https://vimeo.com/123456\n1001,Sintaxis,100,2,\n"),
	}
	report, job, err := svc.ImportLegacy(context.Background(), uploader(), files)
	if err != nil {
		t.Fatalf("ImportLegacy: %v", err)
	}
	if report.Imported != 1 {
		t.Fatalf("imported = %d, want 1: %+v", report.Imported, report)
	}
	if report.Details == nil {
		t.Fatalf("legacy variant must carry details")
	}
	if report.Details.Courses != 1 || report.Details.Modules != 1 || report.Details.Lessons != 2 {
		t.Fatalf("details = %+v", report.Details)
	}
	found := false
	for _, msg := range report.Errors {
		if strings.Contains(msg, `"Curso Vacio" skipped: no modules`) {
			found = true
		}
	}
	if !found {
		t.Fatalf("lessonless course not reported: %v", report.Errors)
	}

	spec := courses.created[0]
	if spec.MentorID != mentor.ID {
		t.Fatalf("legacy import must assign the first mentor as owner")
	}
	if spec.Published {
		t.Fatalf("legacy imports stay unpublished for review")
	}
	if spec.Modules[0].Title != "Introduccion" || len(spec.Modules[0].Lessons) != 2 {
		t.Fatalf("unexpected module: %+v", spec.Modules[0])
	}
	if job == nil || job.Variant != domain.CourseImportVariantLegacy {
		t.Fatalf("job = %+v", job)
	}
}

func TestImportLegacyReportsOrphanReferences(t *testing.T) {
	svc, _, _, _, _ := newImportFixture()

	files := LegacyFiles{
		Courses: []byte("ID,post_title\n10,Curso de Go\n"),
		Topics:  []byte("ID,post_title,post_parent\n100,Introduccion,10\n101,Huerfano,99\n"),
		Lessons: []byte("ID,post_title,post_parent\n1000,Instalacion,100\n1001,Perdida,555\n"),
	}
	report, _, err := svc.ImportLegacy(context.Background(), uploader(), files)
	if err != nil {
		t.Fatalf("ImportLegacy: %v", err)
	}
	if report.Imported != 1 {
		t.Fatalf("imported = %d, want 1", report.Imported)
	}
	var topicOrphan, lessonOrphan bool
	for _, msg := range report.Errors {
		if strings.Contains(msg, "parent course 99 not found") {
			topicOrphan = true
		}
		if strings.Contains(msg, "parent topic 555 not found") {
			lessonOrphan = true
		}
	}
	if !topicOrphan || !lessonOrphan {
		t.Fatalf("orphans not reported: %v", report.Errors)
	}
}

func TestImportLegacyFlatParsesSpanishColumns(t *testing.T) {
	svc, courses, users, _, _ := newImportFixture()
	users.firstMentor = &domain.User{ID: uuid.New(), Role: domain.RoleMentor}

	csv := "curso_titulo;modulo_titulo;modulo_orden;leccion_titulo;leccion_orden\n" +
		"Curso de Go;Introducción;1;Instalación;1\n"
	report, _, err := svc.ImportLegacyFlat(context.Background(), uploader(), "export.csv", []byte(csv))
	if err != nil {
		t.Fatalf("ImportLegacyFlat: %v", err)
	}
	if report.Imported != 1 {
		t.Fatalf("imported = %d: %+v", report.Imported, report)
	}
	if courses.created[0].Slug != "curso-de-go" {
		t.Fatalf("slug = %q", courses.created[0].Slug)
	}
}

func TestImportSurvivesArchiveAndJobFailures(t *testing.T) {
	courses := &fakeCourseRepo{existing: map[string]bool{}, failFor: map[string]error{}}
	jobs := &fakeJobRepo{fail: true}
	storage := &fakeStorage{fail: true}
	svc := NewCourseImportService(courses, &fakeImportUserRepo{}, jobs, storage, CourseImportServiceConfig{Bucket: "uploads"})

	report, job, err := svc.ImportGeneric(context.Background(), uploader(), "courses.csv", []byte(genericCSV))
	if err != nil {
		t.Fatalf("ImportGeneric: %v", err)
	}
	if !report.Success || report.Imported != 1 {
		t.Fatalf("report = %+v", report)
	}
	if job != nil {
		t.Fatalf("expected no job when persistence fails, got %+v", job)
	}
}

func TestOwnerOverrideAppliesToEveryVariant(t *testing.T) {
	courses := &fakeCourseRepo{existing: map[string]bool{}, failFor: map[string]error{}}
	mentor := &domain.User{ID: uuid.New(), Role: domain.RoleMentor}
	svc := NewCourseImportService(courses, &fakeImportUserRepo{firstMentor: mentor}, &fakeJobRepo{}, nil, CourseImportServiceConfig{OwnerPolicyOverride: OwnerPolicyFirstMentor})

	if _, _, err := svc.ImportGeneric(context.Background(), uploader(), "courses.csv", []byte(genericCSV)); err != nil {
		t.Fatalf("ImportGeneric: %v", err)
	}
	if courses.created[0].MentorID != mentor.ID {
		t.Fatalf("override ignored, owner = %s", courses.created[0].MentorID)
	}
}

package http

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/viralacademy/academy-api/internal/domain"
	"github.com/viralacademy/academy-api/internal/service"
	"github.com/viralacademy/academy-api/internal/util"
)

type CourseImportHandler struct {
	imports       *service.CourseImportService
	maxUploadSize int64
}

func RegisterCourseImports(e *echo.Echo, auth *service.AuthService, imports *service.CourseImportService, maxUpload int64) {
	handler := &CourseImportHandler{
		imports:       imports,
		maxUploadSize: maxUpload,
	}

	group := e.Group("/api/v1/admin/course-imports", RequireAuth(auth), RequireAdmin())
	group.GET("/template", handler.template)
	group.POST("", handler.createGeneric)
	group.POST("/legacy", handler.createLegacy)
	group.POST("/legacy-flat", handler.createLegacyFlat)
	group.GET("", handler.listJobs)
	group.GET("/:id", handler.getJob)
}

func (h *CourseImportHandler) template(c echo.Context) error {
	headers := []string{
		"course_id", "course_title", "course_slug", "course_description",
		"course_thumbnail", "course_level", "course_category",
		"module_id", "module_title", "module_order",
		"lesson_id", "lesson_title", "lesson_order",
		"lesson_content", "lesson_video", "lesson_duration",
	}
	sampleRow := []string{
		"go-101", "Go Basics", "go-basics", "A first course on Go.",
		"https://cdn.viralacademy.io/courses/go-basics/cover.jpg", "beginner", "Programming",
		"", "Getting Started", "1",
		"", "Installing Go", "1",
		"Walk through the official installer.", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "12",
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	_ = writer.Write(headers)
	_ = writer.Write(sampleRow)
	writer.Flush()

	if err := writer.Error(); err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("could not generate template"))
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="course-import-template.csv"`)
	return c.Blob(http.StatusOK, "text/csv", buf.Bytes())
}

func (h *CourseImportHandler) createGeneric(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	filename, data, err := h.readUpload(c, "file")
	if err != nil {
		return h.writeUploadError(c, err)
	}
	report, job, err := h.imports.ImportGeneric(c.Request().Context(), user, filename, data)
	if err != nil {
		return h.writeImportError(c, err)
	}
	return c.JSON(http.StatusOK, buildImportResponse(report, job))
}

func (h *CourseImportHandler) createLegacy(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	var files service.LegacyFiles
	var err error
	if _, files.Courses, err = h.readUpload(c, "courses"); err != nil {
		return h.writeUploadError(c, err)
	}
	if _, files.Topics, err = h.readUpload(c, "topics"); err != nil {
		return h.writeUploadError(c, err)
	}
	if _, files.Lessons, err = h.readUpload(c, "lessons"); err != nil {
		return h.writeUploadError(c, err)
	}
	report, job, err := h.imports.ImportLegacy(c.Request().Context(), user, files)
	if err != nil {
		return h.writeImportError(c, err)
	}
	return c.JSON(http.StatusOK, buildImportResponse(report, job))
}

func (h *CourseImportHandler) createLegacyFlat(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	filename, data, err := h.readUpload(c, "file")
	if err != nil {
		return h.writeUploadError(c, err)
	}
	report, job, err := h.imports.ImportLegacyFlat(c.Request().Context(), user, filename, data)
	if err != nil {
		return h.writeImportError(c, err)
	}
	return c.JSON(http.StatusOK, buildImportResponse(report, job))
}

func (h *CourseImportHandler) getJob(c echo.Context) error {
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid job id"))
	}
	job, err := h.imports.GetJob(c.Request().Context(), jobID)
	if err != nil {
		return c.JSON(http.StatusNotFound, util.Error("import job not found"))
	}
	return c.JSON(http.StatusOK, util.Envelope{"job": buildImportJob(job)})
}

func (h *CourseImportHandler) listJobs(c echo.Context) error {
	limit := parsePositiveInt(c.QueryParam("limit"), 20)
	jobs, err := h.imports.ListJobs(c.Request().Context(), limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("internal error"))
	}
	items := make([]util.Envelope, 0, len(jobs))
	for i := range jobs {
		items = append(items, buildImportJob(&jobs[i]))
	}
	return c.JSON(http.StatusOK, util.Envelope{"jobs": items})
}

var (
	errUploadMissing  = errors.New("csv file is required")
	errUploadUnread   = errors.New("unable to read upload")
	errUploadTooLarge = errors.New("upload exceeds size limit")
)

func (h *CourseImportHandler) readUpload(c echo.Context, field string) (string, []byte, error) {
	file, err := c.FormFile(field)
	if err != nil {
		return "", nil, errUploadMissing
	}
	src, err := file.Open()
	if err != nil {
		return "", nil, errUploadUnread
	}
	defer func(src multipart.File) { _ = src.Close() }(src)

	limit := h.maxUploadSize
	if limit <= 0 {
		limit = 8 * 1024 * 1024
	}
	data, err := io.ReadAll(io.LimitReader(src, limit+1))
	if err != nil {
		return "", nil, errUploadUnread
	}
	if int64(len(data)) > limit {
		return "", nil, errUploadTooLarge
	}
	return file.Filename, data, nil
}

func (h *CourseImportHandler) writeUploadError(c echo.Context, err error) error {
	if errors.Is(err, errUploadTooLarge) {
		return c.JSON(http.StatusRequestEntityTooLarge, util.Error(err.Error()))
	}
	return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
}

func (h *CourseImportHandler) writeImportError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrImportEmptyFile):
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	case errors.Is(err, service.ErrImportBadColumns):
		return c.JSON(http.StatusUnprocessableEntity, util.Error(err.Error()))
	case errors.Is(err, service.ErrImportUnparseable):
		return c.JSON(http.StatusUnprocessableEntity, util.Error(err.Error()))
	case errors.Is(err, service.ErrImportTooLarge):
		return c.JSON(http.StatusRequestEntityTooLarge, util.Error(err.Error()))
	default:
		return c.JSON(http.StatusInternalServerError, util.Error("internal error"))
	}
}

func buildImportResponse(report *domain.CourseImportReport, job *domain.CourseImportJob) util.Envelope {
	resp := util.Envelope{
		"success":  report.Success,
		"message":  report.Message,
		"imported": report.Imported,
		"errors":   report.Errors,
	}
	if report.Details != nil {
		resp["details"] = report.Details
	}
	if job != nil {
		resp["job_id"] = job.ID
	}
	return resp
}

func buildImportJob(job *domain.CourseImportJob) util.Envelope {
	resp := util.Envelope{
		"id":               job.ID,
		"uploaded_by":      job.UploadedBy,
		"variant":          job.Variant,
		"status":           job.Status,
		"courses_imported": job.CoursesImported,
		"modules_imported": job.ModulesImported,
		"lessons_imported": job.LessonsImported,
		"errors":           job.Errors,
		"submitted_at":     job.SubmittedAt,
		"created_at":       job.CreatedAt,
	}
	if job.FileKey != nil {
		resp["file_key"] = *job.FileKey
	}
	return resp
}

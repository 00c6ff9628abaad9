package http

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/viralacademy/academy-api/internal/service"
	"github.com/viralacademy/academy-api/internal/util"
)

type ProgressHandler struct {
	enrollments *service.EnrollmentService
}

func RegisterProgress(e *echo.Echo, auth *service.AuthService, enrollments *service.EnrollmentService) {
	handler := &ProgressHandler{enrollments: enrollments}

	group := e.Group("/api/v1", RequireAuth(auth))
	group.POST("/courses/:id/enroll", handler.enroll)
	group.POST("/lessons/:id/complete", handler.completeLesson)
	group.GET("/me/progress", handler.progress)
}

func (h *ProgressHandler) enroll(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid course id"))
	}

	enrollment, err := h.enrollments.Enroll(c.Request().Context(), user, courseID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCourseNotFound):
			return c.JSON(http.StatusNotFound, util.Error("course not found"))
		case errors.Is(err, service.ErrCourseNotEnrollable):
			return c.JSON(http.StatusConflict, util.Error(err.Error()))
		case errors.Is(err, service.ErrMembershipRequired):
			return c.JSON(http.StatusPaymentRequired, util.Error(err.Error()))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("internal error"))
		}
	}
	return c.JSON(http.StatusCreated, util.Envelope{"enrollment": enrollment})
}

func (h *ProgressHandler) completeLesson(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	lessonID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid lesson id"))
	}

	progress, err := h.enrollments.CompleteLesson(c.Request().Context(), user, lessonID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrLessonNotFound):
			return c.JSON(http.StatusNotFound, util.Error("lesson not found"))
		case errors.Is(err, service.ErrNotEnrolled):
			return c.JSON(http.StatusForbidden, util.Error(err.Error()))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("internal error"))
		}
	}
	return c.JSON(http.StatusOK, util.Envelope{"progress": progress})
}

func (h *ProgressHandler) progress(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	items, err := h.enrollments.Progress(c.Request().Context(), user.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("internal error"))
	}

	courses := make([]util.Envelope, 0, len(items))
	for _, item := range items {
		courses = append(courses, util.Envelope{
			"course_id":         item.CourseID,
			"course_slug":       item.CourseSlug,
			"course_title":      item.CourseTitle,
			"lessons_total":     item.LessonsTotal,
			"lessons_completed": item.LessonsCompleted,
			"completed":         item.Completed(),
		})
	}
	return c.JSON(http.StatusOK, util.Envelope{"courses": courses})
}

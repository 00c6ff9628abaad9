package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/viralacademy/academy-api/internal/domain"
	"github.com/viralacademy/academy-api/internal/service"
	"github.com/viralacademy/academy-api/internal/util"
)

type CourseHandler struct {
	courses *service.CourseService
}

func RegisterCourses(e *echo.Echo, auth *service.AuthService, courses *service.CourseService) {
	handler := &CourseHandler{courses: courses}

	group := e.Group("/api/v1/courses", RequireAuth(auth))
	group.GET("", handler.list)
	group.GET("/:slug", handler.get)

	admin := e.Group("/api/v1/admin/courses", RequireAuth(auth), RequireMentor())
	admin.PUT("/:id/publish", handler.publish)
	admin.PUT("/:id/unpublish", handler.unpublish)
}

func (h *CourseHandler) list(c echo.Context) error {
	user, _ := CurrentUser(c)

	filter, sort, err := parseCourseListQuery(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	}

	courses, err := h.courses.List(c.Request().Context(), user, filter, sort)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("internal error"))
	}
	return c.JSON(http.StatusOK, util.Envelope{
		"courses": courses,
		"meta": util.Envelope{
			"limit":  filter.Limit,
			"offset": filter.Offset,
			"count":  len(courses),
		},
	})
}

func (h *CourseHandler) get(c echo.Context) error {
	user, _ := CurrentUser(c)
	course, err := h.courses.GetBySlug(c.Request().Context(), user, c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrCourseNotFound) {
			return c.JSON(http.StatusNotFound, util.Error("course not found"))
		}
		return c.JSON(http.StatusInternalServerError, util.Error("internal error"))
	}
	return c.JSON(http.StatusOK, util.Envelope{"course": course})
}

func (h *CourseHandler) publish(c echo.Context) error {
	return h.setPublished(c, true)
}

func (h *CourseHandler) unpublish(c echo.Context) error {
	return h.setPublished(c, false)
}

func (h *CourseHandler) setPublished(c echo.Context, published bool) error {
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid course id"))
	}
	if err := h.courses.SetPublished(c.Request().Context(), courseID, published); err != nil {
		if errors.Is(err, service.ErrCourseNotFound) {
			return c.JSON(http.StatusNotFound, util.Error("course not found"))
		}
		return c.JSON(http.StatusInternalServerError, util.Error("internal error"))
	}
	return c.JSON(http.StatusOK, util.Envelope{"success": true})
}

func parseCourseListQuery(c echo.Context) (domain.CourseFilter, domain.CourseSort, error) {
	filter := domain.CourseFilter{
		Search: strings.TrimSpace(c.QueryParam("search")),
	}
	for _, category := range strings.Split(c.QueryParam("categories"), ",") {
		if category = strings.TrimSpace(category); category != "" {
			filter.Categories = append(filter.Categories, category)
		}
	}
	if level := strings.TrimSpace(c.QueryParam("level")); level != "" {
		parsed := domain.CourseLevel(level)
		switch parsed {
		case domain.CourseLevelBeginner, domain.CourseLevelIntermediate, domain.CourseLevelAdvanced:
			filter.Level = &parsed
		default:
			return filter, "", errors.New("unknown level")
		}
	}
	filter.Limit = parsePositiveInt(c.QueryParam("limit"), 20)
	filter.Offset = parsePositiveInt(c.QueryParam("offset"), 0)

	sort := domain.CourseSortNewest
	switch c.QueryParam("sort") {
	case "", string(domain.CourseSortNewest):
	case string(domain.CourseSortTitleAsc):
		sort = domain.CourseSortTitleAsc
	case string(domain.CourseSortTitleDesc):
		sort = domain.CourseSortTitleDesc
	default:
		return filter, "", errors.New("unknown sort")
	}
	return filter, sort, nil
}

func parsePositiveInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}

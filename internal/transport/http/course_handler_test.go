package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/viralacademy/academy-api/internal/domain"
)

func TestParseCourseListQuery(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/courses", nil)
	q := req.URL.Query()
	q.Set("search", "  go  ")
	q.Set("categories", "Programming, Marketing ,")
	q.Set("level", "beginner")
	q.Set("sort", "title_asc")
	q.Set("limit", "5")
	q.Set("offset", "10")
	req.URL.RawQuery = q.Encode()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	filter, sort, err := parseCourseListQuery(c)
	if err != nil {
		t.Fatalf("parseCourseListQuery returned error: %v", err)
	}

	if filter.Search != "go" {
		t.Fatalf("expected search 'go', got %q", filter.Search)
	}
	expectedCategories := []string{"Programming", "Marketing"}
	if len(filter.Categories) != len(expectedCategories) {
		t.Fatalf("expected %d categories, got %d", len(expectedCategories), len(filter.Categories))
	}
	for i, expected := range expectedCategories {
		if filter.Categories[i] != expected {
			t.Fatalf("expected category %q at position %d, got %q", expected, i, filter.Categories[i])
		}
	}
	if filter.Level == nil || *filter.Level != domain.CourseLevelBeginner {
		t.Fatalf("expected beginner level, got %v", filter.Level)
	}
	if filter.Limit != 5 || filter.Offset != 10 {
		t.Fatalf("expected limit 5 offset 10, got %d/%d", filter.Limit, filter.Offset)
	}
	if sort != domain.CourseSortTitleAsc {
		t.Fatalf("expected sort %q, got %q", domain.CourseSortTitleAsc, sort)
	}
}

func TestParseCourseListQueryDefaults(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/courses", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	filter, sort, err := parseCourseListQuery(c)
	if err != nil {
		t.Fatalf("parseCourseListQuery returned error: %v", err)
	}
	if filter.Limit != 20 || filter.Offset != 0 {
		t.Fatalf("expected default limit 20 offset 0, got %d/%d", filter.Limit, filter.Offset)
	}
	if sort != domain.CourseSortNewest {
		t.Fatalf("expected default sort, got %q", sort)
	}
}

func TestParseCourseListQueryRejectsUnknownValues(t *testing.T) {
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/courses?level=expert", nil)
	if _, _, err := parseCourseListQuery(e.NewContext(req, httptest.NewRecorder())); err == nil {
		t.Fatal("expected error for unknown level, got nil")
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/courses?sort=rating", nil)
	if _, _, err := parseCourseListQuery(e.NewContext(req, httptest.NewRecorder())); err == nil {
		t.Fatal("expected error for unknown sort, got nil")
	}
}

package controller

import (
	"context"
	"net/http/httptest"
	"testing"

	"doc-intelligence-be/internal/dto"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type stubSearchService struct {
	lastSearchQuery  string
	lastCompareQuery string
}

func (s *stubSearchService) Search(ctx context.Context, userId uuid.UUID, req *dto.SearchRequest) (*dto.SearchResponse, error) {
	s.lastSearchQuery = req.Query
	return &dto.SearchResponse{Query: req.Query, SearchType: req.SearchType}, nil
}

func (s *stubSearchService) Compare(ctx context.Context, userId uuid.UUID, query string, limit int) (*dto.SearchComparisonResponse, error) {
	s.lastCompareQuery = query
	return &dto.SearchComparisonResponse{Query: query}, nil
}

func newSearchTestApp(stub *stubSearchService) *fiber.App {
	app := fiber.New()
	app.Use(func(ctx *fiber.Ctx) error {
		ctx.Locals("user_id", uuid.New().String())
		return ctx.Next()
	})
	ctrl := &documentController{searchService: stub}
	app.Get("/documents/v1/search", ctrl.SearchGet)
	app.Get("/documents/v1/search/compare", ctrl.CompareSearch)
	return app
}

func TestSearchGetReadsQParam(t *testing.T) {
	stub := &stubSearchService{}
	app := newSearchTestApp(stub)

	resp, err := app.Test(httptest.NewRequest("GET", "/documents/v1/search?q=budget+report", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, fiber.StatusOK)
	}
	if stub.lastSearchQuery != "budget report" {
		t.Fatalf("service received query %q, want %q", stub.lastSearchQuery, "budget report")
	}
}

func TestSearchGetAcceptsQueryAlias(t *testing.T) {
	stub := &stubSearchService{}
	app := newSearchTestApp(stub)

	resp, err := app.Test(httptest.NewRequest("GET", "/documents/v1/search?query=quarterly", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, fiber.StatusOK)
	}
	if stub.lastSearchQuery != "quarterly" {
		t.Fatalf("service received query %q, want %q", stub.lastSearchQuery, "quarterly")
	}
}

func TestCompareSearchReadsQParam(t *testing.T) {
	stub := &stubSearchService{}
	app := newSearchTestApp(stub)

	resp, err := app.Test(httptest.NewRequest("GET", "/documents/v1/search/compare?q=meeting", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, fiber.StatusOK)
	}
	if stub.lastCompareQuery != "meeting" {
		t.Fatalf("service received query %q, want %q", stub.lastCompareQuery, "meeting")
	}
}

package service

import (
	"context"
	"testing"
	"time"

	"doc-intelligence-be/internal/dto"
	"doc-intelligence-be/internal/entity"
	"doc-intelligence-be/internal/pkg/logger"
	"doc-intelligence-be/internal/repository/specification"
	"doc-intelligence-be/internal/repository/unitofwork/uowtest"

	"github.com/google/uuid"
)

func newTestDocumentService(uow *uowtest.UnitOfWork) IDocumentService {
	return NewDocumentService(&uowtest.Factory{UOW: uow}, nil, logger.NewNopLogger())
}

func TestDocumentListAppliesSearchFilter(t *testing.T) {
	uow := uowtest.New()
	uow.Documents.Docs = []*entity.Document{
		{
			Id:        uuid.New(),
			Kind:      entity.DocumentKindPDF,
			Title:     "Quarterly report",
			CreatedAt: time.Now(),
		},
	}
	svc := newTestDocumentService(uow)

	res, err := svc.List(context.Background(), uuid.New(), &dto.ListDocumentsRequest{Query: "quarterly"})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(res.Documents) != 1 {
		t.Fatalf("got %d documents, want 1", len(res.Documents))
	}

	var found bool
	for _, spec := range uow.Documents.LastFindSpecs {
		if sq, ok := spec.(specification.DocumentSearchQuery); ok {
			found = true
			if sq.Query != "quarterly" {
				t.Errorf("search filter query = %q, want %q", sq.Query, "quarterly")
			}
		}
	}
	if !found {
		t.Error("List did not apply a text search filter for a non-empty query")
	}
}

func TestDocumentListWithoutQuerySkipsSearchFilter(t *testing.T) {
	uow := uowtest.New()
	svc := newTestDocumentService(uow)

	if _, err := svc.List(context.Background(), uuid.New(), &dto.ListDocumentsRequest{}); err != nil {
		t.Fatalf("List() error = %v", err)
	}

	for _, spec := range uow.Documents.LastFindSpecs {
		if _, ok := spec.(specification.DocumentSearchQuery); ok {
			t.Error("List applied a text search filter for an empty query")
		}
	}
}

package service

import (
	"context"

	"doc-intelligence-be/internal/dto"
	"doc-intelligence-be/internal/entity"
	"doc-intelligence-be/internal/pkg/apperror"
	"doc-intelligence-be/internal/pkg/logger"
	"doc-intelligence-be/internal/repository/specification"
	"doc-intelligence-be/internal/repository/unitofwork"
	"doc-intelligence-be/pkg/events"
	pkgNats "doc-intelligence-be/pkg/nats"

	"github.com/google/uuid"
)

const defaultListLimit = 50

type IDocumentService interface {
	List(ctx context.Context, userId uuid.UUID, req *dto.ListDocumentsRequest) (*dto.ListDocumentsResponse, error)
	Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowDocumentResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.DeleteDocumentResponse, error)
}

type documentService struct {
	uowFactory     unitofwork.RepositoryFactory
	eventPublisher *pkgNats.Publisher
	logger         logger.ILogger
}

func NewDocumentService(
	uowFactory unitofwork.RepositoryFactory,
	eventPublisher *pkgNats.Publisher,
	log logger.ILogger,
) IDocumentService {
	return &documentService{
		uowFactory:     uowFactory,
		eventPublisher: eventPublisher,
		logger:         log,
	}
}

func (d *documentService) List(ctx context.Context, userId uuid.UUID, req *dto.ListDocumentsRequest) (*dto.ListDocumentsResponse, error) {
	uow := d.uowFactory.NewUnitOfWork(ctx)

	limit := req.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	specs := []specification.Specification{
		specification.UserOwnedBy{UserID: userId},
		specification.NotDeleted{},
	}
	if req.Kind != "" {
		specs = append(specs, specification.ByKind{Kind: req.Kind})
	}
	if req.Query != "" {
		specs = append(specs, specification.DocumentSearchQuery{Query: req.Query})
	}

	total, err := uow.DocumentRepository().Count(ctx, specs...)
	if err != nil {
		return nil, err
	}

	specs = append(specs,
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: req.Offset},
	)

	documents, err := uow.DocumentRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	items := make([]dto.DocumentItem, 0, len(documents))
	for _, doc := range documents {
		items = append(items, dto.DocumentItem{
			Id:               doc.Id,
			Title:            doc.DisplayTitle(),
			Kind:             string(doc.Kind),
			Filename:         doc.Filename,
			ProcessingStatus: string(doc.ProcessingStatus),
			CreatedAt:        doc.CreatedAt,
			UpdatedAt:        doc.UpdatedAt,
		})
	}

	return &dto.ListDocumentsResponse{Documents: items, Total: total}, nil
}

func (d *documentService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowDocumentResponse, error) {
	uow := d.uowFactory.NewUnitOfWork(ctx)

	document, err := d.findOwnedDocument(ctx, uow, userId, id)
	if err != nil {
		return nil, err
	}

	return &dto.ShowDocumentResponse{
		Id:               document.Id,
		Title:            document.DisplayTitle(),
		Kind:             string(document.Kind),
		Filename:         document.Filename,
		Description:      document.Description,
		ExtractedText:    document.ExtractedText,
		ProcessingStatus: string(document.ProcessingStatus),
		Metadata:         document.Metadata,
		CreatedAt:        document.CreatedAt,
		UpdatedAt:        document.UpdatedAt,
	}, nil
}

func (d *documentService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.DeleteDocumentResponse, error) {
	uow := d.uowFactory.NewUnitOfWork(ctx)

	document, err := d.findOwnedDocument(ctx, uow, userId, id)
	if err != nil {
		return nil, err
	}

	// Embeddings must go with the document or deleted content would keep
	// surfacing in semantic results.
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.DocumentRepository().Delete(ctx, document.Id); err != nil {
		return nil, err
	}
	if err := uow.DocumentEmbeddingRepository().DeleteByDocumentId(ctx, document.Id); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	if d.eventPublisher != nil {
		evt := events.New(events.TypeDocumentDeleted, map[string]interface{}{
			"document_id": document.Id,
			"user_id":     userId,
			"title":       document.DisplayTitle(),
		})
		if err := d.eventPublisher.Publish(ctx, evt); err != nil {
			d.logger.Warn("document", "failed to publish event", map[string]interface{}{
				"event_type": events.TypeDocumentDeleted,
				"error":      err.Error(),
			})
		}
	}

	return &dto.DeleteDocumentResponse{Id: document.Id}, nil
}

func (d *documentService) findOwnedDocument(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, id uuid.UUID) (*entity.Document, error) {
	document, err := uow.DocumentRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if document == nil {
		return nil, apperror.NotFound("document not found")
	}
	return document, nil
}

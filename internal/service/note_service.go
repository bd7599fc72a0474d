package service

import (
	"context"
	"encoding/json"
	"time"

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

type INoteService interface {
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateNoteRequest) (*dto.CreateNoteResponse, error)
	List(ctx context.Context, userId uuid.UUID) (*dto.ListNotesResponse, error)
	Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowNoteResponse, error)
	Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateNoteRequest) (*dto.UpdateNoteResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.DeleteNoteResponse, error)
}

// noteService manages note documents. Notes skip the upload pipeline: they
// are born with completed status and go straight to the embed topic.
type noteService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	eventPublisher   *pkgNats.Publisher
	logger           logger.ILogger
}

func NewNoteService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	eventPublisher *pkgNats.Publisher,
	log logger.ILogger,
) INoteService {
	return &noteService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		logger:           log,
	}
}

func (n *noteService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateNoteRequest) (*dto.CreateNoteResponse, error) {
	uow := n.uowFactory.NewUnitOfWork(ctx)

	note := entity.Document{
		Id:               uuid.New(),
		UserId:           userId,
		Kind:             entity.DocumentKindNote,
		Title:            req.Title,
		Description:      req.Description,
		ProcessingStatus: entity.ProcessingStatusCompleted,
		CreatedAt:        time.Now(),
	}

	if err := uow.DocumentRepository().Create(ctx, &note); err != nil {
		return nil, err
	}

	if err := n.requestEmbedding(ctx, note.Id); err != nil {
		return nil, err
	}

	n.publishEvent(ctx, events.TypeNoteCreated, &note)

	return &dto.CreateNoteResponse{Id: note.Id}, nil
}

func (n *noteService) List(ctx context.Context, userId uuid.UUID) (*dto.ListNotesResponse, error) {
	uow := n.uowFactory.NewUnitOfWork(ctx)

	filters := []specification.Specification{
		specification.UserOwnedBy{UserID: userId},
		specification.ByKind{Kind: string(entity.DocumentKindNote)},
		specification.NotDeleted{},
	}

	total, err := uow.DocumentRepository().Count(ctx, filters...)
	if err != nil {
		return nil, err
	}

	notes, err := uow.DocumentRepository().FindAll(ctx,
		append(filters, specification.OrderBy{Field: "created_at", Desc: true})...,
	)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.NoteItem, len(notes))
	for i, note := range notes {
		items[i] = &dto.NoteItem{
			Id:          note.Id,
			Title:       note.Title,
			Description: note.Description,
			CreatedAt:   note.CreatedAt,
			UpdatedAt:   note.UpdatedAt,
		}
	}

	return &dto.ListNotesResponse{Notes: items, Total: total}, nil
}

func (n *noteService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowNoteResponse, error) {
	uow := n.uowFactory.NewUnitOfWork(ctx)

	note, err := n.findOwnedNote(ctx, uow, userId, id)
	if err != nil {
		return nil, err
	}

	return &dto.ShowNoteResponse{
		Id:          note.Id,
		Title:       note.Title,
		Description: note.Description,
		CreatedAt:   note.CreatedAt,
		UpdatedAt:   note.UpdatedAt,
	}, nil
}

func (n *noteService) Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateNoteRequest) (*dto.UpdateNoteResponse, error) {
	uow := n.uowFactory.NewUnitOfWork(ctx)

	note, err := n.findOwnedNote(ctx, uow, userId, req.Id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	note.Title = req.Title
	note.Description = req.Description
	note.UpdatedAt = &now

	if err := uow.DocumentRepository().Update(ctx, note); err != nil {
		return nil, err
	}

	// The old vectors describe stale content; queue a reindex.
	if err := n.requestEmbedding(ctx, note.Id); err != nil {
		return nil, err
	}

	n.publishEvent(ctx, events.TypeNoteUpdated, note)

	return &dto.UpdateNoteResponse{Id: note.Id}, nil
}

func (n *noteService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.DeleteNoteResponse, error) {
	uow := n.uowFactory.NewUnitOfWork(ctx)

	note, err := n.findOwnedNote(ctx, uow, userId, id)
	if err != nil {
		return nil, err
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.DocumentRepository().Delete(ctx, note.Id); err != nil {
		return nil, err
	}
	if err := uow.DocumentEmbeddingRepository().DeleteByDocumentId(ctx, note.Id); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	n.publishEvent(ctx, events.TypeDocumentDeleted, note)

	return &dto.DeleteNoteResponse{Id: note.Id}, nil
}

func (n *noteService) findOwnedNote(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, id uuid.UUID) (*entity.Document, error) {
	note, err := uow.DocumentRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: userId},
		specification.ByKind{Kind: string(entity.DocumentKindNote)},
	)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, apperror.NotFound("note not found")
	}
	return note, nil
}

func (n *noteService) requestEmbedding(ctx context.Context, documentId uuid.UUID) error {
	payload, err := json.Marshal(dto.PublishEmbedDocumentMessage{DocumentId: documentId})
	if err != nil {
		return err
	}
	return n.publisherService.Publish(ctx, payload)
}

func (n *noteService) publishEvent(ctx context.Context, eventType string, note *entity.Document) {
	if n.eventPublisher == nil {
		return
	}
	evt := events.New(eventType, map[string]interface{}{
		"title":       note.Title,
		"document_id": note.Id,
		"user_id":     note.UserId,
	})
	if err := n.eventPublisher.Publish(ctx, evt); err != nil {
		n.logger.Warn("note", "failed to publish event", map[string]interface{}{
			"event_type": eventType,
			"error":      err.Error(),
		})
	}
}

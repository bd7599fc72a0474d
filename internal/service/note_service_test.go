package service

import (
	"context"
	"encoding/json"
	"testing"

	"doc-intelligence-be/internal/dto"
	"doc-intelligence-be/internal/entity"
	"doc-intelligence-be/internal/pkg/apperror"
	"doc-intelligence-be/internal/pkg/logger"
	"doc-intelligence-be/internal/repository/unitofwork/uowtest"

	"github.com/google/uuid"
)

type stubPublisher struct {
	payloads [][]byte
	err      error
}

func (s *stubPublisher) Publish(ctx context.Context, payload []byte) error {
	if s.err != nil {
		return s.err
	}
	s.payloads = append(s.payloads, payload)
	return nil
}

func newTestNoteService(uow *uowtest.UnitOfWork, publisher *stubPublisher) INoteService {
	return NewNoteService(&uowtest.Factory{UOW: uow}, publisher, nil, logger.NewNopLogger())
}

func TestNoteCreateQueuesEmbedding(t *testing.T) {
	uow := uowtest.New()
	publisher := &stubPublisher{}
	svc := newTestNoteService(uow, publisher)

	res, err := svc.Create(context.Background(), uuid.New(), &dto.CreateNoteRequest{
		Title:       "Standup notes",
		Description: "Discussed the release",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if len(uow.Documents.Created) != 1 {
		t.Fatalf("created %d documents, want 1", len(uow.Documents.Created))
	}
	created := uow.Documents.Created[0]
	if created.Kind != entity.DocumentKindNote {
		t.Errorf("kind = %q, want note", created.Kind)
	}
	if created.ProcessingStatus != entity.ProcessingStatusCompleted {
		t.Errorf("status = %q, notes are born completed", created.ProcessingStatus)
	}

	if len(publisher.payloads) != 1 {
		t.Fatalf("published %d messages, want 1", len(publisher.payloads))
	}
	var msg dto.PublishEmbedDocumentMessage
	if err := json.Unmarshal(publisher.payloads[0], &msg); err != nil {
		t.Fatalf("bad message payload: %v", err)
	}
	if msg.DocumentId != res.Id {
		t.Errorf("message document id = %s, want %s", msg.DocumentId, res.Id)
	}
}

func TestNoteUpdateRequeuesEmbedding(t *testing.T) {
	userId := uuid.New()
	note := &entity.Document{
		Id:     uuid.New(),
		UserId: userId,
		Kind:   entity.DocumentKindNote,
		Title:  "Old title",
	}

	uow := uowtest.New()
	uow.Documents.Docs = []*entity.Document{note}
	publisher := &stubPublisher{}
	svc := newTestNoteService(uow, publisher)

	_, err := svc.Update(context.Background(), userId, &dto.UpdateNoteRequest{
		Id:          note.Id,
		Title:       "New title",
		Description: "New body",
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if len(uow.Documents.Updated) != 1 {
		t.Fatalf("updated %d documents, want 1", len(uow.Documents.Updated))
	}
	if uow.Documents.Updated[0].Title != "New title" {
		t.Errorf("title = %q, want New title", uow.Documents.Updated[0].Title)
	}
	if uow.Documents.Updated[0].UpdatedAt == nil {
		t.Error("UpdatedAt not set")
	}
	if len(publisher.payloads) != 1 {
		t.Errorf("published %d messages, want 1 reindex request", len(publisher.payloads))
	}
}

func TestNoteDeleteRemovesEmbeddings(t *testing.T) {
	userId := uuid.New()
	note := &entity.Document{Id: uuid.New(), UserId: userId, Kind: entity.DocumentKindNote}

	uow := uowtest.New()
	uow.Documents.Docs = []*entity.Document{note}
	svc := newTestNoteService(uow, &stubPublisher{})

	if _, err := svc.Delete(context.Background(), userId, note.Id); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if len(uow.Documents.Deleted) != 1 || uow.Documents.Deleted[0] != note.Id {
		t.Errorf("deleted documents = %v, want [%s]", uow.Documents.Deleted, note.Id)
	}
	if len(uow.Embeddings.DeletedFor) != 1 || uow.Embeddings.DeletedFor[0] != note.Id {
		t.Errorf("embeddings deleted for %v, want [%s]", uow.Embeddings.DeletedFor, note.Id)
	}
	if uow.Commits != 1 {
		t.Errorf("commits = %d, want 1", uow.Commits)
	}
}

func TestNoteShowNotFound(t *testing.T) {
	svc := newTestNoteService(uowtest.New(), &stubPublisher{})

	_, err := svc.Show(context.Background(), uuid.New(), uuid.New())
	if !apperror.IsKind(err, apperror.KindNotFound) {
		t.Fatalf("Show() error = %v, want not found", err)
	}
}

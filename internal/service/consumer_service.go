package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"doc-intelligence-be/internal/dto"
	"doc-intelligence-be/internal/entity"
	"doc-intelligence-be/internal/pkg/logger"
	"doc-intelligence-be/internal/repository/specification"
	"doc-intelligence-be/internal/repository/unitofwork"
	"doc-intelligence-be/pkg/embedding"
	"doc-intelligence-be/pkg/events"
	pkgNats "doc-intelligence-be/pkg/nats"
	"doc-intelligence-be/pkg/textsplit"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
)

const indexWorkerCount = 4

type IConsumerService interface {
	Consume(ctx context.Context) error
	Close()
}

// consumerService drains the embed topic and maintains the vector index.
// Messages are processed on a bounded worker pool so a burst of uploads
// cannot spawn an unbounded number of embedding calls.
type consumerService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
	eventPublisher    *pkgNats.Publisher
	pool              *ants.Pool
	logger            logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	eventPublisher *pkgNats.Publisher,
	log logger.ILogger,
) IConsumerService {
	pool, _ := ants.NewPool(indexWorkerCount)
	return &consumerService{
		pubSub:            pubSub,
		topicName:         topicName,
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		eventPublisher:    eventPublisher,
		pool:              pool,
		logger:            log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			m := msg
			if submitErr := cs.pool.Submit(func() {
				cs.processMessage(ctx, m)
			}); submitErr != nil {
				cs.logger.Error("consumer", "failed to submit message to worker pool", map[string]interface{}{
					"error": submitErr.Error(),
				})
				m.Nack()
			}
		}
	}()

	return nil
}

func (cs *consumerService) Close() {
	cs.pool.Release()
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishEmbedDocumentMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("consumer", "failed to unmarshal message", map[string]interface{}{
			"error": err.Error(),
		})
		// Malformed messages are not retriable.
		msg.Ack()
		return
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	document, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: payload.DocumentId})
	if err != nil {
		cs.logger.Error("consumer", "failed to load document", map[string]interface{}{
			"document_id": payload.DocumentId,
			"error":       err.Error(),
		})
		msg.Nack()
		return
	}
	if document == nil {
		// Deleted before indexing caught up.
		msg.Ack()
		return
	}

	// Uploads still in OCR or transcription have no text to index yet;
	// a fresh message arrives when processing completes.
	if document.Kind != entity.DocumentKindNote && document.ProcessingStatus != entity.ProcessingStatusCompleted {
		cs.logger.Info("consumer", "skipping document pending processing", map[string]interface{}{
			"document_id": document.Id,
			"status":      string(document.ProcessingStatus),
		})
		msg.Ack()
		return
	}

	if err := cs.reindexDocument(ctx, uow, document); err != nil {
		cs.logger.Error("consumer", "failed to index document", map[string]interface{}{
			"document_id": document.Id,
			"error":       err.Error(),
		})
		cs.publishEvent(ctx, events.TypeDocumentIndexFail, document)
		msg.Nack()
		return
	}

	cs.publishEvent(ctx, events.TypeDocumentIndexed, document)
	msg.Ack()
}

func (cs *consumerService) reindexDocument(ctx context.Context, uow unitofwork.UnitOfWork, document *entity.Document) error {
	content := indexableContent(document)
	chunks := textsplit.Split(content, textsplit.DefaultChunkSize, textsplit.DefaultOverlap)

	newEmbeddings := make([]*entity.DocumentEmbedding, 0, len(chunks))
	for i, chunk := range chunks {
		vector, err := cs.embeddingProvider.Generate(ctx, chunk)
		if err != nil {
			return fmt.Errorf("embed chunk %d: %w", i, err)
		}
		newEmbeddings = append(newEmbeddings, &entity.DocumentEmbedding{
			Id:             uuid.New(),
			Document:       chunk,
			EmbeddingValue: vector,
			DocumentId:     document.Id,
			ChunkIndex:     i,
			CreatedAt:      time.Now(),
		})
	}

	// Replace the old index atomically so searches never see a half
	// reindexed document.
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.DocumentEmbeddingRepository().DeleteByDocumentId(ctx, document.Id); err != nil {
		return err
	}
	if len(newEmbeddings) > 0 {
		if err := uow.DocumentEmbeddingRepository().CreateBulk(ctx, newEmbeddings); err != nil {
			return err
		}
	}

	return uow.Commit()
}

func (cs *consumerService) publishEvent(ctx context.Context, eventType string, document *entity.Document) {
	if cs.eventPublisher == nil {
		return
	}
	evt := events.New(eventType, map[string]interface{}{
		"document_id": document.Id,
		"user_id":     document.UserId,
		"title":       document.DisplayTitle(),
		"kind":        string(document.Kind),
	})
	// Notifications are auxiliary; indexing must not fail on bus errors.
	if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
		cs.logger.Warn("consumer", "failed to publish event", map[string]interface{}{
			"event_type": eventType,
			"error":      err.Error(),
		})
	}
}

// indexableContent assembles the text a document contributes to the vector
// index, prefixed with its title so queries about names still match.
func indexableContent(document *entity.Document) string {
	body := document.ExtractedText
	if document.Kind == entity.DocumentKindNote {
		body = document.Description
	}

	updatedAt := "-"
	if document.UpdatedAt != nil {
		updatedAt = document.UpdatedAt.Format(time.RFC3339)
	}

	return fmt.Sprintf(`Title: %s
Kind: %s

%s

Created At: %s
Updated At: %s`,
		document.DisplayTitle(),
		document.Kind,
		body,
		document.CreatedAt.Format(time.RFC3339),
		updatedAt,
	)
}

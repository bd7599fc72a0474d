package dto

import "github.com/google/uuid"

// PublishEmbedDocumentMessage asks the consumer to (re)index a document's
// embeddings.
type PublishEmbedDocumentMessage struct {
	DocumentId uuid.UUID `json:"document_id"`
}

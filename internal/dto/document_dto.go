package dto

import (
	"time"

	"github.com/google/uuid"
)

type ListDocumentsRequest struct {
	Query  string `query:"q"`
	Kind   string `query:"kind" validate:"omitempty,oneof=pdf note audio"`
	Limit  int    `query:"limit"`
	Offset int    `query:"offset"`
}

type DocumentItem struct {
	Id               uuid.UUID  `json:"id"`
	Title            string     `json:"title"`
	Kind             string     `json:"kind"`
	Filename         string     `json:"filename,omitempty"`
	ProcessingStatus string     `json:"processing_status"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        *time.Time `json:"updated_at"`
}

type ListDocumentsResponse struct {
	Documents []DocumentItem `json:"documents"`
	Total     int64          `json:"total"`
}

type ShowDocumentResponse struct {
	Id               uuid.UUID              `json:"id"`
	Title            string                 `json:"title"`
	Kind             string                 `json:"kind"`
	Filename         string                 `json:"filename,omitempty"`
	Description      string                 `json:"description,omitempty"`
	ExtractedText    string                 `json:"extracted_text,omitempty"`
	ProcessingStatus string                 `json:"processing_status"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        *time.Time             `json:"updated_at"`
}

type DeleteDocumentResponse struct {
	Id uuid.UUID `json:"id"`
}

package entity

import (
	"time"

	"github.com/google/uuid"
)

// DocumentKind tags the searchable unit variant. The kind decides which
// fields carry the searchable text.
type DocumentKind string

const (
	DocumentKindPDF   DocumentKind = "pdf"
	DocumentKindNote  DocumentKind = "note"
	DocumentKindAudio DocumentKind = "audio"
)

// ProcessingStatus tracks the upstream OCR/transcription stage for
// pdf and audio documents. Notes are always "completed".
type ProcessingStatus string

const (
	ProcessingStatusPending    ProcessingStatus = "pending"
	ProcessingStatusProcessing ProcessingStatus = "processing"
	ProcessingStatusCompleted  ProcessingStatus = "completed"
	ProcessingStatusFailed     ProcessingStatus = "failed"
)

type Document struct {
	Id               uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserId           uuid.UUID `gorm:"type:uuid;index"`
	Kind             DocumentKind
	Title            string
	Filename         string
	Description      string // notes only
	ExtractedText    string // OCR text (pdf) or transcript (audio)
	ProcessingStatus ProcessingStatus
	Metadata         map[string]interface{}
	CreatedAt        time.Time
	UpdatedAt        *time.Time
	DeletedAt        *time.Time
	IsDeleted        bool
}

// DisplayTitle prefers the title, falling back to the filename for
// uploads created without one.
func (d *Document) DisplayTitle() string {
	if d.Title != "" {
		return d.Title
	}
	if d.Filename != "" {
		return d.Filename
	}
	return "Untitled"
}

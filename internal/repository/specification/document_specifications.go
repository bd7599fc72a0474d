package specification

import (
	"gorm.io/gorm"

	"github.com/google/uuid"
)

type UserOwnedBy struct {
	UserID uuid.UUID
}

func (s UserOwnedBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserID)
}

type ByKind struct {
	Kind string
}

func (s ByKind) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("kind = ?", s.Kind)
}

// ByDocumentID filters embedding rows by their parent document
type ByDocumentID struct {
	DocumentID uuid.UUID
}

func (s ByDocumentID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("document_id = ?", s.DocumentID)
}

// DocumentSearchQuery filters documents by title or extracted text (ILIKE)
type DocumentSearchQuery struct {
	Query string
}

func (s DocumentSearchQuery) Apply(db *gorm.DB) *gorm.DB {
	pattern := "%" + s.Query + "%"
	return db.Where("title ILIKE ? OR description ILIKE ? OR extracted_text ILIKE ?", pattern, pattern, pattern)
}

package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateNoteRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
}

type CreateNoteResponse struct {
	Id uuid.UUID `json:"id"`
}

type ShowNoteResponse struct {
	Id          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
}

type NoteItem struct {
	Id          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
}

type ListNotesResponse struct {
	Notes []*NoteItem `json:"notes"`
	Total int64       `json:"total"`
}

type UpdateNoteRequest struct {
	Id          uuid.UUID
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
}

type UpdateNoteResponse struct {
	Id uuid.UUID `json:"id"`
}

type DeleteNoteResponse struct {
	Id uuid.UUID `json:"id"`
}

package dto

import (
	"time"

	"github.com/google/uuid"
)

// UploadResultDTO reports the outcome of ingesting one uploaded file.
// Files are processed sequentially; a failure in one does not abort the
// rest.
type UploadResultDTO struct {
	Filename      string   `json:"filename"`
	Status        string   `json:"status"` // "success" | "error"
	ChunksCreated int      `json:"chunks_created"`
	Warnings      []string `json:"warnings,omitempty"` // soft defects, e.g. broken related links
	Error         string   `json:"error,omitempty"`
}

type UploadDocumentsResponse struct {
	Results []UploadResultDTO `json:"results"`
}

type DocumentListItemDTO struct {
	Id        uuid.UUID  `json:"id"`
	Filename  string     `json:"filename"`
	Title     string     `json:"title"`
	Category  string     `json:"category"`
	Severity  string     `json:"severity"`
	Updated   *time.Time `json:"updated,omitempty"`
	HasImages bool       `json:"has_images"`
	Chunks    int64      `json:"chunks"`
	CreatedAt time.Time  `json:"created_at"`
}

type ListDocumentsResponse struct {
	Documents []DocumentListItemDTO `json:"documents"`
	Total     int                   `json:"total"`
}

// PublishEmbedDocumentMessage asks the embed worker to generate vectors for
// a document's chunks.
type PublishEmbedDocumentMessage struct {
	DocumentId uuid.UUID `json:"document_id"`
}

package entity

import (
	"time"

	"github.com/google/uuid"
)

// DocumentChunk is one embedded slice of a knowledge base document. The
// embedding is filled asynchronously after ingestion, so it may be empty
// for freshly uploaded chunks.
type DocumentChunk struct {
	Id         uuid.UUID
	DocumentId uuid.UUID
	ChunkIndex int
	Content    string
	Embedding  []float32
	Embedded   bool
	CreatedAt  time.Time
	UpdatedAt  *time.Time
	DeletedAt  *time.Time
	IsDeleted  bool
}

package entity

import (
	"time"

	"github.com/google/uuid"
)

// KBDocument is an ingested knowledge base article.
type KBDocument struct {
	Id        uuid.UUID
	Filename  string
	Title     string
	Category  string
	Severity  string
	Updated   *time.Time
	HasImages bool
	ImageURLs []string
	SourceURL string
	Content   string
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}

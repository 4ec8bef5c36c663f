package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByFilename struct {
	Filename string
}

func (s ByFilename) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("filename = ?", s.Filename)
}

type ByCategory struct {
	Category string
}

func (s ByCategory) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("category = ?", s.Category)
}

type ByDocumentID struct {
	DocumentID uuid.UUID
}

func (s ByDocumentID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("document_id = ?", s.DocumentID)
}

// PendingEmbedding selects chunks the embed worker has not processed yet.
type PendingEmbedding struct{}

func (s PendingEmbedding) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("embedded = false")
}

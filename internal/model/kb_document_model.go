package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type KBDocument struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Filename  string         `gorm:"type:text;not null;uniqueIndex"`
	Title     string         `gorm:"type:text;not null"`
	Category  string         `gorm:"type:text;not null;index"`
	Severity  string         `gorm:"type:text;not null"`
	Updated   *time.Time     // article revision date from front matter
	HasImages bool           `gorm:"not null;default:false"`
	ImageURLs datatypes.JSON `gorm:"type:jsonb"`
	SourceURL string         `gorm:"type:text"`
	Content   string         `gorm:"type:text;not null"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (KBDocument) TableName() string {
	return "kb_documents"
}

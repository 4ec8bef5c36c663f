package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ChatMessage struct {
	Id            uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ChatSessionId string         `gorm:"type:text;not null;index"`
	Role          string         `gorm:"type:text;not null"` // "user" | "assistant"
	Content       string         `gorm:"type:text;not null"`
	Steps         datatypes.JSON `gorm:"type:jsonb"` // agent think/act/observe trail
	Sources       datatypes.JSON `gorm:"type:jsonb"`
	HasImage      bool           `gorm:"not null;default:false"`
	CreatedAt     time.Time      `gorm:"autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime"`
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}

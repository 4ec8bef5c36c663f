package model

import (
	"time"

	"gorm.io/gorm"
)

type ChatSession struct {
	Id        string         `gorm:"type:text;primaryKey"` // client-generated session id
	Title     string         `gorm:"type:text;not null"`
	Issue     string         `gorm:"type:text;not null;default:'unknown'"`
	Escalated bool           `gorm:"not null;default:false"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (ChatSession) TableName() string {
	return "chat_sessions"
}

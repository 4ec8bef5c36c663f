package dto

import (
	"time"

	"github.com/google/uuid"
)

type SessionMessageDTO struct {
	Id        uuid.UUID      `json:"id"`
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	Steps     []AgentStepDTO `json:"steps,omitempty"`
	Sources   []SourceDTO    `json:"sources,omitempty"`
	HasImage  bool           `json:"has_image"`
	CreatedAt time.Time      `json:"created_at"`
}

type GetSessionResponse struct {
	SessionId string              `json:"session_id"`
	Title     string              `json:"title"`
	Issue     string              `json:"issue"`
	Escalated bool                `json:"escalated"`
	History   []SessionMessageDTO `json:"history"`
	CreatedAt time.Time           `json:"created_at"`
}

type DeleteSessionResponse struct {
	SessionId string `json:"session_id"`
}

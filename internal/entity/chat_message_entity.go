package entity

import (
	"time"

	"github.com/google/uuid"
)

// AgentStep is one think/act/observe annotation attached to an assistant
// message, shown to the user as the agent's visible reasoning trail.
type AgentStep struct {
	Phase string `json:"phase"` // "think", "act", "observe"
	Text  string `json:"text"`
}

// MessageSource is a reference backing an assistant answer.
type MessageSource struct {
	Title string  `json:"title"`
	URL   string  `json:"url,omitempty"`
	Score float64 `json:"score"`
}

type ChatMessage struct {
	Id            uuid.UUID
	ChatSessionId string
	Role          string
	Content       string
	Steps         []AgentStep
	Sources       []MessageSource
	HasImage      bool
	CreatedAt     time.Time
	UpdatedAt     *time.Time
	DeletedAt     *time.Time
	IsDeleted     bool
}

package dto

import (
	"time"

	"github.com/google/uuid"
)

type SendChatRequest struct {
	// SessionId is client-generated. Empty means a new conversation; the
	// server mints an identifier and echoes it back.
	SessionId string `json:"session_id" validate:"omitempty,min=8,max=128"`
	Message   string `json:"message" validate:"required,max=4000"`
	// ImageBase64 is an optional screenshot or photo attached to the message.
	ImageBase64 string `json:"image_base64,omitempty"`
	// VoiceMode asks for a spoken rendition of the answer alongside the text.
	VoiceMode bool `json:"voice_mode,omitempty"`
}

// AgentStepDTO is one entry of the agent's visible reasoning trail.
type AgentStepDTO struct {
	Phase string `json:"phase"` // "think" | "act" | "observe"
	Text  string `json:"text"`
}

type SourceDTO struct {
	Title string  `json:"title"`
	URL   string  `json:"url,omitempty"`
	Score float64 `json:"score"`
}

type SendChatResponse struct {
	SessionId string         `json:"session_id"`
	MessageId uuid.UUID      `json:"message_id"`
	Text      string         `json:"text"`
	Steps     []AgentStepDTO `json:"steps"`
	Sources   []SourceDTO    `json:"sources,omitempty"`
	Escalate  bool           `json:"escalate"`
	// AudioBase64 carries the mp3 narration when voice_mode was requested.
	AudioBase64 string    `json:"audio_base64,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

package dto

import "time"

// --- System Log DTOs ---

// LogListResponse uses string for Id because log IDs are MD5 hashes, not UUIDs.
type LogListResponse struct {
	Id        string    `json:"id"`
	Level     string    `json:"level"`
	Module    string    `json:"module"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// --- Reindex DTOs ---

type ReindexResponse struct {
	Documents int `json:"documents"`
	Chunks    int `json:"chunks"`
}

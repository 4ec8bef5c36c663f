package dto

type TranscribeResponse struct {
	Text            string  `json:"text"`
	Confidence      float64 `json:"confidence"`
	Language        string  `json:"language"`
	DurationSeconds float64 `json:"duration_seconds"`
}

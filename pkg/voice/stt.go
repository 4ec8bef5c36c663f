package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// Transcription is the result of a speech-to-text call.
type Transcription struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Language   string  `json:"language"`
	Duration   float64 `json:"duration_seconds"`
}

// STTClient wraps the OpenAI audio transcription API (whisper-1). It accepts
// browser MediaRecorder blobs (webm/wav) as-is.
type STTClient struct {
	APIKey  string
	Model   string
	BaseURL string
	Client  *http.Client
}

func NewSTTClient(apiKey, model string) *STTClient {
	if model == "" {
		model = "whisper-1"
	}
	return &STTClient{
		APIKey:  apiKey,
		Model:   model,
		BaseURL: "https://api.openai.com/v1",
		Client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type whisperResponse struct {
	Text     string  `json:"text"`
	Language string  `json:"language"`
	Duration float64 `json:"duration"`
}

// Transcribe sends an audio blob for transcription. format is the container
// hint from the browser ("webm" or "wav").
func (c *STTClient) Transcribe(ctx context.Context, audio []byte, format string) (*Transcription, error) {
	if len(audio) == 0 {
		return &Transcription{Language: "en"}, nil
	}
	if format == "" {
		format = "webm"
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", "audio."+format)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(audio); err != nil {
		return nil, err
	}
	if err := writer.WriteField("model", c.Model); err != nil {
		return nil, err
	}
	if err := writer.WriteField("response_format", "verbose_json"); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/audio/transcriptions", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transcription request failed: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("transcription error: status %d, body: %s", resp.StatusCode, string(respBytes))
	}

	var out whisperResponse
	if err := json.Unmarshal(respBytes, &out); err != nil {
		return nil, err
	}

	confidence := 0.0
	if out.Text != "" {
		confidence = 0.95
	}
	language := out.Language
	if language == "" {
		language = "en"
	}

	return &Transcription{
		Text:       out.Text,
		Confidence: confidence,
		Language:   language,
		Duration:   out.Duration,
	}, nil
}

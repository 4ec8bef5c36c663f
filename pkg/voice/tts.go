package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// TTSClient wraps the OpenAI speech synthesis API.
type TTSClient struct {
	APIKey  string
	Model   string
	Voice   string
	Speed   float64
	BaseURL string
	Client  *http.Client
}

func NewTTSClient(apiKey, model, voice string, speed float64) *TTSClient {
	if model == "" {
		model = "tts-1-hd"
	}
	if voice == "" {
		voice = "nova"
	}
	if speed <= 0 {
		speed = 0.95
	}
	return &TTSClient{
		APIKey:  apiKey,
		Model:   model,
		Voice:   voice,
		Speed:   speed,
		BaseURL: "https://api.openai.com/v1",
		Client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type ttsRequest struct {
	Model string  `json:"model"`
	Input string  `json:"input"`
	Voice string  `json:"voice"`
	Speed float64 `json:"speed"`
}

// Synthesize renders text to mp3 audio bytes. The text should already have
// passed through AdaptForSpeech so the narration does not read out raw URLs
// or screen coordinates.
func (c *TTSClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if text == "" {
		return nil, fmt.Errorf("nothing to synthesize")
	}

	payload, err := json.Marshal(ttsRequest{
		Model: c.Model,
		Input: text,
		Voice: c.Voice,
		Speed: c.Speed,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/audio/speech", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("speech request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("speech error: status %d, body: %s", resp.StatusCode, string(respBytes))
	}

	return io.ReadAll(resp.Body)
}

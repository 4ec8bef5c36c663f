package client

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

// API speaks the backend's HTTP contract. All methods return the decoded
// payload or an error; non-2xx responses are errors carrying the body text.
type API struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewAPI(baseURL string) *API {
	return &API{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 120 * time.Second},
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type AgentStep struct {
	Phase string `json:"phase"` // "think" | "act" | "observe"
	Text  string `json:"text"`
}

type Source struct {
	Title string  `json:"title"`
	URL   string  `json:"url,omitempty"`
	Score float64 `json:"score"`
}

type ChatResponse struct {
	SessionId   string      `json:"session_id"`
	Text        string      `json:"text"`
	Steps       []AgentStep `json:"steps"`
	Sources     []Source    `json:"sources,omitempty"`
	Escalate    bool        `json:"escalate"`
	AudioBase64 string      `json:"audio_base64,omitempty"`
}

type SessionMessage struct {
	Role    string      `json:"role"`
	Content string      `json:"content"`
	Steps   []AgentStep `json:"steps,omitempty"`
	Sources []Source    `json:"sources,omitempty"`
}

type SessionHistory struct {
	SessionId string           `json:"session_id"`
	History   []SessionMessage `json:"history"`
}

type Transcription struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

type UploadResult struct {
	Filename      string   `json:"filename"`
	Status        string   `json:"status"`
	ChunksCreated int      `json:"chunks_created"`
	Warnings      []string `json:"warnings"`
	Error         string   `json:"error"`
}

type DocumentInfo struct {
	Filename string `json:"filename"`
	Title    string `json:"title"`
	Chunks   int64  `json:"chunks"`
}

func (a *API) Chat(ctx context.Context, sessionID, message, imageBase64 string, voiceMode bool) (*ChatResponse, error) {
	body, err := json.Marshal(map[string]interface{}{
		"session_id":   sessionID,
		"message":      message,
		"image_base64": imageBase64,
		"voice_mode":   voiceMode,
	})
	if err != nil {
		return nil, err
	}

	var out ChatResponse
	if err := a.doJSON(ctx, http.MethodPost, "/api/chat", bytes.NewReader(body), "application/json", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *API) Transcribe(ctx context.Context, audio []byte, filename string) (*Transcription, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("audio", filename)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(audio); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	var out Transcription
	if err := a.doJSON(ctx, http.MethodPost, "/api/transcribe", &buf, writer.FormDataContentType(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *API) UploadDocument(ctx context.Context, filename string, content []byte) (*UploadResult, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("files", filename)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(content); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	var out struct {
		Results []UploadResult `json:"results"`
	}
	if err := a.doJSON(ctx, http.MethodPost, "/api/upload-documents", &buf, writer.FormDataContentType(), &out); err != nil {
		return nil, err
	}
	if len(out.Results) == 0 {
		return nil, fmt.Errorf("empty upload result")
	}
	return &out.Results[0], nil
}

func (a *API) GetSession(ctx context.Context, sessionID string) (*SessionHistory, error) {
	var out SessionHistory
	if err := a.doJSON(ctx, http.MethodGet, "/api/session/"+sessionID, nil, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *API) ListDocuments(ctx context.Context) ([]DocumentInfo, error) {
	var out struct {
		Documents []DocumentInfo `json:"documents"`
	}
	if err := a.doJSON(ctx, http.MethodGet, "/api/documents", nil, "", &out); err != nil {
		return nil, err
	}
	return out.Documents, nil
}

func (a *API) doJSON(ctx context.Context, method, path string, body io.Reader, contentType string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, a.BaseURL+path, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := a.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, string(respBytes))
	}

	var env envelope
	if err := json.Unmarshal(respBytes, &env); err != nil {
		return err
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}

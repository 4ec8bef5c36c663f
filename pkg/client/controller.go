package client

import (
	"context"
	"encoding/base64"
	"errors"
	"path/filepath"
	"strings"
	"sync"

	"troubleshoot-agent-be/internal/pkg/logger"
)

// State of the session controller. Transitions that make no sense in the
// current state are no-ops rather than errors.
type State int

const (
	StateInit State = iota
	StateIdle
	StateRecording
	StateTranscribing
	StateSending
	StateResponded
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "INIT"
	case StateIdle:
		return "IDLE"
	case StateRecording:
		return "RECORDING"
	case StateTranscribing:
		return "TRANSCRIBING"
	case StateSending:
		return "SENDING"
	case StateResponded:
		return "RESPONDED"
	default:
		return "UNKNOWN"
	}
}

const (
	openingMessage = "Hi, I'm ARIA, your iPhone troubleshooting assistant. Tell me what's going on with your iPhone and I'll walk you through fixing it."
	apologyMessage = "Sorry, I couldn't reach the assistant right now. Please try again in a moment."
)

// ErrBusy is returned by Send while a previous send is still in flight.
var ErrBusy = errors.New("a send is already in progress")

// Renderer receives everything the controller wants shown to the user.
type Renderer interface {
	RenderMessage(role, content string)
	RenderSteps(steps []AgentStep)
	RenderSources(sources []Source)
	RenderDocuments(documents []DocumentInfo)
	PlayAudio(mp3 []byte)
	SetStatus(status string)
}

// Controller drives one conversation session against the backend.
type Controller struct {
	api      *API
	recorder Recorder
	renderer Renderer
	logger   logger.ILogger

	mu              sync.Mutex
	state           State
	sessionID       string
	rememberedImage string
}

func NewController(api *API, store SessionStore, recorder Recorder, renderer Renderer, log logger.ILogger) *Controller {
	return &Controller{
		api:       api,
		recorder:  recorder,
		renderer:  renderer,
		logger:    log,
		state:     StateInit,
		sessionID: ResolveSessionID(store),
	}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) SessionID() string {
	return c.sessionID
}

// Init replays server-side history into the transcript, or renders the
// opening message when the conversation is new. An unreachable backend is
// non-fatal: the user sees a notice and can still compose.
func (c *Controller) Init(ctx context.Context) {
	c.mu.Lock()
	if c.state != StateInit {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	history, err := c.api.GetSession(ctx, c.sessionID)
	switch {
	case err != nil:
		c.logger.Warn("client", "failed to fetch session history", map[string]interface{}{"error": err.Error()})
		c.renderer.SetStatus("could not reach server")
	case len(history.History) == 0:
		c.renderer.RenderMessage("assistant", openingMessage)
	default:
		for _, msg := range history.History {
			c.renderer.RenderMessage(msg.Role, msg.Content)
		}
	}

	if docs, err := c.api.ListDocuments(ctx); err == nil {
		c.renderer.RenderDocuments(docs)
	} else {
		c.logger.Warn("client", "failed to fetch document list", map[string]interface{}{"error": err.Error()})
	}

	c.setState(StateIdle)
}

// StartRecording acquires the microphone. Permission failures surface as a
// status line and leave the controller idle.
func (c *Controller) StartRecording() {
	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return
	}
	c.state = StateRecording
	c.mu.Unlock()

	if err := c.recorder.Start(); err != nil {
		c.logger.Warn("client", "recorder start failed", map[string]interface{}{"error": err.Error()})
		c.renderer.SetStatus("microphone unavailable: " + err.Error())
		c.setState(StateIdle)
	}
}

// StopRecording releases the microphone, transcribes the buffered audio and,
// when the transcript is non-empty, submits it as a chat turn.
func (c *Controller) StopRecording(ctx context.Context) {
	c.mu.Lock()
	if c.state != StateRecording {
		c.mu.Unlock()
		return
	}
	c.state = StateTranscribing
	c.mu.Unlock()

	audio, err := c.recorder.Stop()
	if err != nil {
		c.logger.Warn("client", "recorder stop failed", map[string]interface{}{"error": err.Error()})
		c.renderer.SetStatus("recording failed")
		c.setState(StateIdle)
		return
	}

	transcription, err := c.api.Transcribe(ctx, audio, "recording.webm")
	if err != nil {
		c.logger.Warn("client", "transcription failed", map[string]interface{}{"error": err.Error()})
		c.renderer.SetStatus("could not transcribe audio")
		c.setState(StateIdle)
		return
	}
	if strings.TrimSpace(transcription.Text) == "" {
		c.renderer.SetStatus("didn't catch that")
		c.setState(StateIdle)
		return
	}

	c.setState(StateIdle)
	if err := c.Send(ctx, transcription.Text); err != nil {
		c.logger.Warn("client", "auto-submit after transcription rejected", map[string]interface{}{"error": err.Error()})
	}
}

// AttachImage remembers a base64-encoded image for the next send. A new
// attachment replaces any previously remembered one.
func (c *Controller) AttachImage(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rememberedImage = base64.StdEncoding.EncodeToString(data)
}

// Send submits one user turn. A remembered image rides along when the turn
// carries none of its own, and is cleared after one successful send. Only one
// send may be outstanding; a second attempt returns ErrBusy. Network failure
// renders a generic apology and returns the controller to idle without retry.
func (c *Controller) Send(ctx context.Context, message string) error {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil
	}

	c.mu.Lock()
	if c.state == StateSending {
		c.mu.Unlock()
		return ErrBusy
	}
	if c.state != StateIdle && c.state != StateResponded {
		c.mu.Unlock()
		return nil
	}
	c.state = StateSending
	image := c.rememberedImage
	c.mu.Unlock()

	c.renderer.RenderMessage("user", message)
	c.renderer.SetStatus("typing")

	resp, err := c.api.Chat(ctx, c.sessionID, message, image, false)
	if err != nil {
		c.logger.Warn("client", "chat request failed", map[string]interface{}{"error": err.Error()})
		c.renderer.RenderMessage("assistant", apologyMessage)
		c.renderer.SetStatus("")
		c.setState(StateIdle)
		return nil
	}

	c.mu.Lock()
	c.rememberedImage = ""
	c.state = StateResponded
	c.mu.Unlock()

	c.renderer.SetStatus("")
	c.renderer.RenderMessage("assistant", resp.Text)
	if len(resp.Steps) > 0 {
		c.renderer.RenderSteps(resp.Steps)
	}
	if len(resp.Sources) > 0 {
		c.renderer.RenderSources(resp.Sources)
	}
	if resp.AudioBase64 != "" {
		if mp3, err := base64.StdEncoding.DecodeString(resp.AudioBase64); err == nil {
			c.renderer.PlayAudio(mp3)
		}
	}

	c.setState(StateIdle)
	return nil
}

// UploadDocuments sends markdown files one at a time, in order. A rejected
// or failed file is logged and skipped; the rest still go through.
func (c *Controller) UploadDocuments(ctx context.Context, files map[string][]byte, order []string) {
	for _, filename := range order {
		content, ok := files[filename]
		if !ok {
			continue
		}
		ext := strings.ToLower(filepath.Ext(filename))
		if ext != ".md" && ext != ".txt" {
			c.logger.Warn("client", "skipping unsupported upload", map[string]interface{}{"filename": filename})
			c.renderer.SetStatus("skipped " + filename + ": only .md and .txt files are accepted")
			continue
		}

		result, err := c.api.UploadDocument(ctx, filename, content)
		if err != nil {
			c.logger.Warn("client", "document upload failed", map[string]interface{}{"filename": filename, "error": err.Error()})
			c.renderer.SetStatus("upload failed: " + filename)
			continue
		}
		if result.Status != "success" {
			c.renderer.SetStatus("rejected " + filename + ": " + result.Error)
			continue
		}
		c.renderer.RenderDocuments([]DocumentInfo{{Filename: result.Filename, Chunks: int64(result.ChunksCreated)}})
	}
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// SourceLabel renders a citation for display. Sources with neither a title
// nor a URL fall back to a placeholder.
func SourceLabel(s Source) string {
	switch {
	case s.Title != "":
		return s.Title
	case s.URL != "":
		return s.URL
	default:
		return "unknown source"
	}
}

package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"troubleshoot-agent-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRenderer struct {
	mu       sync.Mutex
	messages []string
	roles    []string
	statuses []string
	sources  []Source
	steps    []AgentStep
	docs     []DocumentInfo
	audio    [][]byte
}

func (r *fakeRenderer) RenderMessage(role, content string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.roles = append(r.roles, role)
	r.messages = append(r.messages, content)
}

func (r *fakeRenderer) RenderSteps(steps []AgentStep) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps = append(r.steps, steps...)
}

func (r *fakeRenderer) RenderSources(sources []Source) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources = append(r.sources, sources...)
}

func (r *fakeRenderer) RenderDocuments(docs []DocumentInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs = append(r.docs, docs...)
}

func (r *fakeRenderer) PlayAudio(mp3 []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.audio = append(r.audio, mp3)
}

func (r *fakeRenderer) SetStatus(status string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, status)
}

func (r *fakeRenderer) lastMessage() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.messages) == 0 {
		return ""
	}
	return r.messages[len(r.messages)-1]
}

type fakeRecorder struct {
	startErr error
	audio    []byte
	started  bool
	stopped  bool
}

func (r *fakeRecorder) Start() error {
	if r.startErr != nil {
		return r.startErr
	}
	r.started = true
	return nil
}

func (r *fakeRecorder) Stop() ([]byte, error) {
	r.stopped = true
	return r.audio, nil
}

func testLogger(t *testing.T) logger.ILogger {
	return logger.NewZapLogger(filepath.Join(t.TempDir(), "test.log"), false)
}

func writeEnvelope(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"code":    200,
		"message": "ok",
		"data":    data,
	})
}

func newTestController(t *testing.T, handler http.Handler) (*Controller, *fakeRenderer, *fakeRecorder, *httptest.Server) {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	renderer := &fakeRenderer{}
	recorder := &fakeRecorder{audio: []byte("audio-bytes")}
	store := NewFileSessionStore(filepath.Join(t.TempDir(), "session_id"))
	ctrl := NewController(NewAPI(srv.URL), store, recorder, renderer, testLogger(t))
	return ctrl, renderer, recorder, srv
}

func TestInit_EmptyHistoryRendersOpeningMessageOnce(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/session/", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, SessionHistory{History: []SessionMessage{}})
	})
	mux.HandleFunc("GET /api/documents", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, map[string]interface{}{"documents": []DocumentInfo{{Filename: "battery_drain.md", Chunks: 4}}, "total": 1})
	})

	ctrl, renderer, _, _ := newTestController(t, mux)
	ctrl.Init(context.Background())

	require.Len(t, renderer.messages, 1)
	assert.Equal(t, "assistant", renderer.roles[0])
	assert.Equal(t, openingMessage, renderer.messages[0])
	require.Len(t, renderer.docs, 1)
	assert.Equal(t, "battery_drain.md", renderer.docs[0].Filename)
	assert.Equal(t, StateIdle, ctrl.State())
}

func TestInit_ExistingHistoryReplayedWithoutOpeningMessage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/session/", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, SessionHistory{History: []SessionMessage{
			{Role: "user", Content: "my battery drains fast"},
			{Role: "assistant", Content: "Let's check Battery Health first."},
		}})
	})
	mux.HandleFunc("GET /api/documents", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, map[string]interface{}{"documents": []DocumentInfo{}, "total": 0})
	})

	ctrl, renderer, _, _ := newTestController(t, mux)
	ctrl.Init(context.Background())

	require.Len(t, renderer.messages, 2)
	assert.Equal(t, []string{"user", "assistant"}, renderer.roles)
	assert.NotContains(t, renderer.messages, openingMessage)
	assert.Equal(t, StateIdle, ctrl.State())
}

func TestInit_UnreachableServerIsNonFatal(t *testing.T) {
	renderer := &fakeRenderer{}
	store := NewFileSessionStore(filepath.Join(t.TempDir(), "session_id"))
	ctrl := NewController(NewAPI("http://127.0.0.1:1"), store, &fakeRecorder{}, renderer, testLogger(t))

	ctrl.Init(context.Background())

	assert.Contains(t, renderer.statuses, "could not reach server")
	assert.Equal(t, StateIdle, ctrl.State())
}

func TestSend_SuccessRendersResponseAndClearsRememberedImage(t *testing.T) {
	var gotImages []string
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/chat", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]interface{}
		json.NewDecoder(r.Body).Decode(&req)
		image, _ := req["image_base64"].(string)
		gotImages = append(gotImages, image)
		writeEnvelope(w, ChatResponse{
			Text:    "Open Settings and tap Battery.",
			Steps:   []AgentStep{{Phase: "think", Text: "classifying issue"}},
			Sources: []Source{{Title: "battery_drain.md", Score: 0.91}},
		})
	})

	ctrl, renderer, _, _ := newTestController(t, mux)
	ctrl.setState(StateIdle)
	ctrl.AttachImage([]byte("screenshot"))

	require.NoError(t, ctrl.Send(context.Background(), "battery drains overnight"))
	require.NoError(t, ctrl.Send(context.Background(), "still draining"))

	require.Len(t, gotImages, 2)
	assert.NotEmpty(t, gotImages[0], "first send should carry the attached image")
	assert.Empty(t, gotImages[1], "remembered image must be cleared after one successful send")

	assert.Equal(t, StateIdle, ctrl.State())
	assert.Contains(t, renderer.messages, "Open Settings and tap Battery.")
	require.Len(t, renderer.sources, 2)
	assert.Equal(t, "battery_drain.md", renderer.sources[0].Title)
}

func TestSend_NetworkFailureRendersApologyAndAllowsRetry(t *testing.T) {
	renderer := &fakeRenderer{}
	store := NewFileSessionStore(filepath.Join(t.TempDir(), "session_id"))
	ctrl := NewController(NewAPI("http://127.0.0.1:1"), store, &fakeRecorder{}, renderer, testLogger(t))
	ctrl.setState(StateIdle)

	require.NoError(t, ctrl.Send(context.Background(), "hello"))
	assert.Equal(t, apologyMessage, renderer.lastMessage())
	assert.Equal(t, StateIdle, ctrl.State())

	// A later send must still be possible without any reset.
	require.NoError(t, ctrl.Send(context.Background(), "hello again"))
	assert.Equal(t, apologyMessage, renderer.lastMessage())
}

func TestSend_SecondSendWhileOutstandingIsRejected(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/chat", func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-release
		writeEnvelope(w, ChatResponse{Text: "done"})
	})

	ctrl, _, _, _ := newTestController(t, mux)
	ctrl.setState(StateIdle)

	done := make(chan error, 1)
	go func() { done <- ctrl.Send(context.Background(), "first") }()

	<-entered
	err := ctrl.Send(context.Background(), "second")
	assert.ErrorIs(t, err, ErrBusy)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, StateIdle, ctrl.State())
}

func TestRecording_PermissionDeniedReturnsToIdle(t *testing.T) {
	ctrl, renderer, recorder, _ := newTestController(t, http.NewServeMux())
	recorder.startErr = errors.New("permission denied")
	ctrl.setState(StateIdle)

	ctrl.StartRecording()

	assert.Equal(t, StateIdle, ctrl.State())
	require.NotEmpty(t, renderer.statuses)
	assert.Contains(t, renderer.statuses[len(renderer.statuses)-1], "permission denied")
}

func TestRecording_StopWhileIdleIsNoOp(t *testing.T) {
	ctrl, _, recorder, _ := newTestController(t, http.NewServeMux())
	ctrl.setState(StateIdle)

	ctrl.StopRecording(context.Background())

	assert.False(t, recorder.stopped)
	assert.Equal(t, StateIdle, ctrl.State())
}

func TestRecording_TranscriptAutoSubmitted(t *testing.T) {
	var chatCalled bool
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/transcribe", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, Transcription{Text: "my wifi keeps dropping", Confidence: 0.95})
	})
	mux.HandleFunc("POST /api/chat", func(w http.ResponseWriter, r *http.Request) {
		chatCalled = true
		writeEnvelope(w, ChatResponse{Text: "Try toggling Wi-Fi off and on."})
	})

	ctrl, renderer, recorder, _ := newTestController(t, mux)
	ctrl.setState(StateIdle)

	ctrl.StartRecording()
	require.Equal(t, StateRecording, ctrl.State())
	ctrl.StopRecording(context.Background())

	assert.True(t, recorder.stopped)
	assert.True(t, chatCalled)
	assert.Contains(t, renderer.messages, "my wifi keeps dropping")
	assert.Equal(t, StateIdle, ctrl.State())
}

func TestRecording_EmptyTranscriptNotSubmitted(t *testing.T) {
	var chatCalled bool
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/transcribe", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, Transcription{Text: "   "})
	})
	mux.HandleFunc("POST /api/chat", func(w http.ResponseWriter, r *http.Request) {
		chatCalled = true
		writeEnvelope(w, ChatResponse{Text: "unexpected"})
	})

	ctrl, _, _, _ := newTestController(t, mux)
	ctrl.setState(StateIdle)
	ctrl.StartRecording()
	ctrl.StopRecording(context.Background())

	assert.False(t, chatCalled)
	assert.Equal(t, StateIdle, ctrl.State())
}

func TestUploadDocuments_SequentialAndSkipsFailures(t *testing.T) {
	var uploaded []string
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/upload-documents", func(w http.ResponseWriter, r *http.Request) {
		r.ParseMultipartForm(1 << 20)
		header := r.MultipartForm.File["files"][0]
		uploaded = append(uploaded, header.Filename)
		if header.Filename == "broken.md" {
			writeEnvelope(w, map[string]interface{}{"results": []UploadResult{
				{Filename: header.Filename, Status: "error", Error: "missing front matter"},
			}})
			return
		}
		writeEnvelope(w, map[string]interface{}{"results": []UploadResult{
			{Filename: header.Filename, Status: "success", ChunksCreated: 3},
		}})
	})

	ctrl, renderer, _, _ := newTestController(t, mux)
	ctrl.setState(StateIdle)

	files := map[string][]byte{
		"battery.md": []byte("# battery"),
		"photo.png":  []byte("binary"),
		"broken.md":  []byte("# broken"),
		"wifi.md":    []byte("# wifi"),
	}
	ctrl.UploadDocuments(context.Background(), files, []string{"battery.md", "photo.png", "broken.md", "wifi.md"})

	assert.Equal(t, []string{"battery.md", "broken.md", "wifi.md"}, uploaded, "unsupported file must never reach the server")
	require.Len(t, renderer.docs, 2)
	assert.Equal(t, "battery.md", renderer.docs[0].Filename)
	assert.Equal(t, int64(3), renderer.docs[0].Chunks)
	assert.Equal(t, "wifi.md", renderer.docs[1].Filename)
}

func TestSessionStore_RoundTripAndFallback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session_id")
	store := NewFileSessionStore(path)

	first := ResolveSessionID(store)
	assert.NotEmpty(t, first)

	second := ResolveSessionID(store)
	assert.Equal(t, first, second, "identifier must survive across resolutions")

	// Unreadable store still yields a working identifier.
	broken := NewFileSessionStore(filepath.Join(t.TempDir(), "missing-dir") + string(filepath.Separator))
	id := ResolveSessionID(broken)
	assert.NotEmpty(t, id)
	assert.NotEqual(t, first, id)
}

func TestSourceLabel(t *testing.T) {
	assert.Equal(t, "battery_drain.md", SourceLabel(Source{Title: "battery_drain.md"}))
	assert.Equal(t, "https://support.apple.com/battery", SourceLabel(Source{URL: "https://support.apple.com/battery"}))
	assert.Equal(t, "unknown source", SourceLabel(Source{}))
}

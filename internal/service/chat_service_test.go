package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"troubleshoot-agent-be/internal/dto"
	"troubleshoot-agent-be/internal/entity"
	"troubleshoot-agent-be/internal/pkg/logger"
	"troubleshoot-agent-be/internal/repository/contract"
	"troubleshoot-agent-be/internal/repository/memory"
	"troubleshoot-agent-be/internal/repository/specification"
	"troubleshoot-agent-be/internal/repository/unitofwork"
	"troubleshoot-agent-be/pkg/embedding"
	"troubleshoot-agent-be/pkg/llm"
	"troubleshoot-agent-be/pkg/websearch"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSessionRepo struct {
	sessions  map[string]*entity.ChatSession
	createErr error
	findCalls int
	// missFirst makes the first lookup return nothing even when the row
	// exists, mimicking a concurrent insert landing between find and create.
	missFirst bool
}

func (r *fakeSessionRepo) Create(ctx context.Context, session *entity.ChatSession) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.sessions[session.Id] = session
	return nil
}

func (r *fakeSessionRepo) Update(ctx context.Context, session *entity.ChatSession) error {
	r.sessions[session.Id] = session
	return nil
}

func (r *fakeSessionRepo) Delete(ctx context.Context, id string) error {
	delete(r.sessions, id)
	return nil
}

func (r *fakeSessionRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatSession, error) {
	r.findCalls++
	if r.missFirst && r.findCalls == 1 {
		return nil, nil
	}
	for _, spec := range specs {
		if byID, ok := spec.(specification.BySessionID); ok {
			return r.sessions[byID.SessionID], nil
		}
	}
	return nil, nil
}

func (r *fakeSessionRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatSession, error) {
	return nil, nil
}

func (r *fakeSessionRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(r.sessions)), nil
}

type fakeMessageRepo struct {
	messages []*entity.ChatMessage
}

func (r *fakeMessageRepo) Create(ctx context.Context, message *entity.ChatMessage) error {
	r.messages = append(r.messages, message)
	return nil
}

func (r *fakeMessageRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func (r *fakeMessageRepo) DeleteBySessionId(ctx context.Context, sessionId string) error { return nil }

func (r *fakeMessageRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatMessage, error) {
	return nil, nil
}

func (r *fakeMessageRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error) {
	return nil, nil
}

func (r *fakeMessageRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(r.messages)), nil
}

type fakeChunkRepo struct {
	scored []*contract.ScoredChunk
}

func (r *fakeChunkRepo) Create(ctx context.Context, chunk *entity.DocumentChunk) error { return nil }

func (r *fakeChunkRepo) CreateBulk(ctx context.Context, chunks []*entity.DocumentChunk) error {
	return nil
}

func (r *fakeChunkRepo) Update(ctx context.Context, chunk *entity.DocumentChunk) error { return nil }

func (r *fakeChunkRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func (r *fakeChunkRepo) DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error {
	return nil
}

func (r *fakeChunkRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.DocumentChunk, error) {
	return nil, nil
}

func (r *fakeChunkRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocumentChunk, error) {
	return nil, nil
}

func (r *fakeChunkRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(r.scored)), nil
}

func (r *fakeChunkRepo) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, threshold float64) ([]*contract.ScoredChunk, error) {
	return r.scored, nil
}

type fakeUnitOfWork struct {
	sessions *fakeSessionRepo
	messages *fakeMessageRepo
	chunks   *fakeChunkRepo
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) error { return nil }
func (u *fakeUnitOfWork) Commit() error                   { return nil }
func (u *fakeUnitOfWork) Rollback() error                 { return nil }

func (u *fakeUnitOfWork) ChatSessionRepository() contract.ChatSessionRepository { return u.sessions }
func (u *fakeUnitOfWork) ChatMessageRepository() contract.ChatMessageRepository { return u.messages }
func (u *fakeUnitOfWork) KBDocumentRepository() contract.KBDocumentRepository   { return nil }
func (u *fakeUnitOfWork) DocumentChunkRepository() contract.DocumentChunkRepository {
	return u.chunks
}

type fakeUOWFactory struct {
	uow *fakeUnitOfWork
}

func (f *fakeUOWFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork { return f.uow }

type fakeEmbeddingProvider struct{}

func (p *fakeEmbeddingProvider) Generate(text string, taskType string) (*embedding.EmbeddingResponse, error) {
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: []float32{0.1, 0.2, 0.3}},
	}, nil
}

type fakeLLMProvider struct {
	answer  string
	prompts []string
}

func (p *fakeLLMProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	p.prompts = append(p.prompts, history[len(history)-1].Content)
	return p.answer, nil
}

func (p *fakeLLMProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	p.prompts = append(p.prompts, prompt)
	return p.answer, nil
}

func scoredChunk(content string, similarity float64) *contract.ScoredChunk {
	return &contract.ScoredChunk{
		Chunk:         &entity.DocumentChunk{Id: uuid.New(), Content: content},
		Similarity:    similarity,
		DocumentTitle: "battery_drain_basics.md",
	}
}

func tavilyStub(t *testing.T, calls *int, results ...map[string]interface{}) *websearch.TavilyClient {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		json.NewEncoder(w).Encode(map[string]interface{}{"results": results})
	}))
	t.Cleanup(srv.Close)

	client := websearch.NewTavilyClient("test-key")
	client.BaseURL = srv.URL
	return client
}

func newChatServiceForTest(t *testing.T, uow *fakeUnitOfWork, llmProvider llm.LLMProvider, tavily *websearch.TavilyClient) IChatService {
	log := logger.NewZapLogger(filepath.Join(t.TempDir(), "test.log"), false)
	return NewChatService(
		&fakeUOWFactory{uow: uow},
		&fakeEmbeddingProvider{},
		llmProvider,
		memory.NewLiveSessionRepository(),
		nil,
		tavily,
		nil,
		nil,
		nil,
		nil,
		log,
		ChatServiceConfig{TopKRag: 5, TopKWeb: 3, RagScoreThreshold: 0.6},
	)
}

func TestSendChat_WeakRetrievalSearchesWebBeforeGenerating(t *testing.T) {
	uow := &fakeUnitOfWork{
		sessions: &fakeSessionRepo{sessions: map[string]*entity.ChatSession{}},
		messages: &fakeMessageRepo{},
		chunks:   &fakeChunkRepo{scored: []*contract.ScoredChunk{scoredChunk("barely related text", 0.2)}},
	}
	llmProvider := &fakeLLMProvider{answer: "Open Settings and check Battery Health."}

	var webCalls int
	tavily := tavilyStub(t, &webCalls, map[string]interface{}{
		"title":   "If your iPhone battery drains quickly",
		"url":     "https://support.apple.com/battery",
		"content": "Check Battery Health under Settings.",
		"score":   0.88,
	})

	svc := newChatServiceForTest(t, uow, llmProvider, tavily)
	resp, err := svc.SendChat(context.Background(), sendRequest("my iphone battery drains overnight"))
	require.NoError(t, err)

	assert.Equal(t, 1, webCalls, "the web is consulted before the first generation")
	require.Len(t, llmProvider.prompts, 1, "one generation folds the web context in")
	assert.Contains(t, llmProvider.prompts[0], "Check Battery Health under Settings.")

	require.NotEmpty(t, resp.Sources)
	assert.Equal(t, "https://support.apple.com/battery", resp.Sources[0].URL)

	var observed []string
	for _, step := range resp.Steps {
		if step.Phase == "observe" {
			observed = append(observed, step.Text)
		}
	}
	assert.Contains(t, strings.Join(observed, "\n"), "best score")
}

func TestSendChat_StrongRetrievalSkipsWebSearch(t *testing.T) {
	content := strings.Repeat("Reset network settings and rejoin the network. ", 20)
	uow := &fakeUnitOfWork{
		sessions: &fakeSessionRepo{sessions: map[string]*entity.ChatSession{}},
		messages: &fakeMessageRepo{},
		chunks:   &fakeChunkRepo{scored: []*contract.ScoredChunk{scoredChunk(content, 0.92)}},
	}
	llmProvider := &fakeLLMProvider{answer: "Go to Settings > General and reset network settings."}

	var webCalls int
	tavily := tavilyStub(t, &webCalls)

	svc := newChatServiceForTest(t, uow, llmProvider, tavily)
	resp, err := svc.SendChat(context.Background(), sendRequest("my iphone wifi keeps dropping"))
	require.NoError(t, err)

	assert.Zero(t, webCalls)
	require.NotEmpty(t, resp.Sources)
	assert.Equal(t, "battery_drain_basics.md", resp.Sources[0].Title)
}

func TestSendChat_SessionCreateConflictFallsBackToExistingRow(t *testing.T) {
	sessionId := "web-1f2e3d4c5b6a"

	// The first lookup misses, the insert collides with a concurrent first
	// message, and the row the winner inserted is picked up instead.
	sessions := &fakeSessionRepo{
		sessions: map[string]*entity.ChatSession{
			sessionId: {Id: sessionId, Title: "winner"},
		},
		createErr: errors.New(`duplicate key value violates unique constraint "chat_sessions_pkey"`),
		missFirst: true,
	}
	uow := &fakeUnitOfWork{
		sessions: sessions,
		messages: &fakeMessageRepo{},
		chunks:   &fakeChunkRepo{},
	}
	llmProvider := &fakeLLMProvider{answer: "Let's start with a restart."}

	var webCalls int
	tavily := tavilyStub(t, &webCalls)

	svc := newChatServiceForTest(t, uow, llmProvider, tavily)

	req := sendRequest("restart loop after the update")
	req.SessionId = sessionId
	resp, err := svc.SendChat(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, sessionId, resp.SessionId)
}

func sendRequest(message string) *dto.SendChatRequest {
	return &dto.SendChatRequest{Message: message}
}

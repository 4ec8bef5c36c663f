package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"troubleshoot-agent-be/internal/dto"
	"troubleshoot-agent-be/internal/entity"
	"troubleshoot-agent-be/internal/pkg/logger"
	"troubleshoot-agent-be/internal/pkg/mailer"
	"troubleshoot-agent-be/internal/repository/memory"
	"troubleshoot-agent-be/internal/repository/specification"
	"troubleshoot-agent-be/internal/repository/unitofwork"
	"troubleshoot-agent-be/pkg/agent"
	"troubleshoot-agent-be/pkg/embedding"
	"troubleshoot-agent-be/pkg/events"
	"troubleshoot-agent-be/pkg/llm"
	pktNats "troubleshoot-agent-be/pkg/nats"
	"troubleshoot-agent-be/pkg/rag"
	"troubleshoot-agent-be/pkg/rag/prompt"
	"troubleshoot-agent-be/pkg/store"
	"troubleshoot-agent-be/pkg/vision"
	"troubleshoot-agent-be/pkg/voice"
	"troubleshoot-agent-be/pkg/websearch"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type IChatService interface {
	SendChat(ctx context.Context, request *dto.SendChatRequest) (*dto.SendChatResponse, error)
}

type chatService struct {
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
	llmProvider       llm.LLMProvider
	liveSessions      *memory.LiveSessionRepository
	visionAnalyzer    *vision.Analyzer
	tavily            *websearch.TavilyClient
	ttsClient         *voice.TTSClient
	emailService      mailer.IEmailService
	eventPublisher    *pktNats.Publisher
	rdb               *redis.Client
	log               logger.ILogger

	escalationEmail   string
	topKRag           int
	topKWeb           int
	ragScoreThreshold float64
}

type ChatServiceConfig struct {
	EscalationEmail   string
	TopKRag           int
	TopKWeb           int
	RagScoreThreshold float64
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	llmProvider llm.LLMProvider,
	liveSessions *memory.LiveSessionRepository,
	visionAnalyzer *vision.Analyzer,
	tavily *websearch.TavilyClient,
	ttsClient *voice.TTSClient,
	emailService mailer.IEmailService,
	eventPublisher *pktNats.Publisher,
	rdb *redis.Client,
	log logger.ILogger,
	cfg ChatServiceConfig,
) IChatService {
	return &chatService{
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		llmProvider:       llmProvider,
		liveSessions:      liveSessions,
		visionAnalyzer:    visionAnalyzer,
		tavily:            tavily,
		ttsClient:         ttsClient,
		emailService:      emailService,
		eventPublisher:    eventPublisher,
		rdb:               rdb,
		log:               log,
		escalationEmail:   cfg.EscalationEmail,
		topKRag:           cfg.TopKRag,
		topKWeb:           cfg.TopKWeb,
		ragScoreThreshold: cfg.RagScoreThreshold,
	}
}

// SendChat runs one troubleshooting turn: classify the issue, fold in an
// attached image, retrieve knowledge, generate the next step, and decide
// whether the session should be handed off to Apple Support.
func (cs *chatService) SendChat(ctx context.Context, request *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	var steps []dto.AgentStepDTO
	think := func(format string, args ...interface{}) {
		steps = append(steps, dto.AgentStepDTO{Phase: "think", Text: fmt.Sprintf(format, args...)})
	}
	act := func(format string, args ...interface{}) {
		steps = append(steps, dto.AgentStepDTO{Phase: "act", Text: fmt.Sprintf(format, args...)})
	}
	observe := func(format string, args ...interface{}) {
		steps = append(steps, dto.AgentStepDTO{Phase: "observe", Text: fmt.Sprintf(format, args...)})
	}

	if request.SessionId == "" {
		request.SessionId = uuid.NewString()
	}

	live := cs.liveSessions.GetOrCreate(request.SessionId)

	// 1. Classify the issue.
	think("Reading the message and identifying the issue category.")
	category := agent.DetectIssueCategory(request.Message)
	if category != agent.IssueUnknown {
		live.CurrentIssue = category
		observe("This looks like a %s issue.", category)
	}

	// 2. Frustration tracking. A frustrated message usually means the last
	// suggestion did not work.
	if agent.DetectFrustration(request.Message) {
		live.FrustrationSignals++
		live.FailedSteps++
		think("The previous step seems not to have worked. Trying a different approach.")
	}

	// 3. Ensure the durable session exists and record the user message.
	session, err := cs.ensureSession(ctx, request.SessionId, request.Message, live)
	if err != nil {
		return nil, err
	}

	userMessage := &entity.ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: session.Id,
		Role:          "user",
		Content:       request.Message,
		HasImage:      request.ImageBase64 != "",
		CreatedAt:     time.Now(),
	}
	uow := cs.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ChatMessageRepository().Create(ctx, userMessage); err != nil {
		return nil, err
	}

	// 4. Image analysis.
	query := request.Message
	if request.ImageBase64 != "" && cs.visionAnalyzer != nil {
		act("Analyzing the attached image.")
		description, err := cs.visionAnalyzer.Describe(ctx, request.ImageBase64, request.Message)
		if err != nil {
			cs.log.Warn("chat", "image analysis failed", map[string]interface{}{
				"session_id": request.SessionId,
				"error":      err.Error(),
			})
			observe("Could not analyze the image, continuing with the text alone.")
		} else if description != "" {
			observe("The image shows: %s", description)
			query = fmt.Sprintf("%s\n\n(Attached image: %s)", request.Message, description)
		}
	}

	// 5. Knowledge base retrieval.
	act("Searching the knowledge base.")
	documents, bestScore, err := cs.retrieve(ctx, query)
	if err != nil {
		cs.log.Error("chat", "retrieval failed", map[string]interface{}{
			"session_id": request.SessionId,
			"error":      err.Error(),
		})
		documents = nil
		bestScore = 0
	}
	observe("Found %d relevant knowledge base passages (best score %.2f).", len(documents), bestScore)

	// 6. When even the best passage misses the relevance bar, go to the web
	// before generating so the first answer is grounded in something.
	fromWeb := false
	if float64(bestScore) < cs.ragScoreThreshold && cs.tavily != nil && agent.IsIPhoneRelatedQuery(request.Message) {
		act("The knowledge base has no strong match. Searching trusted Apple sources on the web.")
		webDocs, webErr := cs.searchWeb(ctx, request.Message)
		if webErr != nil {
			cs.log.Warn("chat", "web search failed", map[string]interface{}{
				"session_id": request.SessionId,
				"error":      webErr.Error(),
			})
			observe("Web search was unavailable.")
		} else if len(webDocs) > 0 {
			observe("Found %d web results, including official Apple pages.", len(webDocs))
			documents = webDocs
			fromWeb = true
		}
	}

	// 7. Generate the answer.
	history, err := cs.loadHistory(ctx, session.Id)
	if err != nil {
		return nil, err
	}

	answer, err := cs.generate(ctx, live, query, documents, history, fromWeb)
	if err != nil {
		return nil, err
	}

	sources := sourcesFromDocuments(documents)

	// 8. One guarded web-search retry when the model still admits it has
	// nothing despite an in-threshold knowledge base hit.
	if !fromWeb && agent.SoundsLikeNoKnowledge(answer) && cs.tavily != nil && agent.IsIPhoneRelatedQuery(request.Message) {
		act("The knowledge base has no answer. Searching trusted Apple sources on the web.")
		webDocs, webErr := cs.searchWeb(ctx, request.Message)
		if webErr != nil {
			cs.log.Warn("chat", "web search failed", map[string]interface{}{
				"session_id": request.SessionId,
				"error":      webErr.Error(),
			})
			observe("Web search was unavailable.")
		} else if len(webDocs) > 0 {
			observe("Found %d web results, including official Apple pages.", len(webDocs))
			retried, retryErr := cs.generate(ctx, live, query, webDocs, history, true)
			if retryErr == nil {
				answer = retried
				sources = sourcesFromDocuments(webDocs)
			}
		}
	}

	// 9. Escalation.
	escalate := false
	if agent.ShouldEscalate(live.FailedSteps, live.FrustrationSignals) && !live.Escalated {
		escalate = true
		live.Escalated = true
		think("Multiple steps have failed. Recommending Apple Support.")
		cs.escalateSession(ctx, session, live)
	}

	// 10. Optional spoken rendition.
	audio := ""
	if request.VoiceMode && cs.ttsClient != nil {
		spoken := voice.AdaptForSpeech(answer)
		audioBytes, ttsErr := cs.ttsClient.Synthesize(ctx, spoken)
		if ttsErr != nil {
			cs.log.Warn("chat", "speech synthesis failed", map[string]interface{}{
				"session_id": request.SessionId,
				"error":      ttsErr.Error(),
			})
		} else {
			audio = base64.StdEncoding.EncodeToString(audioBytes)
		}
	}

	// Persist the assistant message and refresh session state.
	entitySteps := make([]entity.AgentStep, len(steps))
	for i, s := range steps {
		entitySteps[i] = entity.AgentStep{Phase: s.Phase, Text: s.Text}
	}
	entitySources := make([]entity.MessageSource, len(sources))
	for i, s := range sources {
		entitySources[i] = entity.MessageSource{Title: s.Title, URL: s.URL, Score: s.Score}
	}

	assistantMessage := &entity.ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: session.Id,
		Role:          "assistant",
		Content:       answer,
		Steps:         entitySteps,
		Sources:       entitySources,
		CreatedAt:     time.Now(),
	}
	if err := uow.ChatMessageRepository().Create(ctx, assistantMessage); err != nil {
		return nil, err
	}

	live.RecordStep(truncate(answer, 160))
	live.LastQuery = request.Message
	cs.liveSessions.Save(live)
	cs.invalidateSessionCache(ctx, session.Id)

	return &dto.SendChatResponse{
		SessionId:   session.Id,
		MessageId:   assistantMessage.Id,
		Text:        answer,
		Steps:       steps,
		Sources:     sources,
		Escalate:    escalate,
		AudioBase64: audio,
		CreatedAt:   assistantMessage.CreatedAt,
	}, nil
}

func (cs *chatService) ensureSession(ctx context.Context, sessionId, firstMessage string, live *store.Session) (*entity.ChatSession, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.ChatSessionRepository().FindOne(ctx, specification.BySessionID{SessionID: sessionId})
	if err != nil {
		return nil, err
	}
	if session != nil {
		return session, nil
	}

	session = &entity.ChatSession{
		Id:        sessionId,
		Title:     truncate(firstMessage, 80),
		Issue:     string(live.CurrentIssue),
		CreatedAt: time.Now(),
	}
	if err := uow.ChatSessionRepository().Create(ctx, session); err != nil {
		// Two first messages with the same fresh id can race the create;
		// the loser picks up the row the winner inserted.
		existing, findErr := uow.ChatSessionRepository().FindOne(ctx, specification.BySessionID{SessionID: sessionId})
		if findErr == nil && existing != nil {
			return existing, nil
		}
		return nil, err
	}
	return session, nil
}

// retrieve returns the in-threshold knowledge base passages plus the best
// adjusted score seen before filtering, so callers can tell "nothing indexed"
// apart from "indexed but too weak".
func (cs *chatService) retrieve(ctx context.Context, query string) ([]store.Document, float32, error) {
	res, err := cs.embeddingProvider.Generate(query, "RETRIEVAL_QUERY")
	if err != nil {
		return nil, 0, err
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	scored, err := uow.DocumentChunkRepository().SearchSimilarWithScore(ctx, res.Embedding.Values, cs.topKRag, 0)
	if err != nil {
		return nil, 0, err
	}

	documents := make([]store.Document, len(scored))
	for i, sc := range scored {
		documents[i] = store.Document{
			ID:      sc.Chunk.Id.String(),
			Title:   sc.DocumentTitle,
			Content: sc.Chunk.Content,
			Score:   float32(sc.Similarity),
			Metadata: map[string]interface{}{
				"source_url": sc.SourceURL,
				"updated":    sc.DocumentUpdated,
			},
		}
	}

	ranked := rag.Rerank(documents, time.Now())
	var best float32
	if len(ranked) > 0 {
		best = ranked[0].Score
	}
	return rag.FilterByThreshold(ranked, float32(cs.ragScoreThreshold)), best, nil
}

func (cs *chatService) searchWeb(ctx context.Context, query string) ([]store.Document, error) {
	results, err := cs.tavily.Search(ctx, query, cs.topKWeb)
	if err != nil {
		return nil, err
	}

	documents := make([]store.Document, len(results))
	for i, r := range results {
		documents[i] = store.Document{
			ID:      r.URL,
			Title:   r.Title,
			Content: r.Content,
			Score:   r.Score,
			Metadata: map[string]interface{}{
				"source_url": r.URL,
			},
		}
	}
	return documents, nil
}

func (cs *chatService) generate(ctx context.Context, live *store.Session, query string, documents []store.Document, history []llm.Message, fromWeb bool) (string, error) {
	builder := prompt.NewContextualBuilder(live, query, documents)
	if fromWeb {
		builder.FromWebSearch()
	}

	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: "system", Content: prompt.SystemPrompt})
	messages = append(messages, history...)
	messages = append(messages, llm.Message{Role: "user", Content: builder.Build()})

	return cs.llmProvider.Chat(ctx, messages)
}

const historyWindow = 10

func (cs *chatService) loadHistory(ctx context.Context, sessionId string) ([]llm.Message, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: historyWindow, Offset: 0},
	)
	if err != nil {
		return nil, err
	}

	// Reverse back into chronological order.
	history := make([]llm.Message, 0, len(messages))
	for i := len(messages) - 1; i >= 0; i-- {
		history = append(history, llm.Message{
			Role:    messages[i].Role,
			Content: messages[i].Content,
		})
	}
	return history, nil
}

func (cs *chatService) escalateSession(ctx context.Context, session *entity.ChatSession, live *store.Session) {
	session.Escalated = true
	session.Issue = string(live.CurrentIssue)

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ChatSessionRepository().Update(ctx, session); err != nil {
		cs.log.Error("chat", "failed to mark session escalated", map[string]interface{}{
			"session_id": session.Id,
			"error":      err.Error(),
		})
	}

	if cs.eventPublisher != nil {
		evt := events.SessionEscalated(session.Id, string(live.CurrentIssue), live.FailedSteps)
		if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
			cs.log.Warn("chat", "failed to publish escalation event", map[string]interface{}{
				"session_id": session.Id,
				"error":      err.Error(),
			})
		}
	}

	if cs.emailService != nil && cs.escalationEmail != "" {
		if err := cs.emailService.SendEscalation(cs.escalationEmail, session.Id, string(live.CurrentIssue), live.StepsAttempted); err != nil {
			cs.log.Warn("chat", "failed to send escalation email", map[string]interface{}{
				"session_id": session.Id,
				"error":      err.Error(),
			})
		}
	}
}

func (cs *chatService) invalidateSessionCache(ctx context.Context, sessionId string) {
	if cs.rdb == nil {
		return
	}
	if err := cs.rdb.Del(ctx, sessionCacheKey(sessionId)).Err(); err != nil {
		cs.log.Warn("chat", "failed to invalidate session cache", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
	}
}

func sourcesFromDocuments(documents []store.Document) []dto.SourceDTO {
	sources := make([]dto.SourceDTO, 0, len(documents))
	for _, doc := range documents {
		url, _ := doc.Metadata["source_url"].(string)
		sources = append(sources, dto.SourceDTO{
			Title: doc.Title,
			URL:   url,
			Score: float64(doc.Score),
		})
	}
	return sources
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

package bootstrap

import (
	"context"
	"log"

	"troubleshoot-agent-be/internal/config"
	"troubleshoot-agent-be/internal/controller"
	"troubleshoot-agent-be/internal/handler"
	"troubleshoot-agent-be/internal/pkg/logger"
	"troubleshoot-agent-be/internal/pkg/mailer"
	"troubleshoot-agent-be/internal/repository/memory"
	"troubleshoot-agent-be/internal/repository/unitofwork"
	"troubleshoot-agent-be/internal/service"
	"troubleshoot-agent-be/internal/websocket"
	"troubleshoot-agent-be/pkg/embedding"
	"troubleshoot-agent-be/pkg/embedding/jina"
	"troubleshoot-agent-be/pkg/llm/factory"
	pktNats "troubleshoot-agent-be/pkg/nats"
	"troubleshoot-agent-be/pkg/vision"
	"troubleshoot-agent-be/pkg/voice"
	"troubleshoot-agent-be/pkg/websearch"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController       controller.IChatController
	SessionController    controller.ISessionController
	DocumentController   controller.IDocumentController
	TranscribeController controller.ITranscribeController
	AdminController      controller.IAdminController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
	DocumentService service.IDocumentService

	// WebSockets & Notification
	NotificationHandler *handler.NotificationHandler
	WebSocketHub        *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	var emailService mailer.IEmailService
	if cfg.SMTP.Host != "" {
		emailService = mailer.NewEmailService(
			cfg.SMTP.Host,
			cfg.SMTP.Port,
			cfg.SMTP.Email,
			cfg.SMTP.Password,
			cfg.SMTP.SenderName,
		)
	}

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	var embeddingProvider embedding.EmbeddingProvider
	switch cfg.Ai.EmbeddingProvider {
	case "ollama":
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	case "gemini":
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.Gemini)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	case "jina":
		embeddingProvider = jina.NewJinaProvider(cfg.Keys.Jina)
		log.Printf("[INFO] Using Embedding Provider: JINA")
	default:
		embeddingProvider = embedding.NewOpenAIProvider(cfg.Keys.OpenAI)
		log.Printf("[INFO] Using Embedding Provider: OPENAI")
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Keys.OpenAI,
		cfg.Keys.HuggingFace,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	visionAnalyzer := vision.NewAnalyzer(llmProvider)

	var tavily *websearch.TavilyClient
	if cfg.Keys.Tavily != "" {
		tavily = websearch.NewTavilyClient(cfg.Keys.Tavily)
	}

	sttClient := voice.NewSTTClient(cfg.Keys.OpenAI, cfg.Voice.STTModel)
	var ttsClient *voice.TTSClient
	if cfg.Keys.OpenAI != "" {
		ttsClient = voice.NewTTSClient(cfg.Keys.OpenAI, cfg.Voice.TTSModel, cfg.Voice.TTSVoice, cfg.Voice.TTSSpeed)
	}

	// Initialize In-Memory Session Storage
	liveSessions := memory.NewLiveSessionRepository()

	// 3.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/notification.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 4. Services
	publisherService := service.NewPublisherService(cfg.Ai.IngestTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Ai.IngestTopic,
		uowFactory,
		embeddingProvider,
	)

	documentService := service.NewDocumentService(
		uowFactory,
		publisherService,
		natsPub,
		sysLogger,
		cfg.Ai.ChunkSize,
		cfg.Ai.ChunkOverlap,
	)

	chatService := service.NewChatService(
		uowFactory,
		embeddingProvider,
		llmProvider,
		liveSessions,
		visionAnalyzer,
		tavily,
		ttsClient,
		emailService,
		natsPub,
		rdb,
		sysLogger,
		service.ChatServiceConfig{
			EscalationEmail:   cfg.App.EscalationEmail,
			TopKRag:           cfg.Ai.TopKRag,
			TopKWeb:           cfg.Ai.TopKWeb,
			RagScoreThreshold: cfg.Ai.RagScoreThreshold,
		},
	)

	sessionService := service.NewSessionService(uowFactory, liveSessions, rdb, sysLogger)
	transcribeService := service.NewTranscribeService(sttClient, sysLogger)
	adminService := service.NewAdminService(sysLogger)

	// 5. Notification bridge
	notifHandler := handler.NewNotificationHandler(natsSub, wsHub, wsLogger)
	if natsSub != nil {
		if err := notifHandler.StartEventBridge(); err != nil {
			log.Printf("[WARN] Failed to start notification event bridge: %v", err)
		}
	}

	return &Container{
		ChatController:       controller.NewChatController(chatService),
		SessionController:    controller.NewSessionController(sessionService),
		DocumentController:   controller.NewDocumentController(documentService),
		TranscribeController: controller.NewTranscribeController(transcribeService),
		AdminController:      controller.NewAdminController(adminService, documentService),

		ConsumerService: consumerService,
		DocumentService: documentService,

		NotificationHandler: notifHandler,
		WebSocketHub:        wsHub,
	}
}

package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	SMTP     SMTPConfig
	Keys     APIKeys
	Ai       AIConfig
	Voice    VoiceConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	KnowledgeBaseDir   string
	EscalationEmail    string
}

type DatabaseConfig struct {
	Connection string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

type APIKeys struct {
	OpenAI      string
	Gemini      string
	Jina        string
	HuggingFace string
	Tavily      string
}

type AIConfig struct {
	// IngestTopic is the in-process pubsub topic the embed worker consumes.
	IngestTopic       string
	EmbeddingProvider string // "openai", "ollama", "gemini", "jina"
	OllamaBaseURL     string
	OllamaModel       string
	LLMProvider       string // "ollama", "openai", "huggingface"
	LLMModel          string // e.g. "llama3", "gpt-4o-mini"
	ChunkSize         int
	ChunkOverlap      int
	TopKRag           int
	TopKWeb           int
	RagScoreThreshold float64
}

type VoiceConfig struct {
	STTModel string
	TTSModel string
	TTSVoice string
	TTSSpeed float64
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:8080"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:8080"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			KnowledgeBaseDir:   getEnv("KNOWLEDGE_BASE_DIR", "knowledge_base/docs"),
			EscalationEmail:    getEnv("ESCALATION_EMAIL", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "ARIA Support"),
		},
		Keys: APIKeys{
			OpenAI:      getEnv("OPENAI_API_KEY", ""),
			Gemini:      getEnv("GEMINI_API_KEY", ""),
			Jina:        getEnv("JINA_API_KEY", ""),
			HuggingFace: getEnv("HUGGINGFACE_API_KEY", ""),
			Tavily:      getEnv("TAVILY_API_KEY", ""),
		},
		Ai: AIConfig{
			IngestTopic:       getEnv("EMBED_DOCUMENT_TOPIC_NAME", "EMBED_DOCUMENT"),
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "openai"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:       getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:          getEnv("LLM_MODEL", "llama3"),
			ChunkSize:         getEnvAsInt("CHUNK_SIZE", 512),
			ChunkOverlap:      getEnvAsInt("CHUNK_OVERLAP", 64),
			TopKRag:           getEnvAsInt("TOP_K_RAG", 5),
			TopKWeb:           getEnvAsInt("TOP_K_WEB", 3),
			RagScoreThreshold: getEnvAsFloat("RAG_SCORE_THRESHOLD", 0.75),
		},
		Voice: VoiceConfig{
			STTModel: getEnv("STT_MODEL", "whisper-1"),
			TTSModel: getEnv("TTS_MODEL", "tts-1-hd"),
			TTSVoice: getEnv("TTS_VOICE", "nova"),
			TTSSpeed: getEnvAsFloat("TTS_SPEED", 0.95),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

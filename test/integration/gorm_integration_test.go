package integration

import (
	"context"
	"log"
	"os"
	"testing"

	"troubleshoot-agent-be/internal/entity"
	"troubleshoot-agent-be/internal/repository/specification"
	"troubleshoot-agent-be/internal/repository/unitofwork"
	"troubleshoot-agent-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
)

func TestGormConnection(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	// Verify Wiring
	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(context.Background())

	assert.NotNil(t, uow.ChatSessionRepository())
	assert.NotNil(t, uow.KBDocumentRepository())

	// Basic Ping
	sqlDB, _ := gormDB.DB()
	err = sqlDB.Ping()
	assert.NoError(t, err)

	t.Run("Check Document Chunk Repository", func(t *testing.T) {
		// Count implies the table and vector column exist
		count, err := uow.DocumentChunkRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("Chunk count: %d", count)
	})

	t.Run("Check Transactional Session With Messages", func(t *testing.T) {
		ctx := context.Background()
		sessionId := "integration-" + uuid.New().String()

		err := uow.Begin(ctx)
		assert.NoError(t, err)
		defer uow.Rollback()

		session := &entity.ChatSession{
			Id:    sessionId,
			Title: "Integration test session",
		}
		err = uow.ChatSessionRepository().Create(ctx, session)
		assert.NoError(t, err)

		message := &entity.ChatMessage{
			Id:            uuid.New(),
			ChatSessionId: sessionId,
			Role:          "user",
			Content:       "my iPhone battery drains overnight",
		}
		err = uow.ChatMessageRepository().Create(ctx, message)
		assert.NoError(t, err)

		err = uow.Commit()
		assert.NoError(t, err)

		// And clean up
		found, err := uow.ChatSessionRepository().FindOne(ctx, specification.BySessionID{SessionID: sessionId})
		assert.NoError(t, err)
		assert.Equal(t, "Integration test session", found.Title)

		assert.NoError(t, uow.ChatMessageRepository().DeleteBySessionId(ctx, sessionId))
		assert.NoError(t, uow.ChatSessionRepository().Delete(ctx, sessionId))
	})
}

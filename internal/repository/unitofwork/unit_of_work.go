package unitofwork

import (
	"context"

	"troubleshoot-agent-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ChatSessionRepository() contract.ChatSessionRepository
	ChatMessageRepository() contract.ChatMessageRepository
	KBDocumentRepository() contract.KBDocumentRepository
	DocumentChunkRepository() contract.DocumentChunkRepository
}

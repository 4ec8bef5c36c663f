package contract

import (
	"context"

	"troubleshoot-agent-be/internal/entity"
	"troubleshoot-agent-be/internal/repository/specification"

	"github.com/google/uuid"
)

type KBDocumentRepository interface {
	Create(ctx context.Context, doc *entity.KBDocument) error
	Update(ctx context.Context, doc *entity.KBDocument) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.KBDocument, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.KBDocument, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}

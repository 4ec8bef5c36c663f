package service

import (
	"context"
	"encoding/json"
	"log"

	"troubleshoot-agent-be/internal/dto"
	"troubleshoot-agent-be/internal/repository/specification"
	"troubleshoot-agent-be/internal/repository/unitofwork"
	"troubleshoot-agent-be/pkg/embedding"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService is the embed worker. Document uploads persist their
// chunks immediately and hand off embedding generation here, so ingestion
// responses stay fast even for large knowledge bases.
type consumerService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
) IConsumerService {
	return &consumerService{
		pubSub:            pubSub,
		topicName:         topicName,
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishEmbedDocumentMessage
	err := json.Unmarshal(msg.Payload, &payload)
	if err != nil {
		log.Printf("[ERROR] Failed to unmarshal embed message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Embedding chunks for document %s", payload.DocumentId)

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	chunks, err := uow.DocumentChunkRepository().FindAll(ctx,
		specification.ByDocumentID{DocumentID: payload.DocumentId},
		specification.PendingEmbedding{},
		specification.OrderBy{Field: "chunk_index", Desc: false},
	)
	if err != nil {
		log.Printf("[ERROR] Failed to load chunks for document %s: %v", payload.DocumentId, err)
		msg.Nack()
		return
	}
	if len(chunks) == 0 {
		log.Printf("[INFO] No pending chunks for document %s", payload.DocumentId)
		msg.Ack()
		return
	}

	for _, chunk := range chunks {
		res, err := cs.embeddingProvider.Generate(chunk.Content, "RETRIEVAL_DOCUMENT")
		if err != nil {
			log.Printf("[ERROR] Failed to embed chunk %d of document %s: %v", chunk.ChunkIndex, payload.DocumentId, err)
			msg.Nack()
			return
		}
		chunk.Embedding = res.Embedding.Values
		chunk.Embedded = true
	}

	if err := uow.Begin(ctx); err != nil {
		log.Printf("[ERROR] Failed to begin transaction: %v", err)
		msg.Nack()
		return
	}
	defer uow.Rollback()

	for _, chunk := range chunks {
		if err := uow.DocumentChunkRepository().Update(ctx, chunk); err != nil {
			log.Printf("[ERROR] Failed to persist embedding for chunk %s: %v", chunk.Id, err)
			msg.Nack()
			return
		}
	}

	if err := uow.Commit(); err != nil {
		log.Printf("[ERROR] Failed to commit embeddings: %v", err)
		msg.Nack()
		return
	}

	log.Printf("[SUCCESS] Embedded %d chunks for document %s", len(chunks), payload.DocumentId)
	msg.Ack()
}

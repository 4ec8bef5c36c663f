package service

import (
	"context"
	"encoding/json"
	"fmt"

	"troubleshoot-agent-be/internal/dto"
	"troubleshoot-agent-be/internal/entity"
	"troubleshoot-agent-be/internal/pkg/logger"
	"troubleshoot-agent-be/internal/repository/specification"
	"troubleshoot-agent-be/internal/repository/unitofwork"
	"troubleshoot-agent-be/pkg/events"
	"troubleshoot-agent-be/pkg/kb"
	pktNats "troubleshoot-agent-be/pkg/nats"
	"troubleshoot-agent-be/pkg/utils"

	"github.com/google/uuid"
)

// UploadedFile is one file from a multipart upload request.
type UploadedFile struct {
	Filename string
	Content  []byte
}

type IDocumentService interface {
	UploadDocuments(ctx context.Context, files []UploadedFile) (*dto.UploadDocumentsResponse, error)
	ListDocuments(ctx context.Context) (*dto.ListDocumentsResponse, error)
	Reindex(ctx context.Context) (*dto.ReindexResponse, error)
}

type documentService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	eventPublisher   *pktNats.Publisher
	log              logger.ILogger
	chunkSize        int
	chunkOverlap     int
}

func NewDocumentService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
	chunkSize int,
	chunkOverlap int,
) IDocumentService {
	return &documentService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		log:              log,
		chunkSize:        chunkSize,
		chunkOverlap:     chunkOverlap,
	}
}

// UploadDocuments ingests uploaded knowledge base files one at a time. A
// file that fails to parse or validate is reported in its result entry and
// does not abort the remaining files.
func (s *documentService) UploadDocuments(ctx context.Context, files []UploadedFile) (*dto.UploadDocumentsResponse, error) {
	results := make([]dto.UploadResultDTO, 0, len(files))

	for _, file := range files {
		result := s.ingestFile(ctx, file)
		results = append(results, result)
	}

	return &dto.UploadDocumentsResponse{Results: results}, nil
}

func (s *documentService) ingestFile(ctx context.Context, file UploadedFile) dto.UploadResultDTO {
	result := dto.UploadResultDTO{Filename: file.Filename}

	doc, err := kb.Parse(file.Filename, string(file.Content))
	if err != nil {
		s.log.Warn("document", "failed to parse uploaded file", map[string]interface{}{
			"filename": file.Filename,
			"error":    err.Error(),
		})
		result.Status = "error"
		result.Error = err.Error()
		return result
	}

	hardIssue := ""
	for _, issue := range kb.Validate(doc) {
		if issue.Soft {
			result.Warnings = append(result.Warnings, issue.String())
			continue
		}
		if hardIssue == "" {
			hardIssue = issue.String()
		}
	}
	if hardIssue != "" {
		result.Status = "error"
		result.Error = hardIssue
		return result
	}

	chunks, warnings, err := s.persistDocument(ctx, doc)
	if err != nil {
		s.log.Error("document", "failed to persist document", map[string]interface{}{
			"filename": file.Filename,
			"error":    err.Error(),
		})
		result.Status = "error"
		result.Error = err.Error()
		return result
	}
	result.Warnings = append(result.Warnings, warnings...)

	result.Status = "success"
	result.ChunksCreated = chunks

	if s.eventPublisher != nil {
		evt := events.DocumentIngested(doc.Filename, doc.Category, chunks)
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.log.Warn("document", "failed to publish ingest event", map[string]interface{}{
				"filename": doc.Filename,
				"error":    err.Error(),
			})
		}
	}

	return result
}

// persistDocument upserts the document row, replaces its chunks and queues
// the embed job. Returns the number of chunks created plus soft warnings
// for related-issue links that point at unknown documents.
func (s *documentService) persistDocument(ctx context.Context, doc *kb.Document) (int, []string, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	var warnings []string
	for _, related := range doc.RelatedIssues {
		existing, err := uow.KBDocumentRepository().FindOne(ctx, specification.ByFilename{Filename: related.Filename})
		if err != nil {
			return 0, nil, err
		}
		if existing == nil {
			warnings = append(warnings, fmt.Sprintf("related issue %q is not in the knowledge base", related.Filename))
		}
	}

	docEntity := &entity.KBDocument{
		Filename:  doc.Filename,
		Title:     doc.Title,
		Category:  doc.Category,
		Severity:  string(doc.Severity),
		Updated:   doc.Updated,
		HasImages: doc.HasImages,
		ImageURLs: doc.ImageURLs,
		SourceURL: doc.SourceURL,
		Content:   doc.Body,
	}

	existing, err := uow.KBDocumentRepository().FindOne(ctx, specification.ByFilename{Filename: doc.Filename})
	if err != nil {
		return 0, nil, err
	}

	parts := utils.SplitText(doc.Body, s.chunkSize, s.chunkOverlap)

	if err := uow.Begin(ctx); err != nil {
		return 0, nil, err
	}
	defer uow.Rollback()

	if existing != nil {
		docEntity.Id = existing.Id
		docEntity.CreatedAt = existing.CreatedAt
		if err := uow.KBDocumentRepository().Update(ctx, docEntity); err != nil {
			return 0, nil, err
		}
		if err := uow.DocumentChunkRepository().DeleteByDocumentId(ctx, existing.Id); err != nil {
			return 0, nil, err
		}
	} else {
		docEntity.Id = uuid.New()
		if err := uow.KBDocumentRepository().Create(ctx, docEntity); err != nil {
			return 0, nil, err
		}
	}

	chunkEntities := make([]*entity.DocumentChunk, len(parts))
	for i, part := range parts {
		chunkEntities[i] = &entity.DocumentChunk{
			Id:         uuid.New(),
			DocumentId: docEntity.Id,
			ChunkIndex: i,
			Content:    part,
		}
	}
	if err := uow.DocumentChunkRepository().CreateBulk(ctx, chunkEntities); err != nil {
		return 0, nil, err
	}

	if err := uow.Commit(); err != nil {
		return 0, nil, err
	}

	payload, err := json.Marshal(dto.PublishEmbedDocumentMessage{DocumentId: docEntity.Id})
	if err != nil {
		return 0, nil, err
	}
	if err := s.publisherService.Publish(ctx, payload); err != nil {
		return 0, nil, err
	}

	return len(chunkEntities), warnings, nil
}

func (s *documentService) ListDocuments(ctx context.Context) (*dto.ListDocumentsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	docs, err := uow.KBDocumentRepository().FindAll(ctx,
		specification.OrderBy{Field: "filename", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	items := make([]dto.DocumentListItemDTO, 0, len(docs))
	for _, doc := range docs {
		chunks, err := uow.DocumentChunkRepository().Count(ctx, specification.ByDocumentID{DocumentID: doc.Id})
		if err != nil {
			return nil, err
		}
		items = append(items, dto.DocumentListItemDTO{
			Id:        doc.Id,
			Filename:  doc.Filename,
			Title:     doc.Title,
			Category:  doc.Category,
			Severity:  doc.Severity,
			Updated:   doc.Updated,
			HasImages: doc.HasImages,
			Chunks:    chunks,
			CreatedAt: doc.CreatedAt,
		})
	}

	return &dto.ListDocumentsResponse{Documents: items, Total: len(items)}, nil
}

// Reindex queues every stored document for re-embedding. Used after an
// embedding model change.
func (s *documentService) Reindex(ctx context.Context) (*dto.ReindexResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	docs, err := uow.KBDocumentRepository().FindAll(ctx)
	if err != nil {
		return nil, err
	}

	totalChunks := 0
	for _, doc := range docs {
		chunks, err := uow.DocumentChunkRepository().FindAll(ctx, specification.ByDocumentID{DocumentID: doc.Id})
		if err != nil {
			return nil, err
		}
		for _, chunk := range chunks {
			chunk.Embedded = false
			if err := uow.DocumentChunkRepository().Update(ctx, chunk); err != nil {
				return nil, err
			}
		}
		totalChunks += len(chunks)

		payload, err := json.Marshal(dto.PublishEmbedDocumentMessage{DocumentId: doc.Id})
		if err != nil {
			return nil, err
		}
		if err := s.publisherService.Publish(ctx, payload); err != nil {
			return nil, err
		}
	}

	s.log.Info("document", "reindex queued", map[string]interface{}{
		"documents": len(docs),
		"chunks":    totalChunks,
	})

	return &dto.ReindexResponse{Documents: len(docs), Chunks: totalChunks}, nil
}

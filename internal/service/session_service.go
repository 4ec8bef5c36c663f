package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"troubleshoot-agent-be/internal/dto"
	"troubleshoot-agent-be/internal/pkg/logger"
	"troubleshoot-agent-be/internal/repository/memory"
	"troubleshoot-agent-be/internal/repository/specification"
	"troubleshoot-agent-be/internal/repository/unitofwork"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

type ISessionService interface {
	GetSession(ctx context.Context, sessionId string) (*dto.GetSessionResponse, error)
	DeleteSession(ctx context.Context, sessionId string) (*dto.DeleteSessionResponse, error)
}

type sessionService struct {
	uowFactory   unitofwork.RepositoryFactory
	liveSessions *memory.LiveSessionRepository
	rdb          *redis.Client
	log          logger.ILogger
}

func NewSessionService(
	uowFactory unitofwork.RepositoryFactory,
	liveSessions *memory.LiveSessionRepository,
	rdb *redis.Client,
	log logger.ILogger,
) ISessionService {
	return &sessionService{
		uowFactory:   uowFactory,
		liveSessions: liveSessions,
		rdb:          rdb,
		log:          log,
	}
}

const sessionCacheTTL = 5 * time.Minute

func sessionCacheKey(sessionId string) string {
	return "session:" + sessionId
}

// GetSession returns the full conversation for a session. Reads go through
// redis; the chat pipeline invalidates the key on every new message.
func (s *sessionService) GetSession(ctx context.Context, sessionId string) (*dto.GetSessionResponse, error) {
	if s.rdb != nil {
		cached, err := s.rdb.Get(ctx, sessionCacheKey(sessionId)).Result()
		if err == nil {
			var response dto.GetSessionResponse
			if jsonErr := json.Unmarshal([]byte(cached), &response); jsonErr == nil {
				return &response, nil
			}
		}
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.ChatSessionRepository().FindOne(ctx, specification.BySessionID{SessionID: sessionId})
	if err != nil {
		return nil, err
	}
	if session == nil {
		// Unknown session ids are how fresh clients look: hand back an
		// empty history rather than an error.
		return &dto.GetSessionResponse{
			SessionId: sessionId,
			History:   []dto.SessionMessageDTO{},
		}, nil
	}

	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	messageDTOs := make([]dto.SessionMessageDTO, 0, len(messages))
	for _, msg := range messages {
		steps := make([]dto.AgentStepDTO, len(msg.Steps))
		for i, step := range msg.Steps {
			steps[i] = dto.AgentStepDTO{Phase: step.Phase, Text: step.Text}
		}
		sources := make([]dto.SourceDTO, len(msg.Sources))
		for i, src := range msg.Sources {
			sources[i] = dto.SourceDTO{Title: src.Title, URL: src.URL, Score: src.Score}
		}
		messageDTOs = append(messageDTOs, dto.SessionMessageDTO{
			Id:        msg.Id,
			Role:      msg.Role,
			Content:   msg.Content,
			Steps:     steps,
			Sources:   sources,
			HasImage:  msg.HasImage,
			CreatedAt: msg.CreatedAt,
		})
	}

	response := &dto.GetSessionResponse{
		SessionId: session.Id,
		Title:     session.Title,
		Issue:     session.Issue,
		Escalated: session.Escalated,
		History:   messageDTOs,
		CreatedAt: session.CreatedAt,
	}

	if s.rdb != nil {
		if payload, jsonErr := json.Marshal(response); jsonErr == nil {
			if err := s.rdb.Set(ctx, sessionCacheKey(sessionId), payload, sessionCacheTTL).Err(); err != nil {
				s.log.Warn("session", "failed to cache session", map[string]interface{}{
					"session_id": sessionId,
					"error":      err.Error(),
				})
			}
		}
	}

	return response, nil
}

// DeleteSession removes the conversation, its live state and its cache
// entry.
func (s *sessionService) DeleteSession(ctx context.Context, sessionId string) (*dto.DeleteSessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.ChatSessionRepository().FindOne(ctx, specification.BySessionID{SessionID: sessionId})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, fmt.Sprintf("session %s not found", sessionId))
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.ChatMessageRepository().DeleteBySessionId(ctx, sessionId); err != nil {
		return nil, err
	}
	if err := uow.ChatSessionRepository().Delete(ctx, sessionId); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.liveSessions.Delete(sessionId)
	if s.rdb != nil {
		if err := s.rdb.Del(ctx, sessionCacheKey(sessionId)).Err(); err != nil {
			s.log.Warn("session", "failed to drop session cache", map[string]interface{}{
				"session_id": sessionId,
				"error":      err.Error(),
			})
		}
	}

	return &dto.DeleteSessionResponse{SessionId: sessionId}, nil
}

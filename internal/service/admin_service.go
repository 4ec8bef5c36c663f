package service

import (
	"context"
	"time"

	"troubleshoot-agent-be/internal/dto"
	"troubleshoot-agent-be/internal/pkg/logger"
)

type IAdminService interface {
	GetLogs(ctx context.Context, level string, limit, offset int) ([]dto.LogListResponse, error)
}

type adminService struct {
	log logger.ILogger
}

func NewAdminService(log logger.ILogger) IAdminService {
	return &adminService{log: log}
}

func (s *adminService) GetLogs(ctx context.Context, level string, limit, offset int) ([]dto.LogListResponse, error) {
	entries, err := s.log.GetLogs(level, limit, offset)
	if err != nil {
		return nil, err
	}

	out := make([]dto.LogListResponse, 0, len(entries))
	for _, entry := range entries {
		createdAt, _ := time.Parse(time.RFC3339, entry.Timestamp)
		out = append(out, dto.LogListResponse{
			Id:        entry.Id,
			Level:     entry.Level,
			Module:    entry.Module,
			Message:   entry.Message,
			CreatedAt: createdAt,
		})
	}
	return out, nil
}

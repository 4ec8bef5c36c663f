package service

import (
	"context"

	"troubleshoot-agent-be/internal/dto"
	"troubleshoot-agent-be/internal/pkg/logger"
	"troubleshoot-agent-be/pkg/voice"
)

type ITranscribeService interface {
	Transcribe(ctx context.Context, audio []byte, format string) (*dto.TranscribeResponse, error)
}

type transcribeService struct {
	stt *voice.STTClient
	log logger.ILogger
}

func NewTranscribeService(stt *voice.STTClient, log logger.ILogger) ITranscribeService {
	return &transcribeService{
		stt: stt,
		log: log,
	}
}

func (s *transcribeService) Transcribe(ctx context.Context, audio []byte, format string) (*dto.TranscribeResponse, error) {
	result, err := s.stt.Transcribe(ctx, audio, format)
	if err != nil {
		s.log.Error("transcribe", "speech to text failed", map[string]interface{}{
			"bytes": len(audio),
			"error": err.Error(),
		})
		return nil, err
	}

	return &dto.TranscribeResponse{
		Text:            result.Text,
		Confidence:      result.Confidence,
		Language:        result.Language,
		DurationSeconds: result.Duration,
	}, nil
}

package controller

import (
	"io"
	"path/filepath"
	"strings"

	"troubleshoot-agent-be/internal/pkg/serverutils"
	"troubleshoot-agent-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ITranscribeController interface {
	RegisterRoutes(r fiber.Router)
	Transcribe(ctx *fiber.Ctx) error
}

type transcribeController struct {
	transcribeService service.ITranscribeService
}

func NewTranscribeController(transcribeService service.ITranscribeService) ITranscribeController {
	return &transcribeController{
		transcribeService: transcribeService,
	}
}

func (c *transcribeController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/api")
	h.Post("transcribe", c.Transcribe)
}

func (c *transcribeController) Transcribe(ctx *fiber.Ctx) error {
	header, err := ctx.FormFile("audio")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "audio file is required")
	}

	f, err := header.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	audio, err := io.ReadAll(f)
	if err != nil {
		return err
	}

	format := strings.TrimPrefix(filepath.Ext(header.Filename), ".")

	res, err := c.transcribeService.Transcribe(ctx.Context(), audio, format)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success transcribe audio", res))
}

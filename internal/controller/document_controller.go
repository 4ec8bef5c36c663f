package controller

import (
	"io"
	"strings"

	"troubleshoot-agent-be/internal/pkg/serverutils"
	"troubleshoot-agent-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IDocumentController interface {
	RegisterRoutes(r fiber.Router)
	Upload(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
}

type documentController struct {
	documentService service.IDocumentService
}

func NewDocumentController(documentService service.IDocumentService) IDocumentController {
	return &documentController{
		documentService: documentService,
	}
}

func (c *documentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/api")
	h.Post("upload-documents", c.Upload)
	h.Get("documents", c.List)
}

func (c *documentController) Upload(ctx *fiber.Ctx) error {
	form, err := ctx.MultipartForm()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "expected multipart form upload")
	}

	fileHeaders := form.File["files"]
	if len(fileHeaders) == 0 {
		fileHeaders = form.File["file"]
	}
	if len(fileHeaders) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "no files in upload")
	}

	files := make([]service.UploadedFile, 0, len(fileHeaders))
	for _, header := range fileHeaders {
		lower := strings.ToLower(header.Filename)
		if !strings.HasSuffix(lower, ".md") && !strings.HasSuffix(lower, ".txt") {
			return fiber.NewError(fiber.StatusBadRequest, "only .md and .txt documents are accepted")
		}

		f, err := header.Open()
		if err != nil {
			return err
		}
		content, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return err
		}

		files = append(files, service.UploadedFile{
			Filename: header.Filename,
			Content:  content,
		})
	}

	res, err := c.documentService.UploadDocuments(ctx.Context(), files)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success upload documents", res))
}

func (c *documentController) List(ctx *fiber.Ctx) error {
	res, err := c.documentService.ListDocuments(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list documents", res))
}

package controller

import (
	"troubleshoot-agent-be/internal/pkg/serverutils"
	"troubleshoot-agent-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAdminController interface {
	RegisterRoutes(r fiber.Router)
	GetLogs(ctx *fiber.Ctx) error
	Reindex(ctx *fiber.Ctx) error
}

type adminController struct {
	adminService    service.IAdminService
	documentService service.IDocumentService
}

func NewAdminController(adminService service.IAdminService, documentService service.IDocumentService) IAdminController {
	return &adminController{
		adminService:    adminService,
		documentService: documentService,
	}
}

func (c *adminController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/api/admin/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("logs", c.GetLogs)
	h.Post("reindex", c.Reindex)
}

func (c *adminController) GetLogs(ctx *fiber.Ctx) error {
	level := ctx.Query("level", "")
	limit := ctx.QueryInt("limit", 100)
	offset := ctx.QueryInt("offset", 0)

	res, err := c.adminService.GetLogs(ctx.Context(), level, limit, offset)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get logs", res))
}

func (c *adminController) Reindex(ctx *fiber.Ctx) error {
	res, err := c.documentService.Reindex(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success queue reindex", res))
}

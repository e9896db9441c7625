package controller

import (
	"errors"
	"strconv"

	"ai-jobassist-be/internal/dto"
	"ai-jobassist-be/internal/pkg/logger"
	"ai-jobassist-be/internal/pkg/serverutils"
	"ai-jobassist-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IAdminController interface {
	RegisterRoutes(r fiber.Router, jwtMiddleware fiber.Handler)
	ListRoleGrants(ctx *fiber.Ctx) error
	GrantRole(ctx *fiber.Ctx) error
	RevokeRole(ctx *fiber.Ctx) error
	GetUserUsage(ctx *fiber.Ctx) error
	GetLogs(ctx *fiber.Ctx) error
	GetLogDetail(ctx *fiber.Ctx) error
}

type adminController struct {
	roleService  service.IRoleService
	usageService service.IUsageService
	logger       logger.ILogger
}

func NewAdminController(roleService service.IRoleService, usageService service.IUsageService, log logger.ILogger) IAdminController {
	return &adminController{
		roleService:  roleService,
		usageService: usageService,
		logger:       log,
	}
}

func (c *adminController) RegisterRoutes(r fiber.Router, jwtMiddleware fiber.Handler) {
	h := r.Group("/admin", jwtMiddleware, c.requireAdmin)

	h.Get("/role-grants", c.ListRoleGrants)
	h.Post("/role-grants", c.GrantRole)
	h.Delete("/role-grants/:userId", c.RevokeRole)
	h.Get("/users/:userId/usage", c.GetUserUsage)

	// Logs
	h.Get("/logs", c.GetLogs)
	h.Get("/logs/:id", c.GetLogDetail)
}

func (c *adminController) requireAdmin(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	ok, err := c.roleService.IsAdmin(ctx.UserContext(), userId)
	if err != nil {
		return err
	}
	if !ok {
		c.logger.Warn("SECURITY", "Non-admin attempted admin endpoint", map[string]interface{}{
			"user_id": userId.String(),
			"path":    ctx.Path(),
		})
		return httpError(service.ErrForbidden)
	}
	return ctx.Next()
}

func (c *adminController) ListRoleGrants(ctx *fiber.Ctx) error {
	page, _ := strconv.Atoi(ctx.Query("page", "1"))
	limit, _ := strconv.Atoi(ctx.Query("limit", "20"))
	if limit > service.MaxGrantPageSize {
		limit = service.MaxGrantPageSize
	}
	activeOnly := ctx.QueryBool("active", true)

	grants, err := c.roleService.ListGrants(ctx.UserContext(), activeOnly, page, limit)
	if err != nil {
		return httpError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Role grants", grants))
}

func (c *adminController) GrantRole(ctx *fiber.Ctx) error {
	actorId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	var req dto.GrantRoleRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.roleService.GrantRole(ctx.UserContext(), actorId, &req)
	if err != nil {
		return httpError(err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Role granted", res))
}

func (c *adminController) RevokeRole(ctx *fiber.Ctx) error {
	actorId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	userId, err := uuid.Parse(ctx.Params("userId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid user ID")
	}

	res, err := c.roleService.RevokeRole(ctx.UserContext(), actorId, userId)
	if err != nil {
		return httpError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Role revoked", res))
}

func (c *adminController) GetUserUsage(ctx *fiber.Ctx) error {
	userId, err := uuid.Parse(ctx.Params("userId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid user ID")
	}

	res, err := c.usageService.GetUsageStatus(ctx.UserContext(), userId)
	if err != nil {
		return httpError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("User usage", res))
}

func (c *adminController) GetLogs(ctx *fiber.Ctx) error {
	var q dto.AdminLogQuery
	if err := ctx.QueryParser(&q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid query")
	}
	if err := serverutils.ValidateRequest(q); err != nil {
		return err
	}
	if q.Page == 0 {
		q.Page = 1
	}
	if q.Limit == 0 {
		q.Limit = 10
	}

	logs, err := c.logger.GetLogs(q.Level, q.Limit, (q.Page-1)*q.Limit)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("System logs", logs))
}

func (c *adminController) GetLogDetail(ctx *fiber.Ctx) error {
	l, err := c.logger.GetLogById(ctx.Params("id"))
	if errors.Is(err, logger.ErrLogNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "Log not found")
	}
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Log detail", l))
}

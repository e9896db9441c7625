package controller

import (
	"ai-jobassist-be/internal/dto"
	"ai-jobassist-be/internal/pkg/serverutils"
	"ai-jobassist-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IPaywallController interface {
	RegisterRoutes(r fiber.Router, jwtMiddleware fiber.Handler)
	Check(ctx *fiber.Ctx) error
}

type paywallController struct {
	usageService service.IUsageService
}

func NewPaywallController(usageService service.IUsageService) IPaywallController {
	return &paywallController{usageService: usageService}
}

func (c *paywallController) RegisterRoutes(r fiber.Router, jwtMiddleware fiber.Handler) {
	h := r.Group("/paywall", jwtMiddleware)
	h.Post("/check", c.Check)
}

// Check reports whether the user may use a feature right now. A denial is a
// 402 carrying paywall_info.
func (c *paywallController) Check(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}

	var req dto.FeatureCheckRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.usageService.CheckFeature(ctx.UserContext(), userId, &req)
	if err != nil {
		return httpError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Feature available", res))
}

package controller

import (
	"ai-jobassist-be/internal/dto"
	"ai-jobassist-be/internal/pkg/serverutils"
	"ai-jobassist-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAssistantController interface {
	RegisterRoutes(r fiber.Router, jwtMiddleware fiber.Handler)
	CoverLetter(ctx *fiber.Ctx) error
	CVSuggestions(ctx *fiber.Ctx) error
	ATSScore(ctx *fiber.Ctx) error
}

type assistantController struct {
	service service.IAssistantService
}

func NewAssistantController(service service.IAssistantService) IAssistantController {
	return &assistantController{service: service}
}

func (c *assistantController) RegisterRoutes(r fiber.Router, jwtMiddleware fiber.Handler) {
	h := r.Group("/ai", jwtMiddleware)
	h.Post("/cover-letter", c.CoverLetter)
	h.Post("/cv-suggestions", c.CVSuggestions)
	h.Post("/ats-score", c.ATSScore)
}

func (c *assistantController) CoverLetter(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	var req dto.CoverLetterRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.GenerateCoverLetter(ctx.UserContext(), userId, &req)
	if err != nil {
		return httpError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Cover letter generated", res))
}

func (c *assistantController) CVSuggestions(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	var req dto.CVSuggestionsRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.SuggestCVImprovements(ctx.UserContext(), userId, &req)
	if err != nil {
		return httpError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("CV suggestions generated", res))
}

func (c *assistantController) ATSScore(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	var req dto.ATSScoreRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.ScoreATS(ctx.UserContext(), userId, &req)
	if err != nil {
		return httpError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("ATS score computed", res))
}

package controller

import (
	"errors"

	"ai-jobassist-be/internal/service"
	"ai-jobassist-be/pkg/llm"

	"github.com/gofiber/fiber/v2"
)

// httpError turns service sentinels into status codes. Everything else is
// left for the error middleware.
func httpError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, service.ErrPlanNotFound), errors.Is(err, service.ErrNoSubscription):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrPlanNotPurchasable), errors.Is(err, service.ErrInvalidRole),
		errors.Is(err, service.ErrEmptyDocument), errors.Is(err, service.ErrWebhookRejected):
		return fiber.NewError(fiber.StatusBadRequest, rootMessage(err))
	case errors.Is(err, service.ErrAlreadySubscribed):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrForbidden):
		return fiber.NewError(fiber.StatusForbidden, "Forbidden")
	case errors.Is(err, service.ErrBillingUnavailable), errors.Is(err, service.ErrAssistantUnavailable),
		errors.Is(err, llm.ErrUnavailable):
		return fiber.NewError(fiber.StatusServiceUnavailable, rootMessage(err))
	}
	return err
}

// rootMessage keeps the sentinel text and drops wrapped internals.
func rootMessage(err error) string {
	for _, sentinel := range []error{
		service.ErrPlanNotPurchasable, service.ErrInvalidRole, service.ErrEmptyDocument,
		service.ErrWebhookRejected, service.ErrBillingUnavailable, service.ErrAssistantUnavailable,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return "Service unavailable"
}

func parseBody(ctx *fiber.Ctx, out interface{}) error {
	if err := ctx.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	return nil
}

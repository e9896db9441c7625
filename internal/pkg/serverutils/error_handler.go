package serverutils

import (
	"errors"

	"ai-jobassist-be/internal/dto"
	"ai-jobassist-be/internal/mapper"
	"ai-jobassist-be/internal/pkg/logger"
	"ai-jobassist-be/pkg/paywall"

	"github.com/gofiber/fiber/v2"
)

const genericServerError = "Something went wrong. Please try again."

// ErrorHandlerMiddleware renders every error returned further down the chain.
// Internal details go to the log only.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	accessMapper := mapper.NewAccessMapper()

	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var (
			quotaErr  *paywall.QuotaExceededError
			configErr *paywall.ConfigurationError
			validErr  *ValidationError
			fiberErr  *fiber.Error
		)

		switch {
		case errors.Is(err, ErrUnauthenticated):
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Unauthorized"))

		case errors.As(err, &quotaErr):
			res := dto.QuotaExceededResponse{
				Success:   false,
				Code:      fiber.StatusPaymentRequired,
				Message:   "Usage limit reached",
				ErrorType: "QUOTA_EXCEEDED",
			}
			if quotaErr.Decision != nil && quotaErr.Decision.PaywallInfo != nil {
				res.Message = quotaErr.Decision.PaywallInfo.Message
				res.Data.PaywallInfo = accessMapper.PaywallInfoToResponse(quotaErr.Decision.PaywallInfo)
			}
			return ctx.Status(fiber.StatusPaymentRequired).JSON(res)

		case errors.As(err, &configErr):
			log.Error("PAYWALL", "Feature misconfigured", map[string]interface{}{
				"error":   err.Error(),
				"feature": configErr.Feature,
				"tier":    configErr.Tier,
				"path":    ctx.Path(),
			})
			return ctx.Status(fiber.StatusForbidden).JSON(ErrorResponse(fiber.StatusForbidden, "This feature is not available right now."))

		case errors.As(err, &validErr):
			return ctx.Status(fiber.StatusBadRequest).JSON(ErrorResponseWithData(fiber.StatusBadRequest, "Invalid request", validErr.Fields))

		case errors.As(err, &fiberErr):
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
		}

		log.Error("HTTP", "Unhandled error", map[string]interface{}{
			"error":  err.Error(),
			"method": ctx.Method(),
			"path":   ctx.Path(),
		})
		return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse(fiber.StatusInternalServerError, genericServerError))
	}
}

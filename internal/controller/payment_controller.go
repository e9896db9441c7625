package controller

import (
	"ai-jobassist-be/internal/dto"
	"ai-jobassist-be/internal/pkg/serverutils"
	"ai-jobassist-be/internal/service"
	"ai-jobassist-be/pkg/payment/stripe"

	"github.com/gofiber/fiber/v2"
)

type IPaymentController interface {
	RegisterRoutes(r fiber.Router, jwtMiddleware fiber.Handler)
	Checkout(ctx *fiber.Ctx) error
	GetStatus(ctx *fiber.Ctx) error
	CancelSubscription(ctx *fiber.Ctx) error
	Portal(ctx *fiber.Ctx) error
	Webhook(ctx *fiber.Ctx) error
}

type paymentController struct {
	service service.IPaymentService
}

func NewPaymentController(service service.IPaymentService) IPaymentController {
	return &paymentController{service: service}
}

func (c *paymentController) RegisterRoutes(r fiber.Router, jwtMiddleware fiber.Handler) {
	h := r.Group("/payment")
	h.Post("/stripe/webhook", c.Webhook)

	// Protected Routes
	h.Post("/checkout", jwtMiddleware, c.Checkout)
	h.Get("/status", jwtMiddleware, c.GetStatus)
	h.Post("/cancel", jwtMiddleware, c.CancelSubscription)
	h.Post("/portal", jwtMiddleware, c.Portal)
}

func (c *paymentController) Checkout(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	var req dto.CheckoutRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.CreateCheckout(ctx.UserContext(), userId, &req)
	if err != nil {
		return httpError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Checkout session created", res))
}

func (c *paymentController) GetStatus(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.GetSubscriptionStatus(ctx.UserContext(), userId)
	if err != nil {
		return httpError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Subscription status", res))
}

func (c *paymentController) CancelSubscription(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	if err := c.service.CancelSubscription(ctx.UserContext(), userId); err != nil {
		return httpError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Subscription will end at the close of the current period", nil))
}

func (c *paymentController) Portal(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.CreatePortalSession(ctx.UserContext(), userId)
	if err != nil {
		return httpError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Billing portal session created", res))
}

// Webhook needs the raw body for signature verification. 200 acknowledges the
// event, 400 rejects it for good, 500 asks Stripe to retry.
func (c *paymentController) Webhook(ctx *fiber.Ctx) error {
	payload := append([]byte(nil), ctx.Body()...)

	res, err := c.service.HandleWebhook(ctx.UserContext(), payload, ctx.Get(stripe.SignatureHeader))
	if err != nil {
		return httpError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Webhook processed", res))
}

package bootstrap

import (
	"context"
	"fmt"
	"time"

	"ai-jobassist-be/internal/config"
	"ai-jobassist-be/internal/controller"
	"ai-jobassist-be/internal/pkg/logger"
	"ai-jobassist-be/internal/pkg/mailer"
	"ai-jobassist-be/internal/repository/memory"
	"ai-jobassist-be/internal/repository/redisstore"
	"ai-jobassist-be/internal/repository/unitofwork"
	"ai-jobassist-be/internal/service"
	"ai-jobassist-be/pkg/access"
	"ai-jobassist-be/pkg/events"
	"ai-jobassist-be/pkg/llm/factory"
	pktNats "ai-jobassist-be/pkg/nats"
	"ai-jobassist-be/pkg/payment/stripe"
	"ai-jobassist-be/pkg/paywall"
	"ai-jobassist-be/pkg/plans"
	"ai-jobassist-be/pkg/subscription"
	"ai-jobassist-be/pkg/usage"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// BillingTopic is the in-process topic carrying billing events to the
// notification consumer.
const BillingTopic = "billing.events"

type Container struct {
	Logger logger.ILogger

	// Controllers
	PlanController      controller.PlanController
	PaywallController   controller.IPaywallController
	AssistantController controller.IAssistantController
	PaymentController   controller.IPaymentController
	AdminController     controller.IAdminController

	// Services used outside HTTP (cmd/admin)
	RoleService  service.IRoleService
	UsageService service.IUsageService

	// Background Services (Exposed for main.go to run)
	NotificationConsumer service.INotificationConsumer

	closers []func()
}

// NewContainer wires every component. A nil db selects the in-memory store.
func NewContainer(db *gorm.DB, cfg *config.Config, sysLogger logger.ILogger) (*Container, error) {
	c := &Container{Logger: sysLogger}

	// 1. Plan catalog
	catalog := plans.Default()
	if cfg.App.PlansFile != "" {
		loaded, err := plans.Load(cfg.App.PlansFile)
		if err != nil {
			return nil, fmt.Errorf("load plan catalog: %w", err)
		}
		catalog = loaded
	}

	// 2. Persistence
	uowFactory, err := c.newRepositoryFactory(db, cfg)
	if err != nil {
		return nil, err
	}

	// 3. Event Bus
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	publisher := events.MultiPublisher{events.NewWatermillPublisher(BillingTopic, pubSub)}
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL, sysLogger)
		if err != nil {
			sysLogger.Warn("NATS", "Failed to connect, external fan-out disabled", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			publisher = append(publisher, natsPub)
			c.closers = append(c.closers, natsPub.Close)
		}
	}

	// 4. Access control core
	anchor, err := usage.ParseAnchorMode(cfg.Usage.PeriodAnchor)
	if err != nil {
		return nil, err
	}
	resolver := access.NewResolver(uowFactory, catalog, sysLogger)
	counter := usage.NewCounter(uowFactory, anchor)
	gate := paywall.NewGate(resolver, counter, catalog, publisher, sysLogger)
	synchronizer := subscription.NewSynchronizer(uowFactory, catalog, publisher, sysLogger)

	// 5. External collaborators
	stripeClient := stripe.NewClient(stripe.Config{
		SecretKey:       cfg.Stripe.SecretKey,
		SuccessURL:      cfg.Stripe.SuccessURL,
		CancelURL:       cfg.Stripe.CancelURL,
		PortalReturnURL: cfg.Stripe.PortalReturnURL,
	})
	processor := stripe.NewProcessor(cfg.Stripe.WebhookSecret)
	if !processor.Configured() {
		sysLogger.Warn("PAYMENT", "STRIPE_WEBHOOK_SECRET is not set; webhooks will be refused", nil)
	}

	llmProvider, err := factory.NewLLMProvider(factory.Config{
		Provider:       cfg.Ai.LLMProvider,
		BaseURL:        cfg.Ai.BaseURL,
		APIKey:         cfg.Ai.APIKey,
		DefaultModel:   cfg.Ai.CheapModel,
		Timeout:        cfg.Ai.Timeout,
		BreakerMaxFail: cfg.Ai.BreakerMaxFail,
		BreakerTimeout: cfg.Ai.BreakerTimeout,
	}, sysLogger)
	if err != nil {
		return nil, fmt.Errorf("initialize LLM provider: %w", err)
	}
	sysLogger.Info("BOOT", "LLM provider ready", map[string]interface{}{
		"provider": cfg.Ai.LLMProvider,
		"cheap":    cfg.Ai.CheapModel,
		"capable":  cfg.Ai.CapableModel,
	})

	emailService := mailer.NewEmailService(mailer.Config{
		Host:       cfg.SMTP.Host,
		Port:       cfg.SMTP.Port,
		Username:   cfg.SMTP.Email,
		Password:   cfg.SMTP.Password,
		SenderName: cfg.SMTP.SenderName,
		ClientURL:  cfg.App.ClientURL,
	}, sysLogger)

	// 6. Services
	usageService := service.NewUsageService(gate, resolver, counter, catalog)
	roleService := service.NewRoleService(uowFactory, publisher, sysLogger)
	assistantService := service.NewAssistantService(
		gate,
		llmProvider,
		service.ModelNames{Cheap: cfg.Ai.CheapModel, Capable: cfg.Ai.CapableModel},
		cfg.Ai.Timeout,
		sysLogger,
	)
	paymentService := service.NewPaymentService(
		uowFactory,
		catalog,
		resolver,
		stripeClient,
		processor,
		synchronizer,
		sysLogger,
	)

	c.RoleService = roleService
	c.UsageService = usageService
	c.NotificationConsumer = service.NewNotificationConsumer(pubSub, BillingTopic, uowFactory, catalog, emailService, sysLogger)

	// 7. Controllers
	c.PlanController = controller.NewPlanController(usageService)
	c.PaywallController = controller.NewPaywallController(usageService)
	c.AssistantController = controller.NewAssistantController(assistantService)
	c.PaymentController = controller.NewPaymentController(paymentService)
	c.AdminController = controller.NewAdminController(roleService, usageService, sysLogger)

	return c, nil
}

func (c *Container) newRepositoryFactory(db *gorm.DB, cfg *config.Config) (unitofwork.RepositoryFactory, error) {
	if db == nil {
		if cfg.Usage.Backend != "memory" {
			c.Logger.Warn("BOOT", "Memory store ignores USAGE_BACKEND", map[string]interface{}{
				"usage_backend": cfg.Usage.Backend,
			})
		}
		return memory.NewRepositoryFactory(memory.NewStore()), nil
	}

	switch cfg.Usage.Backend {
	case "postgres", "":
		return unitofwork.NewRepositoryFactory(db), nil
	case "redis":
		rdb, err := newRedisClient(cfg.App.RedisURL)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, func() { _ = rdb.Close() })
		return unitofwork.NewRepositoryFactory(db, unitofwork.WithUsageRepository(redisstore.NewUsageRepository(rdb))), nil
	}
	return nil, fmt.Errorf("unknown usage backend %q", cfg.Usage.Backend)
}

// newRedisClient fails fast: the counter fails closed, so a dead Redis at boot
// would deny every metered request.
func newRedisClient(url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect to Redis: %w", err)
	}
	return rdb, nil
}

func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

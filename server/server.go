package server

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"helpdesk/config"
	"helpdesk/events"
	"helpdesk/handlers"
	"helpdesk/kafka"
	"helpdesk/limiter"
	custommiddleware "helpdesk/middleware"
	"helpdesk/mailer"
	"helpdesk/models"
	"helpdesk/redis"
	"helpdesk/services"
)

type Server struct {
	Echo   *echo.Echo
	DB     *gorm.DB
	Config *config.Config
	Bus    *events.Bus
	Redis  *redis.RedisClient

	AuthHandler         *handlers.AuthHandler
	AgentHandler        *handlers.AgentHandler
	ConversationHandler *handlers.ConversationHandler
	TicketHandler       *handlers.TicketHandler
	AutomationHandler   *handlers.AutomationHandler
	NotificationHandler *handlers.NotificationHandler
	DepartmentHandler   *handlers.DepartmentHandler
	SavedReplyHandler   *handlers.SavedReplyHandler
	KBHandler           *handlers.KBHandler
	VisitorHandler      *handlers.VisitorHandler
	WSHandler           *handlers.ConversationWSHandler

	consumer *kafka.Consumer
	cancel   context.CancelFunc
}

func NewServer() *Server {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	db, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	if err := models.AutoMigrateAll(db); err != nil {
		log.Fatal("Failed to auto-migrate database:", err)
	}

	redisClient, err := redis.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.Fatal("Failed to connect to redis:", err)
	}

	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"http://localhost:5173"},
		AllowMethods:     []string{echo.GET, echo.POST, echo.PUT, echo.DELETE, echo.PATCH},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
		ExposeHeaders:    []string{echo.HeaderContentLength},
		MaxAge:           86400,
	}))

	bus := events.NewBus()
	smtpMailer := mailer.NewSMTPMailer(cfg.SMTP)

	authService := services.NewAuthService(db, &cfg.Auth)
	agentService := services.NewAgentService(db)
	conversationService := services.NewConversationService(db, bus)
	messageService := services.NewMessageService(db, bus)
	ticketService := services.NewTicketService(db, bus)
	automationService := services.NewAutomationService(db)
	notificationService := services.NewNotificationService(db, smtpMailer)
	departmentService := services.NewDepartmentService(db)
	savedReplyService := services.NewSavedReplyService(db)
	ratingService := services.NewRatingService(db)
	kbService := services.NewKBService(db)
	routerService := services.NewRouterService(db, redisClient)

	wsHandler := handlers.NewConversationWSHandler(messageService, agentService, redisClient.Client)

	wireEvents(bus, automationService, notificationService)
	wsHandler.AttachBus(bus)

	s := &Server{
		Echo:                e,
		DB:                  db,
		Config:              &cfg,
		Bus:                 bus,
		Redis:               redisClient,
		AuthHandler:         handlers.NewAuthHandler(authService),
		AgentHandler:        handlers.NewAgentHandler(agentService, ratingService),
		ConversationHandler: handlers.NewConversationHandler(conversationService, messageService),
		TicketHandler:       handlers.NewTicketHandler(ticketService),
		AutomationHandler:   handlers.NewAutomationHandler(automationService),
		NotificationHandler: handlers.NewNotificationHandler(notificationService),
		DepartmentHandler:   handlers.NewDepartmentHandler(departmentService),
		SavedReplyHandler:   handlers.NewSavedReplyHandler(savedReplyService),
		KBHandler:           handlers.NewKBHandler(kbService),
		VisitorHandler: handlers.NewVisitorHandler(
			authService, conversationService, messageService, ticketService,
			ratingService, routerService, kbService, redisClient,
			services.Policy(cfg.Routing.Policy),
		),
		WSHandler: wsHandler,
	}

	s.setupKafka(bus)

	limitManager := limiter.NewManager(redisClient.Client, &limiter.FixedWindowStrategy{})
	rateLimit := custommiddleware.NewRateLimitMiddleware(limitManager, custommiddleware.RateLimitConfig{
		Limit:  30,
		Window: time.Minute,
	})
	authMiddleware := custommiddleware.AuthMiddleware(authService)
	agentMiddleware := custommiddleware.AgentMiddleware(agentService)
	adminMiddleware := custommiddleware.AdminMiddleware(agentService)
	s.SetupRoutes(authMiddleware, agentMiddleware, adminMiddleware, rateLimit)

	return s
}

// wireEvents subscribes the local processing pipeline. Subscriber order
// is load-bearing: automations run before notifications so the
// dispatcher sees assignments made by rules, then the websocket bridge,
// then the Kafka relay. Events relayed from another instance carry an
// Origin and were already run through automations and notifications
// there against the shared database, so here they feed only the
// websocket bridge.
func wireEvents(bus *events.Bus, automationService *services.AutomationService, notificationService *services.NotificationService) {
	local := func(fn func(events.Event)) events.Handler {
		return func(e events.Event) {
			if e.Origin != "" {
				return
			}
			fn(e)
		}
	}

	bus.Subscribe(events.NewConversation, local(func(e events.Event) {
		automationService.TriggerNewConversation(e.ConversationID)
	}))
	bus.Subscribe(events.NewMessage, local(func(e events.Event) {
		automationService.TriggerNewMessage(e.MessageID, e.ConversationID)
	}))
	bus.Subscribe(events.NewTicket, local(func(e events.Event) {
		automationService.TriggerNewTicket(e.TicketID)
	}))

	bus.Subscribe(events.NewConversation, local(func(e events.Event) {
		notificationService.OnNewConversation(e.ConversationID)
	}))
	bus.Subscribe(events.NewMessage, local(func(e events.Event) {
		notificationService.OnNewMessage(e.MessageID, e.ConversationID)
	}))
	bus.Subscribe(events.NewTicket, local(func(e events.Event) {
		notificationService.OnNewTicket(e.TicketID)
	}))
	bus.Subscribe(events.TicketReply, local(func(e events.Event) {
		notificationService.OnTicketReply(e.ReplyID, e.TicketID)
	}))
}

// setupKafka connects the cross-instance event relay. Without brokers
// configured the server runs standalone and the bus stays local.
func (s *Server) setupKafka(bus *events.Bus) {
	cfg := &s.Config.Kafka
	if len(cfg.Brokers) == 0 {
		return
	}

	var saramaCfg, err = kafka.NewSaramaConfig(cfg)
	if cfg.Mechanism != "" {
		saramaCfg, err = kafka.NewSaramaConfigWithSCRAM(cfg, cfg.Mechanism)
	}
	if err != nil {
		log.Fatal("Failed to build kafka config:", err)
	}

	producer, err := kafka.NewProducer(cfg.Brokers, saramaCfg)
	if err != nil {
		log.Fatal("Failed to create kafka producer:", err)
	}

	relay := kafka.NewRelay(producer, cfg.Topic)
	relay.Attach(bus)

	handler := kafka.NewEventHandler(bus, relay.InstanceID())
	consumer, err := kafka.NewConsumer(cfg.Brokers, cfg.GroupID, []string{cfg.Topic}, saramaCfg, handler)
	if err != nil {
		log.Fatal("Failed to create kafka consumer:", err)
	}
	s.consumer = consumer

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go func() {
		if err := consumer.Start(ctx); err != nil {
			log.Error("Kafka consumer stopped:", err)
		}
	}()
}

func (s *Server) Start(addr string) error {
	return s.Echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}
	if s.consumer != nil {
		s.consumer.Close()
	}
	s.Redis.Close()
	return s.Echo.Shutdown(ctx)
}

package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"studygroup-chat-service/internal/config"
	"studygroup-chat-service/internal/db"
	"studygroup-chat-service/internal/email"
	"studygroup-chat-service/internal/handlers"
	"studygroup-chat-service/internal/middleware"
	"studygroup-chat-service/internal/notify"
	"studygroup-chat-service/internal/observability"
	"studygroup-chat-service/internal/rabbitmq"
	"studygroup-chat-service/internal/repositories"
	"studygroup-chat-service/internal/scheduler"
	"studygroup-chat-service/internal/telemetry"
	"studygroup-chat-service/internal/ws"
)

const serviceName = "studygroup-chat-service"

func main() {
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := observability.InitTracing(ctx, serviceName, cfg.OTLPEndpoint)
	if err != nil {
		log.Fatalf("failed to init tracing: %v", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Printf("tracing shutdown: %v", err)
		}
	}()

	database, err := db.Connect(cfg.DBDSN)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}
	defer database.Close()

	auditPublisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	defer auditPublisher.Close()
	audit := telemetry.NewAuditEmitter(auditPublisher, "audit.chat", serviceName, cfg.Environment)

	if cfg.AMQPURL != "" {
		eventPublisher, err := observability.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			log.Printf("ws event publisher disabled: %v", err)
		} else {
			observability.SetPublisher(eventPublisher)
			defer eventPublisher.Close()
		}
	}

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
	}

	groupRepo := repositories.NewGroupRepo(database)
	messageRepo := repositories.NewMessageRepo(database)
	replyRepo := repositories.NewReplyRepo(database)
	pollRepo := repositories.NewPollRepo(database)
	pinRepo := repositories.NewPinRepo(database)
	notificationRepo := repositories.NewNotificationRepo(database)
	eventRepo := repositories.NewEventRepo(database)
	userRepo := repositories.NewUserRepo(database)

	hub := ws.NewHub()
	notifier := notify.NewNotifier(notificationRepo, hub)
	mailSender := email.NewSender(cfg.SMTPAddr, cfg.SMTPFrom, cfg.SMTPUsername, cfg.SMTPPassword)

	groupHandler := handlers.NewGroupHandler(groupRepo, userRepo, audit)
	chatHandler := handlers.NewChatHandler(messageRepo, replyRepo, pollRepo, groupRepo, userRepo, hub, audit)
	pollHandler := handlers.NewPollHandler(pollRepo, messageRepo, groupRepo, userRepo, hub, audit)
	pinHandler := handlers.NewPinHandler(pinRepo, messageRepo, groupRepo, userRepo, audit)
	notificationHandler := handlers.NewNotificationHandler(notificationRepo, notifier, audit)
	eventHandler := handlers.NewEventHandler(eventRepo, groupRepo, userRepo, notifier, mailSender, audit)

	validator := middleware.NewTokenValidator(cfg.JWTSecret)
	groupWS := ws.NewGroupWebSocketHandler(hub, groupRepo, validator)
	notificationWS := ws.NewNotificationWebSocketHandler(hub, validator)

	reminders := scheduler.New(eventRepo, groupRepo, notifier, mailSender, time.Duration(cfg.ReminderIntervalSeconds)*time.Second)
	go reminders.Run(ctx)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(observability.HTTPMetricsMiddleware())
	if redisClient != nil {
		router.Use(middleware.RateLimiter(redisClient))
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authMiddleware := middleware.AuthMiddleware(validator)

	router.POST("/groups", authMiddleware, groupHandler.CreateGroup)
	router.GET("/groups", authMiddleware, groupHandler.ListGroups)
	router.GET("/groups/:group_id/members", authMiddleware, groupHandler.ListMembers)

	router.GET("/groups/:group_id/messages", authMiddleware, chatHandler.GetGroupMessages)
	router.POST("/groups/:group_id/messages", authMiddleware, chatHandler.PostGroupMessage)
	router.DELETE("/groups/:group_id/messages/:message_id", authMiddleware, chatHandler.DeleteGroupMessage)

	router.POST("/groups/:group_id/polls", authMiddleware, pollHandler.CreatePoll)
	router.GET("/polls/:poll_id", authMiddleware, pollHandler.GetPoll)
	router.POST("/polls/:poll_id/options/:option_id/vote", authMiddleware, pollHandler.Vote)

	router.POST("/groups/:group_id/pins/:message_id", authMiddleware, pinHandler.PinMessage)
	router.DELETE("/groups/:group_id/pins/:message_id", authMiddleware, pinHandler.UnpinMessage)
	router.GET("/groups/:group_id/pins", authMiddleware, pinHandler.ListPinned)

	router.POST("/notifications", authMiddleware, notificationHandler.CreateNotification)
	router.GET("/notifications", authMiddleware, notificationHandler.ListNotifications)
	router.GET("/notifications/unread", authMiddleware, notificationHandler.ListUnreadNotifications)
	router.PUT("/notifications/:notification_id/read", authMiddleware, notificationHandler.MarkRead)
	router.PUT("/notifications/read-all", authMiddleware, notificationHandler.MarkAllRead)
	router.DELETE("/notifications/read", authMiddleware, notificationHandler.DeleteRead)
	router.DELETE("/notifications/selected", authMiddleware, notificationHandler.DeleteSelected)

	router.POST("/groups/:group_id/events", authMiddleware, eventHandler.CreateEvent)
	router.GET("/groups/:group_id/events", authMiddleware, eventHandler.ListGroupEvents)
	router.GET("/events/upcoming", authMiddleware, eventHandler.ListUpcoming)
	router.GET("/events/:event_id", authMiddleware, eventHandler.GetEvent)
	router.PUT("/events/:event_id", authMiddleware, eventHandler.UpdateEvent)
	router.DELETE("/events/:event_id", authMiddleware, eventHandler.DeleteEvent)

	router.GET("/ws/groups/:group_id", groupWS.Handle)
	router.GET("/ws/notifications", notificationWS.Handle)

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

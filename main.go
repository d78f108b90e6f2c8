package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"chat-notifier/internal/config"
	"chat-notifier/internal/firebase"
	"chat-notifier/internal/handlers"
	"chat-notifier/internal/middleware"
	"chat-notifier/internal/notifications"
	"chat-notifier/internal/observability"
	"chat-notifier/internal/rabbitmq"
	"chat-notifier/internal/reactors"
	"chat-notifier/internal/repositories"
	"chat-notifier/internal/telemetry"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	shutdownTracing, err := telemetry.SetupTracing(ctx, cfg.ServiceName, cfg.Env, cfg.OTLPEndpoint)
	if err != nil {
		log.Fatalf("failed to set up tracing: %v", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Printf("tracing shutdown: %v", err)
		}
	}()

	clients, err := firebase.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to connect to firebase: %v", err)
	}
	defer clients.Close()

	publisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	defer publisher.Close()

	audit := telemetry.NewAuditEmitter(publisher, cfg.AuditRoutingKey, cfg.ServiceName, cfg.Env)

	userRepo := repositories.NewUserRepo(clients.Firestore)
	conversationRepo := repositories.NewConversationRepo(clients.Firestore)
	groupRepo := repositories.NewGroupRepo(clients.Firestore)

	notifier := notifications.NewNotifier(userRepo, clients.Messaging, cfg.WebAppURL)
	reactor := reactors.NewReactor(userRepo, conversationRepo, groupRepo, notifier, audit)

	consumer, err := rabbitmq.NewConsumer(cfg.AMQPURL, cfg.AMQPExchange, cfg.TriggerQueue)
	if err != nil {
		log.Printf("trigger consumer disabled: %v", err)
	} else {
		defer consumer.Close()
		go func() {
			if err := consumer.Start(ctx, reactor); err != nil {
				log.Printf("trigger consumer stopped: %v", err)
			}
		}()
	}

	verifier := firebase.NewAuthVerifier(clients.Auth)
	markAsReadHandler := handlers.NewMarkAsReadHandler(conversationRepo, audit)

	router := gin.Default()

	// middlewares
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(observability.HTTPMetricsMiddleware())
	router.Use(otelgin.Middleware(cfg.ServiceName))

	authMiddleware := middleware.AuthMiddleware(verifier)

	router.POST("/markAsRead", authMiddleware, markAsReadHandler.MarkAsRead)
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handlers.RegisterDebugRoutes(router, audit, cfg.DebugRoutes)

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"devhub/internal/auth"
	"devhub/internal/config"
	"devhub/internal/db"
	grpcserver "devhub/internal/grpc"
	"devhub/internal/handlers"
	"devhub/internal/jobs"
	"devhub/internal/middleware"
	"devhub/internal/observability"
	"devhub/internal/rabbitmq"
	"devhub/internal/repositories"
	"devhub/internal/services"
	"devhub/internal/telemetry"
	"devhub/internal/tracing"
	"devhub/internal/ws"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("failed to load .env: %v", err)
	}
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(ctx, cfg.ServiceName, cfg.Environment, cfg.OTLPEndpoint)
	if err != nil {
		log.Fatalf("failed to set up tracing: %v", err)
	}

	database, err := db.Connect(cfg.DBDSN, db.Options{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}
	defer database.Close()

	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.JWTIssuer)
	if err != nil {
		log.Fatalf("failed to configure auth: %v", err)
	}

	publisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.ServiceName)
	defer publisher.Close()
	log.Printf("amqp publisher mode=%s reason=%s", rabbitmq.PublisherMode(publisher), rabbitmq.PublisherNoopReason(publisher))
	observability.SetPublisher(publisher)
	auditEmitter := telemetry.NewAuditEmitter(publisher, cfg.AuditRoutingKey, cfg.ServiceName, cfg.Environment)

	userRepo := repositories.NewUserRepo(database)
	competitionRepo := repositories.NewCompetitionRepo(database)
	entryRepo := repositories.NewEntryRepo(database)
	chatRepo := repositories.NewChatRepo(database)
	messageRepo := repositories.NewMessageRepo(database)

	hub := ws.NewHub()

	competitionSvc := services.NewCompetitionService(competitionRepo, entryRepo, userRepo, time.Now)
	chatSvc := services.NewChatService(chatRepo, messageRepo, userRepo, hub)

	competitionHandler := handlers.NewCompetitionHandler(competitionSvc)
	entryHandler := handlers.NewEntryHandler(competitionSvc)
	chatHandler := handlers.NewChatHandler(chatSvc)
	messageHandler := handlers.NewMessageHandler(chatSvc)
	relay := ws.NewRelayHandler(hub, chatSvc, ws.RelayOptions{
		AllowedOrigin: cfg.ClientOrigin,
		ClientEcho:    cfg.RelayClientEcho,
	})

	router := gin.Default()

	// middlewares
	router.Use(observability.RequestIDMiddleware())
	router.Use(otelgin.Middleware(cfg.ServiceName))
	router.Use(observability.HTTPMetricsMiddleware())
	router.Use(handlers.AuditMutations(auditEmitter))

	authMiddleware := middleware.AuthMiddleware(tokens)

	router.GET("/metrics", gin.WrapH(observability.MetricsHandler()))
	router.GET("/healthz", healthz(database))
	handlers.RegisterDebugRoutes(router, auditEmitter, hub, cfg.DebugRoutes)

	router.GET("/competitions", competitionHandler.ListCompetitions)
	router.GET("/competitions/:id", competitionHandler.GetCompetition)
	router.GET("/competitions/:id/leaderboard", competitionHandler.Leaderboard)
	router.POST("/competitions", authMiddleware, competitionHandler.CreateCompetition)
	router.PATCH("/competitions/:id/finalize", authMiddleware, competitionHandler.Finalize)

	router.GET("/entries", entryHandler.ListEntries)
	router.POST("/entries", authMiddleware, entryHandler.SubmitEntry)
	router.PATCH("/entries/:id/vote", authMiddleware, entryHandler.Vote)
	router.DELETE("/entries/:id", authMiddleware, entryHandler.DeleteEntry)

	router.GET("/chats", authMiddleware, chatHandler.ListChats)
	router.POST("/chats/start", authMiddleware, chatHandler.StartChat)
	router.POST("/messages", authMiddleware, messageHandler.SendMessage)
	router.GET("/messages/:chatId", authMiddleware, messageHandler.GetMessages)

	router.GET("/ws", authMiddleware, relay.Handle)

	if cfg.AutoCloseInterval > 0 {
		go jobs.NewAutoCloser(competitionSvc, cfg.AutoCloseInterval).Run(ctx)
	}

	var health *grpcserver.HealthServer
	if cfg.GRPCHealthAddr != "" {
		lis, err := net.Listen("tcp", cfg.GRPCHealthAddr)
		if err != nil {
			log.Fatalf("failed to listen for grpc health: %v", err)
		}
		health = grpcserver.NewHealthServer(database, cfg.ServiceName)
		health.Refresh(ctx)
		go health.Watch(ctx, 10*time.Second)
		go func() {
			if err := health.Serve(lis); err != nil {
				log.Printf("grpc health server error: %v", err)
			}
		}()
		log.Printf("grpc health listening on %s", cfg.GRPCHealthAddr)
	}

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: router}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()
	log.Printf("devhub listening on :%s", cfg.Port)

	<-ctx.Done()
	log.Println("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown: %v", err)
	}
	if health != nil {
		health.Stop()
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Printf("tracing shutdown: %v", err)
	}
}

func healthz(database *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := database.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

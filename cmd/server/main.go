package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/baikalhq/groupware/internal/adapter/ai"
	httpadapter "github.com/baikalhq/groupware/internal/adapter/http"
	"github.com/baikalhq/groupware/internal/adapter/http/middleware"
	"github.com/baikalhq/groupware/internal/adapter/persistence"
	"github.com/baikalhq/groupware/internal/config"
	"github.com/baikalhq/groupware/internal/service/jwt"
	"github.com/baikalhq/groupware/internal/service/logger"
	"github.com/baikalhq/groupware/internal/service/password"
	"github.com/baikalhq/groupware/internal/service/ratelimit"
	"github.com/baikalhq/groupware/internal/usecase"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	structuredLogger := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		ServiceName: "groupware",
	})
	structuredLogger.Info(ctx, "application starting", map[string]interface{}{
		"env": cfg.Environment,
	})

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	structuredLogger.Info(ctx, "database connection established", nil)

	rateLimitService, err := ratelimit.New(ratelimit.Config{
		Enabled:  cfg.RateLimitEnabled,
		RedisURL: cfg.RedisURL,
	}, structuredLogger)
	if err != nil {
		log.Fatalf("Failed to initialize rate limit service: %v", err)
	}

	tokenService, err := jwt.NewJWTService(cfg.JWTSecret, cfg.AccessTokenTTL)
	if err != nil {
		log.Fatalf("Failed to initialize JWT service: %v", err)
	}
	passwordService := password.NewBcryptPasswordService(cfg.BcryptCost)

	aiConfig := ai.Config{
		Provider:  cfg.AIProvider,
		TimeoutMs: cfg.AITimeoutMs,
	}
	switch cfg.AIProvider {
	case "openai":
		aiConfig.APIKey = cfg.OpenAIAPIKey
		aiConfig.Model = cfg.OpenAIModel
	case "ollama":
		aiConfig.BaseURL = cfg.OllamaBaseURL
		aiConfig.Model = cfg.OllamaModel
	}
	llm, err := ai.NewChatCompletionService(aiConfig)
	if err != nil {
		log.Fatalf("Failed to initialize AI provider: %v", err)
	}
	structuredLogger.Info(ctx, "AI provider initialized", map[string]interface{}{
		"provider": cfg.AIProvider,
	})

	// Repositories
	approvalRepo := persistence.NewPostgresApprovalRepository(db)
	userRepo := persistence.NewPostgresUserRepository(db)
	taskRepo := persistence.NewPostgresTaskRepository(db)
	noticeRepo := persistence.NewPostgresNoticeRepository(db)
	scheduleRepo := persistence.NewPostgresScheduleRepository(db)
	chatRepo := persistence.NewPostgresChatMessageRepository(db)

	// Use cases
	authUC := usecase.NewAuthUseCase(userRepo, tokenService, passwordService)
	approvalUC := usecase.NewApprovalUseCase(approvalRepo, userRepo)
	taskUC := usecase.NewTaskUseCase(taskRepo, userRepo)
	noticeUC := usecase.NewNoticeUseCase(noticeRepo)
	scheduleUC := usecase.NewScheduleUseCase(scheduleRepo)
	agentUC := usecase.NewAgentUseCase(
		approvalUC, taskUC, scheduleUC, noticeUC, authUC,
		chatRepo, llm, rateLimitService,
		usecase.AgentChatConfig{
			HistoryLimit:    cfg.ChatHistoryLimit,
			RateLimit:       cfg.ChatRateLimit,
			RateLimitWindow: cfg.ChatRateWindow,
		},
	)

	authMiddleware := middleware.NewAuthMiddleware(tokenService)

	server := httpadapter.NewServer(
		httpadapter.ServerConfig{
			Host:         cfg.ServerHost,
			Port:         cfg.ServerPort,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
			CORSOrigin:   cfg.CORSOrigin,
		},
		httpadapter.Handlers{
			Auth:     httpadapter.NewAuthHandler(authUC),
			Approval: httpadapter.NewApprovalHandler(approvalUC),
			Task:     httpadapter.NewTaskHandler(taskUC),
			Notice:   httpadapter.NewNoticeHandler(noticeUC),
			Schedule: httpadapter.NewScheduleHandler(scheduleUC),
			Chat:     httpadapter.NewChatHandler(agentUC),
		},
		authMiddleware,
		structuredLogger,
	)

	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			structuredLogger.Error(ctx, "server failed to start", err, nil)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		structuredLogger.Error(ctx, "server forced to shutdown", err, nil)
	}
	structuredLogger.Info(ctx, "server exited", nil)
}

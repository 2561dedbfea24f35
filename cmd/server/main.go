package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/krismatterz/ten-chat-sub000/internal/auth"
	"github.com/krismatterz/ten-chat-sub000/internal/catalog"
	"github.com/krismatterz/ten-chat-sub000/internal/config"
	"github.com/krismatterz/ten-chat-sub000/internal/handler"
	"github.com/krismatterz/ten-chat-sub000/internal/ingest"
	"github.com/krismatterz/ten-chat-sub000/internal/middleware"
	"github.com/krismatterz/ten-chat-sub000/internal/repository/postgres"
	"github.com/krismatterz/ten-chat-sub000/internal/service"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	jwtVerifier, err := auth.NewJWTVerifier(cfg.JWKSURL, logger)
	if err != nil {
		log.Fatalf("Failed to create JWT verifier: %v", err)
	}
	defer jwtVerifier.Close()

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected",
		"max_conns", 25,
		"min_conns", 5,
	)

	tables := postgres.NewTableNames(cfg.TablePrefix)

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	userRepo := postgres.NewUserRepository(repoConfig)
	projectRepo := postgres.NewProjectRepository(repoConfig)
	conversationRepo := postgres.NewConversationRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool)

	registry, err := catalog.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to load model catalog: %v", err)
	}
	logger.Info("model catalog loaded", "providers", registry.Providers())

	ingestService := ingest.NewService()

	identityService := service.NewIdentityService(userRepo, logger)
	projectService := service.NewProjectService(projectRepo, conversationRepo, txManager, logger)
	conversationService := service.NewConversationService(conversationRepo, projectService, registry, cfg, logger)
	messageService := service.NewMessageService(conversationRepo, ingestService, logger)
	statsService := service.NewStatsService(conversationRepo, logger)

	healthHandler := handler.NewHealthHandler(pool)
	userHandler := handler.NewUserHandler(identityService, statsService, logger)
	modelsHandler := handler.NewModelsHandler(registry, logger)
	projectHandler := handler.NewProjectHandler(identityService, projectService, logger)
	conversationHandler := handler.NewConversationHandler(identityService, conversationService, logger)
	messageHandler := handler.NewMessageHandler(identityService, messageService, logger)

	logger.Info("services initialized")

	// HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", healthHandler.Check)

	// User routes
	mux.HandleFunc("POST /api/users/sync", userHandler.SyncUser)
	mux.HandleFunc("GET /api/users/me", userHandler.GetMe)
	mux.HandleFunc("PATCH /api/users/me", userHandler.UpdateMe)
	mux.HandleFunc("DELETE /api/users/me", userHandler.DeleteMe)
	mux.HandleFunc("GET /api/users/me/stats", userHandler.GetStats)

	// Model catalog
	mux.HandleFunc("GET /api/models", modelsHandler.GetModels)

	// Project routes
	mux.HandleFunc("GET /api/projects", projectHandler.ListProjects)
	mux.HandleFunc("POST /api/projects", projectHandler.CreateProject)
	mux.HandleFunc("GET /api/projects/{id}", projectHandler.GetProject)
	mux.HandleFunc("PATCH /api/projects/{id}", projectHandler.UpdateProject)
	mux.HandleFunc("DELETE /api/projects/{id}", projectHandler.DeleteProject)

	// Conversation routes
	mux.HandleFunc("GET /api/conversations", conversationHandler.ListConversations)
	mux.HandleFunc("POST /api/conversations", conversationHandler.CreateConversation)
	mux.HandleFunc("GET /api/conversations/search", conversationHandler.SearchConversations) // Must come before {id} route
	mux.HandleFunc("GET /api/conversations/{id}", conversationHandler.GetConversation)
	mux.HandleFunc("PATCH /api/conversations/{id}", conversationHandler.UpdateConversation)
	mux.HandleFunc("DELETE /api/conversations/{id}", conversationHandler.DeleteConversation)
	mux.HandleFunc("POST /api/conversations/{id}/branch", conversationHandler.BranchConversation)

	// Message routes
	mux.HandleFunc("POST /api/conversations/{id}/messages", messageHandler.AddMessage)
	mux.HandleFunc("PATCH /api/conversations/{id}/messages/{messageId}", messageHandler.UpdateMessage)
	mux.HandleFunc("POST /api/conversations/{id}/messages/{messageId}/truncate", messageHandler.TruncateMessages)

	// Build middleware chain
	var root http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → Auth → Routes
	root = middleware.Auth(jwtVerifier)(root)
	root = middleware.Recovery(logger)(root)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	root = corsHandler.Handler(root)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}

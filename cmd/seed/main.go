package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/krismatterz/ten-chat-sub000/internal/catalog"
	"github.com/krismatterz/ten-chat-sub000/internal/config"
	"github.com/krismatterz/ten-chat-sub000/internal/domain/models"
	"github.com/krismatterz/ten-chat-sub000/internal/domain/services"
	"github.com/krismatterz/ten-chat-sub000/internal/ingest"
	"github.com/krismatterz/ten-chat-sub000/internal/repository/postgres"
	"github.com/krismatterz/ten-chat-sub000/internal/service"
)

func main() {
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed demo data")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && *dropTables {
		log.Fatalf("🚫 BLOCKED: Cannot run --drop-tables in production environment")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	if *schemaOnly {
		log.Printf("🏗️  Setting up schema only (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	} else {
		log.Printf("🌱 Seeding database (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	}

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)

	if *dropTables {
		log.Println("🗑️  Dropping all tables...")
		if err := dropAllTables(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		log.Println("✅ Tables dropped")
	}

	log.Println("📋 Ensuring database schema is up to date...")
	if err := runSchema(ctx, pool, tables, cfg.TablePrefix); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	log.Println("✅ Schema ready")

	if *schemaOnly {
		log.Println("✅ Schema setup complete (schema-only mode)")
		return
	}

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	userRepo := postgres.NewUserRepository(repoConfig)
	projectRepo := postgres.NewProjectRepository(repoConfig)
	conversationRepo := postgres.NewConversationRepository(repoConfig)

	registry, err := catalog.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to load model catalog: %v", err)
	}

	txManager := postgres.NewTransactionManager(pool)
	projectService := service.NewProjectService(projectRepo, conversationRepo, txManager, logger)
	conversationService := service.NewConversationService(conversationRepo, projectService, registry, cfg, logger)
	messageService := service.NewMessageService(conversationRepo, ingest.NewService(), logger)

	log.Println("👤 Creating demo user...")
	now := time.Now()
	demoUser := &models.User{
		ExternalID:   "seed|demo-user",
		Email:        "demo@example.com",
		DisplayName:  "Demo User",
		Settings:     models.JSONMap{},
		LastActiveAt: now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := userRepo.Upsert(ctx, demoUser); err != nil {
		log.Fatalf("Failed to create demo user: %v", err)
	}
	log.Printf("✅ Demo user ready (ID: %s)", demoUser.ID)

	log.Println("💬 Seeding demo conversations...")
	for i, seed := range demoConversations() {
		conv, err := conversationService.Create(ctx, demoUser.ID, &seed.create)
		if err != nil {
			log.Printf("❌ Failed to create conversation %d: %v", i+1, err)
			continue
		}

		for _, msg := range seed.replies {
			if _, err := messageService.AddMessage(ctx, demoUser.ID, conv.ID, &msg); err != nil {
				log.Printf("❌ Failed to append message to %s: %v", conv.ID, err)
			}
		}

		log.Printf("✅ Created conversation %d: %q (ID: %s)", i+1, conv.Title, conv.ID)
	}

	log.Println("🎉 Seeding complete!")
}

type conversationSeed struct {
	create  services.CreateConversationRequest
	replies []services.AddMessageRequest
}

func demoConversations() []conversationSeed {
	firstMessage := "Plan my trip to Lisbon for 5 days"
	tokens := 420
	speed := 52.3

	return []conversationSeed{
		{
			create: services.CreateConversationRequest{
				InitialMessage: &firstMessage,
			},
			replies: []services.AddMessageRequest{
				{
					Role:           models.RoleAssistant,
					Content:        "Here is a five day Lisbon itinerary, starting with Alfama and the castle on day one.",
					TokenCount:     &tokens,
					InferenceSpeed: &speed,
				},
			},
		},
		{
			create: services.CreateConversationRequest{
				Title: "Scratchpad",
			},
		},
	}
}

// runSchema creates tables if they don't exist
func runSchema(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames, tablePrefix string) error {
	// Enable UUID extension
	_, err := pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\"")
	if err != nil {
		return err
	}

	createUsers := `
		CREATE TABLE IF NOT EXISTS ` + tables.Users + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			external_id TEXT NOT NULL UNIQUE,
			email TEXT NOT NULL DEFAULT '',
			display_name TEXT NOT NULL DEFAULT '',
			avatar_url TEXT NOT NULL DEFAULT '',
			settings JSONB NOT NULL DEFAULT '{}',
			last_active_at TIMESTAMPTZ DEFAULT NOW(),
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW()
		)
	`
	if _, err := pool.Exec(ctx, createUsers); err != nil {
		return err
	}

	createProjects := `
		CREATE TABLE IF NOT EXISTS ` + tables.Projects + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			user_id UUID NOT NULL REFERENCES ` + tables.Users + `(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			is_default BOOLEAN NOT NULL DEFAULT FALSE,
			is_archived BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW(),
			deleted_at TIMESTAMPTZ
		)
	`
	if _, err := pool.Exec(ctx, createProjects); err != nil {
		return err
	}

	createConversations := `
		CREATE TABLE IF NOT EXISTS ` + tables.Conversations + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			user_id UUID NOT NULL REFERENCES ` + tables.Users + `(id) ON DELETE CASCADE,
			project_id UUID NOT NULL REFERENCES ` + tables.Projects + `(id) ON DELETE CASCADE,
			title TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			provider TEXT NOT NULL DEFAULT '',
			model TEXT NOT NULL DEFAULT '',
			tags TEXT[] NOT NULL DEFAULT '{}',
			title_generated BOOLEAN NOT NULL DEFAULT FALSE,
			is_pinned BOOLEAN NOT NULL DEFAULT FALSE,
			is_archived BOOLEAN NOT NULL DEFAULT FALSE,
			is_favorite BOOLEAN NOT NULL DEFAULT FALSE,
			branched_from UUID,
			branch_from_message_id TEXT,
			messages JSONB NOT NULL DEFAULT '[]',
			message_count INTEGER NOT NULL DEFAULT 0,
			total_tokens INTEGER NOT NULL DEFAULT 0,
			avg_inference_speed DOUBLE PRECISION,
			last_message_at TIMESTAMPTZ DEFAULT NOW(),
			version INTEGER NOT NULL DEFAULT 1,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW(),
			deleted_at TIMESTAMPTZ
		)
	`
	if _, err := pool.Exec(ctx, createConversations); err != nil {
		return err
	}

	// Create indexes
	indexes := []string{
		// One default project per user; the invariant the lazy-create race
		// resolves against
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_` + tablePrefix + `projects_default_unique ON ` + tables.Projects + `(user_id) WHERE is_default AND deleted_at IS NULL`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `projects_user_id ON ` + tables.Projects + `(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `conversations_user_updated ON ` + tables.Conversations + `(user_id, updated_at DESC) WHERE deleted_at IS NULL`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `conversations_project_id ON ` + tables.Conversations + `(project_id)`,
	}

	for _, indexSQL := range indexes {
		if _, err := pool.Exec(ctx, indexSQL); err != nil {
			return err
		}
	}

	return nil
}

// dropAllTables drops all tables in reverse order (to respect foreign keys)
func dropAllTables(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	tableNames := []string{
		tables.Conversations,
		tables.Projects,
		tables.Users,
	}

	for _, table := range tableNames {
		dropSQL := "DROP TABLE IF EXISTS " + table + " CASCADE"
		if _, err := pool.Exec(ctx, dropSQL); err != nil {
			return err
		}
		log.Printf("  ✓ Dropped %s", table)
	}

	return nil
}

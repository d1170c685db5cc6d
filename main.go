package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"character-chat/config"
	"character-chat/handlers"
	"character-chat/responder"
	"character-chat/services"
	"character-chat/storage"
	"character-chat/workflows"

	"github.com/dbos-inc/dbos-transact-golang/dbos"
	"github.com/go-redis/redis/v8"
	"github.com/mudler/xlog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fatal("Invalid configuration", err)
	}

	ctx := context.Background()

	// Open the character and conversation store
	store, err := openStore(ctx, cfg)
	if err != nil {
		fatal("Failed to open storage", err, "driver", cfg.StorageDriver)
	}
	defer store.Close()
	xlog.Info("Storage ready", "driver", cfg.StorageDriver)

	// Initialize the creation agent
	agent := services.NewFallbackAgent(newAgentClient(cfg), cfg.AgentTimeout)

	// Initialize workflows
	chatWorkflows := workflows.NewChatWorkflows(store, responder.New())
	var runner workflows.Runner = chatWorkflows

	if cfg.DurableWorkflows {
		// Initialize DBOS context for durable workflows
		dbosCtx, err := dbos.NewDBOSContext(ctx, dbos.Config{
			DatabaseURL: cfg.DatabaseURL,
			AppName:     "character-chat",
		})
		if err != nil {
			fatal("Failed to initialize DBOS", err)
		}

		// Register workflows with DBOS (MUST be before Launch)
		chatWorkflows.Register(dbosCtx)

		// Launch DBOS (starts workflow recovery)
		if err := dbos.Launch(dbosCtx); err != nil {
			fatal("Failed to launch DBOS", err)
		}
		defer dbos.Shutdown(dbosCtx, 5*time.Second)
		xlog.Info("DBOS initialized - durable workflows enabled")

		runner = workflows.NewDurableRunner(dbosCtx, chatWorkflows)
	}

	// Initialize handlers
	chatHandler := handlers.NewChatHandler(store, chatWorkflows, runner, agent)

	router := handlers.NewRouter(chatHandler, handlers.RouterConfig{
		AllowOrigins:  cfg.FrontendOrigins,
		StorageDriver: cfg.StorageDriver,
		Durable:       cfg.DurableWorkflows,
	})

	// Start server
	xlog.Info("Starting server", "port", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		fatal("Failed to start server", err)
	}
}

func openStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.StorageDriver {
	case config.DriverPostgres:
		return storage.OpenPostgres(ctx, cfg.DatabaseURL)
	case config.DriverRedis:
		return storage.OpenRedis(ctx, &redis.Options{
			Addr:     cfg.RedisAddr,
			Username: cfg.RedisUsername,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	case config.DriverMemory:
		return storage.NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}

// newAgentClient returns nil when no agent is configured
func newAgentClient(cfg *config.Config) services.AgentClient {
	if cfg.AgentURL == "" {
		return nil
	}
	if cfg.AgentKind == config.AgentCompletions {
		return services.NewCompletionsService(cfg.AgentURL, cfg.AgentAPIKey, cfg.AgentModel)
	}
	return services.NewWebhookService(cfg.AgentURL)
}

func fatal(msg string, err error, kv ...any) {
	xlog.Error(msg, append([]any{"error", err}, kv...)...)
	os.Exit(1)
}

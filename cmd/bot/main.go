package main

import (
	"context"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/vkrec/recommend-bot/internal/bot"
	"github.com/vkrec/recommend-bot/internal/classifier"
	"github.com/vkrec/recommend-bot/internal/storage"
	"github.com/vkrec/recommend-bot/internal/vk"
	"github.com/vkrec/recommend-bot/pkg/config"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err), zap.String("path", "config.yaml"))
	}

	// Initialize storage
	var store storage.Store
	if cfg.Database.UseInMemory {
		logger.Info("Using in-memory storage")
		store = storage.NewMemoryStore()
	} else {
		logger.Info("Using PostgreSQL storage")
		dbConfig := storage.DatabaseConfig{
			Host:        cfg.Database.Host,
			Port:        cfg.Database.Port,
			User:        cfg.Database.User,
			Password:    cfg.Database.Password,
			DBName:      cfg.Database.DBName,
			SSLMode:     cfg.Database.SSLMode,
			UseInMemory: cfg.Database.UseInMemory,
		}
		store, err = storage.NewPostgresStore(dbConfig, logger)
		if err != nil {
			logger.Fatal("Failed to initialize storage", zap.Error(err))
		}
	}
	defer store.Close()

	// Initialize classifier
	clf := classifier.NewGPTClassifier(
		cfg.OpenAI.APIKey,
		cfg.OpenAI.Model,
		cfg.OpenAI.MaxTokens,
		cfg.OpenAI.Temperature,
		logger,
	)

	// Initialize VK client
	client := vk.NewClient(cfg.VK.GroupToken, cfg.VK.ServiceToken, cfg.VK.GroupID, logger)

	// Initialize session controller
	controller := bot.NewController(store, client, client, clf, bot.Config{
		AdminPassphrase:    cfg.Bot.AdminPassphrase,
		SubscriptionSample: cfg.Bot.SubscriptionSample,
		PostsPerGroup:      cfg.Bot.PostsPerGroup,
		PageSize:           cfg.Bot.PageSize,
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Restore the labeling watermark from the curated catalog
	if err := controller.Init(ctx); err != nil {
		logger.Fatal("Failed to restore labeling watermark", zap.Error(err))
	}

	// Start the bot
	b := bot.New(client, controller, logger)
	if err := b.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Fatal("Bot error", zap.Error(err))
	}
}

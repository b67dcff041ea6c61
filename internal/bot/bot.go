package bot

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/vkrec/recommend-bot/internal/vk"
)

// reconnectDelay is the pause before re-opening a dropped long poll
// connection.
const reconnectDelay = 3 * time.Second

// Bot ties the long poll listener to the session controller.
type Bot struct {
	client     *vk.Client
	controller *Controller
	logger     *zap.Logger
}

func New(client *vk.Client, controller *Controller, logger *zap.Logger) *Bot {
	return &Bot{
		client:     client,
		controller: controller,
		logger:     logger,
	}
}

// Run listens for message events until the context is cancelled. Transient
// connection failures are retried after a short delay; per-message errors
// never reach this loop.
func (b *Bot) Run(ctx context.Context) error {
	for {
		err := b.client.Listen(ctx, b.controller.HandleMessage)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		b.logger.Error("Long poll connection lost, reconnecting", zap.Error(err))

		select {
		case <-time.After(reconnectDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

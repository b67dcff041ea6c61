// Package vk wraps the VK API: outbound messages through the group token,
// wall and subscription reads through the service token, mirroring the two
// sessions the Bots API requires.
package vk

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/SevereCloud/vksdk/v2/api"
	"github.com/SevereCloud/vksdk/v2/events"
	longpoll "github.com/SevereCloud/vksdk/v2/longpoll-bot"
	"github.com/SevereCloud/vksdk/v2/object"
	"go.uber.org/zap"

	"github.com/vkrec/recommend-bot/internal/models"
)

// ErrAccessDenied reports that the user's profile or group list is private.
// User-correctable: the caller should offer a retry after the user opens
// their privacy settings.
var ErrAccessDenied = errors.New("vk: access denied")

// MessageHandler receives one inbound message event.
type MessageHandler func(ctx context.Context, fromID int64, text string, payload string)

type Client struct {
	group   *api.VK
	service *api.VK
	groupID int
	logger  *zap.Logger
}

func NewClient(groupToken, serviceToken string, groupID int, logger *zap.Logger) *Client {
	return &Client{
		group:   api.NewVK(groupToken),
		service: api.NewVK(serviceToken),
		groupID: groupID,
		logger:  logger,
	}
}

// Send delivers a message to a user, optionally with a keyboard.
func (c *Client) Send(ctx context.Context, userID int64, text string, keyboard *object.MessagesKeyboard) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	params := api.Params{
		"user_id":   userID,
		"random_id": rand.Int31(),
		"message":   text,
	}
	if keyboard != nil {
		params["keyboard"] = keyboard.ToJSON()
	}

	if _, err := c.group.MessagesSend(params); err != nil {
		return fmt.Errorf("failed to send message to %d: %w", userID, mapError(err))
	}

	c.logger.Debug("Message sent", zap.Int64("user_id", userID))
	return nil
}

// Subscriptions returns up to sampleCap randomly sampled ids of the open
// groups a user follows. Closed, private and deactivated groups are
// excluded. Returns ErrAccessDenied when the list is hidden by privacy
// settings.
func (c *Client) Subscriptions(ctx context.Context, userID int64, sampleCap int) ([]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp, err := c.service.GroupsGetExtended(api.Params{
		"user_id":  userID,
		"extended": 1,
		"count":    1000,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch subscriptions of %d: %w", userID, mapError(err))
	}

	ids := make([]int64, 0, len(resp.Items))
	for _, group := range resp.Items {
		if group.IsClosed != 0 || group.Deactivated != "" {
			continue
		}
		ids = append(ids, int64(group.ID))
	}

	rand.Shuffle(len(ids), func(i, j int) {
		ids[i], ids[j] = ids[j], ids[i]
	})
	if len(ids) > sampleCap {
		ids = ids[:sampleCap]
	}

	return ids, nil
}

// WallPosts returns up to count most recent posts from a group's wall.
func (c *Client) WallPosts(ctx context.Context, groupID int64, count int) ([]models.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp, err := c.service.WallGet(api.Params{
		"owner_id": -groupID,
		"count":    count,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch wall of group %d: %w", groupID, mapError(err))
	}

	posts := make([]models.Post, 0, len(resp.Items))
	for _, item := range resp.Items {
		posts = append(posts, models.Post{
			Text:        item.Text,
			MarkedAsAds: bool(item.MarkedAsAds),
		})
	}

	return posts, nil
}

// Listen runs the Bots Long Poll loop, spawning one goroutine per inbound
// message. Blocks until the context is cancelled or the connection fails.
func (c *Client) Listen(ctx context.Context, handler MessageHandler) error {
	lp, err := longpoll.NewLongPoll(c.group, c.groupID)
	if err != nil {
		return fmt.Errorf("failed to start long poll: %w", err)
	}

	lp.MessageNew(func(ctx context.Context, obj events.MessageNewObject) {
		msg := obj.Message
		go handler(ctx, int64(msg.FromID), msg.Text, msg.Payload)
	})

	go func() {
		<-ctx.Done()
		lp.Shutdown()
	}()

	return lp.Run()
}

// mapError collapses the VK privacy error codes into ErrAccessDenied:
// 15 access denied, 30 profile is private, 260 groups list hidden.
func mapError(err error) error {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		switch int(apiErr.Code) {
		case 15, 30, 260:
			return ErrAccessDenied
		}
	}
	return err
}

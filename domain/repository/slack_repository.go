package repository

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Songmu/retry"
	ttlcache "github.com/jellydator/ttlcache/v3"
	"github.com/slack-go/slack"
)

var ErrSlackNotFound = fmt.Errorf("not found")

type SlackRepositoryer interface {
	ResolveUserID(recipient string) (string, error)
	PostDirectMessage(userID, text string) error
}

type SlackRepository struct {
	client     *slack.Client
	usersCache *ttlcache.Cache[string, []slack.User]
}

func NewSlackRepository(client *slack.Client) *SlackRepository {

	r := &SlackRepository{
		client:     client,
		usersCache: ttlcache.New(ttlcache.WithTTL[string, []slack.User](time.Hour)),
	}
	go r.usersCache.Start()

	go func() {
		_, err := r.getUsers()
		if err != nil {
			slog.Error("Failed to get users", slog.Any("err", err))
		}
		slog.Info("Users cache initialized")
	}()
	// 失効時は自動で更新する
	r.usersCache.OnEviction(func(ctx context.Context, _ ttlcache.EvictionReason, _ *ttlcache.Item[string, []slack.User]) {
		slog.Info("Refreshing users cache")
		_, err := r.getUsers()
		if err != nil {
			slog.Error("Failed to refresh users cache", slog.Any("err", err))
		}
	})
	return r
}

// ResolveUserID accepts a Slack user ID, an email address, or a display
// name and resolves it to a user ID.
func (h *SlackRepository) ResolveUserID(recipient string) (string, error) {
	if strings.Contains(recipient, "@") {
		user, err := h.client.GetUserByEmail(recipient)
		if err != nil {
			return "", fmt.Errorf("failed to find user by email %s: %w", recipient, err)
		}
		return user.ID, nil
	}

	users, err := h.getUsers()
	if err != nil {
		return "", err
	}
	for _, u := range users {
		if u.ID == recipient ||
			strings.EqualFold(u.Name, recipient) ||
			strings.EqualFold(u.Profile.DisplayName, recipient) ||
			strings.EqualFold(u.RealName, recipient) ||
			strings.EqualFold(u.Profile.RealName, recipient) {
			return u.ID, nil
		}
	}
	return "", ErrSlackNotFound
}

func (h *SlackRepository) PostDirectMessage(userID, text string) error {
	channel, _, _, err := h.client.OpenConversation(&slack.OpenConversationParameters{
		Users: []string{userID},
	})
	if err != nil {
		return fmt.Errorf("failed to open dm with %s: %w", userID, err)
	}

	return retry.Retry(10, 3*time.Second, func() error {
		_, _, err := h.client.PostMessage(channel.ID, slack.MsgOptionText(text, false))
		if err != nil {
			slog.Warn("PostMessage", slog.Any("channelID", channel.ID), slog.Any("err", err))
		}
		return err
	})
}

func (h *SlackRepository) getUsers() ([]slack.User, error) {
	cacheKey := "users"
	if users := h.usersCache.Get(cacheKey); users != nil {
		return users.Value(), nil
	}
	users, err := h.client.GetUsers()
	if err != nil {
		return nil, err
	}
	h.usersCache.Set(cacheKey, users, ttlcache.DefaultTTL)

	return users, nil
}

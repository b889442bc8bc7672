package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"
)

const (
	maxDiscordRetries     = 3
	baseDiscordRetryDelay = 1 * time.Second
)

// Announcer delivers a plain text announcement to a tenant.
type Announcer interface {
	Announce(ctx context.Context, tenantID string, message string) error
}

// messageSender is the part of *discordgo.Session used for announcements.
type messageSender interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

type DiscordNotifier struct {
	session   messageSender
	channels  map[string]string // guild id -> channel id
	logger    *slog.Logger
	baseDelay time.Duration
}

// NewDiscordNotifier opens a bot session. The session is only used for REST calls, no gateway connection is made.
func NewDiscordNotifier(token string, channels map[string]string, logger *slog.Logger) (*DiscordNotifier, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	return newDiscordNotifier(session, channels, logger), nil
}

func newDiscordNotifier(session messageSender, channels map[string]string, logger *slog.Logger) *DiscordNotifier {
	return &DiscordNotifier{
		session:   session,
		channels:  channels,
		logger:    logger,
		baseDelay: baseDiscordRetryDelay,
	}
}

// Announce sends message to the guild's configured channel. Guilds without a channel are skipped.
func (n *DiscordNotifier) Announce(ctx context.Context, tenantID string, message string) error {
	channelID, ok := n.channels[tenantID]
	if !ok {
		return nil
	}

	var lastErr error
	for attempt := 0; attempt < maxDiscordRetries; attempt++ {
		_, err := n.session.ChannelMessageSend(channelID, message, discordgo.WithContext(ctx))
		if err == nil {
			if attempt > 0 {
				n.logger.Info("discord message sent after retries", "guild", tenantID, "retries", attempt)
			}
			return nil
		}
		lastErr = err

		if attempt == maxDiscordRetries-1 {
			break
		}
		delay := time.Duration(1<<attempt) * n.baseDelay // 1s, 2s, 4s
		n.logger.Warn("discord send failed, retrying",
			"guild", tenantID,
			"attempt", attempt+1,
			"delay", delay,
			"error", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return fmt.Errorf("discord announcement to guild %s failed after %d attempts: %w", tenantID, maxDiscordRetries, lastErr)
}

package utils

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"
)

// discordContentLimit is Discord's maximum message length
const discordContentLimit = 2000

// RateLimiter implements basic token-bucket rate limiting
type RateLimiter struct {
	requests chan struct{}
	window   time.Duration
}

// NewRateLimiter creates a limiter allowing n requests per window
func NewRateLimiter(n int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		requests: make(chan struct{}, n),
		window:   window,
	}
}

// Wait waits for rate limit clearance
func (rl *RateLimiter) Wait(ctx context.Context) error {
	select {
	case rl.requests <- struct{}{}:
		// Release the slot once the window has passed
		go func() {
			time.Sleep(rl.window)
			<-rl.requests
		}()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// DiscordMirror copies admin notifications into a Discord channel through a webhook
type DiscordMirror struct {
	session     *discordgo.Session
	webhookID   string
	token       string
	rateLimiter *RateLimiter
	sent        int64
	failed      int64
}

// NewDiscordMirror builds a mirror from a webhook URL like https://discord.com/api/webhooks/<id>/<token>
func NewDiscordMirror(webhookURL string) (*DiscordMirror, error) {
	webhookID, token, err := ParseWebhookURL(webhookURL)
	if err != nil {
		return nil, err
	}

	// Webhook execution needs no bot token
	session, err := discordgo.New("")
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	return &DiscordMirror{
		session:     session,
		webhookID:   webhookID,
		token:       token,
		rateLimiter: NewRateLimiter(5, 2*time.Second),
	}, nil
}

// ParseWebhookURL extracts the webhook id and token from a Discord webhook URL
func ParseWebhookURL(raw string) (string, string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("invalid webhook URL: %w", err)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 0; i+2 < len(parts); i++ {
		if parts[i] == "webhooks" && parts[i+1] != "" && parts[i+2] != "" {
			return parts[i+1], parts[i+2], nil
		}
	}
	return "", "", fmt.Errorf("invalid webhook URL: no webhook id/token in %q", u.Path)
}

// Notify posts the text to the webhook
func (dm *DiscordMirror) Notify(ctx context.Context, text string) error {
	if err := dm.rateLimiter.Wait(ctx); err != nil {
		atomic.AddInt64(&dm.failed, 1)
		return fmt.Errorf("rate limit timeout: %w", err)
	}

	params := &discordgo.WebhookParams{
		Content: truncateContent(text, discordContentLimit),
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Parse: []discordgo.AllowedMentionType{},
		},
	}

	if _, err := dm.session.WebhookExecute(dm.webhookID, dm.token, false, params); err != nil {
		atomic.AddInt64(&dm.failed, 1)
		return fmt.Errorf("discord webhook execute failed: %w", err)
	}

	atomic.AddInt64(&dm.sent, 1)
	return nil
}

// Stats returns how many notifications were mirrored and how many failed
func (dm *DiscordMirror) Stats() (sent, failed int64) {
	return atomic.LoadInt64(&dm.sent), atomic.LoadInt64(&dm.failed)
}

func truncateContent(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit-1]) + "…"
}

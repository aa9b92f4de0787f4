package utils

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWebhookURL(t *testing.T) {
	id, token, err := ParseWebhookURL("https://discord.com/api/webhooks/123456/abc-DEF_ghi")
	require.NoError(t, err)
	assert.Equal(t, "123456", id)
	assert.Equal(t, "abc-DEF_ghi", token)

	_, _, err = ParseWebhookURL("https://discord.com/api/webhooks/123456")
	assert.Error(t, err)

	_, _, err = ParseWebhookURL("https://example.com/")
	assert.Error(t, err)
}

func TestNewDiscordMirrorRejectsBadURL(t *testing.T) {
	_, err := NewDiscordMirror("not a webhook")
	assert.Error(t, err)

	mirror, err := NewDiscordMirror("https://discord.com/api/webhooks/1/t")
	require.NoError(t, err)
	sent, failed := mirror.Stats()
	assert.Zero(t, sent)
	assert.Zero(t, failed)
}

func TestTruncateContent(t *testing.T) {
	assert.Equal(t, "short", truncateContent("short", 10))

	long := strings.Repeat("ж", 2500)
	out := truncateContent(long, discordContentLimit)
	assert.Equal(t, discordContentLimit, len([]rune(out)))
	assert.True(t, strings.HasSuffix(out, "…"))
}

func TestRateLimiterBlocksUntilContextDone(t *testing.T) {
	rl := NewRateLimiter(1, time.Hour)
	require.NoError(t, rl.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, rl.Wait(ctx), context.DeadlineExceeded)
}

package cogs

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/goccy/go-json"

	"slot-go/utils"
)

// PendingMute is a jackpot mute that still has to be lifted
type PendingMute struct {
	Until time.Time `json:"until"`
	// Permissions the chat had before the mute; nil when they could not be read
	Permissions *tgbotapi.ChatPermissions `json:"permissions,omitempty"`
}

// MuteLedger keeps the pending mutes on disk so a restart can still lift them
type MuteLedger struct {
	path  string
	mutex sync.Mutex
}

// NewMuteLedger creates a ledger backed by the given file path
func NewMuteLedger(path string) *MuteLedger {
	return &MuteLedger{path: path}
}

// Load returns the recorded mutes by chat id; a missing or broken file yields none
func (ml *MuteLedger) Load() map[int64]PendingMute {
	ml.mutex.Lock()
	defer ml.mutex.Unlock()

	mutes := make(map[int64]PendingMute)

	data, err := os.ReadFile(ml.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			utils.AreaLogger("TELEGRAM").WithError(err).Warn("Failed to read mute ledger")
		}
		return mutes
	}

	var raw map[string]PendingMute
	if err := json.Unmarshal(data, &raw); err != nil {
		utils.AreaLogger("TELEGRAM").WithError(err).Warn("Failed to parse mute ledger")
		return mutes
	}
	for key, mute := range raw {
		chatID, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			continue
		}
		mutes[chatID] = mute
	}
	return mutes
}

// Save replaces the ledger with the given mutes
func (ml *MuteLedger) Save(mutes map[int64]PendingMute) error {
	ml.mutex.Lock()
	defer ml.mutex.Unlock()

	raw := make(map[string]PendingMute, len(mutes))
	for chatID, mute := range mutes {
		raw[strconv.FormatInt(chatID, 10)] = mute
	}

	data, err := json.MarshalIndent(raw, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode mute ledger: %w", err)
	}
	if err := utils.WriteFileAtomic(ml.path, data); err != nil {
		return fmt.Errorf("failed to write mute ledger: %w", err)
	}
	return nil
}

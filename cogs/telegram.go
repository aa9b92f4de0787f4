package cogs

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"slot-go/utils"
)

// BotAPI is the part of tgbotapi.BotAPI the transport uses
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetChat(config tgbotapi.ChatInfoConfig) (tgbotapi.Chat, error)
}

// ClassifyTelegramError maps Bot API errors onto dispatch outcomes.
// Telegram only explains faults in the description, so this is the one place that reads it.
func ClassifyTelegramError(err error) utils.CallResult {
	if err == nil {
		return utils.CallResult{Outcome: utils.OutcomeDone}
	}

	var apiErr *tgbotapi.Error
	if !errors.As(err, &apiErr) {
		return utils.CallResult{Outcome: utils.OutcomeFailed, Err: err}
	}

	if apiErr.RetryAfter > 0 || apiErr.Code == http.StatusTooManyRequests {
		return utils.CallResult{
			Outcome:    utils.OutcomeThrottled,
			RetryAfter: time.Duration(apiErr.RetryAfter) * time.Second,
			Err:        err,
		}
	}

	desc := strings.ToLower(apiErr.Message)
	switch {
	case strings.Contains(desc, "message is not modified"):
		return utils.CallResult{Outcome: utils.OutcomeFailed, Err: fmt.Errorf("%w: %s", utils.ErrMessageNotModified, apiErr.Message)}
	case strings.Contains(desc, "message to delete not found"),
		strings.Contains(desc, "message can't be deleted"),
		strings.Contains(desc, "message to edit not found"):
		return utils.CallResult{Outcome: utils.OutcomeFailed, Err: fmt.Errorf("%w: %s", utils.ErrMessageGone, apiErr.Message)}
	}
	return utils.CallResult{Outcome: utils.OutcomeFailed, Err: err}
}

// TelegramTransport implements slots.Transport on the Bot API.
// Every call goes through the dispatcher so throttling never reaches the game.
type TelegramTransport struct {
	bot        BotAPI
	dispatcher *utils.Dispatcher

	mutex sync.Mutex
	mutes map[int64]*muteEntry

	ledger *MuteLedger
	// saveMutex serialises ledger writes so the newest snapshot always lands last
	saveMutex sync.Mutex
}

type muteEntry struct {
	PendingMute
	timer *time.Timer
}

// NewTelegramTransport wraps a bot with a throttle-absorbing dispatcher
func NewTelegramTransport(bot BotAPI, dispatcher *utils.Dispatcher) *TelegramTransport {
	return &TelegramTransport{
		bot:        bot,
		dispatcher: dispatcher,
		mutes:      make(map[int64]*muteEntry),
	}
}

// WithMuteLedger records pending mutes on disk
func (tt *TelegramTransport) WithMuteLedger(ledger *MuteLedger) *TelegramTransport {
	tt.ledger = ledger
	return tt
}

func (tt *TelegramTransport) send(ctx context.Context, c tgbotapi.Chattable) (tgbotapi.Message, error) {
	var sent tgbotapi.Message
	err := tt.dispatcher.Do(ctx, func() error {
		var err error
		sent, err = tt.bot.Send(c)
		return err
	})
	return sent, err
}

func (tt *TelegramTransport) request(ctx context.Context, c tgbotapi.Chattable) error {
	return tt.dispatcher.Do(ctx, func() error {
		_, err := tt.bot.Request(c)
		return err
	})
}

// SendText sends a plain text message
func (tt *TelegramTransport) SendText(ctx context.Context, chatID int64, text string) (int, error) {
	sent, err := tt.send(ctx, tgbotapi.NewMessage(chatID, text))
	return sent.MessageID, err
}

// SendHTML sends a message rendered with HTML parse mode
func (tt *TelegramTransport) SendHTML(ctx context.Context, chatID int64, text string) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	sent, err := tt.send(ctx, msg)
	return sent.MessageID, err
}

// SendSlotDice posts the animated slot machine and reads back its value
func (tt *TelegramTransport) SendSlotDice(ctx context.Context, chatID int64) (int, int, error) {
	sent, err := tt.send(ctx, tgbotapi.NewDiceWithEmoji(chatID, utils.SlotEmoji))
	if err != nil {
		return 0, 0, err
	}
	if sent.Dice == nil {
		return sent.MessageID, 0, fmt.Errorf("dice message %d carries no value", sent.MessageID)
	}
	return sent.MessageID, sent.Dice.Value, nil
}

// DeleteMessage deletes one message
func (tt *TelegramTransport) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	return tt.request(ctx, tgbotapi.NewDeleteMessage(chatID, messageID))
}

// SendPanel posts the admin panel with its inline keyboard
func (tt *TelegramTransport) SendPanel(ctx context.Context, chatID int64, text string, active bool) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = PanelKeyboard(active)
	sent, err := tt.send(ctx, msg)
	return sent.MessageID, err
}

// EditPanel rewrites an existing admin panel
func (tt *TelegramTransport) EditPanel(ctx context.Context, chatID int64, messageID int, text string, active bool) error {
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, PanelKeyboard(active))
	_, err := tt.send(ctx, edit)
	return err
}

// AnswerCallback acknowledges a button press, optionally as an alert
func (tt *TelegramTransport) AnswerCallback(ctx context.Context, callbackID, text string, alert bool) error {
	cfg := tgbotapi.NewCallback(callbackID, text)
	cfg.ShowAlert = alert
	return tt.request(ctx, cfg)
}

// RestrictChat takes away the members' send permissions and schedules their return.
// The permissions in force before the first of overlapping mutes are the ones given back.
func (tt *TelegramTransport) RestrictChat(ctx context.Context, chatID int64, until time.Time) error {
	tt.mutex.Lock()
	current, pending := tt.mutes[chatID]
	tt.mutex.Unlock()

	var previous *tgbotapi.ChatPermissions
	if pending {
		previous = current.Permissions
	} else {
		previous = tt.chatPermissions(ctx, chatID)
	}

	if err := tt.request(ctx, permissionsConfig(chatID, false)); err != nil {
		return err
	}

	tt.schedule(chatID, PendingMute{Until: until, Permissions: previous})
	tt.persistMutes()
	return nil
}

// ResumeMutes schedules the mutes a previous run left behind; overdue ones are lifted right away
func (tt *TelegramTransport) ResumeMutes() int {
	if tt.ledger == nil {
		return 0
	}

	mutes := tt.ledger.Load()
	for chatID, mute := range mutes {
		tt.schedule(chatID, mute)
	}
	return len(mutes)
}

// Close lifts every mute that is still pending so no chat stays silenced after shutdown
func (tt *TelegramTransport) Close(ctx context.Context) {
	tt.mutex.Lock()
	pending := make(map[int64]*muteEntry, len(tt.mutes))
	for chatID, entry := range tt.mutes {
		// a timer that already fired finds its entry gone and leaves the restore to us
		entry.timer.Stop()
		pending[chatID] = entry
		delete(tt.mutes, chatID)
	}
	tt.mutex.Unlock()

	for chatID, entry := range pending {
		tt.restore(ctx, chatID, entry.Permissions)
	}
	tt.persistMutes()
}

func (tt *TelegramTransport) schedule(chatID int64, mute PendingMute) {
	tt.mutex.Lock()
	defer tt.mutex.Unlock()

	if old, ok := tt.mutes[chatID]; ok {
		old.timer.Stop()
	}
	entry := &muteEntry{PendingMute: mute}
	entry.timer = time.AfterFunc(time.Until(mute.Until), func() {
		tt.lift(chatID, entry)
	})
	tt.mutes[chatID] = entry
}

func (tt *TelegramTransport) lift(chatID int64, entry *muteEntry) {
	tt.mutex.Lock()
	if tt.mutes[chatID] != entry {
		// replaced by a newer mute
		tt.mutex.Unlock()
		return
	}
	delete(tt.mutes, chatID)
	tt.mutex.Unlock()

	tt.restore(context.Background(), chatID, entry.Permissions)
	tt.persistMutes()
}

func (tt *TelegramTransport) chatPermissions(ctx context.Context, chatID int64) *tgbotapi.ChatPermissions {
	var chat tgbotapi.Chat
	err := tt.dispatcher.Do(ctx, func() error {
		var err error
		chat, err = tt.bot.GetChat(tgbotapi.ChatInfoConfig{ChatConfig: tgbotapi.ChatConfig{ChatID: chatID}})
		return err
	})
	if err != nil {
		utils.AreaLogger("TELEGRAM").WithError(err).Warnf("Failed to read permissions of chat %d", chatID)
		return nil
	}
	return chat.Permissions
}

func (tt *TelegramTransport) restore(ctx context.Context, chatID int64, previous *tgbotapi.ChatPermissions) {
	cfg := permissionsConfig(chatID, true)
	if previous != nil {
		cfg.Permissions = previous
	}

	if err := tt.request(ctx, cfg); err != nil {
		utils.AreaLogger("TELEGRAM").WithError(err).Errorf("Failed to lift mute in chat %d", chatID)
		return
	}
	utils.BotLogf("TELEGRAM", "Mute lifted in chat %d", chatID)
}

func (tt *TelegramTransport) persistMutes() {
	if tt.ledger == nil {
		return
	}

	tt.saveMutex.Lock()
	defer tt.saveMutex.Unlock()

	tt.mutex.Lock()
	snapshot := make(map[int64]PendingMute, len(tt.mutes))
	for chatID, entry := range tt.mutes {
		snapshot[chatID] = entry.PendingMute
	}
	tt.mutex.Unlock()

	if err := tt.ledger.Save(snapshot); err != nil {
		utils.AreaLogger("TELEGRAM").WithError(err).Error("Failed to save mute ledger")
	}
}

// permissionsConfig builds the mute set, and the restore set for chats whose permissions could not be read
func permissionsConfig(chatID int64, allow bool) tgbotapi.SetChatPermissionsConfig {
	return tgbotapi.SetChatPermissionsConfig{
		ChatConfig: tgbotapi.ChatConfig{ChatID: chatID},
		Permissions: &tgbotapi.ChatPermissions{
			CanSendMessages:       allow,
			CanSendMediaMessages:  allow,
			CanSendPolls:          allow,
			CanSendOtherMessages:  allow,
			CanAddWebPagePreviews: allow,
		},
	}
}

// PanelKeyboard builds the admin panel buttons for the current switch position
func PanelKeyboard(active bool) tgbotapi.InlineKeyboardMarkup {
	toggle := utils.ButtonActivate
	if active {
		toggle = utils.ButtonDeactivate
	}

	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(toggle, utils.CallbackToggle),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(utils.ButtonStats, utils.CallbackShowStats),
			tgbotapi.NewInlineKeyboardButtonData(utils.ButtonHelp, utils.CallbackShowHelp),
		),
	)
}

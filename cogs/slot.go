package cogs

import (
	"context"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"slot-go/games/slots"
	"slot-go/models"
	"slot-go/utils"
)

// SlotHandler is the game surface the cog routes into
type SlotHandler interface {
	Start(ctx context.Context, msg models.Message)
	OpenPanel(ctx context.Context, msg models.Message)
	Spin(ctx context.Context, msg models.Message)
	Moderate(ctx context.Context, msg models.Message)
	Toggle(ctx context.Context, cb models.Callback)
	ShowStats(ctx context.Context, cb models.Callback)
	ShowHelp(ctx context.Context, cb models.Callback)
	IgnoreCallback(ctx context.Context, cb models.Callback)
}

var _ SlotHandler = (*slots.Session)(nil)

// SlotCog routes Telegram updates into the slot game
type SlotCog struct {
	handler SlotHandler
}

// NewSlotCog creates the router for a game session
func NewSlotCog(handler SlotHandler) *SlotCog {
	return &SlotCog{handler: handler}
}

// Run consumes long-poll updates until ctx is cancelled, one goroutine per update
func (sc *SlotCog) Run(ctx context.Context, bot *tgbotapi.BotAPI) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	u.AllowedUpdates = []string{"message", "callback_query"}
	updates := bot.GetUpdatesChan(u)

	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			bot.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				sc.HandleUpdate(ctx, update)
			}()
		}
	}
}

// HandleUpdate classifies one update and calls the matching game operation
func (sc *SlotCog) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	// Add panic recovery to prevent silent failures
	defer func() {
		if r := recover(); r != nil {
			utils.AreaLogger("TELEGRAM").Errorf("Recovered from panic in update %d: %v", update.UpdateID, r)
		}
	}()

	switch {
	case update.Message != nil:
		sc.routeMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		sc.routeCallback(ctx, update.CallbackQuery)
	}
}

func (sc *SlotCog) routeMessage(ctx context.Context, m *tgbotapi.Message) {
	msg := ToMessage(m)

	command := utils.ClassifyText(msg.Text)
	if command != utils.CommandAmbient && m.From == nil {
		command = utils.CommandAmbient
	}

	switch command {
	case utils.CommandStart:
		sc.handler.Start(ctx, msg)
	case utils.CommandAdmin:
		sc.handler.OpenPanel(ctx, msg)
	case utils.CommandSpin:
		sc.handler.Spin(ctx, msg)
	default:
		sc.handler.Moderate(ctx, msg)
	}
}

func (sc *SlotCog) routeCallback(ctx context.Context, q *tgbotapi.CallbackQuery) {
	cb := ToCallback(q)

	switch utils.ClassifyCallback(cb.Data) {
	case utils.CommandToggle:
		sc.handler.Toggle(ctx, cb)
	case utils.CommandShowStats:
		sc.handler.ShowStats(ctx, cb)
	case utils.CommandShowHelp:
		sc.handler.ShowHelp(ctx, cb)
	default:
		sc.handler.IgnoreCallback(ctx, cb)
	}
}

// ToMessage converts a Bot API message into the game's message
func ToMessage(m *tgbotapi.Message) models.Message {
	msg := models.Message{
		MessageID: m.MessageID,
		Text:      m.Text,
		ChatKind:  models.ChatOther,
	}

	if m.Chat != nil {
		msg.ChatID = m.Chat.ID
		switch {
		case m.Chat.IsPrivate():
			msg.ChatKind = models.ChatPrivate
		case m.Chat.IsGroup(), m.Chat.IsSuperGroup():
			msg.ChatKind = models.ChatGroup
		}
	}

	if m.From != nil {
		msg.SenderID = m.From.ID
		msg.SenderHandle = m.From.UserName
	}
	return msg
}

// ToCallback converts a Bot API callback query into the game's callback
func ToCallback(q *tgbotapi.CallbackQuery) models.Callback {
	cb := models.Callback{
		ID:   q.ID,
		Data: q.Data,
	}
	if q.From != nil {
		cb.SenderID = q.From.ID
	}
	if q.Message != nil {
		cb.MessageID = q.Message.MessageID
		if q.Message.Chat != nil {
			cb.ChatID = q.Message.Chat.ID
		}
	}
	return cb
}

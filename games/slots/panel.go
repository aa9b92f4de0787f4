package slots

import (
	"context"
	"errors"
	"fmt"

	"slot-go/models"
	"slot-go/utils"
)

// PanelText renders the admin panel body for a state
func PanelText(state models.SlotState) string {
	return fmt.Sprintf(utils.PanelBody, state.StatusWord(), state.TotalSpins)
}

// OpenPanel posts a fresh panel for an admin; the command message is removed in any case
func (s *Session) OpenPanel(ctx context.Context, msg models.Message) {
	if s.IsAdmin(msg.SenderID) {
		state := s.Snapshot()
		body := PanelText(state)

		messageID, err := s.transport.SendPanel(ctx, msg.ChatID, utils.PanelHeader+body, state.Active)
		if err != nil {
			utils.AreaLogger("SLOT").WithError(err).Warn("Failed to send admin panel")
		} else {
			s.cachePanel(msg.SenderID, models.PanelEntry{Text: body, MessageID: messageID})
		}
	}

	s.deleteMessage(ctx, msg.ChatID, msg.MessageID)
}

// Toggle flips the slot for an admin and refreshes that admin's panel.
// When the slot goes inactive the pending command messages are cleaned up.
func (s *Session) Toggle(ctx context.Context, cb models.Callback) {
	state, err := s.toggle(cb.SenderID)
	if errors.Is(err, utils.ErrPermissionDenied) {
		s.answer(ctx, cb.ID, utils.NoRightsMessage, false)
		return
	}
	s.persist()

	status := state.StatusWord()
	utils.BotLogf("SLOT", "Slot %s by admin %d", status, cb.SenderID)

	text := PanelText(state)
	if s.panelUnchanged(cb.SenderID, text) {
		s.answer(ctx, cb.ID, fmt.Sprintf(utils.ToggleAlreadyAck, status), false)
	} else {
		err := s.transport.EditPanel(ctx, cb.ChatID, cb.MessageID, text, state.Active)
		switch {
		case err == nil:
			s.cachePanel(cb.SenderID, models.PanelEntry{Text: text, MessageID: cb.MessageID})
			s.answer(ctx, cb.ID, fmt.Sprintf(utils.ToggleAck, status), false)
		case errors.Is(err, utils.ErrMessageNotModified):
			s.answer(ctx, cb.ID, fmt.Sprintf(utils.ToggleAlreadyAck, status), false)
		default:
			utils.AreaLogger("SLOT").WithError(err).Error("Failed to edit admin panel")
			s.answer(ctx, cb.ID, fmt.Sprintf(utils.ToggleAck, status), false)
		}
	}

	if !state.Active {
		s.cleanupPending(ctx)
	}
}

// ShowStats answers with the spin count (and jackpot count when journaled)
func (s *Session) ShowStats(ctx context.Context, cb models.Callback) {
	if !s.IsAdmin(cb.SenderID) {
		s.answer(ctx, cb.ID, utils.NoRightsMessage, false)
		return
	}

	text := fmt.Sprintf(utils.StatsMessage, s.Snapshot().TotalSpins)
	if s.journal != nil {
		if jackpots, err := s.journal.CountJackpots(ctx); err != nil {
			utils.AreaLogger("JOURNAL").WithError(err).Warn("Failed to count jackpots")
		} else {
			text += fmt.Sprintf(utils.StatsJackpotsLine, jackpots)
		}
	}
	s.answer(ctx, cb.ID, text, false)
}

// ShowHelp answers with the admin cheat sheet as an alert
func (s *Session) ShowHelp(ctx context.Context, cb models.Callback) {
	if !s.IsAdmin(cb.SenderID) {
		s.answer(ctx, cb.ID, utils.NoRightsMessage, false)
		return
	}

	state := s.Snapshot()
	s.answer(ctx, cb.ID, fmt.Sprintf(utils.HelpMessage, state.StatusWord(), state.TotalSpins), true)
}

// IgnoreCallback acknowledges a callback nobody handles so the client stops spinning
func (s *Session) IgnoreCallback(ctx context.Context, cb models.Callback) {
	s.answer(ctx, cb.ID, "", false)
}

func (s *Session) answer(ctx context.Context, callbackID, text string, alert bool) {
	if err := s.transport.AnswerCallback(ctx, callbackID, text, alert); err != nil {
		utils.AreaLogger("SLOT").WithError(err).Debug("Failed to answer callback")
	}
}

func (s *Session) panelUnchanged(adminID int64, text string) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	entry, ok := s.panels[adminID]
	return ok && entry.Text == text
}

func (s *Session) cachePanel(adminID int64, entry models.PanelEntry) {
	s.mutex.Lock()
	s.panels[adminID] = entry
	s.mutex.Unlock()
}

// CachedPanel returns the last panel rendered for an admin
func (s *Session) CachedPanel(adminID int64) (models.PanelEntry, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	entry, ok := s.panels[adminID]
	return entry, ok
}

package slots

import (
	"context"

	"slot-go/models"
	"slot-go/utils"
)

// Moderate keeps the designated group clean while the slot is active:
// anything that is neither a game command nor the bot's own message is deleted.
func (s *Session) Moderate(ctx context.Context, msg models.Message) {
	if !msg.IsGroup() || msg.ChatID != s.cfg.GroupID {
		return
	}
	if !s.Snapshot().Active {
		return
	}
	if msg.SenderID == s.cfg.BotID || utils.IsModerationExempt(msg.Text) {
		return
	}

	s.deleteMessage(ctx, msg.ChatID, msg.MessageID)
}

// cleanupPending drains the recorded ids and tries to delete each one once
func (s *Session) cleanupPending(ctx context.Context) {
	s.mutex.Lock()
	ids := s.pending
	s.pending = nil
	s.mutex.Unlock()

	failed := 0
	for _, messageID := range ids {
		if err := s.transport.DeleteMessage(ctx, s.cfg.GroupID, messageID); err != nil {
			failed++
		}
	}
	utils.BotLogf("MODERATION", "Cleanup finished: %d ids, %d already gone", len(ids), failed)

	s.NotifyAdmins(ctx, utils.CleanupDoneMessage)
}

package slots

import (
	"context"
	"fmt"

	"slot-go/models"
	"slot-go/utils"
)

// ActorRef renders the player as @handle or, without a handle, as an HTML mention link
func ActorRef(msg models.Message) string {
	if msg.SenderHandle != "" {
		return "@" + msg.SenderHandle
	}
	return fmt.Sprintf(utils.AnonymousActorLink, msg.SenderID)
}

// Spin handles one spin attempt.
// Direct chats always play without counting or cleanup; groups play only in the designated group while active.
func (s *Session) Spin(ctx context.Context, msg models.Message) {
	if msg.ChatKind == models.ChatOther {
		return
	}

	counted := false
	if msg.IsGroup() {
		if _, ok := s.admitSpin(msg.ChatID); !ok {
			s.deleteMessage(ctx, msg.ChatID, msg.MessageID)
			return
		}
		counted = true
		s.persist()
	}

	_, value, err := s.transport.SendSlotDice(ctx, msg.ChatID)
	if err != nil {
		utils.AreaLogger("SLOT").WithError(err).Error("Failed to send slot dice")
		if counted {
			s.deleteMessage(ctx, msg.ChatID, msg.MessageID)
		}
		return
	}

	outcome := models.SpinOutcome{
		ActorRef: ActorRef(msg),
		IsWin:    value == s.cfg.JackpotValue,
		RawValue: value,
	}

	// Let the reels finish before revealing
	if err := s.sleep(ctx, s.cfg.RevealDelay); err != nil {
		return
	}

	// The group goes quiet before the jackpot text appears
	designatedWin := outcome.IsWin && counted
	if designatedWin {
		utils.BotLogf("SLOT", "Jackpot for %s in chat %d", outcome.ActorRef, msg.ChatID)
		s.rewards.Mute(ctx, msg.ChatID)
	}

	result := fmt.Sprintf(utils.LossMessage, outcome.ActorRef)
	if outcome.IsWin {
		result = fmt.Sprintf(utils.WinMessage, outcome.ActorRef)
	}
	if _, err := s.transport.SendHTML(ctx, msg.ChatID, result); err != nil {
		utils.AreaLogger("SLOT").WithError(err).Error("Failed to send spin result")
	}

	if designatedWin {
		s.rewards.Issue(ctx, msg.ChatID, msg.SenderHandle, outcome.ActorRef)
	}

	if counted {
		s.deleteMessage(ctx, msg.ChatID, msg.MessageID)
	}

	state := s.Snapshot()
	s.recordSpin(ctx, msg, outcome, counted, state.TotalSpins)

	if designatedWin {
		s.NotifyAdmins(ctx, fmt.Sprintf(utils.AdminSpinReport, outcome.ActorRef, result, state.TotalSpins))
	}
}

func (s *Session) recordSpin(ctx context.Context, msg models.Message, outcome models.SpinOutcome, counted bool, total uint64) {
	if s.journal == nil {
		return
	}

	rec := models.SpinRecord{
		ChatID:     msg.ChatID,
		UserID:     msg.SenderID,
		Handle:     msg.SenderHandle,
		Value:      outcome.RawValue,
		IsWin:      outcome.IsWin,
		Counted:    counted,
		TotalSpins: total,
		CreatedAt:  s.now(),
	}
	if err := s.journal.RecordSpin(ctx, rec); err != nil {
		utils.AreaLogger("JOURNAL").WithError(err).Warn("Failed to journal spin")
	}
}

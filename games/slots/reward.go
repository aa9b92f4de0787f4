package slots

import (
	"context"
	"fmt"
	"html"
	"time"

	"slot-go/models"
	"slot-go/utils"
)

// RewardDispatcher runs the jackpot side effects: the mute before the result is shown, the reward after it.
// Each step reports its own failure to the admins and never stops the next one.
type RewardDispatcher struct {
	transport Transport
	issuer    RewardIssuer
	notify    func(ctx context.Context, text string)
	muteFor   time.Duration
	now       func() time.Time
}

// NewRewardDispatcher creates a dispatcher; a nil issuer disables reward issuance
func NewRewardDispatcher(transport Transport, issuer RewardIssuer, notify func(ctx context.Context, text string), muteFor time.Duration) *RewardDispatcher {
	return &RewardDispatcher{
		transport: transport,
		issuer:    issuer,
		notify:    notify,
		muteFor:   muteFor,
		now:       time.Now,
	}
}

// Issue sends the reward for a jackpot won in the designated group
func (rd *RewardDispatcher) Issue(ctx context.Context, chatID int64, handle, actorRef string) {
	if rd.issuer == nil {
		return
	}
	if handle == "" {
		rd.notify(ctx, fmt.Sprintf(utils.GiftNoHandleAdmins, actorRef))
		rd.apologize(ctx, chatID, actorRef)
		return
	}
	rd.send(ctx, chatID, handle)
}

// Mute silences the group for the configured duration and announces it
func (rd *RewardDispatcher) Mute(ctx context.Context, chatID int64) {
	until := rd.now().Add(rd.muteFor)
	if err := rd.transport.RestrictChat(ctx, chatID, until); err != nil {
		utils.AreaLogger("REWARD").WithError(err).Error("Failed to mute chat")
		rd.notify(ctx, utils.MuteFailed)
		return
	}

	if _, err := rd.transport.SendText(ctx, chatID, utils.MuteAnnouncement); err != nil {
		utils.AreaLogger("REWARD").WithError(err).Warn("Failed to announce mute")
	}
}

func (rd *RewardDispatcher) send(ctx context.Context, chatID int64, handle string) {
	ref := "@" + handle

	result, err := rd.safeIssue(ctx, handle)
	switch {
	case err != nil:
		utils.AreaLogger("REWARD").WithError(err).Error("Reward issuance failed unexpectedly")
		rd.notify(ctx, fmt.Sprintf(utils.GiftErrorAdmins, ref, html.EscapeString(err.Error())))
		rd.apologize(ctx, chatID, ref)
	case !result.Success:
		utils.BotLogf("REWARD", "Reward for %s not issued: %s", ref, result.Reason)
		rd.notify(ctx, fmt.Sprintf(utils.GiftFailedAdmins, ref, html.EscapeString(result.Reason)))
		rd.apologize(ctx, chatID, ref)
	default:
		utils.BotLogf("REWARD", "Reward %s issued to %s", result.Slug, ref)
		if _, err := rd.transport.SendText(ctx, chatID, fmt.Sprintf(utils.GiftSentGroup, ref, result.Slug)); err != nil {
			utils.AreaLogger("REWARD").WithError(err).Warn("Failed to announce reward")
		}
		rd.notify(ctx, fmt.Sprintf(utils.GiftSentAdmins, result.Slug, ref))
	}
}

// safeIssue turns a panic inside the collaborator into an unexpected fault
func (rd *RewardDispatcher) safeIssue(ctx context.Context, handle string) (result models.RewardResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("reward issuer panic: %v", r)
		}
	}()
	return rd.issuer.IssueAny(ctx, handle)
}

func (rd *RewardDispatcher) apologize(ctx context.Context, chatID int64, ref string) {
	if _, err := rd.transport.SendHTML(ctx, chatID, fmt.Sprintf(utils.GiftApology, ref)); err != nil {
		utils.AreaLogger("REWARD").WithError(err).Warn("Failed to send apology")
	}
}

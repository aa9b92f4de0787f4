package slots

import (
	"context"
	"time"

	"slot-go/models"
)

// Transport is the outbound chat surface the game talks to.
// Implementations absorb throttling themselves; errors returned here are final.
type Transport interface {
	SendText(ctx context.Context, chatID int64, text string) (int, error)
	SendHTML(ctx context.Context, chatID int64, text string) (int, error)
	// SendSlotDice posts the animated slot machine and returns its message id and value
	SendSlotDice(ctx context.Context, chatID int64) (int, int, error)
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
	SendPanel(ctx context.Context, chatID int64, text string, active bool) (int, error)
	EditPanel(ctx context.Context, chatID int64, messageID int, text string, active bool) error
	AnswerCallback(ctx context.Context, callbackID, text string, alert bool) error
	// RestrictChat forbids messaging for everybody but admins until the given time
	RestrictChat(ctx context.Context, chatID int64, until time.Time) error
}

// StateStore loads and saves the slot counters
type StateStore interface {
	Load() models.SlotState
	Save(state models.SlotState) error
}

// Journal keeps an audit trail of spins
type Journal interface {
	RecordSpin(ctx context.Context, rec models.SpinRecord) error
	CountJackpots(ctx context.Context) (int64, error)
}

// Mirror receives a copy of every admin notification
type Mirror interface {
	Notify(ctx context.Context, text string) error
}

// RewardIssuer hands one available reward item to a public handle.
// A returned error is an unexpected fault; handled failures come back inside the result.
type RewardIssuer interface {
	IssueAny(ctx context.Context, handle string) (models.RewardResult, error)
}

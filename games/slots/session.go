package slots

import (
	"context"
	"fmt"
	"sync"
	"time"

	"slot-go/models"
	"slot-go/utils"
)

// Config fixes the venue and the timing of the game
type Config struct {
	GroupID      int64
	AdminIDs     []int64
	BotID        int64
	JackpotValue int
	RevealDelay  time.Duration
	MuteDuration time.Duration
}

// Options carries the optional collaborators; any of them may be nil
type Options struct {
	Journal Journal
	Mirror  Mirror
	Issuer  RewardIssuer
}

// Session owns the slot state, the admin panel cache and the pending cleanup list.
// Every mutation happens in one critical section that never spans an outbound call.
type Session struct {
	cfg       Config
	admins    map[int64]struct{}
	transport Transport
	store     StateStore
	journal   Journal
	mirror    Mirror
	rewards   *RewardDispatcher

	mutex   sync.Mutex
	state   models.SlotState
	panels  map[int64]models.PanelEntry
	pending []int
	// period is bumped on every toggle; a deletion only joins pending within the period it started in
	period uint64

	// saveMutex serialises persistence so the newest snapshot always lands last
	saveMutex sync.Mutex

	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
}

// NewSession restores the counters from the store and wires the collaborators
func NewSession(cfg Config, transport Transport, store StateStore, opts Options) *Session {
	if cfg.JackpotValue == 0 {
		cfg.JackpotValue = utils.JackpotValue
	}
	if cfg.MuteDuration == 0 {
		cfg.MuteDuration = utils.MuteDuration
	}

	s := &Session{
		cfg:       cfg,
		admins:    make(map[int64]struct{}, len(cfg.AdminIDs)),
		transport: transport,
		store:     store,
		journal:   opts.Journal,
		mirror:    opts.Mirror,
		state:     store.Load(),
		panels:    make(map[int64]models.PanelEntry),
		sleep:     utils.SleepContext,
		now:       time.Now,
	}
	for _, id := range cfg.AdminIDs {
		s.admins[id] = struct{}{}
	}
	s.rewards = NewRewardDispatcher(transport, opts.Issuer, s.NotifyAdmins, cfg.MuteDuration)
	s.rewards.now = func() time.Time { return s.now() }

	return s
}

// Snapshot returns a copy of the current slot state
func (s *Session) Snapshot() models.SlotState {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.state
}

// PendingCount returns how many deleted message ids await bulk cleanup
func (s *Session) PendingCount() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.pending)
}

// IsAdmin checks whether the user may operate the panel
func (s *Session) IsAdmin(userID int64) bool {
	_, ok := s.admins[userID]
	return ok
}

// toggle flips the switch for an admin and returns the new state
func (s *Session) toggle(userID int64) (models.SlotState, error) {
	if !s.IsAdmin(userID) {
		return models.SlotState{}, utils.ErrPermissionDenied
	}

	s.mutex.Lock()
	s.state.Active = !s.state.Active
	s.period++
	state := s.state
	s.mutex.Unlock()

	return state, nil
}

// admitSpin checks the gates and counts the spin in one step.
// Inactive slot and foreign groups are rejected before anything is mutated.
func (s *Session) admitSpin(chatID int64) (models.SlotState, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.state.Active || chatID != s.cfg.GroupID {
		return s.state, false
	}
	s.state.TotalSpins++
	return s.state, true
}

// persist saves the latest state; failures are logged and swallowed
func (s *Session) persist() {
	s.saveMutex.Lock()
	defer s.saveMutex.Unlock()

	state := s.Snapshot()
	if err := s.store.Save(state); err != nil {
		utils.AreaLogger("STORE").WithError(err).Error("Failed to save slot data")
	}
}

// deleteMessage removes a message and, in the designated group, remembers it for cleanup
func (s *Session) deleteMessage(ctx context.Context, chatID int64, messageID int) bool {
	s.mutex.Lock()
	period := s.period
	s.mutex.Unlock()

	if err := s.transport.DeleteMessage(ctx, chatID, messageID); err != nil {
		utils.AreaLogger("MODERATION").WithError(err).Debugf("Could not delete message %d in chat %d", messageID, chatID)
		return false
	}

	if chatID == s.cfg.GroupID {
		s.mutex.Lock()
		// A toggle during the call already drained the list this id belonged to
		if s.period == period {
			s.pending = append(s.pending, messageID)
		}
		s.mutex.Unlock()
	}
	return true
}

// NotifyAdmins sends the text to every admin directly and to the mirror, ignoring failures
func (s *Session) NotifyAdmins(ctx context.Context, text string) {
	for _, adminID := range s.cfg.AdminIDs {
		if _, err := s.transport.SendHTML(ctx, adminID, text); err != nil {
			utils.AreaLogger("SLOT").WithError(err).Debugf("Could not notify admin %d", adminID)
		}
	}

	if s.mirror != nil {
		if err := s.mirror.Notify(ctx, text); err != nil {
			utils.AreaLogger("DISCORD").WithError(err).Warn("Failed to mirror admin notification")
		}
	}
}

// Start answers /start with the welcome text
func (s *Session) Start(ctx context.Context, msg models.Message) {
	text := fmt.Sprintf(utils.WelcomeMessage, s.Snapshot().StatusWord())
	if _, err := s.transport.SendText(ctx, msg.ChatID, text); err != nil {
		utils.AreaLogger("SLOT").WithError(err).Warn("Failed to send welcome message")
	}
}

package models

import (
	"time"
)

// SlotState is the process-wide slot switch and spin counter
type SlotState struct {
	Active     bool   `json:"is_slot_active"`
	TotalSpins uint64 `json:"total_spins"`
}

// StatusWord returns the panel wording for the current switch position
func (s SlotState) StatusWord() string {
	if s.Active {
		return "активирован"
	}
	return "деактивирован"
}

// PanelEntry is the last admin panel text rendered for one admin
type PanelEntry struct {
	Text      string
	MessageID int
}

// ChatKind distinguishes direct chats from group chats
type ChatKind int

const (
	ChatPrivate ChatKind = iota
	ChatGroup
	ChatOther
)

// Message is an inbound chat message reduced to what the game needs
type Message struct {
	ChatID       int64
	ChatKind     ChatKind
	MessageID    int
	SenderID     int64
	SenderHandle string // public username without "@", empty when the user has none
	Text         string
}

// IsGroup reports whether the message was posted in a group or supergroup
func (m Message) IsGroup() bool {
	return m.ChatKind == ChatGroup
}

// Callback is an inline button press on the admin panel
type Callback struct {
	ID        string
	SenderID  int64
	ChatID    int64
	MessageID int
	Data      string
}

// SpinOutcome is the result of one accepted spin attempt
type SpinOutcome struct {
	ActorRef string
	IsWin    bool
	RawValue int
}

// SpinRecord is one row of the spin journal
type SpinRecord struct {
	ChatID     int64
	UserID     int64
	Handle     string
	Value      int
	IsWin      bool
	Counted    bool
	TotalSpins uint64
	CreatedAt  time.Time
}

// RewardResult is the structured answer of the reward collaborator.
// A successful issuance carries the item identifier; a handled failure carries the reason.
type RewardResult struct {
	Success bool
	Slug    string
	Reason  string
}

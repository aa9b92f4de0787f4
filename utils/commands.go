package utils

import (
	"regexp"
	"strings"
)

// Command is the class an inbound message or callback falls into
type Command int

const (
	CommandAmbient Command = iota
	CommandStart
	CommandAdmin
	CommandSpin
	CommandToggle
	CommandShowStats
	CommandShowHelp
	CommandUnknownCallback
)

func (c Command) String() string {
	switch c {
	case CommandStart:
		return "start"
	case CommandAdmin:
		return "admin"
	case CommandSpin:
		return "spin"
	case CommandToggle:
		return "toggle"
	case CommandShowStats:
		return "show-stats"
	case CommandShowHelp:
		return "show-help"
	case CommandUnknownCallback:
		return "unknown-callback"
	default:
		return "ambient"
	}
}

type commandPattern struct {
	command Command
	re      *regexp.Regexp
	// exempt commands are left alone by moderation while the slot is active
	exempt bool
}

// commandTable is the only definition of what counts as a text command.
// Patterns match the whole text, case-insensitively, with an optional @botname suffix.
var commandTable = []commandPattern{
	{CommandStart, anchored(`/start`), true},
	{CommandAdmin, anchored(`/admin`), false},
	{CommandSpin, anchored(`/spin|!крутить|крутить|` + SlotEmoji), true},
}

func anchored(alternatives string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)^(?:` + alternatives + `)(?:@\w+)?$`)
}

// ClassifyText maps a message text onto a command
func ClassifyText(text string) Command {
	text = strings.TrimSpace(text)
	if text == "" {
		return CommandAmbient
	}
	for _, p := range commandTable {
		if p.re.MatchString(text) {
			return p.command
		}
	}
	return CommandAmbient
}

// IsModerationExempt reports whether moderation must keep a message with this text
func IsModerationExempt(text string) bool {
	text = strings.TrimSpace(text)
	for _, p := range commandTable {
		if p.exempt && p.re.MatchString(text) {
			return true
		}
	}
	return false
}

// ClassifyCallback maps an admin panel callback tag onto a command
func ClassifyCallback(data string) Command {
	switch data {
	case CallbackToggle:
		return CommandToggle
	case CallbackShowStats:
		return CommandShowStats
	case CallbackShowHelp:
		return CommandShowHelp
	default:
		return CommandUnknownCallback
	}
}

package utils

import (
	"errors"
)

var (
	// ErrMessageNotModified is returned by an edit whose content equals the current message
	ErrMessageNotModified = errors.New("message is not modified")
	// ErrMessageGone is returned when the target message no longer exists or cannot be touched
	ErrMessageGone = errors.New("message can't be deleted or found")
	// ErrThrottled is returned when the throttle retry budget is exhausted
	ErrThrottled = errors.New("throttled by transport")
	// ErrPermissionDenied is returned for admin-only actions invoked by anybody else
	ErrPermissionDenied = errors.New("permission denied")
	// ErrSessionMissing means the reward sender's session file does not exist
	ErrSessionMissing = errors.New("gift sender session file missing")
)

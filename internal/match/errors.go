package match

import "errors"

// Validation errors surfaced to callers. None are fatal; handlers map
// them to HTTP statuses and the UI is responsible for display.
var (
	ErrNotSignedIn    = errors.New("sign in required")
	ErrRoomNotFound   = errors.New("room not found")
	ErrRoomFull       = errors.New("room is full")
	ErrAlreadyStarted = errors.New("room already started")
	ErrNotHost        = errors.New("only the host can do that")
	ErrNotInRoom      = errors.New("player is not in this room")
	ErrBadRound       = errors.New("round out of range")
	ErrNotPlaying     = errors.New("match is not in progress")
)

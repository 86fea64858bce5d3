// Package game implements the basketball game core: player resolution, dice
// scoring, the per-chat room state machine, and the session controller that
// translates inbound chat events into game operations.
package game

import "errors"

// Validation errors are expected outcomes of normal use. They are surfaced to
// the requesting user as a short message and never logged as failures.
var (
	ErrAlreadyJoined    = errors.New("player is already in the room")
	ErrRoomNotJoinable  = errors.New("room cannot be joined")
	ErrInvalidConfig    = errors.New("invalid room configuration")
	ErrNotEnoughPlayers = errors.New("not enough players")
	ErrAlreadyStarted   = errors.New("game already started")
	ErrAlreadyFinished  = errors.New("game already finished")
)

// Contract violations by the caller. Logged and answered with a generic reply.
var (
	ErrInvalidTransition = errors.New("invalid room state transition")
	ErrInvalidRoll       = errors.New("invalid dice roll value")
)

// ErrStorageUnavailable marks transient storage failures. The current event
// fails cleanly, without partial state mutation, and may be retried by a
// future event.
var ErrStorageUnavailable = errors.New("storage unavailable")

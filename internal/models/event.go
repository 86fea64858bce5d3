package models

import "time"

// EventKind tags the payload variant of a GameEvent. The kind is decided once
// at the transport boundary, never re-inferred inside handlers.
type EventKind int

const (
	// EventEnter opens (or re-opens) a room in the chat.
	EventEnter EventKind = iota
	// EventNumericConfig carries an all-digit message, used to set the max score.
	EventNumericConfig
	// EventJoinCallback is the "join" inline button press.
	EventJoinCallback
	// EventStartCallback is the "start" inline button press.
	EventStartCallback
	// EventDiceRoll carries the value of a thrown basketball dice.
	EventDiceRoll
	// EventStrayMessage is any other message sent while a room is live.
	EventStrayMessage
)

// GameEvent is the tagged variant handed from the Telegram transport to the
// session controller. Only the fields of the tagged kind carry meaning.
type GameEvent struct {
	Kind       EventKind
	ChatID     int64
	MessageID  int
	PlayerID   string
	PlayerName string
	// CallbackID is set on join/start callbacks so the controller can answer them.
	CallbackID string
	// Number is the numeric-config payload.
	Number int
	// DiceValue is the dice-roll payload.
	DiceValue int
}

// RoomEvent is published to Redis Pub/Sub whenever a room changes state.
// The ops event feed streams these to connected dashboards.
type RoomEvent struct {
	ChatID   string    `json:"chat_id"`
	Type     string    `json:"type"` // created, player_joined, ready, started, finished, config_updated
	PlayerID string    `json:"player_id,omitempty"`
	Status   string    `json:"status"`
	At       time.Time `json:"at"`
}

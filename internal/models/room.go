package models

import (
	"time"

	"github.com/lib/pq"
)

// Room statuses. Transitions only ever move forward:
// forming -> ready -> playing -> finished.
const (
	StatusForming  = "forming"
	StatusReady    = "ready"
	StatusPlaying  = "playing"
	StatusFinished = "finished"
)

// GameRoom represents one basketball game session in a group chat.
// At most one room exists per chat at any time; a finished room is
// replaced the next time someone opens a game in the same chat.
type GameRoom struct {
	// ChatID is the Telegram group chat ID as a string (primary key).
	ChatID string `gorm:"primaryKey" json:"chat_id"`
	// OwnerID is the player who opened the room with /basketball.
	OwnerID string `json:"owner_id"`
	// MemberIDs holds the players who joined, owner included.
	MemberIDs pq.StringArray `gorm:"type:text[]" json:"member_ids"`
	// MaxScore is the configured winning score. Nil means "use the default".
	MaxScore *int `json:"max_score,omitempty"`
	// Scores maps player ID to points scored in the current game.
	Scores map[string]int `gorm:"serializer:json;type:jsonb" json:"scores"`
	// Status is one of the Status* constants above.
	Status string `json:"status"`
	// StartedAt is set when the room transitions to playing.
	StartedAt time.Time `json:"started_at"`
	// FinishedAt is set when the room transitions to finished.
	FinishedAt time.Time `json:"finished_at"`
}

// HasMember reports whether the player already joined the room.
func (r *GameRoom) HasMember(playerID string) bool {
	for _, id := range r.MemberIDs {
		if id == playerID {
			return true
		}
	}
	return false
}

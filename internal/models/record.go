package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GameRecord is the durable result of one finished game.
type GameRecord struct {
	ID string `gorm:"primaryKey" json:"id"`
	// ChatID is the chat the game was played in.
	ChatID string `gorm:"index" json:"chat_id"`
	// WinnerID and WinnerName identify the player who reached the target.
	WinnerID   string `json:"winner_id"`
	WinnerName string `json:"winner_name"`
	// TargetScore is the number of points the game was played to.
	TargetScore int       `json:"target_score"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
}

// BeforeCreate — це хук GORM, який викликається перед створенням запису.
// Генерує новий UUID для результату гри, якщо ID ще не встановлено.
func (r *GameRecord) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return
}

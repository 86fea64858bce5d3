// Package schedule fires delayed side effects against chat messages without
// blocking the caller. Join notices, config acknowledgments and stray messages
// are deleted after a grace delay; game results are revealed by replacing a
// placeholder once the dice animation has played out.
package schedule

import (
	"log"
	"time"
)

// Messenger is the transport surface the scheduler needs: deleting a message
// and replacing its text.
type Messenger interface {
	DeleteMessage(chatID int64, messageID int) error
	EditMessageText(chatID int64, messageID int, text string) error
}

// Scheduler registers one-shot timers against chat messages. Each timer fires
// exactly once and disposes itself. The returned timer can stop a pending job,
// although nothing cancels them today.
type Scheduler struct {
	Messenger Messenger
}

// NewScheduler creates a scheduler over the given messenger.
func NewScheduler(m Messenger) *Scheduler {
	return &Scheduler{Messenger: m}
}

// ScheduleDeletion deletes the message after the delay and returns
// immediately. A message that is already gone when the timer fires is a
// no-op: logged, not escalated.
func (s *Scheduler) ScheduleDeletion(chatID int64, messageID int, delay time.Duration) *time.Timer {
	return time.AfterFunc(delay, func() {
		if err := s.Messenger.DeleteMessage(chatID, messageID); err != nil {
			log.Printf("WARN: failed to delete message %d in chat %d: %v", messageID, chatID, err)
		}
	})
}

// ScheduleReplacement edits the message text after the delay and returns
// immediately. Edit failures follow the same no-op rule as deletions.
func (s *Scheduler) ScheduleReplacement(chatID int64, messageID int, delay time.Duration, text string) *time.Timer {
	return time.AfterFunc(delay, func() {
		if err := s.Messenger.EditMessageText(chatID, messageID, text); err != nil {
			log.Printf("WARN: failed to edit message %d in chat %d: %v", messageID, chatID, err)
		}
	})
}

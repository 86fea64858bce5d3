package game

import (
	"fmt"
	"log"
	"sync"
	"time"

	"hoopbot/backend/internal/config"
	"hoopbot/backend/internal/models"
	"hoopbot/backend/internal/storage"

	"github.com/lib/pq"
)

// RoomManager owns the per-chat room state machine. Rooms are durable records
// keyed by chat ID; a lock table partitioned by the same key makes every
// operation atomic for its room without any cross-chat lock.
type RoomManager struct {
	Storage storage.Storage

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewRoomManager creates a new room manager over the given storage.
func NewRoomManager(s storage.Storage) *RoomManager {
	return &RoomManager{
		Storage: s,
		locks:   make(map[string]*sync.Mutex),
	}
}

// chatLock returns the mutex guarding the room of one chat.
func (m *RoomManager) chatLock(chatID string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.locks[chatID]
	if !ok {
		l = &sync.Mutex{}
		m.locks[chatID] = l
	}
	return l
}

func (m *RoomManager) loadRoom(chatID string) (*models.GameRoom, error) {
	room, err := m.Storage.GetRoomByChatID(chatID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return room, nil
}

func (m *RoomManager) saveRoom(room *models.GameRoom) error {
	if err := m.Storage.SaveRoom(room); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

// publish emits a room lifecycle event for the ops feed. Best effort: a feed
// failure never fails the game operation.
func (m *RoomManager) publish(room *models.GameRoom, eventType, playerID string) {
	event := models.RoomEvent{
		ChatID:   room.ChatID,
		Type:     eventType,
		PlayerID: playerID,
		Status:   room.Status,
		At:       time.Now(),
	}
	if err := m.Storage.PublishRoomEvent(event); err != nil {
		log.Printf("WARN: failed to publish %s event for chat %s: %v", eventType, room.ChatID, err)
	}
}

// Get returns the room of the chat, or nil when no room exists.
func (m *RoomManager) Get(chatID string) (*models.GameRoom, error) {
	l := m.chatLock(chatID)
	l.Lock()
	defer l.Unlock()

	return m.loadRoom(chatID)
}

// CreateOrGet returns the live room of the chat, creating a fresh one when
// none exists. A finished room counts as absent and is replaced, so a new
// /basketball in the same chat starts a clean game.
func (m *RoomManager) CreateOrGet(chatID string, owner *models.Player) (*models.GameRoom, error) {
	l := m.chatLock(chatID)
	l.Lock()
	defer l.Unlock()

	room, err := m.loadRoom(chatID)
	if err != nil {
		return nil, err
	}
	if room != nil && room.Status != models.StatusFinished {
		return room, nil
	}

	room = &models.GameRoom{
		ChatID:    chatID,
		OwnerID:   owner.ID,
		MemberIDs: pq.StringArray{owner.ID},
		Scores:    make(map[string]int),
		Status:    models.StatusForming,
	}
	if err := m.saveRoom(room); err != nil {
		return nil, err
	}
	if err := m.Storage.AddActiveRoom(chatID); err != nil {
		log.Printf("WARN: failed to index active room %s: %v", chatID, err)
	}
	m.publish(room, "created", owner.ID)
	return room, nil
}

// Join adds the player to the room. Joining is allowed while the room is
// forming or ready; once the minimum headcount is reached the room moves
// from forming to ready.
func (m *RoomManager) Join(chatID string, player *models.Player) (*models.GameRoom, error) {
	l := m.chatLock(chatID)
	l.Lock()
	defer l.Unlock()

	room, err := m.loadRoom(chatID)
	if err != nil {
		return nil, err
	}
	if room == nil || room.Status == models.StatusPlaying || room.Status == models.StatusFinished {
		return nil, ErrRoomNotJoinable
	}
	if room.HasMember(player.ID) {
		return nil, ErrAlreadyJoined
	}

	room.MemberIDs = append(room.MemberIDs, player.ID)
	becameReady := false
	if room.Status == models.StatusForming && len(room.MemberIDs) >= config.MinPlayers {
		room.Status = models.StatusReady
		becameReady = true
	}
	if err := m.saveRoom(room); err != nil {
		return nil, err
	}

	m.publish(room, "player_joined", player.ID)
	if becameReady {
		m.publish(room, "ready", "")
	}
	return room, nil
}

// SetMaxScore stores the configured winning score on the room. Out-of-range
// values are rejected and the prior configuration is retained.
func (m *RoomManager) SetMaxScore(chatID string, value int) error {
	l := m.chatLock(chatID)
	l.Lock()
	defer l.Unlock()

	room, err := m.loadRoom(chatID)
	if err != nil {
		return err
	}
	if room == nil || room.Status == models.StatusPlaying || room.Status == models.StatusFinished {
		return ErrRoomNotJoinable
	}
	if value < 0 || value > config.MaxScoreLimit {
		return ErrInvalidConfig
	}

	room.MaxScore = &value
	if err := m.saveRoom(room); err != nil {
		return err
	}
	m.publish(room, "config_updated", "")
	return nil
}

// ValidateStart reports whether the room may start, without mutating anything,
// so the controller can answer a callback before committing the transition.
// Safe to call any number of times.
func (m *RoomManager) ValidateStart(chatID string) error {
	l := m.chatLock(chatID)
	l.Lock()
	defer l.Unlock()

	room, err := m.loadRoom(chatID)
	if err != nil {
		return err
	}
	switch {
	case room == nil:
		return ErrRoomNotJoinable
	case room.Status == models.StatusForming:
		return ErrNotEnoughPlayers
	case room.Status == models.StatusPlaying:
		return ErrAlreadyStarted
	case room.Status == models.StatusFinished:
		return ErrAlreadyFinished
	}
	return nil
}

// Start transitions the room from ready to playing. A double-tapped start
// button lands here twice; the second call reports ErrAlreadyStarted instead
// of mutating anything.
func (m *RoomManager) Start(chatID string) (*models.GameRoom, error) {
	l := m.chatLock(chatID)
	l.Lock()
	defer l.Unlock()

	room, err := m.loadRoom(chatID)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, ErrInvalidTransition
	}
	if room.Status != models.StatusReady {
		if room.Status == models.StatusPlaying {
			return nil, ErrAlreadyStarted
		}
		return nil, ErrInvalidTransition
	}

	room.Status = models.StatusPlaying
	room.StartedAt = time.Now()
	if err := m.saveRoom(room); err != nil {
		return nil, err
	}
	m.publish(room, "started", "")
	return room, nil
}

// AddScore credits one point to a player in a playing room and reports the
// player's total alongside the room target.
func (m *RoomManager) AddScore(chatID, playerID string) (total, target int, err error) {
	l := m.chatLock(chatID)
	l.Lock()
	defer l.Unlock()

	room, err := m.loadRoom(chatID)
	if err != nil {
		return 0, 0, err
	}
	if room == nil || room.Status != models.StatusPlaying {
		return 0, 0, ErrInvalidTransition
	}

	if room.Scores == nil {
		room.Scores = make(map[string]int)
	}
	room.Scores[playerID]++
	if err := m.saveRoom(room); err != nil {
		return 0, 0, err
	}
	return room.Scores[playerID], TargetScore(room), nil
}

// Finish transitions the room from playing to finished. The room then counts
// as absent for CreateOrGet and is eligible for replacement.
func (m *RoomManager) Finish(chatID string) (*models.GameRoom, error) {
	l := m.chatLock(chatID)
	l.Lock()
	defer l.Unlock()

	room, err := m.loadRoom(chatID)
	if err != nil {
		return nil, err
	}
	if room == nil || room.Status != models.StatusPlaying {
		return nil, ErrInvalidTransition
	}

	room.Status = models.StatusFinished
	room.FinishedAt = time.Now()
	if err := m.saveRoom(room); err != nil {
		return nil, err
	}
	if err := m.Storage.RemoveActiveRoom(chatID); err != nil {
		log.Printf("WARN: failed to unindex room %s: %v", chatID, err)
	}
	m.publish(room, "finished", "")
	return room, nil
}

// TargetScore resolves the points needed to win: the configured max score
// when set, the system default otherwise.
func TargetScore(room *models.GameRoom) int {
	if room.MaxScore != nil && *room.MaxScore > 0 {
		return *room.MaxScore
	}
	return config.DefaultTargetScore
}

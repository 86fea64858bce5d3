package storage

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"hoopbot/backend/internal/config"
	"hoopbot/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	// activeRoomsKey is the Redis set holding the chat IDs of live rooms.
	activeRoomsKey = "active_rooms"
	// roomEventChannel is the Redis Pub/Sub channel for room lifecycle events.
	roomEventChannel = "room_events"
)

type Storage interface {
	SavePlayer(player *models.Player) error
	GetPlayerByID(id string) (*models.Player, error)
	SavePlayerIfNotExists(id, name string) (*models.Player, error)
	CountWinsForPlayer(id string) (int64, error)

	SaveRoom(room *models.GameRoom) error
	GetRoomByChatID(chatID string) (*models.GameRoom, error)
	DeleteRoom(chatID string) error
	ListLiveRooms() ([]models.GameRoom, error)

	SaveGameRecord(record *models.GameRecord) error

	AddActiveRoom(chatID string) error
	RemoveActiveRoom(chatID string) error
	GetActiveRoomIDs() ([]string, error)

	PublishRoomEvent(event models.RoomEvent) error
}

type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context
}

// NewStorageService Constructor
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
	}
}

// opCtx обмежує кожну операцію таймаутом, щоб підвисла база даних
// повертала помилку замість нескінченного блокування обробки події.
func (s *Service) opCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(s.Ctx, config.StorageTimeout)
}

// SavePlayer зберігає гравця в PostgreSQL
func (s *Service) SavePlayer(player *models.Player) error {
	ctx, cancel := s.opCtx()
	defer cancel()
	return s.DB.WithContext(ctx).Save(player).Error
}

// GetPlayerByID повертає гравця за його Telegram ID, або nil якщо не знайдено.
func (s *Service) GetPlayerByID(id string) (*models.Player, error) {
	ctx, cancel := s.opCtx()
	defer cancel()

	var player models.Player
	err := s.DB.WithContext(ctx).Where("id = ?", id).First(&player).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &player, nil
}

// SavePlayerIfNotExists creates the player on first contact and refreshes the
// display name on every later one.
func (s *Service) SavePlayerIfNotExists(id, name string) (*models.Player, error) {
	ctx, cancel := s.opCtx()
	defer cancel()

	var player models.Player
	defaults := models.Player{
		ID:   id,
		Name: name,
	}

	result := s.DB.WithContext(ctx).Where("id = ?", id).FirstOrCreate(&player, defaults)
	if result.Error != nil {
		log.Printf("ERROR: Failed to save player %s on first contact: %v", id, result.Error)
		return nil, result.Error
	}

	if result.RowsAffected > 0 {
		// Гравця було створено.
		log.Printf("INFO: New player %s (%s) saved to database.", id, name)
		return &player, nil
	}

	if name != "" && player.Name != name {
		player.Name = name
		if err := s.DB.WithContext(ctx).Save(&player).Error; err != nil {
			log.Printf("ERROR: Failed to refresh name for player %s: %v", id, err)
			return nil, err
		}
	}

	return &player, nil
}

// CountWinsForPlayer рахує завершені ігри, виграні гравцем.
func (s *Service) CountWinsForPlayer(id string) (int64, error) {
	ctx, cancel := s.opCtx()
	defer cancel()

	var count int64
	err := s.DB.WithContext(ctx).Model(&models.GameRecord{}).
		Where("winner_id = ?", id).
		Count(&count).Error
	return count, err
}

// SaveRoom зберігає кімнату в PostgreSQL
func (s *Service) SaveRoom(room *models.GameRoom) error {
	ctx, cancel := s.opCtx()
	defer cancel()
	return s.DB.WithContext(ctx).Save(room).Error
}

// GetRoomByChatID повертає кімнату чату, або nil якщо кімнати немає.
func (s *Service) GetRoomByChatID(chatID string) (*models.GameRoom, error) {
	ctx, cancel := s.opCtx()
	defer cancel()

	var room models.GameRoom
	err := s.DB.WithContext(ctx).Where("chat_id = ?", chatID).First(&room).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		log.Printf("ERROR: Failed to get room %s: %v", chatID, err)
		return nil, err
	}
	return &room, nil
}

// DeleteRoom видаляє кімнату чату.
func (s *Service) DeleteRoom(chatID string) error {
	ctx, cancel := s.opCtx()
	defer cancel()
	return s.DB.WithContext(ctx).Where("chat_id = ?", chatID).Delete(&models.GameRoom{}).Error
}

// ListLiveRooms повертає всі кімнати, які ще не завершені.
func (s *Service) ListLiveRooms() ([]models.GameRoom, error) {
	ctx, cancel := s.opCtx()
	defer cancel()

	var rooms []models.GameRoom
	err := s.DB.WithContext(ctx).
		Where("status IN ?", []string{models.StatusForming, models.StatusReady, models.StatusPlaying}).
		Find(&rooms).Error
	if err != nil {
		log.Printf("ERROR: Failed to list live rooms: %v", err)
		return nil, err
	}
	return rooms, nil
}

// SaveGameRecord зберігає результат завершеної гри.
func (s *Service) SaveGameRecord(record *models.GameRecord) error {
	ctx, cancel := s.opCtx()
	defer cancel()

	if err := s.DB.WithContext(ctx).Create(record).Error; err != nil {
		log.Printf("ERROR: Failed to save game record for chat %s: %v", record.ChatID, err)
		return err
	}
	return nil
}

// AddActiveRoom додає кімнату до індексу активних кімнат у Redis
func (s *Service) AddActiveRoom(chatID string) error {
	if s.Redis == nil {
		return nil // admin CLI runs without Redis
	}
	ctx, cancel := s.opCtx()
	defer cancel()
	return s.Redis.SAdd(ctx, activeRoomsKey, chatID).Err()
}

// RemoveActiveRoom видаляє кімнату з індексу активних кімнат у Redis
func (s *Service) RemoveActiveRoom(chatID string) error {
	if s.Redis == nil {
		return nil // admin CLI runs without Redis
	}
	ctx, cancel := s.opCtx()
	defer cancel()
	return s.Redis.SRem(ctx, activeRoomsKey, chatID).Err()
}

// GetActiveRoomIDs повертає всі чати з активною кімнатою
func (s *Service) GetActiveRoomIDs() ([]string, error) {
	if s.Redis == nil {
		return nil, nil
	}
	ctx, cancel := s.opCtx()
	defer cancel()
	return s.Redis.SMembers(ctx, activeRoomsKey).Result()
}

// PublishRoomEvent публікує подію кімнати в Redis Pub/Sub
func (s *Service) PublishRoomEvent(event models.RoomEvent) error {
	if s.Redis == nil {
		return nil
	}

	eventBytes, err := json.Marshal(event)
	if err != nil {
		return err
	}

	ctx, cancel := s.opCtx()
	defer cancel()
	if err := s.Redis.Publish(ctx, roomEventChannel, string(eventBytes)).Err(); err != nil {
		return err
	}

	return nil
}

// SubscribeRoomEvents підписується на канал подій кімнат.
func (s *Service) SubscribeRoomEvents() *redis.PubSub {
	return s.Redis.Subscribe(s.Ctx, roomEventChannel)
}

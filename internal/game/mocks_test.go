package game_test

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"hoopbot/backend/internal/localization"
	"hoopbot/backend/internal/models"

	"github.com/lib/pq"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockStorage is a testify mock of storage.Storage for expectation-style tests.
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) SavePlayer(player *models.Player) error {
	args := m.Called(player)
	return args.Error(0)
}

func (m *MockStorage) GetPlayerByID(id string) (*models.Player, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Player), args.Error(1)
}

func (m *MockStorage) SavePlayerIfNotExists(id, name string) (*models.Player, error) {
	args := m.Called(id, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Player), args.Error(1)
}

func (m *MockStorage) CountWinsForPlayer(id string) (int64, error) {
	args := m.Called(id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStorage) SaveRoom(room *models.GameRoom) error {
	args := m.Called(room)
	return args.Error(0)
}

func (m *MockStorage) GetRoomByChatID(chatID string) (*models.GameRoom, error) {
	args := m.Called(chatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GameRoom), args.Error(1)
}

func (m *MockStorage) DeleteRoom(chatID string) error {
	args := m.Called(chatID)
	return args.Error(0)
}

func (m *MockStorage) ListLiveRooms() ([]models.GameRoom, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.GameRoom), args.Error(1)
}

func (m *MockStorage) SaveGameRecord(record *models.GameRecord) error {
	args := m.Called(record)
	return args.Error(0)
}

func (m *MockStorage) AddActiveRoom(chatID string) error {
	args := m.Called(chatID)
	return args.Error(0)
}

func (m *MockStorage) RemoveActiveRoom(chatID string) error {
	args := m.Called(chatID)
	return args.Error(0)
}

func (m *MockStorage) GetActiveRoomIDs() ([]string, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockStorage) PublishRoomEvent(event models.RoomEvent) error {
	args := m.Called(event)
	return args.Error(0)
}

var errStorageDown = errors.New("storage down")

// memStorage is an in-memory storage.Storage for state machine tests. It
// copies rooms in and out like a real database would, so manager mutations
// only stick after SaveRoom.
type memStorage struct {
	mu      sync.Mutex
	players map[string]*models.Player
	rooms   map[string]models.GameRoom
	records []*models.GameRecord
	active  map[string]bool
	events  []models.RoomEvent
	failAll bool
}

func newMemStorage() *memStorage {
	return &memStorage{
		players: make(map[string]*models.Player),
		rooms:   make(map[string]models.GameRoom),
		active:  make(map[string]bool),
	}
}

func copyRoom(room models.GameRoom) models.GameRoom {
	room.MemberIDs = append(pq.StringArray{}, room.MemberIDs...)
	scores := make(map[string]int, len(room.Scores))
	for id, score := range room.Scores {
		scores[id] = score
	}
	room.Scores = scores
	return room
}

func (m *memStorage) SavePlayer(player *models.Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return errStorageDown
	}
	m.players[player.ID] = player
	return nil
}

func (m *memStorage) GetPlayerByID(id string) (*models.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return nil, errStorageDown
	}
	return m.players[id], nil
}

func (m *memStorage) SavePlayerIfNotExists(id, name string) (*models.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return nil, errStorageDown
	}
	if player, ok := m.players[id]; ok {
		player.Name = name
		return player, nil
	}
	player := &models.Player{ID: id, Name: name}
	m.players[id] = player
	return player, nil
}

func (m *memStorage) CountWinsForPlayer(id string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, record := range m.records {
		if record.WinnerID == id {
			count++
		}
	}
	return count, nil
}

func (m *memStorage) SaveRoom(room *models.GameRoom) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return errStorageDown
	}
	m.rooms[room.ChatID] = copyRoom(*room)
	return nil
}

func (m *memStorage) GetRoomByChatID(chatID string) (*models.GameRoom, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return nil, errStorageDown
	}
	room, ok := m.rooms[chatID]
	if !ok {
		return nil, nil
	}
	room = copyRoom(room)
	return &room, nil
}

func (m *memStorage) DeleteRoom(chatID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rooms, chatID)
	return nil
}

func (m *memStorage) ListLiveRooms() ([]models.GameRoom, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var rooms []models.GameRoom
	for _, room := range m.rooms {
		if room.Status != models.StatusFinished {
			rooms = append(rooms, copyRoom(room))
		}
	}
	return rooms, nil
}

func (m *memStorage) SaveGameRecord(record *models.GameRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return errStorageDown
	}
	m.records = append(m.records, record)
	return nil
}

func (m *memStorage) AddActiveRoom(chatID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active[chatID] = true
	return nil
}

func (m *memStorage) RemoveActiveRoom(chatID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.active, chatID)
	return nil
}

func (m *memStorage) GetActiveRoomIDs() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.active))
	for id := range m.active {
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *memStorage) PublishRoomEvent(event models.RoomEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *memStorage) setFailAll(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failAll = fail
}

// sentMessage records one transport send.
type sentMessage struct {
	ChatID int64
	Text   string
	Prompt bool
}

// fakeTransport records everything the controller emits.
type fakeTransport struct {
	mu        sync.Mutex
	nextID    int
	Sent      []sentMessage
	Answers   map[string]string
	sendError error
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{Answers: make(map[string]string)}
}

func (t *fakeTransport) send(chatID int64, text string, prompt bool) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sendError != nil {
		return 0, t.sendError
	}
	t.nextID++
	t.Sent = append(t.Sent, sentMessage{ChatID: chatID, Text: text, Prompt: prompt})
	return t.nextID, nil
}

func (t *fakeTransport) SendMessage(chatID int64, text string) (int, error) {
	return t.send(chatID, text, false)
}

func (t *fakeTransport) SendGamePrompt(chatID int64, text string) (int, error) {
	return t.send(chatID, text, true)
}

func (t *fakeTransport) AnswerCallback(callbackID, text string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Answers[callbackID] = text
	return nil
}

func (t *fakeTransport) lastSent() sentMessage {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.Sent) == 0 {
		return sentMessage{}
	}
	return t.Sent[len(t.Sent)-1]
}

// scheduledJob records one scheduler call without running any timer.
type scheduledJob struct {
	ChatID    int64
	MessageID int
	Delay     time.Duration
	Replace   bool
	Text      string
}

type fakeScheduler struct {
	mu   sync.Mutex
	Jobs []scheduledJob
}

func (s *fakeScheduler) ScheduleDeletion(chatID int64, messageID int, delay time.Duration) *time.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Jobs = append(s.Jobs, scheduledJob{ChatID: chatID, MessageID: messageID, Delay: delay})
	return nil
}

func (s *fakeScheduler) ScheduleReplacement(chatID int64, messageID int, delay time.Duration, text string) *time.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Jobs = append(s.Jobs, scheduledJob{ChatID: chatID, MessageID: messageID, Delay: delay, Replace: true, Text: text})
	return nil
}

// newTestLocalizer builds a Localizer from the real English catalog so tests
// assert against the strings users actually see.
func newTestLocalizer(t *testing.T) *localization.Localizer {
	t.Helper()

	data, err := os.ReadFile(filepath.Join("..", "localization", "en.json"))
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "en.json"), data, 0o644))

	localizer, err := localization.NewLocalizer(dir)
	require.NoError(t, err)
	return localizer
}

// Package telegram handles the integration with the Telegram Bot API.
// It is responsible for receiving updates from Telegram, classifying them
// into game events at the boundary, and feeding the session controller.
package telegram

import (
	"fmt"
	"log"
	"strconv"

	"hoopbot/backend/internal/game"
	"hoopbot/backend/internal/localization"
	"hoopbot/backend/internal/models"
	"hoopbot/backend/internal/schedule"
	"hoopbot/backend/internal/storage"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// basketballEmoji is the dice emoji whose values the game scores.
const basketballEmoji = "🏀"

// BotService receives Telegram updates and routes them into the game core.
type BotService struct {
	BotAPI     *tgbotapi.BotAPI
	Controller *game.Controller
	Storage    storage.Storage
	Localizer  *localization.Localizer
	Lang       string
}

// NewBotService creates a new BotService instance with the game core wired in.
func NewBotService(token string, s storage.Storage, lang string) (*BotService, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	bot.Debug = false
	log.Printf("✅ Authorized on account %s", bot.Self.UserName)

	localizer, err := localization.NewLocalizer("internal/localization")
	if err != nil {
		return nil, fmt.Errorf("failed to create localizer: %w", err)
	}

	transport := NewTransport(bot, localizer, lang)
	controller := game.NewController(
		game.NewRegistry(s),
		game.NewRoomManager(s),
		transport,
		schedule.NewScheduler(transport),
		s,
		localizer,
		lang,
	)

	return &BotService{
		BotAPI:     bot,
		Controller: controller,
		Storage:    s,
		Localizer:  localizer,
		Lang:       lang,
	}, nil
}

// RestoreActiveRooms rebuilds the Redis active-room index from the database
// so the ops surface reflects rooms that survived a restart.
func (s *BotService) RestoreActiveRooms() {
	log.Println("Restoring active rooms...")
	rooms, err := s.Storage.ListLiveRooms()
	if err != nil {
		log.Printf("Failed to list live rooms: %v", err)
		return
	}

	for _, room := range rooms {
		if err := s.Storage.AddActiveRoom(room.ChatID); err != nil {
			log.Printf("WARN: failed to re-index room %s: %v", room.ChatID, err)
		}
	}
	log.Printf("Restored %d active rooms.", len(rooms))
}

// Run is the main loop for receiving Telegram updates.
func (s *BotService) Run() {
	s.RestoreActiveRooms()
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := s.BotAPI.GetUpdatesChan(u)

	for update := range updates {
		switch {
		case update.Message != nil:
			s.handleMessage(update.Message)
		case update.CallbackQuery != nil:
			s.handleCallbackQuery(update.CallbackQuery)
		}
	}
}

// Stop shuts down the update loop; Run returns once the channel drains.
func (s *BotService) Stop() {
	s.BotAPI.StopReceivingUpdates()
}

func (s *BotService) handleMessage(msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}

	if msg.IsCommand() {
		switch msg.Command() {
		case "start":
			s.reply(msg.Chat.ID, s.Localizer.GetString(s.Lang, "greeting"))
		case "basketball":
			if !msg.Chat.IsGroup() && !msg.Chat.IsSuperGroup() {
				s.reply(msg.Chat.ID, s.Localizer.GetString(s.Lang, "groups_only"))
				return
			}
			s.Controller.Handle(classifyMessage(msg))
		}
		return
	}

	s.Controller.Handle(classifyMessage(msg))
}

func (s *BotService) handleCallbackQuery(callbackQuery *tgbotapi.CallbackQuery) {
	if callbackQuery.Message == nil || callbackQuery.From == nil {
		return
	}

	event := models.GameEvent{
		ChatID:     callbackQuery.Message.Chat.ID,
		MessageID:  callbackQuery.Message.MessageID,
		PlayerID:   strconv.FormatInt(callbackQuery.From.ID, 10),
		PlayerName: callbackQuery.From.FirstName,
		CallbackID: callbackQuery.ID,
	}

	switch callbackQuery.Data {
	case callbackJoin:
		event.Kind = models.EventJoinCallback
	case callbackStart:
		event.Kind = models.EventStartCallback
	default:
		// Unknown payloads still need an ack to stop the button spinner.
		callback := tgbotapi.NewCallback(callbackQuery.ID, "")
		if _, err := s.BotAPI.Request(callback); err != nil {
			log.Printf("failed to send callback response: %v", err)
		}
		return
	}

	s.Controller.Handle(event)
}

func (s *BotService) reply(chatID int64, text string) {
	if _, err := s.BotAPI.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		log.Printf("ERROR: Failed to send Telegram message: %v", err)
	}
}

// classifyMessage decides the event kind once, at the transport boundary:
// the enter command, a basketball throw, an all-digit config message, or
// stray chatter. Handlers never re-inspect the payload shape.
func classifyMessage(msg *tgbotapi.Message) models.GameEvent {
	event := models.GameEvent{
		Kind:       models.EventStrayMessage,
		ChatID:     msg.Chat.ID,
		MessageID:  msg.MessageID,
		PlayerID:   strconv.FormatInt(msg.From.ID, 10),
		PlayerName: msg.From.FirstName,
	}

	switch {
	case msg.IsCommand():
		event.Kind = models.EventEnter
	case msg.Dice != nil && msg.Dice.Emoji == basketballEmoji:
		event.Kind = models.EventDiceRoll
		event.DiceValue = msg.Dice.Value
	default:
		if number, ok := parseNumericText(msg.Text); ok {
			event.Kind = models.EventNumericConfig
			event.Number = number
		}
	}
	return event
}

// parseNumericText accepts only all-digit text, the shape the max score
// config expects. Everything else counts as malformed and becomes stray.
func parseNumericText(text string) (int, bool) {
	if text == "" {
		return 0, false
	}
	for _, r := range text {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	number, err := strconv.Atoi(text)
	if err != nil {
		return 0, false
	}
	return number, true
}

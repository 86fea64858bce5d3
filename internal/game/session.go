package game

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"hoopbot/backend/internal/config"
	"hoopbot/backend/internal/localization"
	"hoopbot/backend/internal/models"
	"hoopbot/backend/internal/storage"
)

// Transport is the narrow surface the controller needs from the messaging
// platform. The Telegram binding implements it.
type Transport interface {
	// SendMessage sends a plain message and returns its message ID.
	SendMessage(chatID int64, text string) (int, error)
	// SendGamePrompt sends the room greeting with the Join/Start keyboard.
	SendGamePrompt(chatID int64, text string) (int, error)
	// AnswerCallback acknowledges an inline button press with a short note.
	AnswerCallback(callbackID, text string) error
}

// Scheduler fires delayed side effects against messages without blocking the
// caller (see internal/schedule).
type Scheduler interface {
	ScheduleDeletion(chatID int64, messageID int, delay time.Duration) *time.Timer
	ScheduleReplacement(chatID int64, messageID int, delay time.Duration, text string) *time.Timer
}

// Controller translates inbound chat events into operations on the registry,
// the room manager, dice scoring and the scheduler, and replies through the
// transport. Each event is handled to completion before the reply is emitted.
type Controller struct {
	Registry  *Registry
	Rooms     *RoomManager
	Transport Transport
	Scheduler Scheduler
	Storage   storage.Storage
	Localizer *localization.Localizer
	Lang      string
}

// NewController wires the game core together.
func NewController(registry *Registry, rooms *RoomManager, transport Transport,
	scheduler Scheduler, s storage.Storage, localizer *localization.Localizer, lang string) *Controller {
	return &Controller{
		Registry:  registry,
		Rooms:     rooms,
		Transport: transport,
		Scheduler: scheduler,
		Storage:   s,
		Localizer: localizer,
		Lang:      lang,
	}
}

// Handle dispatches one inbound event on its tagged kind.
func (c *Controller) Handle(event models.GameEvent) {
	switch event.Kind {
	case models.EventEnter:
		c.handleEnter(event)
	case models.EventNumericConfig:
		c.handleNumericConfig(event)
	case models.EventJoinCallback:
		c.handleJoin(event)
	case models.EventStartCallback:
		c.handleStart(event)
	case models.EventDiceRoll:
		c.handleDiceRoll(event)
	case models.EventStrayMessage:
		c.handleStray(event)
	}
}

func (c *Controller) text(key string) string {
	return c.Localizer.GetString(c.Lang, key)
}

// chatKey converts a Telegram chat ID into the string key rooms are stored by.
func chatKey(chatID int64) string {
	return strconv.FormatInt(chatID, 10)
}

// handleEnter opens (or returns to) the room of the chat and posts the
// greeting with the Join/Start keyboard.
func (c *Controller) handleEnter(event models.GameEvent) {
	owner, err := c.Registry.Resolve(event.PlayerID, event.PlayerName)
	if err != nil {
		c.replyStorageFailure(event.ChatID, err)
		return
	}

	if _, err := c.Rooms.CreateOrGet(chatKey(event.ChatID), owner); err != nil {
		c.replyStorageFailure(event.ChatID, err)
		return
	}

	if _, err := c.Transport.SendGamePrompt(event.ChatID, c.text("game_prompt")); err != nil {
		log.Printf("ERROR: failed to send game prompt to chat %d: %v", event.ChatID, err)
	}
}

// handleNumericConfig processes an all-digit message as a max score proposal.
// The player's input and the bot's answer both vanish after the grace delay;
// out-of-range numbers get a distinct answer from malformed input, which never
// reaches this handler.
func (c *Controller) handleNumericConfig(event models.GameEvent) {
	err := c.Rooms.SetMaxScore(chatKey(event.ChatID), event.Number)
	switch {
	case err == nil:
		c.sendEphemeral(event.ChatID, fmt.Sprintf(c.text("max_score_set"), event.Number))
	case errors.Is(err, ErrInvalidConfig):
		c.sendEphemeral(event.ChatID, c.text("max_score_too_high"))
	case errors.Is(err, ErrRoomNotJoinable):
		// No room in its config phase here; treat the number as stray chatter.
		c.handleStray(event)
		return
	default:
		log.Printf("ERROR: failed to set max score for chat %d: %v", event.ChatID, err)
		return
	}
	c.Scheduler.ScheduleDeletion(event.ChatID, event.MessageID, config.EphemeralDelay)
}

// handleJoin adds the pressing player to the room and acknowledges the button.
func (c *Controller) handleJoin(event models.GameEvent) {
	player, err := c.Registry.Resolve(event.PlayerID, event.PlayerName)
	if err != nil {
		log.Printf("ERROR: failed to resolve player %s: %v", event.PlayerID, err)
		c.answerCallback(event.CallbackID, c.text("try_again_later"))
		return
	}

	_, err = c.Rooms.Join(chatKey(event.ChatID), player)
	switch {
	case err == nil:
		c.answerCallback(event.CallbackID, c.text("joined_ack"))
		c.sendEphemeral(event.ChatID, fmt.Sprintf(c.text("join_notice"), player.Name))
	case errors.Is(err, ErrAlreadyJoined):
		c.answerCallback(event.CallbackID, c.text("already_joined_ack"))
	case errors.Is(err, ErrRoomNotJoinable):
		c.answerCallback(event.CallbackID, c.text("room_not_joinable_ack"))
	default:
		log.Printf("ERROR: join failed for chat %d: %v", event.ChatID, err)
		c.answerCallback(event.CallbackID, c.text("try_again_later"))
	}
}

// handleStart validates first, so the requester sees the reason without any
// state change, then commits the transition. Validation runs on every tap;
// a lost race against a second tap reports "already started".
func (c *Controller) handleStart(event models.GameEvent) {
	key := chatKey(event.ChatID)

	if err := c.Rooms.ValidateStart(key); err != nil {
		if errors.Is(err, ErrStorageUnavailable) {
			log.Printf("ERROR: start validation failed for chat %d: %v", event.ChatID, err)
			c.answerCallback(event.CallbackID, c.text("try_again_later"))
			return
		}
		reason := c.validationText(err)
		c.answerCallback(event.CallbackID, reason)
		c.sendEphemeral(event.ChatID, reason)
		return
	}

	room, err := c.Rooms.Start(key)
	if err != nil {
		if errors.Is(err, ErrAlreadyStarted) {
			c.answerCallback(event.CallbackID, c.text("already_started"))
			return
		}
		log.Printf("ERROR: start failed for chat %d: %v", event.ChatID, err)
		c.answerCallback(event.CallbackID, c.text("try_again_later"))
		return
	}

	c.answerCallback(event.CallbackID, "")
	announcement := fmt.Sprintf(c.text("game_started"), TargetScore(room))
	if _, err := c.Transport.SendMessage(event.ChatID, announcement); err != nil {
		log.Printf("ERROR: failed to announce game start in chat %d: %v", event.ChatID, err)
	}
}

// handleDiceRoll scores a member's throw. The result is revealed by replacing
// a placeholder once the dice animation has played out; reaching the room
// target finishes the game and records the winner.
func (c *Controller) handleDiceRoll(event models.GameEvent) {
	key := chatKey(event.ChatID)

	room, err := c.Rooms.Get(key)
	if err != nil {
		log.Printf("ERROR: failed to load room for chat %d: %v", event.ChatID, err)
		return
	}
	if room == nil || room.Status != models.StatusPlaying {
		// Dice thrown outside a running game are just messages.
		return
	}
	if !room.HasMember(event.PlayerID) {
		c.handleStray(event)
		return
	}

	win, err := IsWinningRoll(event.DiceValue)
	if err != nil {
		// The transport handed us a value outside the dice domain.
		log.Printf("ERROR: rejected dice value %d in chat %d: %v", event.DiceValue, event.ChatID, err)
		if _, sendErr := c.Transport.SendMessage(event.ChatID, c.text("generic_error")); sendErr != nil {
			log.Printf("ERROR: failed to send error reply to chat %d: %v", event.ChatID, sendErr)
		}
		return
	}

	placeholderID, err := c.Transport.SendMessage(event.ChatID, c.text("result_pending"))
	if err != nil {
		log.Printf("ERROR: failed to send result placeholder to chat %d: %v", event.ChatID, err)
		return
	}

	if !win {
		c.Scheduler.ScheduleReplacement(event.ChatID, placeholderID, config.ResultRevealDelay, c.text("you_lose"))
		return
	}

	total, target, err := c.Rooms.AddScore(key, event.PlayerID)
	if err != nil {
		log.Printf("ERROR: failed to add score in chat %d: %v", event.ChatID, err)
		c.Scheduler.ScheduleReplacement(event.ChatID, placeholderID, config.ResultRevealDelay, c.text("try_again_later"))
		return
	}

	if total < target {
		progress := fmt.Sprintf(c.text("score_progress"), event.PlayerName, total, target)
		c.Scheduler.ScheduleReplacement(event.ChatID, placeholderID, config.ResultRevealDelay, progress)
		return
	}

	// Winning condition met: reveal the result and close out the game.
	c.Scheduler.ScheduleReplacement(event.ChatID, placeholderID, config.ResultRevealDelay, c.text("you_win"))

	room, err = c.Rooms.Finish(key)
	if err != nil {
		log.Printf("ERROR: failed to finish game in chat %d: %v", event.ChatID, err)
		return
	}

	record := &models.GameRecord{
		ChatID:      key,
		WinnerID:    event.PlayerID,
		WinnerName:  event.PlayerName,
		TargetScore: target,
		StartedAt:   room.StartedAt,
		FinishedAt:  room.FinishedAt,
	}
	if err := c.Storage.SaveGameRecord(record); err != nil {
		log.Printf("ERROR: failed to save game record for chat %s: %v", key, err)
	}

	announcement := fmt.Sprintf(c.text("winner_announcement"), event.PlayerName)
	if _, err := c.Transport.SendMessage(event.ChatID, announcement); err != nil {
		log.Printf("ERROR: failed to announce winner in chat %d: %v", event.ChatID, err)
	}
}

// handleStray schedules deletion of off-topic messages, but only in chats
// with a live room; other chats keep their messages.
func (c *Controller) handleStray(event models.GameEvent) {
	room, err := c.Rooms.Get(chatKey(event.ChatID))
	if err != nil {
		log.Printf("WARN: failed to load room for chat %d: %v", event.ChatID, err)
		return
	}
	if room == nil || room.Status == models.StatusFinished {
		return
	}
	c.Scheduler.ScheduleDeletion(event.ChatID, event.MessageID, config.EphemeralDelay)
}

// sendEphemeral sends a message that is deleted again after the grace delay.
func (c *Controller) sendEphemeral(chatID int64, text string) {
	messageID, err := c.Transport.SendMessage(chatID, text)
	if err != nil {
		log.Printf("ERROR: failed to send message to chat %d: %v", chatID, err)
		return
	}
	c.Scheduler.ScheduleDeletion(chatID, messageID, config.EphemeralDelay)
}

func (c *Controller) answerCallback(callbackID, text string) {
	if err := c.Transport.AnswerCallback(callbackID, text); err != nil {
		log.Printf("failed to send callback response: %v", err)
	}
}

// validationText maps a validation error onto its user-facing message.
func (c *Controller) validationText(err error) string {
	switch {
	case errors.Is(err, ErrNotEnoughPlayers):
		return c.text("not_enough_players")
	case errors.Is(err, ErrAlreadyStarted):
		return c.text("already_started")
	case errors.Is(err, ErrAlreadyFinished):
		return c.text("already_finished")
	case errors.Is(err, ErrRoomNotJoinable):
		return c.text("no_room")
	}
	return c.text("generic_error")
}

func (c *Controller) replyStorageFailure(chatID int64, err error) {
	log.Printf("ERROR: storage failure handling chat %d: %v", chatID, err)
	if _, sendErr := c.Transport.SendMessage(chatID, c.text("try_again_later")); sendErr != nil {
		log.Printf("ERROR: failed to send failure notice to chat %d: %v", chatID, sendErr)
	}
}

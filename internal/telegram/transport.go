package telegram

import (
	"hoopbot/backend/internal/localization"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	callbackJoin  = "join"
	callbackStart = "start"
)

// Transport implements the controller's reply surface and the scheduler's
// messenger on top of the Bot API.
type Transport struct {
	BotAPI    *tgbotapi.BotAPI
	Localizer *localization.Localizer
	Lang      string
}

// NewTransport creates a Telegram transport.
func NewTransport(bot *tgbotapi.BotAPI, localizer *localization.Localizer, lang string) *Transport {
	return &Transport{
		BotAPI:    bot,
		Localizer: localizer,
		Lang:      lang,
	}
}

// SendMessage sends a plain text message and returns its message ID.
func (t *Transport) SendMessage(chatID int64, text string) (int, error) {
	sent, err := t.BotAPI.Send(tgbotapi.NewMessage(chatID, text))
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

// SendGamePrompt sends the room greeting with the Join/Start inline keyboard.
func (t *Transport) SendGamePrompt(chatID int64, text string) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(t.Localizer.GetString(t.Lang, "btn_join"), callbackJoin),
			tgbotapi.NewInlineKeyboardButtonData(t.Localizer.GetString(t.Lang, "btn_start"), callbackStart),
		),
	)
	sent, err := t.BotAPI.Send(msg)
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

// AnswerCallback acknowledges a button press and removes the loading state.
func (t *Transport) AnswerCallback(callbackID, text string) error {
	callback := tgbotapi.NewCallback(callbackID, text)
	_, err := t.BotAPI.Request(callback)
	return err
}

// DeleteMessage deletes a message from the chat.
func (t *Transport) DeleteMessage(chatID int64, messageID int) error {
	_, err := t.BotAPI.Request(tgbotapi.NewDeleteMessage(chatID, messageID))
	return err
}

// EditMessageText replaces the text of a sent message.
func (t *Transport) EditMessageText(chatID int64, messageID int, text string) error {
	_, err := t.BotAPI.Request(tgbotapi.NewEditMessageText(chatID, messageID, text))
	return err
}

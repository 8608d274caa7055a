package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/user/tubefetch/internal/types"
)

// convertUpdate maps a Telegram update onto the bot's own event type. Updates
// the bot does not act on keep their ID but carry no payload, so the cursor
// still moves past them.
func convertUpdate(u tgbotapi.Update) types.Update {
	out := types.Update{ID: int64(u.UpdateID)}

	switch {
	case u.Message != nil && u.Message.Chat != nil && u.Message.Text != "":
		msg := u.Message
		out.Message = &types.TextMessage{
			ChatID:    types.ChatID(msg.Chat.ID),
			MessageID: msg.MessageID,
			From:      convertSender(msg.From),
			Text:      msg.Text,
			Command:   msg.Command(),
			At:        msg.Time(),
		}
	case u.CallbackQuery != nil && u.CallbackQuery.Message != nil && u.CallbackQuery.Message.Chat != nil:
		cq := u.CallbackQuery
		out.Callback = &types.CallbackAction{
			ID:        cq.ID,
			ChatID:    types.ChatID(cq.Message.Chat.ID),
			MessageID: cq.Message.MessageID,
			From:      convertSender(cq.From),
			Choice:    cq.Data,
		}
	}
	return out
}

func convertSender(u *tgbotapi.User) types.Sender {
	if u == nil {
		return types.Sender{}
	}
	return types.Sender{
		UserID:    u.ID,
		Username:  u.UserName,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

func keyboard(choices []types.Choice) *tgbotapi.InlineKeyboardMarkup {
	if len(choices) == 0 {
		return nil
	}
	var row []tgbotapi.InlineKeyboardButton
	for _, c := range choices {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(c.Label, c.Token))
	}
	markup := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(row...))
	return &markup
}

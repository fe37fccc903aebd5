package main

import (
	"context"
	"fmt"
	"html"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const (
	startText          = "👋 Welcome!\n\nPress the button below to get access."
	subscribeText      = "To get access to the private chat, subscribe to the channel and then press «I subscribed»."
	notSubscribedAlert = "Error: you are not subscribed to the channel. Make sure you have subscribed and try again."
)

func grantedText(link string) string {
	return fmt.Sprintf("✅ Subscription confirmed!\nYour link to the private chat:\n%s", html.EscapeString(link))
}

// The access flow keeps no per-user state: each handler below acts only on
// the button that was pressed, so presses in any order are safe.

func (b *Bot) handleStart(ctx context.Context, message *models.Message) {
	b.rememberUser(ctx, message.From)
	b.sendResponse(ctx, message.Chat.ID, startText, startKeyboard())
}

func (b *Bot) handleGetAccess(ctx context.Context, query *models.CallbackQuery) {
	b.rememberUser(ctx, &query.From)
	b.showInPlace(ctx, query, subscribeText, subscribeKeyboard(b.config.channelURL()))
	b.answerCallback(ctx, query, "", false)
}

func (b *Bot) handleCheckSubscription(ctx context.Context, query *models.CallbackQuery) {
	userID := query.From.ID
	status := b.checker.Check(ctx, userID)
	InfoLogger.Debug().Int64("user_id", userID).Stringer("status", status).Msg("subscription checked")

	if status != Subscribed {
		b.answerCallback(ctx, query, notSubscribedAlert, true)
		return
	}

	b.rememberUser(ctx, &query.From)
	b.showInPlace(ctx, query, grantedText(b.config.PrivateChatLink), nil)
	b.answerCallback(ctx, query, "", false)
}

// showInPlace edits the message that carried the pressed button. When that
// message is unavailable the text is sent to the user as a new message.
func (b *Bot) showInPlace(ctx context.Context, query *models.CallbackQuery, text string, markup *models.InlineKeyboardMarkup) {
	var replyMarkup models.ReplyMarkup
	if markup != nil {
		replyMarkup = markup
	}

	chatID, messageID, ok := callbackMessageRef(query)
	if !ok {
		b.sendResponse(ctx, query.From.ID, text, replyMarkup)
		return
	}

	params := &bot.EditMessageTextParams{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	}
	if replyMarkup != nil {
		params.ReplyMarkup = replyMarkup
	}
	if _, err := b.tgBot.EditMessageText(ctx, params); err != nil {
		ErrorLogger.Warn().Err(err).
			Int64("chat_id", chatID).
			Int("message_id", messageID).
			Msg("error editing message")
	}
}

func (b *Bot) answerCallback(ctx context.Context, query *models.CallbackQuery, text string, alert bool) {
	_, err := b.tgBot.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: query.ID,
		Text:            text,
		ShowAlert:       alert,
	})
	if err != nil {
		ErrorLogger.Warn().Err(err).Str("callback_id", query.ID).Msg("error answering callback query")
	}
}

func callbackMessageRef(query *models.CallbackQuery) (int64, int, bool) {
	switch {
	case query.Message.Message != nil:
		return query.Message.Message.Chat.ID, query.Message.Message.ID, true
	case query.Message.InaccessibleMessage != nil:
		return query.Message.InaccessibleMessage.Chat.ID, query.Message.InaccessibleMessage.MessageID, true
	default:
		return 0, 0, false
	}
}

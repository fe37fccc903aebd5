package main

import (
	"context"
	"runtime/debug"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Commands understood by the bot.
const (
	commandStart     = "/start"
	commandDelivery  = "/delivery"
	commandBroadcast = "/broadcast"
	commandStats     = "/stats"
)

// handleUpdate is the single entry point for every polled update.
func (b *Bot) handleUpdate(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	defer func() {
		if r := recover(); r != nil {
			ErrorLogger.Error().
				Interface("panic", r).
				Int64("update_id", update.ID).
				Str("stack", string(debug.Stack())).
				Msg("panic recovered in update handler")
		}
	}()

	switch {
	case update.CallbackQuery != nil:
		b.handleCallbackQuery(ctx, update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	default:
		InfoLogger.Debug().Int64("update_id", update.ID).Msg("ignoring update")
	}
}

func (b *Bot) handleCallbackQuery(ctx context.Context, query *models.CallbackQuery) {
	switch query.Data {
	case callbackGetAccess:
		b.handleGetAccess(ctx, query)
	case callbackCheckSub:
		b.handleCheckSubscription(ctx, query)
	default:
		InfoLogger.Debug().Str("data", query.Data).Int64("user_id", query.From.ID).Msg("unknown callback data")
		b.answerCallback(ctx, query, "", false)
	}
}

func (b *Bot) handleMessage(ctx context.Context, message *models.Message) {
	// Anonymous senders (channel posts, anonymous admins) are not users.
	if message.From == nil {
		return
	}
	userID := message.From.ID

	if command, ok := commandFromMessage(message); ok {
		switch command {
		case commandStart:
			b.handleStart(ctx, message)
			return
		case commandDelivery, commandBroadcast:
			b.handleBroadcastCommand(ctx, message)
			return
		case commandStats:
			b.sendStats(ctx, message)
			return
		}
	}

	if b.takeBroadcastSession(userID) {
		b.handleBroadcastContent(ctx, message)
		return
	}

	InfoLogger.Debug().Int64("user_id", userID).Int64("chat_id", message.Chat.ID).Msg("ignoring message")
}

// commandFromMessage returns the leading bot command of message, lowercased
// and without any @BotName suffix.
func commandFromMessage(message *models.Message) (string, bool) {
	for _, entity := range message.Entities {
		if entity.Type != "bot_command" || entity.Offset != 0 {
			continue
		}
		if entity.Length <= 0 || entity.Length > len(message.Text) {
			return "", false
		}
		command := strings.TrimSpace(message.Text[:entity.Length])
		if at := strings.IndexByte(command, '@'); at >= 0 {
			command = command[:at]
		}
		return strings.ToLower(command), true
	}
	return "", false
}

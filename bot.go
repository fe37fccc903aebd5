package main

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"gorm.io/gorm"
)

// Update kinds requested from long polling. Everything else is never
// delivered to the bot.
var allowedUpdates = bot.AllowedUpdates{
	"message",
	"callback_query",
}

type Bot struct {
	tgBot      TelegramClient
	store      *UserStore
	checker    *SubscriptionChecker
	pacer      *broadcastPacer
	config     Config
	clock      Clock
	sessions   map[int64]*BroadcastSession // keyed by admin user id
	sessionsMu sync.Mutex
}

// BroadcastSession is the in-memory capture state of a broadcast.
type BroadcastSession struct {
	AwaitingContent bool
}

func NewBot(db *gorm.DB, config Config, clock Clock, tgClient TelegramClient) (*Bot, error) {
	if db == nil {
		return nil, errors.New("database is required")
	}

	b := &Bot{
		store:    NewUserStore(db, clock),
		pacer:    newBroadcastPacer(config.BroadcastDelay),
		config:   config,
		clock:    clock,
		sessions: make(map[int64]*BroadcastSession),
	}
	if tgClient != nil {
		b.attachClient(tgClient)
	}

	return b, nil
}

// attachClient wires the Telegram client. It is separate from NewBot because
// the real client needs b.handleUpdate before it can be built.
func (b *Bot) attachClient(tgClient TelegramClient) {
	b.tgBot = tgClient
	b.checker = NewSubscriptionChecker(tgClient, b.config.channelTarget())
}

func (b *Bot) Start(ctx context.Context) {
	b.tgBot.Start(ctx)
}

func initTelegramBot(config Config, handleUpdate bot.HandlerFunc) (TelegramClient, error) {
	opts := []bot.Option{
		bot.WithDefaultHandler(handleUpdate),
		bot.WithAllowedUpdates(allowedUpdates),
		bot.WithWorkers(config.Workers),
		bot.WithErrorsHandler(func(err error) {
			ErrorLogger.Error().Err(err).Msg("telegram client error")
		}),
	}

	tgBot, err := bot.New(config.TelegramToken, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram client: %w", err)
	}

	return tgBot, nil
}

// rememberUser upserts the sender. A store failure is logged and the flow
// carries on.
func (b *Bot) rememberUser(ctx context.Context, user *models.User) {
	if user == nil {
		return
	}
	if err := b.store.Upsert(ctx, user.ID, user.FirstName, user.Username); err != nil {
		ErrorLogger.Error().Err(err).Int64("user_id", user.ID).Msg("failed to store user")
	}
}

func (b *Bot) isAdmin(userID int64) bool {
	return b.config.AdminID != 0 && userID == b.config.AdminID
}

func (b *Bot) sendResponse(ctx context.Context, chatID int64, text string, markup models.ReplyMarkup) error {
	params := &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	}
	if markup != nil {
		params.ReplyMarkup = markup
	}

	_, err := b.tgBot.SendMessage(ctx, params)
	if err != nil {
		ErrorLogger.Error().Err(err).Int64("chat_id", chatID).Msg("error sending message")
		return err
	}
	return nil
}

// replyTo sends text as a reply to message.
func (b *Bot) replyTo(ctx context.Context, message *models.Message, text string) error {
	_, err := b.tgBot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:          message.Chat.ID,
		Text:            text,
		ParseMode:       models.ParseModeHTML,
		ReplyParameters: &models.ReplyParameters{MessageID: message.ID},
	})
	if err != nil {
		ErrorLogger.Error().Err(err).
			Int64("chat_id", message.Chat.ID).
			Int("reply_to", message.ID).
			Msg("error sending reply")
		return err
	}
	return nil
}

// sendStats reports the number of known users to the administrator.
func (b *Bot) sendStats(ctx context.Context, message *models.Message) {
	if !b.isAdmin(message.From.ID) {
		b.replyTo(ctx, message, permissionDeniedText)
		return
	}

	totalUsers, err := b.store.Count(ctx)
	if err != nil {
		ErrorLogger.Error().Err(err).Msg("error fetching stats")
		b.replyTo(ctx, message, "Sorry, I couldn't retrieve the stats at this time.")
		return
	}

	b.replyTo(ctx, message, fmt.Sprintf("📊 Bot Statistics:\n\n- Total Users: %d", totalUsers))
}

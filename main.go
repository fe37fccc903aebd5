package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	// Load configuration: environment > .env.local > .env
	config, err := loadConfig(".")
	if err != nil {
		if errors.Is(err, ErrMissingToken) {
			ErrorLogger.Fatal().Msg("BOT_TOKEN is not set. Put it in the environment or in .env.local next to the binary, e.g. BOT_TOKEN=1234567890:AAExampleTokenFromBotFather")
		}
		ErrorLogger.Fatal().Err(err).Msg("Error loading configuration")
	}

	// Initialize custom loggers
	initLoggers(config.LogLevel)

	InfoLogger.Info().Msg("Starting channel gate bot")
	if config.AdminID == 0 {
		ErrorLogger.Warn().Msg("ADMIN_ID is not set, broadcasts are disabled")
	}

	// Initialize database
	db, err := initDB(config.DatabasePath)
	if err != nil {
		ErrorLogger.Fatal().Err(err).Msg("Error initializing database")
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	// Set up context with cancellation
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Create Bot instance without TelegramClient initially
	b, err := NewBot(db, config, RealClock{}, nil)
	if err != nil {
		ErrorLogger.Fatal().Err(err).Msg("Error creating bot")
	}

	// Initialize TelegramClient with the bot's handleUpdate method
	tgClient, err := initTelegramBot(config, b.handleUpdate)
	if err != nil {
		ErrorLogger.Fatal().Err(err).Msg("Error initializing Telegram client")
	}
	b.attachClient(tgClient)

	InfoLogger.Info().
		Interface("channel", config.channelTarget()).
		Str("db", config.DatabasePath).
		Msg("Polling for updates")
	b.Start(ctx)

	InfoLogger.Info().Msg("Bot stopped. Exiting application.")
}

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Env files read at startup, highest priority first. Variables already
// present in the process environment always win.
var envFiles = []string{".env.local", ".env"}

var ErrMissingToken = errors.New("BOT_TOKEN is not set")

type Config struct {
	TelegramToken   string        `envconfig:"BOT_TOKEN" validate:"required"`
	ChannelID       string        `envconfig:"CHANNEL_ID"`
	ChannelUsername string        `envconfig:"CHANNEL_USERNAME"`
	AdminID         int64         `envconfig:"ADMIN_ID" validate:"gte=0"`
	PrivateChatLink string        `envconfig:"PRIVATE_CHAT_LINK" validate:"required,url"`
	DatabasePath    string        `envconfig:"DB_PATH" default:"bot.db" validate:"required"`
	BroadcastDelay  time.Duration `envconfig:"BROADCAST_DELAY" default:"30ms" validate:"gte=0"`
	Workers         int           `envconfig:"WORKERS" default:"4" validate:"min=1"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
}

// loadConfig loads .env.local and .env (the first of each found walking up
// from dir) into the environment and binds the result onto Config.
func loadConfig(dir string) (Config, error) {
	var config Config

	for _, name := range envFiles {
		path, err := findEnvFile(dir, name)
		if err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return config, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}

	if err := envconfig.Process("", &config); err != nil {
		return config, fmt.Errorf("failed to process environment: %w", err)
	}
	config.TelegramToken = strings.TrimSpace(config.TelegramToken)
	if config.TelegramToken == "" {
		return config, ErrMissingToken
	}

	if err := config.validate(); err != nil {
		return config, err
	}
	return config, nil
}

func (c Config) validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if _, ok := c.numericChannelID(); !ok && channelHandle(c.ChannelUsername) == "" {
		return fmt.Errorf("invalid configuration: CHANNEL_ID or CHANNEL_USERNAME is required")
	}
	return nil
}

// findEnvFile returns the path of the first file called name found in dir or
// one of its parents.
func findEnvFile(dir, name string) (string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve directory: %w", err)
	}

	for {
		candidate := filepath.Join(absDir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(absDir)
		if parent == absDir {
			return "", fmt.Errorf("%s not found above %s", name, dir)
		}
		absDir = parent
	}
}

func (c Config) numericChannelID() (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(c.ChannelID), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// channelTarget is the chat reference used for membership queries: the
// numeric id when it parses, the @handle otherwise.
func (c Config) channelTarget() any {
	if id, ok := c.numericChannelID(); ok {
		return id
	}
	return channelHandle(c.ChannelUsername)
}

// channelURL is the public link behind the "Go to channel" button.
func (c Config) channelURL() string {
	return "https://t.me/" + strings.TrimPrefix(channelHandle(c.ChannelUsername), "@")
}

// channelHandle normalises "name", "@name" and " @name " to "@name".
func channelHandle(raw string) string {
	name := strings.TrimPrefix(strings.TrimSpace(raw), "@")
	if name == "" {
		return ""
	}
	return "@" + name
}

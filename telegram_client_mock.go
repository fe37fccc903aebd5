// telegram_client_mock.go
package main

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/mock"
)

// MockTelegramClient is a mock implementation of TelegramClient for testing.
// A non-nil *Func field takes precedence over the testify expectations.
type MockTelegramClient struct {
	mock.Mock
	SendMessageFunc         func(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	EditMessageTextFunc     func(ctx context.Context, params *bot.EditMessageTextParams) (*models.Message, error)
	AnswerCallbackQueryFunc func(ctx context.Context, params *bot.AnswerCallbackQueryParams) (bool, error)
	GetChatMemberFunc       func(ctx context.Context, params *bot.GetChatMemberParams) (*models.ChatMember, error)
	CopyMessageFunc         func(ctx context.Context, params *bot.CopyMessageParams) (*models.MessageID, error)
	StartFunc               func(ctx context.Context)
}

func (m *MockTelegramClient) SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	if m.SendMessageFunc != nil {
		return m.SendMessageFunc(ctx, params)
	}
	args := m.Called(ctx, params)
	if msg, ok := args.Get(0).(*models.Message); ok {
		return msg, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTelegramClient) EditMessageText(ctx context.Context, params *bot.EditMessageTextParams) (*models.Message, error) {
	if m.EditMessageTextFunc != nil {
		return m.EditMessageTextFunc(ctx, params)
	}
	args := m.Called(ctx, params)
	if msg, ok := args.Get(0).(*models.Message); ok {
		return msg, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTelegramClient) AnswerCallbackQuery(ctx context.Context, params *bot.AnswerCallbackQueryParams) (bool, error) {
	if m.AnswerCallbackQueryFunc != nil {
		return m.AnswerCallbackQueryFunc(ctx, params)
	}
	args := m.Called(ctx, params)
	return args.Bool(0), args.Error(1)
}

func (m *MockTelegramClient) GetChatMember(ctx context.Context, params *bot.GetChatMemberParams) (*models.ChatMember, error) {
	if m.GetChatMemberFunc != nil {
		return m.GetChatMemberFunc(ctx, params)
	}
	args := m.Called(ctx, params)
	if member, ok := args.Get(0).(*models.ChatMember); ok {
		return member, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTelegramClient) CopyMessage(ctx context.Context, params *bot.CopyMessageParams) (*models.MessageID, error) {
	if m.CopyMessageFunc != nil {
		return m.CopyMessageFunc(ctx, params)
	}
	args := m.Called(ctx, params)
	if id, ok := args.Get(0).(*models.MessageID); ok {
		return id, args.Error(1)
	}
	return nil, args.Error(1)
}

// Start mocks starting the Telegram client.
func (m *MockTelegramClient) Start(ctx context.Context) {
	if m.StartFunc != nil {
		m.StartFunc(ctx)
		return
	}
	m.Called(ctx)
}

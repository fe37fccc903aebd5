package main

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAdminID     = int64(42)
	testChannelID   = int64(-1001234567890)
	testPrivateLink = "https://t.me/+secretInvite"
)

func testConfig() Config {
	return Config{
		TelegramToken:   "test_token",
		ChannelID:       "-1001234567890",
		ChannelUsername: "@testchannel",
		AdminID:         testAdminID,
		PrivateChatLink: testPrivateLink,
		DatabasePath:    "test.db",
		BroadcastDelay:  0,
		Workers:         1,
		LogLevel:        "info",
	}
}

// recordingClient is a MockTelegramClient whose func overrides record every
// outgoing call.
type recordingClient struct {
	*MockTelegramClient

	mu         sync.Mutex
	sent       []*bot.SendMessageParams
	edited     []*bot.EditMessageTextParams
	answered   []*bot.AnswerCallbackQueryParams
	copied     []*bot.CopyMessageParams
	subscribed map[int64]bool
	failCopyTo map[int64]bool
}

func newRecordingClient() *recordingClient {
	rc := &recordingClient{
		MockTelegramClient: &MockTelegramClient{},
		subscribed:         make(map[int64]bool),
		failCopyTo:         make(map[int64]bool),
	}
	rc.SendMessageFunc = func(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error) {
		rc.mu.Lock()
		defer rc.mu.Unlock()
		rc.sent = append(rc.sent, params)
		return &models.Message{ID: len(rc.sent)}, nil
	}
	rc.EditMessageTextFunc = func(ctx context.Context, params *bot.EditMessageTextParams) (*models.Message, error) {
		rc.mu.Lock()
		defer rc.mu.Unlock()
		rc.edited = append(rc.edited, params)
		return &models.Message{ID: params.MessageID}, nil
	}
	rc.AnswerCallbackQueryFunc = func(ctx context.Context, params *bot.AnswerCallbackQueryParams) (bool, error) {
		rc.mu.Lock()
		defer rc.mu.Unlock()
		rc.answered = append(rc.answered, params)
		return true, nil
	}
	rc.GetChatMemberFunc = func(ctx context.Context, params *bot.GetChatMemberParams) (*models.ChatMember, error) {
		rc.mu.Lock()
		defer rc.mu.Unlock()
		if params.ChatID != testChannelID {
			return nil, errors.New("Bad Request: chat not found")
		}
		if rc.subscribed[params.UserID] {
			return &models.ChatMember{Type: models.ChatMemberTypeMember}, nil
		}
		return &models.ChatMember{Type: models.ChatMemberTypeLeft}, nil
	}
	rc.CopyMessageFunc = func(ctx context.Context, params *bot.CopyMessageParams) (*models.MessageID, error) {
		rc.mu.Lock()
		defer rc.mu.Unlock()
		rc.copied = append(rc.copied, params)
		if rc.failCopyTo[params.ChatID.(int64)] {
			return nil, errors.New("Forbidden: bot was blocked by the user")
		}
		return &models.MessageID{ID: 1}, nil
	}
	return rc
}

func (rc *recordingClient) lastSent(t *testing.T) *bot.SendMessageParams {
	t.Helper()
	rc.mu.Lock()
	defer rc.mu.Unlock()
	require.NotEmpty(t, rc.sent, "expected a sent message")
	return rc.sent[len(rc.sent)-1]
}

func newTestBot(t *testing.T, client TelegramClient) *Bot {
	t.Helper()
	clock := &MockClock{currentTime: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)}
	b, err := NewBot(setupTestDB(t), testConfig(), clock, client)
	require.NoError(t, err)
	return b
}

func commandUpdate(userID int64, text string) *models.Update {
	command := text
	for i, r := range text {
		if r == ' ' {
			command = text[:i]
			break
		}
	}
	return &models.Update{
		ID: 1,
		Message: &models.Message{
			ID:       10,
			Chat:     models.Chat{ID: userID},
			From:     &models.User{ID: userID, FirstName: "Alice", Username: "alice"},
			Text:     text,
			Entities: []models.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(command)}},
		},
	}
}

func textUpdate(userID int64, messageID int, text string) *models.Update {
	return &models.Update{
		ID: 2,
		Message: &models.Message{
			ID:   messageID,
			Chat: models.Chat{ID: userID},
			From: &models.User{ID: userID, FirstName: "Alice"},
			Text: text,
		},
	}
}

func callbackUpdate(userID int64, data string) *models.Update {
	return &models.Update{
		ID: 3,
		CallbackQuery: &models.CallbackQuery{
			ID:   "cb-" + data,
			From: models.User{ID: userID, FirstName: "Alice", Username: "alice"},
			Message: models.MaybeInaccessibleMessage{
				Message: &models.Message{ID: 500, Chat: models.Chat{ID: userID}},
			},
			Data: data,
		},
	}
}

func inlineKeyboard(t *testing.T, markup models.ReplyMarkup) [][]models.InlineKeyboardButton {
	t.Helper()
	kb, ok := markup.(*models.InlineKeyboardMarkup)
	require.True(t, ok, "expected an inline keyboard, got %T", markup)
	return kb.InlineKeyboard
}

func TestAccessFlow_Scenario(t *testing.T) {
	ctx := context.Background()
	client := newRecordingClient()
	b := newTestBot(t, client)
	const userID = int64(100)

	// start -> prompt with one control
	b.handleUpdate(ctx, nil, commandUpdate(userID, "/start"))

	sent := client.lastSent(t)
	assert.Equal(t, userID, sent.ChatID)
	assert.Equal(t, startText, sent.Text)
	assert.Equal(t, models.ParseModeHTML, sent.ParseMode)
	rows := inlineKeyboard(t, sent.ReplyMarkup)
	require.Len(t, rows, 1)
	require.Len(t, rows[0], 1)
	assert.Equal(t, callbackGetAccess, rows[0][0].CallbackData)

	// Get access -> instructions with two controls, edited in place
	b.handleUpdate(ctx, nil, callbackUpdate(userID, callbackGetAccess))

	require.Len(t, client.edited, 1)
	edit := client.edited[0]
	assert.Equal(t, userID, edit.ChatID)
	assert.Equal(t, 500, edit.MessageID)
	assert.Equal(t, subscribeText, edit.Text)
	rows = inlineKeyboard(t, edit.ReplyMarkup)
	require.Len(t, rows, 2)
	assert.Equal(t, "https://t.me/testchannel", rows[0][0].URL)
	assert.Equal(t, callbackCheckSub, rows[1][0].CallbackData)

	// I subscribed while not subscribed -> alert only
	b.handleUpdate(ctx, nil, callbackUpdate(userID, callbackCheckSub))

	require.Len(t, client.edited, 1, "a failed check must not edit the message")
	answer := client.answered[len(client.answered)-1]
	assert.True(t, answer.ShowAlert)
	assert.Equal(t, notSubscribedAlert, answer.Text)

	// retry after subscribing -> private link
	client.subscribed[userID] = true
	b.handleUpdate(ctx, nil, callbackUpdate(userID, callbackCheckSub))

	require.Len(t, client.edited, 2)
	assert.Contains(t, client.edited[1].Text, testPrivateLink)
	assert.Nil(t, client.edited[1].ReplyMarkup)

	total, err := b.store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestAccessFlow_CheckWithoutGetAccess(t *testing.T) {
	ctx := context.Background()
	client := newRecordingClient()
	client.subscribed[200] = true
	b := newTestBot(t, client)

	b.handleUpdate(ctx, nil, callbackUpdate(200, callbackCheckSub))

	require.Len(t, client.edited, 1)
	assert.Equal(t, grantedText(testPrivateLink), client.edited[0].Text)

	record, err := b.store.Get(ctx, 200)
	require.NoError(t, err)
	assert.Equal(t, "alice", record.Username)
}

func TestAccessFlow_FailedCheckDoesNotStoreUser(t *testing.T) {
	ctx := context.Background()
	client := newRecordingClient()
	b := newTestBot(t, client)

	b.handleUpdate(ctx, nil, callbackUpdate(300, callbackCheckSub))

	total, err := b.store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestAccessFlow_MembershipErrorIsNotSubscribed(t *testing.T) {
	ctx := context.Background()
	client := newRecordingClient()
	client.GetChatMemberFunc = func(ctx context.Context, params *bot.GetChatMemberParams) (*models.ChatMember, error) {
		return nil, errors.New("Bad Request: member list is inaccessible")
	}
	b := newTestBot(t, client)

	b.handleUpdate(ctx, nil, callbackUpdate(400, callbackCheckSub))

	assert.Empty(t, client.edited)
	require.Len(t, client.answered, 1)
	assert.True(t, client.answered[0].ShowAlert)
}

func TestAccessFlow_InaccessibleMessageStillEdits(t *testing.T) {
	ctx := context.Background()
	client := newRecordingClient()
	b := newTestBot(t, client)

	update := callbackUpdate(500, callbackGetAccess)
	update.CallbackQuery.Message = models.MaybeInaccessibleMessage{
		InaccessibleMessage: &models.InaccessibleMessage{Chat: models.Chat{ID: 500}, MessageID: 77},
	}
	b.handleUpdate(ctx, nil, update)

	require.Len(t, client.edited, 1)
	assert.Equal(t, 77, client.edited[0].MessageID)
}

func TestAccessFlow_NoMessageFallsBackToSend(t *testing.T) {
	ctx := context.Background()
	client := newRecordingClient()
	b := newTestBot(t, client)

	update := callbackUpdate(600, callbackGetAccess)
	update.CallbackQuery.Message = models.MaybeInaccessibleMessage{}
	b.handleUpdate(ctx, nil, update)

	assert.Empty(t, client.edited)
	sent := client.lastSent(t)
	assert.Equal(t, int64(600), sent.ChatID)
	assert.Equal(t, subscribeText, sent.Text)
}

func TestHandleUpdate_IgnoresUnroutedEvents(t *testing.T) {
	ctx := context.Background()
	client := newRecordingClient()
	b := newTestBot(t, client)

	b.handleUpdate(ctx, nil, textUpdate(700, 1, "hello"))
	b.handleUpdate(ctx, nil, commandUpdate(700, "/unknown"))
	b.handleUpdate(ctx, nil, &models.Update{ID: 9})
	b.handleUpdate(ctx, nil, &models.Update{ID: 10, Message: &models.Message{Text: "channel post"}})

	assert.Empty(t, client.sent)
	assert.Empty(t, client.copied)

	b.handleUpdate(ctx, nil, callbackUpdate(700, "bogus"))
	require.Len(t, client.answered, 1)
	assert.Empty(t, client.answered[0].Text)
}

func TestHandleUpdate_RecoversFromPanics(t *testing.T) {
	client := newRecordingClient()
	client.SendMessageFunc = func(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error) {
		panic("boom")
	}
	b := newTestBot(t, client)

	assert.NotPanics(t, func() {
		b.handleUpdate(context.Background(), nil, commandUpdate(800, "/start"))
	})
}

func TestHandleStart_StoreFailureStillReplies(t *testing.T) {
	client := newRecordingClient()
	b := newTestBot(t, client)

	sqlDB, err := b.store.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	b.handleUpdate(context.Background(), nil, commandUpdate(900, "/start"))
	assert.Equal(t, startText, client.lastSent(t).Text)
}

func TestCommandFromMessage(t *testing.T) {
	testCases := []struct {
		name    string
		message *models.Message
		want    string
		wantOK  bool
	}{
		{name: "plain", message: commandUpdate(1, "/start").Message, want: "/start", wantOK: true},
		{name: "with payload", message: commandUpdate(1, "/start ref123").Message, want: "/start", wantOK: true},
		{name: "addressed to bot", message: commandUpdate(1, "/Delivery@GateBot").Message, want: "/delivery", wantOK: true},
		{name: "no entities", message: textUpdate(1, 1, "/start").Message, wantOK: false},
		{
			name: "command not at start",
			message: &models.Message{
				Text:     "hi /start",
				Entities: []models.MessageEntity{{Type: "bot_command", Offset: 3, Length: 6}},
			},
			wantOK: false,
		},
		{
			name: "other entity",
			message: &models.Message{
				Text:     "https://example.com",
				Entities: []models.MessageEntity{{Type: "url", Offset: 0, Length: 19}},
			},
			wantOK: false,
		},
		{
			name: "length out of range",
			message: &models.Message{
				Text:     "/st",
				Entities: []models.MessageEntity{{Type: "bot_command", Offset: 0, Length: 10}},
			},
			wantOK: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := commandFromMessage(tc.message)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSendStats(t *testing.T) {
	ctx := context.Background()
	client := newRecordingClient()
	b := newTestBot(t, client)

	require.NoError(t, b.store.Upsert(ctx, 1, "a", ""))
	require.NoError(t, b.store.Upsert(ctx, 2, "b", ""))

	b.handleUpdate(ctx, nil, commandUpdate(testAdminID, "/stats"))
	assert.Equal(t, "📊 Bot Statistics:\n\n- Total Users: 2", client.lastSent(t).Text)

	b.handleUpdate(ctx, nil, commandUpdate(1, "/stats"))
	assert.Equal(t, permissionDeniedText, client.lastSent(t).Text)
}

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

var ErrNotAdmin = errors.New("only the administrator can broadcast")

const (
	permissionDeniedText = "⛔️ This command is available to the administrator only."
	broadcastPromptText  = "✉️ Broadcast mode.\n" +
		"Send the message that should go out to all users.\n\n" +
		"Text, photo, video or document: it will be delivered as is."
	noRecipientsText = "The user list is empty, there is nobody to send to."
)

func broadcastSummaryText(s BroadcastSummary) string {
	return fmt.Sprintf("🚀 Done!\nSent: %d\nFailed: %d", s.Sent, s.Failed)
}

// beginBroadcast puts userID into capture mode. Non-admins leave the
// session table untouched.
func (b *Bot) beginBroadcast(userID int64) error {
	if !b.isAdmin(userID) {
		return ErrNotAdmin
	}

	b.sessionsMu.Lock()
	defer b.sessionsMu.Unlock()
	b.sessions[userID] = &BroadcastSession{AwaitingContent: true}
	return nil
}

// awaitingContent reports whether userID's next message will be captured.
func (b *Bot) awaitingContent(userID int64) bool {
	b.sessionsMu.Lock()
	defer b.sessionsMu.Unlock()
	session, ok := b.sessions[userID]
	return ok && session.AwaitingContent
}

// takeBroadcastSession clears userID's capture state and reports whether it
// was set, so exactly one message is captured per session.
func (b *Bot) takeBroadcastSession(userID int64) bool {
	b.sessionsMu.Lock()
	defer b.sessionsMu.Unlock()
	session, ok := b.sessions[userID]
	delete(b.sessions, userID)
	return ok && session.AwaitingContent
}

func (b *Bot) handleBroadcastCommand(ctx context.Context, message *models.Message) {
	if err := b.beginBroadcast(message.From.ID); err != nil {
		InfoLogger.Info().Int64("user_id", message.From.ID).Msg("broadcast refused")
		b.replyTo(ctx, message, permissionDeniedText)
		return
	}

	InfoLogger.Info().Int64("user_id", message.From.ID).Msg("awaiting broadcast content")
	b.replyTo(ctx, message, broadcastPromptText)
}

// handleBroadcastContent replays message to every known user. The session
// has already been cleared by the router.
func (b *Bot) handleBroadcastContent(ctx context.Context, message *models.Message) {
	if !b.isAdmin(message.From.ID) {
		return
	}

	userIDs, err := b.store.AllUserIDs(ctx)
	if err != nil {
		ErrorLogger.Error().Err(err).Msg("failed to load broadcast recipients")
		b.replyTo(ctx, message, "Sorry, I couldn't load the user list.")
		return
	}
	if len(userIDs) == 0 {
		b.replyTo(ctx, message, noRecipientsText)
		return
	}

	InfoLogger.Info().Int("recipients", len(userIDs)).Int("message_id", message.ID).Msg("broadcast started")
	summary := b.deliverBroadcast(ctx, userIDs, message.Chat.ID, message.ID)
	InfoLogger.Info().Int("sent", summary.Sent).Int("failed", summary.Failed).Msg("broadcast finished")

	b.replyTo(ctx, message, broadcastSummaryText(summary))
}

// deliverBroadcast copies the message to each recipient once, in order,
// paced by b.pacer. Failures are counted and never retried. If ctx ends
// mid-run the remaining recipients are counted as failed.
func (b *Bot) deliverBroadcast(ctx context.Context, userIDs []int64, fromChatID int64, messageID int) BroadcastSummary {
	var summary BroadcastSummary

	for i, userID := range userIDs {
		if err := b.pacer.Wait(ctx); err != nil {
			ErrorLogger.Warn().Err(err).Int("remaining", len(userIDs)-i).Msg("broadcast interrupted")
			summary.Failed += len(userIDs) - i
			break
		}

		_, err := b.tgBot.CopyMessage(ctx, &bot.CopyMessageParams{
			ChatID:     userID,
			FromChatID: fromChatID,
			MessageID:  messageID,
		})
		if err != nil {
			InfoLogger.Debug().Err(err).Int64("user_id", userID).Msg("broadcast delivery failed")
			summary.Failed++
			continue
		}
		summary.Sent++
	}

	return summary
}

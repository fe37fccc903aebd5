package main

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

type chatMemberGetter interface {
	GetChatMember(ctx context.Context, params *bot.GetChatMemberParams) (*models.ChatMember, error)
}

// SubscriptionChecker asks Telegram whether a user belongs to the gated
// channel. The bot must be an administrator of that channel for the query
// to succeed.
type SubscriptionChecker struct {
	client  chatMemberGetter
	channel any // int64 id or "@handle", resolved once at startup
}

func NewSubscriptionChecker(client chatMemberGetter, channel any) *SubscriptionChecker {
	return &SubscriptionChecker{client: client, channel: channel}
}

// Check performs a fresh membership query. Any error is reported as
// NotSubscribed: a failed query never grants access.
func (c *SubscriptionChecker) Check(ctx context.Context, userID int64) SubscriptionStatus {
	member, err := c.client.GetChatMember(ctx, &bot.GetChatMemberParams{
		ChatID: c.channel,
		UserID: userID,
	})
	if err != nil {
		ErrorLogger.Warn().Err(err).
			Int64("user_id", userID).
			Interface("channel", c.channel).
			Msg("membership query failed")
		return NotSubscribed
	}
	if member == nil {
		return NotSubscribed
	}
	return statusFromMemberType(member.Type)
}

func statusFromMemberType(t models.ChatMemberType) SubscriptionStatus {
	switch t {
	case models.ChatMemberTypeMember, models.ChatMemberTypeAdministrator, models.ChatMemberTypeOwner:
		return Subscribed
	default:
		return NotSubscribed
	}
}

package main

import "github.com/go-telegram/bot/models"

// Callback payload tags carried by the inline buttons.
const (
	callbackGetAccess = "get_access"
	callbackCheckSub  = "check_sub"
)

func startKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: "Get access", CallbackData: callbackGetAccess}},
		},
	}
}

func subscribeKeyboard(channelURL string) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: "Go to channel", URL: channelURL}},
			{{Text: "I subscribed", CallbackData: callbackCheckSub}},
		},
	}
}

package adapter

import (
	"fmt"
	"time"

	"gopkg.in/tucnak/telebot.v2"
)

// TelegramBot defines the subset of the Telegram bot API used for alerts
//
//go:generate mockgen -source=telegram.go -destination=../mocks/telegram.go -package=mocks -mock_names=TelegramBot=MockTelegramBot
type TelegramBot interface {
	SendText(chatID int64, text string) error
	SendPhoto(chatID int64, path string, caption string) error
}

// RealTelegramBot implements TelegramBot using telebot
type RealTelegramBot struct {
	bot *telebot.Bot
}

// NewTelegramBot creates a send-only bot. The poller is never started.
func NewTelegramBot(token string, timeout time.Duration) (TelegramBot, error) {
	bot, err := telebot.NewBot(telebot.Settings{
		Token:  token,
		Poller: &telebot.LongPoller{Timeout: timeout},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return &RealTelegramBot{bot: bot}, nil
}

func (t *RealTelegramBot) SendText(chatID int64, text string) error {
	_, err := t.bot.Send(&telebot.Chat{ID: chatID}, text, telebot.ModeMarkdown)
	return err
}

func (t *RealTelegramBot) SendPhoto(chatID int64, path string, caption string) error {
	photo := &telebot.Photo{File: telebot.FromDisk(path), Caption: caption}
	_, err := t.bot.Send(&telebot.Chat{ID: chatID}, photo)
	return err
}

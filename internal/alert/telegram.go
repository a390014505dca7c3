package alert

import (
	"context"
	"fmt"
	"strings"

	"github.com/jinjernot/wg-sub000/internal/adapter"
)

type telegramSink struct {
	bot    adapter.TelegramBot
	chatID int64
}

// NewTelegramSink creates a sink sending alerts to one Telegram chat
func NewTelegramSink(bot adapter.TelegramBot, chatID int64) Sink {
	return &telegramSink{bot: bot, chatID: chatID}
}

func (t *telegramSink) Name() string {
	return "telegram"
}

func (t *telegramSink) Send(ctx context.Context, a Alert) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	text := FormatText(a)
	if a.ImagePath != "" {
		if err := t.bot.SendPhoto(t.chatID, a.ImagePath, text); err != nil {
			return fmt.Errorf("failed to send telegram photo: %w", err)
		}
		return nil
	}
	if err := t.bot.SendText(t.chatID, text); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}

// FormatText renders an alert as plain markdown text
func FormatText(a Alert) string {
	var b strings.Builder
	b.WriteString("*" + a.Title + "*")
	if a.Message != "" {
		b.WriteString("\n" + a.Message)
	}
	if a.TradeHash != "" {
		b.WriteString("\nTrade: `" + a.TradeHash + "`")
	}
	if a.Owner != "" {
		b.WriteString("\nAccount: " + a.Owner)
	}
	for _, f := range a.Fields {
		b.WriteString("\n" + f.Name + ": " + f.Value)
	}
	return b.String()
}

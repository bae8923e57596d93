package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

var (
	// ErrEmptyToken is returned by NewTelegram when no bot token is configured
	ErrEmptyToken = errors.New("telegram bot token is empty")
	// ErrEmptyChatID is returned by NewTelegram when no chat id is configured
	ErrEmptyChatID = errors.New("telegram chat id is empty")
)

// TelegramConfig configures the Telegram sender
type TelegramConfig struct {
	Token     string
	ChatID    int64
	ParseMode string        // "", "Markdown", "MarkdownV2" or "HTML"
	Endpoint  string        // defaults to tgbotapi.APIEndpoint
	Timeout   time.Duration // per request, 0 means no timeout
}

// Telegram sends report chunks to one chat
type Telegram struct {
	bot       *tgbotapi.BotAPI
	chatID    int64
	parseMode string
}

// NewTelegram authenticates the bot token and returns a sender for cfg.ChatID
func NewTelegram(cfg TelegramConfig) (*Telegram, error) {
	if cfg.Token == "" {
		return nil, ErrEmptyToken
	}
	if cfg.ChatID == 0 {
		return nil, ErrEmptyChatID
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}

	bot, err := tgbotapi.NewBotAPIWithClient(cfg.Token, endpoint, &http.Client{Timeout: cfg.Timeout})
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return &Telegram{bot: bot, chatID: cfg.ChatID, parseMode: cfg.ParseMode}, nil
}

// BotName returns the authenticated bot username
func (t *Telegram) BotName() string {
	return t.bot.Self.UserName
}

// Send posts one message. The bot API has no context support, so ctx is only
// checked before the request starts.
func (t *Telegram) Send(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.DisableWebPagePreview = true
	msg.ParseMode = t.parseMode
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send failed: %w", err)
	}
	return nil
}

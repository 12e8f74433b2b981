// Package botapi contains implementations of bot API interfaces.
package botapi

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/Semior001/hnbot/pkg/botx"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/exp/slog"
)

// Telegram is a controller that sends messages to and receives updates from telegram.
type Telegram struct {
	api      *tgbotapi.BotAPI
	updates  chan botx.Request
	done     chan struct{}
	stopOnce sync.Once
}

// TelegramParams defines parameters to make a Telegram controller.
type TelegramParams struct {
	Token      string
	BufferSize int
	// Endpoint overrides the Bot API endpoint, tgbotapi.APIEndpoint by default.
	Endpoint string
}

// NewTelegram returns a new telegram bot controller.
func NewTelegram(lg *slog.Logger, params TelegramParams) (*Telegram, error) {
	if params.Endpoint == "" {
		params.Endpoint = tgbotapi.APIEndpoint
	}

	api, err := tgbotapi.NewBotAPIWithAPIEndpoint(params.Token, params.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("make new api: %w", err)
	}

	stdlibLogger := slog.NewLogLogger(lg.Handler(), slog.LevelWarn)
	stdlibLogger.SetPrefix("telegram-bot-api: ")

	if err = tgbotapi.SetLogger(stdlibLogger); err != nil {
		return nil, fmt.Errorf("set logger: %w", err)
	}

	return &Telegram{
		api:     api,
		updates: make(chan botx.Request, params.BufferSize),
		done:    make(chan struct{}),
	}, nil
}

// Username returns the username of the bot.
func (b *Telegram) Username() string { return b.api.Self.UserName }

// Run runs telegram bot listener until Stop is called.
// Updates channel is closed when Run returns.
func (b *Telegram) Run() {
	defer close(b.updates)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	for {
		var update tgbotapi.Update
		select {
		case <-b.done:
			return
		case upd, ok := <-updates:
			if !ok {
				return
			}
			update = upd
		}

		if update.Message == nil || update.Message.Chat == nil || update.Message.Text == "" {
			continue
		}

		req := botx.Request{
			Chat: botx.Chat{
				ID:       strconv.FormatInt(update.Message.Chat.ID, 10),
				Username: update.Message.Chat.UserName,
			},
			Text: update.Message.Text,
		}

		select {
		case b.updates <- req:
		case <-b.done:
			return
		}
	}
}

// Stop stops telegram bot listener.
func (b *Telegram) Stop() {
	b.stopOnce.Do(func() {
		close(b.done)
		b.api.StopReceivingUpdates()
	})
}

// Updates returns updates channel.
func (b *Telegram) Updates() <-chan botx.Request {
	return b.updates
}

// SendMessage sends message to telegram chat.
func (b *Telegram) SendMessage(ctx context.Context, resp botx.Response) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	chatID, err := strconv.ParseInt(resp.ChatID, 10, 64)
	if err != nil {
		return fmt.Errorf("parse chat id: %w", err)
	}

	msg := tgbotapi.NewMessage(chatID, resp.Text)
	msg.DisableWebPagePreview = resp.DisablePreview

	if _, err = b.api.Send(msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	return nil
}

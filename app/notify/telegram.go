// Package notify delivers notifications to the single configured chat.
package notify

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Semior001/hnbot/pkg/botx"
	"golang.org/x/exp/slog"
	"golang.org/x/time/rate"
)

// Params defines parameters for the telegram notifier.
type Params struct {
	ChatID int64
	// Rate is the number of messages per second, zero disables pacing.
	Rate  float64
	Burst int
	// DisablePreview turns off link previews in sent messages.
	DisablePreview bool
}

// Telegram sends notifications to a telegram chat.
// Sends are paced by the limiter, so a burst of notable items
// doesn't run into the Bot API flood limits.
type Telegram struct {
	log       *slog.Logger
	api       botx.API
	chatID    string
	noPreview bool
	limiter   *rate.Limiter
}

// NewTelegram makes a new telegram notifier.
func NewTelegram(lg *slog.Logger, api botx.API, params Params) *Telegram {
	limit := rate.Inf
	if params.Rate > 0 {
		limit = rate.Limit(params.Rate)
	}

	burst := params.Burst
	if burst < 1 {
		burst = 1
	}

	return &Telegram{
		log:       lg,
		api:       api,
		chatID:    strconv.FormatInt(params.ChatID, 10),
		noPreview: params.DisablePreview,
		limiter:   rate.NewLimiter(limit, burst),
	}
}

// Notify sends the text as a plain message.
// If the context ends before the limiter lets the message through,
// the returned error wraps the context error and nothing is sent.
func (t *Telegram) Notify(ctx context.Context, text string) error {
	if err := t.limiter.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("wait for rate limiter: %w", ctxErr)
		}
		// the limiter refuses to wait past the context deadline
		return fmt.Errorf("wait for rate limiter: %w: %v", context.DeadlineExceeded, err)
	}

	resp := botx.Response{ChatID: t.chatID, Text: text, DisablePreview: t.noPreview}
	if err := t.api.SendMessage(ctx, resp); err != nil {
		return fmt.Errorf("send message to chat %s: %w", t.chatID, err)
	}

	t.log.DebugCtx(ctx, "message sent", slog.String("chat_id", t.chatID))
	return nil
}

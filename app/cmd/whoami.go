package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/Semior001/hnbot/pkg/botx"
	"github.com/Semior001/hnbot/pkg/botx/botapi"
	"github.com/Semior001/hnbot/pkg/botx/botmw"
	"golang.org/x/exp/slog"
	"golang.org/x/sync/errgroup"
)

// WhoAmI is a command that replies to every message with the id of the chat
// it came from, so that the id can be passed to the run command.
type WhoAmI struct {
	Telegram Telegram `group:"telegram" namespace:"telegram" env-namespace:"TELEGRAM"`
	Workers  int      `long:"workers" env:"WORKERS" default:"2" description:"number of messages handled at once"`
}

// Execute runs the command.
func (w WhoAmI) Execute(_ []string) error {
	lg := slog.Default()

	api, err := botapi.NewTelegram(lg.With(slog.String("prefix", "telegram")), botapi.TelegramParams{
		Token:      w.Telegram.Token,
		Endpoint:   w.Telegram.Endpoint,
		BufferSize: 10,
	})
	if err != nil {
		return fmt.Errorf("make telegram api: %w", err)
	}

	lg.Info("send a message to the bot to get your chat id, and pass it with the --telegram.chat-id flag",
		slog.String("bot", api.Username()))

	b := botx.NewBot(
		Routes(lg.With(slog.String("prefix", "whoami"))).Handle,
		api,
		botx.WithWorkers(w.Workers),
		botx.WithLogger(lg.With(slog.String("prefix", "botx"))),
	)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	ewg, ctx := errgroup.WithContext(ctx)
	ewg.Go(func() error { return waitSignal(ctx, stop) })
	ewg.Go(func() error {
		b.Run(ctx)
		return nil
	})

	// api listener lives out of the errgroup, it is stopped only after the bot
	apiStopped := make(chan struct{})
	go func() {
		api.Run()
		close(apiStopped)
	}()

	err = ewg.Wait()

	api.Stop()
	<-apiStopped

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	return nil
}

// Routes returns the router of the whoami bot.
func Routes(lg *slog.Logger) *botx.Router {
	rtr := botx.NewRouter()
	rtr.Use(
		botmw.RequestID(),
		botmw.Recover(lg),
		botmw.Logger(lg),
	)

	rtr.Add("/start", func(ctx context.Context, req botx.Request) ([]botx.Response, error) {
		logChat(ctx, lg, req.Chat)
		return []botx.Response{{
			ChatID: req.Chat.ID,
			Text: fmt.Sprintf("Hi! I post notable Hacker News stories to a chat. "+
				"To get them here, run me with --telegram.chat-id=%s", req.Chat.ID),
		}}, nil
	})

	rtr.NotFound(func(ctx context.Context, req botx.Request) ([]botx.Response, error) {
		logChat(ctx, lg, req.Chat)
		return []botx.Response{{
			ChatID: req.Chat.ID,
			Text:   fmt.Sprintf("Your chat id is %s", req.Chat.ID),
		}}, nil
	})

	return rtr
}

func logChat(ctx context.Context, lg *slog.Logger, chat botx.Chat) {
	lg.InfoCtx(ctx, "chat id found",
		slog.String("chat_id", chat.ID),
		slog.String("chat_username", chat.Username))
}

// Package cmd contains commands for the application.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Semior001/hnbot/app/feed"
	"github.com/Semior001/hnbot/app/notify"
	"github.com/Semior001/hnbot/app/refresh"
	"github.com/Semior001/hnbot/app/schedule"
	"github.com/Semior001/hnbot/app/store"
	"github.com/Semior001/hnbot/pkg/botx/botapi"
	"golang.org/x/exp/slog"
	"golang.org/x/sync/errgroup"
)

// Version is the application version, reported to the feed API.
var Version = "unknown"

// Telegram defines telegram bot credentials.
type Telegram struct {
	Token    string `long:"token" env:"TOKEN" required:"true" description:"telegram bot token"`
	Endpoint string `long:"endpoint" env:"ENDPOINT" description:"bot API endpoint, with %s for token and method"`
}

// Run is a command to run the bot.
type Run struct {
	Telegram struct {
		Telegram
		ChatID int64 `long:"chat-id" env:"CHAT_ID" required:"true" description:"chat to notify, see whoami command"`
	} `group:"telegram" namespace:"telegram" env-namespace:"TELEGRAM"`

	Feed struct {
		URL     string        `long:"url" env:"URL" default:"https://hacker-news.firebaseio.com/v0/" description:"feed API base URL"`
		Timeout time.Duration `long:"timeout" env:"TIMEOUT" default:"10s" description:"timeout for feed requests"`
		Top     int           `long:"top" env:"TOP" default:"10" description:"number of top items to look at"`
		Workers int           `long:"workers" env:"WORKERS" default:"8" description:"max items resolved at once"`
	} `group:"feed" namespace:"feed" env-namespace:"FEED"`

	Store struct {
		Type string `long:"type" env:"TYPE" choice:"file" choice:"bolt" default:"file" description:"notified set storage"`
		Path string `long:"path" env:"PATH" description:"storage file, user cache dir by default"`
	} `group:"store" namespace:"store" env-namespace:"STORE"`

	Notify struct {
		Rate      float64 `long:"rate" env:"RATE" default:"1" description:"max messages per second, 0 to disable"`
		Burst     int     `long:"burst" env:"BURST" default:"1" description:"messages sent at once before pacing"`
		NoPreview bool    `long:"no-preview" env:"NO_PREVIEW" description:"disable link previews in notifications"`
	} `group:"notify" namespace:"notify" env-namespace:"NOTIFY"`

	Schedule   string        `long:"schedule" env:"SCHEDULE" default:"0 */15 * * * *" description:"cron schedule of refreshes, seconds field is optional"`
	RunTimeout time.Duration `long:"run-timeout" env:"RUN_TIMEOUT" default:"5m" description:"timeout for a single refresh"`
	RunOnStart bool          `long:"run-on-start" env:"RUN_ON_START" description:"refresh right after start"`
	Once       bool          `long:"once" env:"ONCE" description:"refresh once and exit"`
}

// Execute runs the command.
func (r Run) Execute(_ []string) error {
	lg := slog.Default()

	backend, err := r.makeStore()
	if err != nil {
		return fmt.Errorf("make store: %w", err)
	}

	defer func() {
		if err := backend.Close(); err != nil {
			lg.Error("close store", slog.Any("err", err))
		}
	}()

	dedup, err := store.Load(context.Background(), backend)
	if err != nil {
		lg.Warn("failed to load notified set, starting from scratch", slog.Any("err", err))
	}
	lg.Info("marked stories loaded", slog.Int("count", dedup.Len()))

	api, err := botapi.NewTelegram(lg.With(slog.String("prefix", "telegram")), botapi.TelegramParams{
		Token:    r.Telegram.Token,
		Endpoint: r.Telegram.Endpoint,
	})
	if err != nil {
		return fmt.Errorf("make telegram api: %w", err)
	}

	rf := &refresh.Refresher{
		Logger: lg.With(slog.String("prefix", "refresh")),
		Feed: feed.NewClient(lg.With(slog.String("prefix", "feed")), feed.Params{
			BaseURL:       r.Feed.URL,
			Timeout:       r.Feed.Timeout,
			MaxConcurrent: r.Feed.Workers,
			UserAgent:     "hnbot/" + Version,
		}),
		Notifier: notify.NewTelegram(
			lg.With(slog.String("prefix", "notify")),
			api,
			notify.Params{
				ChatID:         r.Telegram.ChatID,
				Rate:           r.Notify.Rate,
				Burst:          r.Notify.Burst,
				DisablePreview: r.Notify.NoPreview,
			},
		),
		Dedup: dedup,
		Options: refresh.Options{
			TopN:    r.Feed.Top,
			Workers: r.Feed.Workers,
		},
	}

	if r.Once {
		ctx, cancel := context.WithTimeout(context.Background(), r.RunTimeout)
		defer cancel()
		return rf.RunOnce(ctx)
	}

	sched, err := schedule.New(lg.With(slog.String("prefix", "schedule")), schedule.Params{
		Spec:       r.Schedule,
		Timeout:    r.RunTimeout,
		RunOnStart: r.RunOnStart,
	}, rf.RunOnce)
	if err != nil {
		return fmt.Errorf("make scheduler: %w", err)
	}

	lg.Info("started", slog.String("schedule", r.Schedule), slog.Time("next_run", sched.Next()))

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	ewg, ctx := errgroup.WithContext(ctx)
	ewg.Go(func() error { return waitSignal(ctx, stop) })
	ewg.Go(func() error { return sched.Run(ctx) })

	if err := ewg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	lg.Info("shutting down")
	return nil
}

func (r Run) makeStore() (store.Interface, error) {
	switch r.Store.Type {
	case "bolt":
		path := r.Store.Path
		if path == "" {
			dir, err := os.UserCacheDir()
			if err != nil {
				return nil, fmt.Errorf("%w: %v", store.ErrNoLocation, err)
			}
			path = store.BoltPath(dir)
		}
		return store.NewBolt(path)
	default:
		path := r.Store.Path
		if path == "" {
			var err error
			// unknown location is not fatal: the set is kept in memory
			// and every persist reports the failure
			if path, err = store.DefaultPath(); err != nil {
				slog.Warn("notified set location is unknown", slog.Any("err", err))
			}
		}
		return &store.File{Path: path}, nil
	}
}

func waitSignal(ctx context.Context, stop context.CancelFunc) error {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)

	select {
	case s := <-sig:
		slog.Warn("caught signal, stopping", slog.String("signal", s.String()))
		stop()
		return ctx.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

package botx

import (
	"github.com/Semior001/hnbot/pkg/logx"
	"golang.org/x/exp/slog"
)

// Options configures how a Bot consumes updates.
type Options struct {
	// Workers is the number of updates handled at once, at least one.
	Workers int
	// Logger receives worker lifecycle and send failures,
	// nothing is logged by default.
	Logger *slog.Logger
}

// Option modifies Options of a Bot.
type Option func(*Options)

func defaultOptions() Options {
	return Options{Workers: 1, Logger: slog.New(logx.NoOp())}
}

// WithWorkers makes the bot handle up to n updates concurrently.
// Values below one leave a single worker.
func WithWorkers(n int) Option {
	return func(o *Options) {
		if n < 1 {
			n = 1
		}
		o.Workers = n
	}
}

// WithLogger sets the logger of the bot, nil is ignored.
func WithLogger(lg *slog.Logger) Option {
	return func(o *Options) {
		if lg != nil {
			o.Logger = lg
		}
	}
}

// Package refresh implements the pipeline that finds newly notable items
// in the feed and notifies the recipient about them exactly once.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Semior001/hnbot/app/feed"
	"github.com/Semior001/hnbot/app/rule"
	"github.com/Semior001/hnbot/app/store"
	"github.com/Semior001/hnbot/pkg/logx"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"golang.org/x/exp/slog"
	"golang.org/x/sync/errgroup"
)

// ErrBusy is returned when a run is requested while another one is in progress.
var ErrBusy = errors.New("refresh is already running")

//go:generate moq -out mock_feed.go . Feed
//go:generate moq -out mock_notifier.go . Notifier

// Feed lists top ranked items and resolves their details.
type Feed interface {
	TopIDs(ctx context.Context) ([]uint64, error)
	Item(ctx context.Context, id uint64) (feed.Item, error)
}

// Notifier delivers a message to the recipient.
// An error wrapping context.Canceled or context.DeadlineExceeded means
// the message was not sent and should be retried on the next run.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// Options defines parameters of the pipeline.
type Options struct {
	// TopN is the number of top ranked items to look at.
	TopN int
	// Workers is the maximum number of items resolved at once.
	Workers int
	// PersistTimeout bounds saving of the notified set when the
	// run's context is already done.
	PersistTimeout time.Duration
}

// Refresher runs the pipeline. It exclusively owns the notified set,
// runs are serialized.
type Refresher struct {
	Logger   *slog.Logger
	Feed     Feed
	Notifier Notifier
	Dedup    *store.Dedup
	Options

	mu sync.Mutex
}

// Result is the outcome of a single refresh.
type Result struct {
	// Candidates are top ids which were not in the notified set.
	Candidates []uint64
	// Selected are notable stories, in ascending id order.
	Selected []feed.Item
	// Evaluated are ids of all successfully resolved candidates.
	Evaluated []uint64
	// Failed are ids of candidates which could not be resolved.
	Failed []uint64
}

// RunOnce finds newly notable items, sends a notification for each
// of them in ascending id order and persists the notified set.
// A notification that failed to be sent is not retried: the item is
// considered handled anyway, so a broken sink can't cause a storm of
// repeated messages. Items left unsent because ctx was done are not
// marked and will be picked up by the next run.
func (r *Refresher) RunOnce(ctx context.Context) error {
	if !r.mu.TryLock() {
		return ErrBusy
	}
	defer r.mu.Unlock()

	ctx = logx.ContextWithTraceID(ctx, uuid.NewString())

	res, err := r.refresh(ctx)
	if err != nil {
		r.Logger.ErrorCtx(ctx, "failed to refresh top items", slog.Any("err", err))
		return fmt.Errorf("refresh: %w", err)
	}

	unsent := r.notify(ctx, res.Selected)
	r.Dedup.Add(lo.Without(res.Evaluated, unsent...)...)

	if !r.Dedup.Dirty() {
		return nil
	}

	if ctx.Err() != nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(logx.ContextWithTraceID(context.Background(), traceID(ctx)),
			r.persistTimeout())
		defer cancel()
	}

	if err = r.Dedup.Persist(ctx); err != nil {
		r.Logger.ErrorCtx(ctx, "failed to persist notified set", slog.Any("err", err))
		return fmt.Errorf("persist: %w", err)
	}

	r.Logger.DebugCtx(ctx, "notified set persisted", slog.Int("size", r.Dedup.Len()))
	return nil
}

// Refresh finds newly notable items and marks every resolved candidate
// in the notified set, without sending or persisting anything.
func (r *Refresher) Refresh(ctx context.Context) (Result, error) {
	if !r.mu.TryLock() {
		return Result{}, ErrBusy
	}
	defer r.mu.Unlock()

	res, err := r.refresh(ctx)
	if err != nil {
		return Result{}, err
	}

	r.Dedup.Add(res.Evaluated...)
	return res, nil
}

func (r *Refresher) refresh(ctx context.Context) (Result, error) {
	r.Logger.InfoCtx(ctx, "refreshing top stories")

	top, err := r.Feed.TopIDs(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("get top ids: %w", err)
	}

	if n := r.topN(); len(top) > n {
		top = top[:n]
	}

	res := Result{Candidates: r.Dedup.Missing(top)}

	r.Logger.InfoCtx(ctx, "got top stories",
		slog.Int("top", len(top)),
		slog.Int("not_yet_marked", len(res.Candidates)))

	items, failed := r.resolve(ctx, res.Candidates)

	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	sort.Slice(failed, func(i, j int) bool { return failed[i] < failed[j] })

	res.Failed = failed
	res.Evaluated = itemIDs(items)
	res.Selected = lo.Filter(items, func(item feed.Item, _ int) bool {
		return item.Type == feed.TypeStory && rule.Notable(item)
	})

	r.Logger.InfoCtx(ctx, "items newly selected",
		slog.Int("selected", len(res.Selected)),
		slog.Int("evaluated", len(res.Evaluated)),
		slog.Int("failed", len(res.Failed)))

	return res, nil
}

// resolve fetches details of the given items, at most Workers at once.
// Items that failed to resolve are returned separately.
func (r *Refresher) resolve(ctx context.Context, ids []uint64) (items []feed.Item, failed []uint64) {
	type outcome struct {
		item feed.Item
		err  error
	}

	outcomes := make([]outcome, len(ids))

	ewg := &errgroup.Group{}
	ewg.SetLimit(r.workers())

	for i, id := range ids {
		i, id := i, id
		ewg.Go(func() error {
			item, err := r.Feed.Item(ctx, id)
			outcomes[i] = outcome{item: item, err: err}
			return nil
		})
	}

	_ = ewg.Wait()

	for i, o := range outcomes {
		if o.err != nil {
			r.Logger.WarnCtx(ctx, "failed to resolve item",
				slog.Uint64("id", ids[i]),
				slog.String("kind", errKind(o.err)),
				slog.Any("err", o.err))
			failed = append(failed, ids[i])
			continue
		}
		items = append(items, o.item)
	}

	return items, failed
}

// notify sends a message per item, in order, and returns ids of items
// that were not attempted because ctx was done.
func (r *Refresher) notify(ctx context.Context, items []feed.Item) (unsent []uint64) {
	if len(items) > 0 {
		r.Logger.InfoCtx(ctx, "sending notifications for new items", slog.Int("count", len(items)))
	}

	for idx, item := range items {
		if ctx.Err() != nil {
			return itemIDs(items[idx:])
		}

		text, err := rule.Format(item)
		if err != nil {
			r.Logger.ErrorCtx(ctx, "failed to format item", slog.Uint64("id", item.ID), slog.Any("err", err))
			continue
		}

		if err = r.Notifier.Notify(ctx, text); err != nil {
			if ctx.Err() != nil || isContextErr(err) {
				r.Logger.WarnCtx(ctx, "run ended before all notifications were sent",
					slog.Int("unsent", len(items)-idx),
					slog.Any("err", err))
				return itemIDs(items[idx:])
			}
			r.Logger.ErrorCtx(ctx, "failed to send notification",
				slog.Uint64("id", item.ID),
				slog.String("kind", "transport"),
				slog.Any("err", err))
			continue
		}

		r.Logger.DebugCtx(ctx, "notification sent", slog.Uint64("id", item.ID))
	}

	return nil
}

// isContextErr reports whether the notifier gave up because its
// context would end before the message could be sent.
func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func (r *Refresher) topN() int {
	if r.TopN <= 0 {
		return 10
	}
	return r.TopN
}

func (r *Refresher) workers() int {
	if r.Workers <= 0 {
		return 8
	}
	return r.Workers
}

func (r *Refresher) persistTimeout() time.Duration {
	if r.PersistTimeout <= 0 {
		return 10 * time.Second
	}
	return r.PersistTimeout
}

func itemIDs(items []feed.Item) []uint64 {
	return lo.Map(items, func(item feed.Item, _ int) uint64 { return item.ID })
}

func traceID(ctx context.Context) string {
	id, _ := logx.TraceIDFromContext(ctx)
	return id
}

func errKind(err error) string {
	var (
		terr *feed.TransportError
		derr *feed.DecodeError
	)

	switch {
	case errors.As(err, &terr):
		return "transport"
	case errors.As(err, &derr):
		return "decode"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "unknown"
	}
}

package refresh

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Semior001/hnbot/app/feed"
	"github.com/Semior001/hnbot/app/notify"
	"github.com/Semior001/hnbot/app/store"
	"github.com/Semior001/hnbot/pkg/botx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

// story makes a story which is not notable unless score is high enough.
func story(id uint64, score int) feed.Item {
	return feed.Item{
		ID:          id,
		Type:        feed.TypeStory,
		Title:       fmt.Sprintf("story %d", id),
		URL:         fmt.Sprintf("https://example.com/%d", id),
		Score:       score,
		Descendants: 5,
	}
}

func scenarioFeed() *FeedMock {
	return &FeedMock{
		TopIDsFunc: func(context.Context) ([]uint64, error) {
			return []uint64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}, nil
		},
		ItemFunc: func(_ context.Context, id uint64) (feed.Item, error) {
			if id == 3 || id == 7 {
				return story(id, 250), nil
			}
			return story(id, 10), nil
		},
	}
}

func okNotifier() *NotifierMock {
	return &NotifierMock{NotifyFunc: func(context.Context, string) error { return nil }}
}

func newRefresher(t *testing.T, f Feed, n Notifier) (*Refresher, *store.File) {
	t.Helper()

	backend := &store.File{Path: filepath.Join(t.TempDir(), store.DefaultFileName)}
	d, err := store.Load(context.Background(), backend)
	require.NoError(t, err)

	return &Refresher{
		Logger:   slog.Default(),
		Feed:     f,
		Notifier: n,
		Dedup:    d,
		Options:  Options{TopN: 10, Workers: 8},
	}, backend
}

func persisted(t *testing.T, backend store.Interface) []uint64 {
	t.Helper()
	ids, err := backend.Load(context.Background())
	require.NoError(t, err)
	return ids
}

func TestRefresher_RunOnce_Scenarios(t *testing.T) {
	fm := scenarioFeed()
	nm := okNotifier()
	r, backend := newRefresher(t, fm, nm)

	// first run notifies about 3 and 7 and marks the whole top ten
	require.NoError(t, r.RunOnce(context.Background()))

	calls := nm.NotifyCalls()
	require.Len(t, calls, 2)
	assert.Equal(t, "story 3 https://example.com/3 (250 votes, 5 comments)", calls[0].Text)
	assert.Equal(t, "story 7 https://example.com/7 (250 votes, 5 comments)", calls[1].Text)

	want := []uint64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	assert.Equal(t, want, r.Dedup.IDs())
	assert.Equal(t, want, persisted(t, backend))
	assert.Len(t, fm.ItemCalls(), 10, "only the top ten must be resolved")

	// second run over the same top list resolves and sends nothing
	require.NoError(t, r.RunOnce(context.Background()))
	assert.Len(t, nm.NotifyCalls(), 2)
	assert.Len(t, fm.ItemCalls(), 10)
	assert.Equal(t, want, r.Dedup.IDs())
}

func TestRefresher_RunOnce_ResolveFailureIsRetried(t *testing.T) {
	fail := true
	fm := &FeedMock{
		TopIDsFunc: func(context.Context) ([]uint64, error) { return []uint64{5}, nil },
		ItemFunc: func(_ context.Context, id uint64) (feed.Item, error) {
			if fail {
				return feed.Item{}, &feed.TransportError{Op: "get item", ID: id, Err: errors.New("connection reset")}
			}
			return story(id, 300), nil
		},
	}
	nm := okNotifier()
	r, backend := newRefresher(t, fm, nm)

	require.NoError(t, r.RunOnce(context.Background()))
	assert.Empty(t, nm.NotifyCalls())
	assert.Zero(t, r.Dedup.Len())
	assert.Empty(t, persisted(t, backend), "nothing changed, nothing to persist")

	fail = false
	require.NoError(t, r.RunOnce(context.Background()))
	require.Len(t, nm.NotifyCalls(), 1)
	assert.Equal(t, []uint64{5}, r.Dedup.IDs())
	assert.Equal(t, []uint64{5}, persisted(t, backend))
}

func TestRefresher_RunOnce_FaultIsolation(t *testing.T) {
	fm := &FeedMock{
		TopIDsFunc: func(context.Context) ([]uint64, error) { return []uint64{10, 20}, nil },
		ItemFunc: func(_ context.Context, id uint64) (feed.Item, error) {
			if id == 10 {
				return feed.Item{}, &feed.DecodeError{Op: "get item", ID: id, Err: errors.New("bad json")}
			}
			return story(id, 999), nil
		},
	}
	nm := okNotifier()
	r, _ := newRefresher(t, fm, nm)

	require.NoError(t, r.RunOnce(context.Background()))
	require.Len(t, nm.NotifyCalls(), 1)
	assert.Contains(t, nm.NotifyCalls()[0].Text, "story 20")
	assert.Equal(t, []uint64{20}, r.Dedup.IDs())
	assert.False(t, r.Dedup.Contains(10))
}

func TestRefresher_RunOnce_TopListFailure(t *testing.T) {
	fm := &FeedMock{
		TopIDsFunc: func(context.Context) ([]uint64, error) {
			return nil, &feed.TransportError{Op: "list top items", StatusCode: 502}
		},
	}
	nm := okNotifier()
	backend := &store.InterfaceMock{
		LoadFunc: func(context.Context) ([]uint64, error) { return []uint64{1}, nil },
	}
	d, err := store.Load(context.Background(), backend)
	require.NoError(t, err)

	r := &Refresher{Logger: slog.Default(), Feed: fm, Notifier: nm, Dedup: d}

	err = r.RunOnce(context.Background())
	var terr *feed.TransportError
	require.ErrorAs(t, err, &terr)
	assert.Empty(t, nm.NotifyCalls())
	assert.Empty(t, backend.SaveCalls())
	assert.Equal(t, []uint64{1}, d.IDs())
}

func TestRefresher_RunOnce_SendFailureDoesNotStopBatch(t *testing.T) {
	nm := &NotifierMock{NotifyFunc: func(_ context.Context, text string) error {
		if strings.HasPrefix(text, "story 3 ") {
			return errors.New("telegram is down")
		}
		return nil
	}}
	r, backend := newRefresher(t, scenarioFeed(), nm)

	require.NoError(t, r.RunOnce(context.Background()))
	require.Len(t, nm.NotifyCalls(), 2, "the second item must be attempted after the first failed")

	// failed notification is not retried, the item counts as handled
	assert.True(t, r.Dedup.Contains(3))
	assert.Len(t, persisted(t, backend), 10)
}

func TestRefresher_RunOnce_PersistFailureIsReported(t *testing.T) {
	backend := &store.InterfaceMock{
		LoadFunc: func(context.Context) ([]uint64, error) { return nil, nil },
		SaveFunc: func(context.Context, []uint64) error { return errors.New("no space left on device") },
	}
	d, err := store.Load(context.Background(), backend)
	require.NoError(t, err)

	nm := okNotifier()
	r := &Refresher{Logger: slog.Default(), Feed: scenarioFeed(), Notifier: nm, Dedup: d}

	err = r.RunOnce(context.Background())
	var perr *store.PersistError
	require.ErrorAs(t, err, &perr)
	assert.Len(t, nm.NotifyCalls(), 2)
	assert.True(t, d.Dirty())

	// next run has no new candidates, but still has to retry saving
	backend.SaveFunc = func(context.Context, []uint64) error { return nil }
	require.NoError(t, r.RunOnce(context.Background()))
	assert.Len(t, nm.NotifyCalls(), 2)
	require.Len(t, backend.SaveCalls(), 2)
	assert.Len(t, backend.SaveCalls()[1].Ids, 10)
	assert.False(t, d.Dirty())
}

func TestRefresher_RunOnce_NonStoriesAreMarkedButNotSent(t *testing.T) {
	fm := &FeedMock{
		TopIDsFunc: func(context.Context) ([]uint64, error) { return []uint64{1, 2}, nil },
		ItemFunc: func(_ context.Context, id uint64) (feed.Item, error) {
			if id == 1 {
				return feed.Item{ID: 1, Type: "job", Title: "hiring", Score: 1000}, nil
			}
			return story(2, 201), nil
		},
	}
	nm := okNotifier()
	r, _ := newRefresher(t, fm, nm)

	require.NoError(t, r.RunOnce(context.Background()))
	require.Len(t, nm.NotifyCalls(), 1)
	assert.Contains(t, nm.NotifyCalls()[0].Text, "story 2")
	assert.Equal(t, []uint64{1, 2}, r.Dedup.IDs())
}

func TestRefresher_RunOnce_CanceledMidSend(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	nm := &NotifierMock{NotifyFunc: func(context.Context, string) error {
		cancel() // shutdown arrives while the first message is being sent
		return nil
	}}
	r, backend := newRefresher(t, scenarioFeed(), nm)

	require.NoError(t, r.RunOnce(ctx))
	require.Len(t, nm.NotifyCalls(), 1)

	assert.False(t, r.Dedup.Contains(7), "unsent item must stay a candidate")
	assert.True(t, r.Dedup.Contains(3))
	assert.Equal(t, []uint64{1, 2, 3, 4, 5, 6, 8, 9, 10}, persisted(t, backend))
}

func TestRefresher_RunOnce_NotifierGaveUpBeforeDeadline(t *testing.T) {
	nm := &NotifierMock{NotifyFunc: func(_ context.Context, text string) error {
		if strings.Contains(text, "story 7") {
			return fmt.Errorf("wait for rate limiter: %w", context.DeadlineExceeded)
		}
		return nil
	}}
	r, backend := newRefresher(t, scenarioFeed(), nm)

	require.NoError(t, r.RunOnce(context.Background()))
	require.Len(t, nm.NotifyCalls(), 2)

	assert.False(t, r.Dedup.Contains(7), "unsent item must stay a candidate")
	assert.True(t, r.Dedup.Contains(3))
	assert.Equal(t, []uint64{1, 2, 3, 4, 5, 6, 8, 9, 10}, persisted(t, backend))
}

func TestRefresher_RunOnce_PacedNotifierNearDeadline(t *testing.T) {
	api := &botx.APIMock{SendMessageFunc: func(context.Context, botx.Response) error { return nil }}
	// one message per second, so the second notable item can't make it in time
	tg := notify.NewTelegram(slog.Default(), api, notify.Params{ChatID: 1, Rate: 1, Burst: 1})
	r, backend := newRefresher(t, scenarioFeed(), tg)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	require.NoError(t, r.RunOnce(ctx))

	calls := api.SendMessageCalls()
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].Resp.Text, "story 3")

	assert.False(t, r.Dedup.Contains(7), "unsent item must stay a candidate")
	assert.Equal(t, []uint64{1, 2, 3, 4, 5, 6, 8, 9, 10}, persisted(t, backend))
}

func TestRefresher_RunOnce_Serialized(t *testing.T) {
	entered := make(chan struct{}, 1)
	release := make(chan struct{})

	nm := &NotifierMock{NotifyFunc: func(context.Context, string) error {
		select {
		case entered <- struct{}{}:
		default:
		}
		<-release
		return nil
	}}
	r, _ := newRefresher(t, scenarioFeed(), nm)

	done := make(chan error, 1)
	go func() { done <- r.RunOnce(context.Background()) }()

	<-entered
	assert.ErrorIs(t, r.RunOnce(context.Background()), ErrBusy)
	_, err := r.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrBusy)

	close(release)
	require.NoError(t, <-done)
	assert.Len(t, nm.NotifyCalls(), 2)
}

func TestRefresher_Refresh(t *testing.T) {
	fm := scenarioFeed()
	r, backend := newRefresher(t, fm, okNotifier())
	r.Dedup.Add(1, 2)

	res, err := r.Refresh(context.Background())
	require.NoError(t, err)

	assert.ElementsMatch(t, []uint64{3, 4, 5, 6, 7, 8, 9, 10}, res.Candidates)
	assert.Equal(t, []uint64{3, 4, 5, 6, 7, 8, 9, 10}, res.Evaluated)
	assert.Empty(t, res.Failed)
	require.Len(t, res.Selected, 2)
	assert.EqualValues(t, 3, res.Selected[0].ID)
	assert.EqualValues(t, 7, res.Selected[1].ID)

	assert.Equal(t, []uint64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, r.Dedup.IDs())
	assert.Empty(t, persisted(t, backend), "refresh alone must not persist")
}

func TestRefresher_ConcurrencyBound(t *testing.T) {
	var inFlight, peak int32

	top := make([]uint64, 30)
	for i := range top {
		top[i] = uint64(i + 1)
	}

	fm := &FeedMock{
		TopIDsFunc: func(context.Context) ([]uint64, error) { return top, nil },
		ItemFunc: func(_ context.Context, id uint64) (feed.Item, error) {
			n := atomic.AddInt32(&inFlight, 1)
			defer atomic.AddInt32(&inFlight, -1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			return story(id, 1), nil
		},
	}
	r, _ := newRefresher(t, fm, okNotifier())
	r.TopN = 30

	require.NoError(t, r.RunOnce(context.Background()))
	assert.Len(t, fm.ItemCalls(), 30)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(8))
	assert.Equal(t, 30, r.Dedup.Len())
}

// Package feed provides a client to the Hacker News API, that lists
// top ranked items and resolves their details.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Semior001/hnbot/pkg/logx"
	"github.com/go-pkgz/requester"
	"github.com/go-pkgz/requester/middleware"
	"golang.org/x/exp/slog"
)

// DefaultBaseURL is the base URL of the public Hacker News API.
const DefaultBaseURL = "https://hacker-news.firebaseio.com/v0/"

// Params defines parameters of the feed client.
type Params struct {
	BaseURL string
	Timeout time.Duration
	// MaxConcurrent caps the amount of in-flight requests, unlimited if zero.
	MaxConcurrent int
	UserAgent     string
}

// Client requests the feed API. It is stateless and safe for concurrent use.
// It never retries: a failed request is reported to the caller as is.
type Client struct {
	log  *slog.Logger
	base string
	rq   *requester.Requester
}

// NewClient makes a new feed client.
func NewClient(lg *slog.Logger, params Params) *Client {
	if params.BaseURL == "" {
		params.BaseURL = DefaultBaseURL
	}

	mws := []middleware.RoundTripperHandler{
		middleware.JSON,
		logx.LoggingRoundTripper(lg, logx.RoundTripperOpts{Level: slog.LevelDebug}),
	}
	if params.UserAgent != "" {
		mws = append(mws, middleware.Header("User-Agent", params.UserAgent))
	}
	if params.MaxConcurrent > 0 {
		mws = append(mws, middleware.MaxConcurrent(params.MaxConcurrent))
	}

	return &Client{
		log:  lg,
		base: strings.TrimSuffix(params.BaseURL, "/"),
		rq:   requester.New(http.Client{Timeout: params.Timeout}, mws...),
	}
}

// TopIDs returns identifiers of the top ranked items, in rank order.
func (c *Client) TopIDs(ctx context.Context) ([]uint64, error) {
	const op = "list top items"

	var ids []uint64
	if err := c.get(ctx, op, 0, c.base+"/topstories.json", &ids); err != nil {
		return nil, err
	}

	if ids == nil {
		return nil, &DecodeError{Op: op, Err: errors.New("expected a list of ids, got null")}
	}

	return ids, nil
}

// Item returns details of the item with the given identifier.
func (c *Client) Item(ctx context.Context, id uint64) (Item, error) {
	const op = "get item"

	var item *Item
	u := c.base + "/item/" + strconv.FormatUint(id, 10) + ".json"
	if err := c.get(ctx, op, id, u, &item); err != nil {
		return Item{}, err
	}

	// the API responds with a literal null for unknown items
	if item == nil {
		return Item{}, &DecodeError{Op: op, ID: id, Err: errors.New("item not found")}
	}

	switch item.ID {
	case 0:
		item.ID = id
	case id:
	default:
		return Item{}, &DecodeError{Op: op, ID: id, Err: fmt.Errorf("response is for item %d", item.ID)}
	}

	return *item, nil
}

func (c *Client) get(ctx context.Context, op string, id uint64, u string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return &TransportError{Op: op, ID: id, Err: fmt.Errorf("build request: %w", err)}
	}

	resp, err := c.rq.Do(req)
	if err != nil {
		return &TransportError{Op: op, ID: id, Err: err}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.log.WarnCtx(ctx, "failed to close response body", slog.Any("err", err))
		}
	}()

	ok := resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices
	if !ok {
		return &TransportError{Op: op, ID: id, StatusCode: resp.StatusCode}
	}

	if err = json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return &DecodeError{Op: op, ID: id, Err: err}
	}

	return nil
}

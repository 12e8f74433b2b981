package logx

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-pkgz/requester/middleware"
	"github.com/samber/lo"
	"golang.org/x/exp/slog"
)

// RoundTripperOpts contains options for client logger.
type RoundTripperOpts struct {
	Level         slog.Level
	SecretHeaders []string
}

// LoggingRoundTripper logs every client request and the response to it.
// Response bodies are trimmed, so the logger never consumes the payload.
func LoggingRoundTripper(lg *slog.Logger, opts RoundTripperOpts) middleware.RoundTripperHandler {
	return func(next http.RoundTripper) http.RoundTripper {
		return middleware.RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			ctx := req.Context()
			if !lg.Handler().Enabled(ctx, opts.Level) {
				return next.RoundTrip(req)
			}

			lg.LogAttrs(ctx, opts.Level, "request sent",
				slog.String("method", req.Method),
				slog.String("url", req.URL.String()),
				slog.Any("headers", maskHeaders(req.Header, opts.SecretHeaders)),
			)

			start := time.Now()
			resp, err := next.RoundTrip(req)
			elapsed := time.Since(start)

			if err != nil {
				lg.LogAttrs(ctx, opts.Level, "request failed",
					slog.String("url", req.URL.String()),
					slog.Duration("elapsed", elapsed),
					slog.Any("err", err),
				)
				return resp, err
			}

			var body string
			resp.Body, body = copyAndTrim(resp.Body)

			lg.LogAttrs(ctx, opts.Level, "response received",
				slog.String("url", req.URL.String()),
				slog.Int("status", resp.StatusCode),
				slog.Any("headers", maskHeaders(resp.Header, opts.SecretHeaders)),
				slog.String("body", body),
				slog.Duration("elapsed", elapsed),
			)

			return resp, nil
		})
	}
}

func maskHeaders(h http.Header, secret []string) map[string]string {
	res := make(map[string]string, len(h))
	for k, vals := range h {
		if lo.Contains(secret, k) {
			res[k] = "***"
			continue
		}
		res[k] = strings.Join(vals, ",")
	}
	return res
}

const trimBodyAt = 1024

func copyAndTrim(r io.ReadCloser) (rd io.ReadCloser, result string) {
	if r == nil {
		return nil, ""
	}

	rd, result, read := readPortion(r, trimBodyAt)
	if read == trimBodyAt {
		result += "..."
	}
	result = strings.ReplaceAll(result, "\n", "")
	result = strings.ReplaceAll(result, "\t", "")

	return rd, result
}

func readPortion(src io.ReadCloser, limit int64) (rd io.ReadCloser, portion string, read int64) {
	buf := &bytes.Buffer{}

	read, err := io.CopyN(buf, src, limit)
	if err != nil {
		// source is drained, the copy holds everything there was
		_ = src.Close()
		return io.NopCloser(bytes.NewReader(buf.Bytes())), buf.String(), read
	}

	return &closer{rd: io.MultiReader(bytes.NewReader(buf.Bytes()), src), closeFn: src.Close}, buf.String(), read
}

type closer struct {
	rd      io.Reader
	closeFn func() error
}

func (c *closer) Read(p []byte) (n int, err error) { return c.rd.Read(p) }
func (c *closer) Close() error                     { return c.closeFn() }

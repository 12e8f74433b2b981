package botmw

import (
	"context"

	"github.com/Semior001/hnbot/pkg/botx"
	"github.com/Semior001/hnbot/pkg/logx"
	"github.com/google/uuid"
)

// RequestID is a middleware that puts a fresh trace id into the context.
func RequestID() botx.Middleware {
	return func(next botx.Handler) botx.Handler {
		return func(ctx context.Context, req botx.Request) ([]botx.Response, error) {
			return next(logx.ContextWithTraceID(ctx, uuid.NewString()), req)
		}
	}
}

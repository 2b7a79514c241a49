package session

import (
	"context"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/frayfs/fray/internal/fray"
)

// NewLoggingMiddleware returns a new logging middleware.
func NewLoggingMiddleware(l log.Logger) Middleware {
	if l == nil {
		l = log.NewNopLogger()
	}
	return &loggingMiddleware{l: l}
}

type loggingMiddleware struct {
	l log.Logger
}

func (lm *loggingMiddleware) HandleRequest(ctx context.Context, hdr *fray.RequestHeader, req fray.Request, invoker Invoker) (fray.Response, error) {
	level.Debug(lm.l).Log("msg", "starting request", "op", hdr.Op, "unique", hdr.Unique)
	resp, err := invoker(ctx, hdr, req)
	level.Debug(lm.l).Log("msg", "finished request", "op", hdr.Op, "unique", hdr.Unique, "err", err)
	return resp, err
}

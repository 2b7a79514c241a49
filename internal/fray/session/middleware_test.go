package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/frayfs/fray/internal/fray"
)

func TestChainMiddleware(t *testing.T) {
	var a, b, c, d int
	var called bool

	var mw = []Middleware{
		FuncMiddleware(func(ctx context.Context, h *fray.RequestHeader, req fray.Request, i Invoker) (fray.Response, error) {
			a = 10
			return i(ctx, h, req)
		}),
		FuncMiddleware(func(ctx context.Context, h *fray.RequestHeader, req fray.Request, i Invoker) (fray.Response, error) {
			b = 20
			return i(ctx, h, req)
		}),
		FuncMiddleware(func(ctx context.Context, h *fray.RequestHeader, req fray.Request, i Invoker) (fray.Response, error) {
			c = 30
			return i(ctx, h, req)
		}),
		FuncMiddleware(func(ctx context.Context, h *fray.RequestHeader, req fray.Request, i Invoker) (fray.Response, error) {
			d = 40
			return i(ctx, h, req)
		}),
	}

	invoker := func(context.Context, *fray.RequestHeader, fray.Request) (fray.Response, error) {
		called = true
		return nil, nil
	}
	chainMiddleware(mw).HandleRequest(context.Background(), nil, nil, invoker)

	require.Equal(t, 10, a)
	require.Equal(t, 20, b)
	require.Equal(t, 30, c)
	require.Equal(t, 40, d)
	require.True(t, called)
}

func TestChainMiddleware_Empty(t *testing.T) {
	var called bool

	invoker := func(context.Context, *fray.RequestHeader, fray.Request) (fray.Response, error) {
		called = true
		return nil, nil
	}

	chainMiddleware(nil).HandleRequest(context.Background(), nil, nil, invoker)
	require.True(t, called)
}

func TestHandlerInvoker_MissingBody(t *testing.T) {
	invoker := handlerInvoker(Unimplemented{})

	_, err := invoker(context.Background(), &fray.RequestHeader{Op: fray.OpLookup}, nil)
	require.ErrorIs(t, err, fray.ErrorInvalid)
}

func TestHandlerInvoker_UnexpectedOp(t *testing.T) {
	invoker := handlerInvoker(Unimplemented{})

	_, err := invoker(context.Background(), &fray.RequestHeader{Op: fray.Op(9000)}, nil)
	require.ErrorIs(t, err, fray.ErrorUnimplemented)
}

package transport

import (
	"context"

	"github.com/skcc-wooyoungmoon/agentframework-sub012/pkg/chat"
	"github.com/skcc-wooyoungmoon/agentframework-sub012/pkg/stream"
)

// Transport opens one agent stream for a request and feeds it to a handler.
//
// Stream blocks until the exchange is over. It calls h.OnChunk zero or more
// times and then exactly one of h.OnComplete or h.OnError, all from the
// calling goroutine. If OnChunk returns an error the transport stops reading,
// reports that error through OnError and returns it.
type Transport interface {
	Stream(ctx context.Context, req chat.Request, h stream.Handler) error
}

// Func adapts a function to the Transport interface
type Func func(ctx context.Context, req chat.Request, h stream.Handler) error

// Stream implements Transport
func (f Func) Stream(ctx context.Context, req chat.Request, h stream.Handler) error {
	return f(ctx, req, h)
}

var _ Transport = Func(nil)

package testutil

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/lexfrei/go-apiclient/transport"
)

// ErrUnscripted is returned by FakeTransport when no reply is queued.
var ErrUnscripted = errors.New("fake transport: no scripted reply")

type reply struct {
	result *transport.RequestResult
	err    error
}

// FakeTransport is a scripted transport.Transport that records every request.
// Replies are consumed in order, and the last one repeats once the queue is
// down to a single entry.
type FakeTransport struct {
	mu      sync.Mutex
	replies []reply
	calls   []*transport.RequestConfig
}

// NewFakeTransport returns an empty FakeTransport.
func NewFakeTransport() *FakeTransport {
	return &FakeTransport{}
}

// Reply queues a result with the given status and body.
// A nil body models a host that reported no body at all.
func (f *FakeTransport) Reply(status int, body []byte) *FakeTransport {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.replies = append(f.replies, reply{result: &transport.RequestResult{StatusCode: status, Body: body}})

	return f
}

// ReplyText queues a result whose body is text.
func (f *FakeTransport) ReplyText(status int, text string) *FakeTransport {
	return f.Reply(status, []byte(text))
}

// Fail queues a transport fault.
func (f *FakeTransport) Fail(err error) *FakeTransport {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.replies = append(f.replies, reply{err: err})

	return f
}

// Request implements transport.Transport.
func (f *FakeTransport) Request(ctx context.Context, cfg *transport.RequestConfig) (*transport.RequestResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, cfg.Clone())

	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "fake transport")
	}

	if len(f.replies) == 0 {
		return nil, ErrUnscripted
	}

	next := f.replies[0]
	if len(f.replies) > 1 {
		f.replies = f.replies[1:]
	}

	if next.err != nil {
		return nil, next.err
	}

	result := *next.result

	return &result, nil
}

// Calls returns the recorded requests in order.
func (f *FakeTransport) Calls() []*transport.RequestConfig {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]*transport.RequestConfig(nil), f.calls...)
}

// LastCall returns the most recent request, or nil if none was made.
func (f *FakeTransport) LastCall() *transport.RequestConfig {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.calls) == 0 {
		return nil
	}

	return f.calls[len(f.calls)-1]
}

// CallCount returns the number of recorded requests.
func (f *FakeTransport) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.calls)
}

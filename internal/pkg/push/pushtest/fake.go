// Package pushtest provides a recording push.Dispatcher for tests.
package pushtest

import (
	"context"
	"fmt"
	"sync"

	"rentals/internal/pkg/push"
)

// FakeDispatcher records every message. Errors queued with FailNext are
// returned in order before sends start succeeding again.
type FakeDispatcher struct {
	mu       sync.Mutex
	sent     []push.Message
	failures []error
	byToken  map[string]error
}

func NewFakeDispatcher() *FakeDispatcher {
	return &FakeDispatcher{byToken: make(map[string]error)}
}

func (f *FakeDispatcher) FailNext(errs ...error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures = append(f.failures, errs...)
}

// FailToken makes every send to token fail with err.
func (f *FakeDispatcher) FailToken(token string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byToken[token] = err
}

func (f *FakeDispatcher) Send(_ context.Context, msg push.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.sent = append(f.sent, msg)
	if err, ok := f.byToken[msg.Token]; ok {
		return "", err
	}
	if len(f.failures) > 0 {
		err := f.failures[0]
		f.failures = f.failures[1:]
		return "", err
	}
	return fmt.Sprintf("fake-%d", len(f.sent)), nil
}

// Sent returns a copy of all messages passed to Send, failed ones included.
func (f *FakeDispatcher) Sent() []push.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]push.Message, len(f.sent))
	copy(out, f.sent)
	return out
}

func (f *FakeDispatcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

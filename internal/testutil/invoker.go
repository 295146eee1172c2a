// Package testutil provides test doubles and fixtures shared by the pipeline,
// HTTP and CLI tests.
package testutil

import (
	"context"
	"sync"

	"github.com/Veraticus/immowert/internal/llm"
)

// Call records one invocation seen by a StubInvoker.
type Call struct {
	System  string
	User    string
	Options llm.CallOptions
}

// Reply is one scripted answer.
type Reply struct {
	Err  error
	Text string
}

// StubInvoker answers with scripted replies in order. Once the script is
// exhausted the last reply repeats.
type StubInvoker struct {
	replies []Reply
	calls   []Call
	mu      sync.Mutex
}

var _ llm.Invoker = (*StubInvoker)(nil)

// NewStubInvoker creates a stub that returns replies in order.
func NewStubInvoker(replies ...Reply) *StubInvoker {
	return &StubInvoker{replies: replies}
}

// Replying is shorthand for a stub with one successful text reply.
func Replying(text string) *StubInvoker {
	return NewStubInvoker(Reply{Text: text})
}

// Failing is shorthand for a stub that always fails with err.
func Failing(err error) *StubInvoker {
	return NewStubInvoker(Reply{Err: err})
}

// Invoke records the call and returns the next scripted reply.
func (s *StubInvoker) Invoke(ctx context.Context, system, user string, opts llm.CallOptions) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, Call{System: system, User: user, Options: opts})

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(s.replies) == 0 {
		return "", nil
	}

	idx := len(s.calls) - 1
	if idx >= len(s.replies) {
		idx = len(s.replies) - 1
	}
	r := s.replies[idx]
	return r.Text, r.Err
}

// Calls returns a copy of the recorded calls.
func (s *StubInvoker) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// CallCount returns how many times Invoke ran.
func (s *StubInvoker) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

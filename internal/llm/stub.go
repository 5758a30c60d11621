package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// Reply is one scripted Stub answer: content, or an error.
type Reply struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
}

// Stub is a scripted Provider for tests. It answers requests with its
// replies in order and records every request.
type Stub struct {
	mu       sync.Mutex
	replies  []Reply
	requests []Request
}

// NewStub returns a Stub answering with replies.
func NewStub(replies ...Reply) *Stub {
	return &Stub{replies: replies}
}

// Generate returns the next reply. Once the script runs out it fails with
// ErrUnavailable. Content is returned unchecked so tests can feed output
// that only later validation rejects.
func (s *Stub) Generate(_ context.Context, req Request) (*Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = append(s.requests, req)
	if len(s.replies) == 0 {
		return nil, &Error{Provider: "stub", Kind: ErrUnavailable}
	}
	r := s.replies[0]
	s.replies = s.replies[1:]
	if r.Err != nil {
		return nil, r.Err
	}
	return &Response{Content: r.Content, Usage: r.Usage, Model: "stub", StopReason: StopEnd}, nil
}

func (s *Stub) Name() string    { return "stub" }
func (s *Stub) ModelID() string { return "stub" }

// Requests returns the requests received so far.
func (s *Stub) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPurpose(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, PurposeUnknown, PurposeFrom(ctx))
	assert.Equal(t, PurposeBankGen, PurposeFrom(WithPurpose(ctx, PurposeBankGen)))
	// Plain strings under other keys are not purposes.
	assert.Equal(t, PurposeUnknown, PurposeFrom(context.WithValue(ctx, purposeKey{}, "bank-gen")))
}

func TestStub(t *testing.T) {
	s := NewStub(
		Reply{Content: json.RawMessage(`{"questions":[]}`), Usage: Usage{InputTokens: 10, OutputTokens: 2}},
		Reply{Err: &Error{Provider: "stub", Kind: ErrRateLimited}},
	)

	resp, err := s.Generate(context.Background(), Request{System: "sys"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"questions":[]}`, string(resp.Content))
	assert.Equal(t, StopEnd, resp.StopReason)

	_, err = s.Generate(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrRateLimited)

	_, err = s.Generate(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrUnavailable, "script exhausted")

	reqs := s.Requests()
	require.Len(t, reqs, 3)
	assert.Equal(t, "sys", reqs[0].System)
}

func TestHTTPError(t *testing.T) {
	cause := errors.New("boom")
	tests := []struct {
		status int
		kind   error
	}{
		{0, ErrUnavailable},
		{http.StatusTooManyRequests, ErrRateLimited},
		{http.StatusUnauthorized, ErrAuth},
		{http.StatusForbidden, ErrAuth},
		{http.StatusNotFound, ErrRejected},
		{http.StatusBadRequest, ErrRejected},
		{http.StatusInternalServerError, ErrUnavailable},
		{529, ErrUnavailable},
	}
	for _, tt := range tests {
		err := httpError("anthropic", tt.status, nil, cause)
		assert.ErrorIs(t, err, tt.kind, "status %d", tt.status)
		assert.ErrorIs(t, err, cause)
	}

	h := http.Header{}
	h.Set("Retry-After", "7")
	e := httpError("openai", http.StatusTooManyRequests, h, cause)
	assert.Equal(t, 7*time.Second, e.RetryAfter)
	assert.Equal(t, "openai: rate limited (HTTP 429): boom", e.Error())
}

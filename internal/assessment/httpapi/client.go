// Package httpapi is the HTTP client of the examly assessment REST API.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/mod/semver"

	"github.com/abhisek/examly/internal/assessment"
)

// MinServerVersion is the oldest server API this client speaks.
const MinServerVersion = "v1.0.0"

// ErrIncompatibleServer is returned by CheckVersion for servers older than
// MinServerVersion or reporting an invalid version.
var ErrIncompatibleServer = errors.New("incompatible assessment server")

// Client talks to an assessment server. It implements assessment.Service.
type Client struct {
	base    *url.URL
	token   string
	hc      *http.Client
	retries int
	backoff time.Duration
	log     zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithToken sends token as a bearer token on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.hc.Timeout = d }
}

// WithRetries sets how many times a failed GET is retried.
func WithRetries(n int) Option {
	return func(c *Client) { c.retries = max(n, 0) }
}

// WithBackoff sets the wait before the first retry; later retries double it.
func WithBackoff(d time.Duration) Option {
	return func(c *Client) { c.backoff = d }
}

// WithLogger sets the logger for retries.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New returns a client for the server at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("api url %q: scheme must be http or https", baseURL)
	}
	c := &Client{
		base:    u,
		hc:      &http.Client{Timeout: 15 * time.Second},
		retries: 3,
		backoff: 250 * time.Millisecond,
		log:     zerolog.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// FetchSubjects lists the subjects offered by the server.
func (c *Client) FetchSubjects(ctx context.Context) ([]assessment.Subject, error) {
	var out []assessment.Subject
	if err := c.get(ctx, "fetch subjects", "/api/v1/subjects", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchTopics lists the topics of a subject.
func (c *Client) FetchTopics(ctx context.Context, subjectID string) ([]assessment.Topic, error) {
	var out []assessment.Topic
	path := "/api/v1/subjects/" + url.PathEscape(subjectID) + "/topics"
	if err := c.get(ctx, "fetch topics", path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// StartSession opens a session. Client errors (400, 422) mean the server
// rejected the selection.
func (c *Client) StartSession(ctx context.Context, req assessment.StartRequest) (*assessment.StartResponse, error) {
	var out assessment.StartResponse
	if err := c.post(ctx, "start session", "/api/v1/sessions", req, &out, true); err != nil {
		return nil, err
	}
	if out.SessionID == "" {
		return nil, &assessment.Error{
			Op:   "start session",
			Kind: assessment.ErrUnavailable,
			Err:  errors.New("response has no session id"),
		}
	}
	return &out, nil
}

// FinishSession submits the answers of a session. It is never retried
// automatically.
func (c *Client) FinishSession(ctx context.Context, sessionID string, answers []assessment.AnswerSubmission) (*assessment.Result, error) {
	if answers == nil {
		answers = []assessment.AnswerSubmission{}
	}
	body := struct {
		Answers []assessment.AnswerSubmission `json:"answers"`
	}{answers}

	var out assessment.Result
	path := "/api/v1/sessions/" + url.PathEscape(sessionID) + "/finish"
	if err := c.post(ctx, "finish session", path, body, &out, false); err != nil {
		return nil, err
	}
	return &out, nil
}

// CheckVersion asks the server for its API version and fails with
// ErrIncompatibleServer when it is older than MinServerVersion.
func (c *Client) CheckVersion(ctx context.Context) (string, error) {
	var out struct {
		Version string `json:"version"`
	}
	if err := c.get(ctx, "check version", "/api/v1/version", &out); err != nil {
		return "", err
	}
	v := out.Version
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return out.Version, fmt.Errorf("%w: invalid version %q", ErrIncompatibleServer, out.Version)
	}
	if semver.Compare(v, MinServerVersion) < 0 {
		return v, fmt.Errorf("%w: server %s, need %s or newer", ErrIncompatibleServer, v, MinServerVersion)
	}
	return v, nil
}

func (c *Client) get(ctx context.Context, op, path string, dst any) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = c.do(ctx, op, http.MethodGet, path, nil, dst, false)
		if err == nil || attempt >= c.retries || ctx.Err() != nil || !retryable(err) {
			return err
		}
		wait := c.wait(attempt)
		c.log.Debug().Err(err).Str("op", op).Int("attempt", attempt+1).Dur("wait", wait).Msg("retrying request")
		select {
		case <-ctx.Done():
			return &assessment.Error{Op: op, Kind: assessment.ErrUnavailable, Err: ctx.Err()}
		case <-time.After(wait):
		}
	}
}

func (c *Client) post(ctx context.Context, op, path string, body, dst any, selection bool) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%s: encode request: %w", op, err)
	}
	return c.do(ctx, op, http.MethodPost, path, data, dst, selection)
}

// wait is the exponential backoff before retry attempt+1, with ±20% jitter.
func (c *Client) wait(attempt int) time.Duration {
	d := float64(c.backoff) * math.Pow(2, float64(attempt))
	d += d * 0.2 * (2*rand.Float64() - 1)
	return time.Duration(d)
}

// retryable reports whether a GET failure may succeed on retry: transport
// errors, 429 and 5xx.
func retryable(err error) bool {
	var aerr *assessment.Error
	if !errors.As(err, &aerr) || !errors.Is(aerr.Kind, assessment.ErrUnavailable) {
		return false
	}
	return aerr.StatusCode == 0 || aerr.StatusCode == http.StatusTooManyRequests || aerr.StatusCode >= 500
}

func (c *Client) do(ctx context.Context, op, method, path string, body []byte, dst any, selection bool) error {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, rd)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return &assessment.Error{Op: op, Kind: assessment.ErrUnavailable, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return &assessment.Error{Op: op, Kind: assessment.ErrUnavailable, StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode >= 400 {
		return &assessment.Error{
			Op:         op,
			Kind:       kindOf(resp.StatusCode, selection),
			StatusCode: resp.StatusCode,
			Err:        errors.New(serverMessage(raw, resp.Status)),
		}
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return &assessment.Error{
			Op:         op,
			Kind:       assessment.ErrUnavailable,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("decode response: %w", err),
		}
	}
	return nil
}

func kindOf(status int, selection bool) error {
	switch {
	case selection && (status == http.StatusBadRequest || status == http.StatusUnprocessableEntity):
		return assessment.ErrSelectionInvalid
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return assessment.ErrUnauthorized
	case status == http.StatusNotFound:
		return assessment.ErrNotFound
	default:
		return assessment.ErrUnavailable
	}
}

// serverMessage extracts the message of a JSON error body, falling back to
// the status line.
func serverMessage(raw []byte, status string) string {
	var env struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(raw, &env) == nil && env.Error.Message != "" {
		return env.Error.Message
	}
	return status
}

package screen

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/abhisek/examly/internal/assessment"
	"github.com/abhisek/examly/internal/session"
	"github.com/abhisek/examly/internal/store"
)

// DefaultCallTimeout bounds one assessment service call made by a screen.
const DefaultCallTimeout = 30 * time.Second

// Env carries the collaborators shared by all screens.
type Env struct {
	Service assessment.Service

	// Repo is the history store. It may be nil, in which case history is
	// not shown.
	Repo store.EventRepo

	Log zerolog.Logger

	// Backend names the service in the header, e.g. "offline".
	Backend string

	// ControllerOptions are passed to every new session controller.
	ControllerOptions []session.Option

	CallTimeout time.Duration
}

// NewController creates a session controller for one session.
func (e Env) NewController() *session.Controller {
	opts := append([]session.Option{session.WithLogger(e.Log)}, e.ControllerOptions...)
	return session.NewController(e.Service, opts...)
}

// CallContext returns the context for one service call.
func (e Env) CallContext() (context.Context, context.CancelFunc) {
	d := e.CallTimeout
	if d <= 0 {
		d = DefaultCallTimeout
	}
	return context.WithTimeout(context.Background(), d)
}

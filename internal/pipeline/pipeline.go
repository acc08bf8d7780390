// Package pipeline builds the HTTP transport every outbound call goes through.
//
// Stages are http.RoundTrippers composed outermost first:
//
//	LogTransport (optional) -> AuthTransport (authenticated routes only) -> base
package pipeline

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"taskdash/internal/session"
)

// Navigator forces navigation to the unauthenticated entry point.
type Navigator interface {
	ToEntry()
}

// NavigatorFunc adapts a func to Navigator.
type NavigatorFunc func()

// ToEntry implements Navigator.
func (f NavigatorFunc) ToEntry() { f() }

// AuthTransport attaches the session token and reacts to authorization failures.
type AuthTransport struct {
	// Base is the next stage. nil means http.DefaultTransport.
	Base http.RoundTripper

	// Store supplies the token and is cleared on 401.
	Store session.Store

	// Navigator is invoked once per call that fails with 401. May be nil.
	Navigator Navigator

	// Logger records session expiry. nil means slog.Default().
	Logger *slog.Logger
}

// RoundTrip implements http.RoundTripper.
func (t *AuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req
	if tok, ok := t.Store.Token(); ok {
		out = req.Clone(req.Context())
		(&oauth2.Token{AccessToken: tok, TokenType: "Bearer"}).SetAuthHeader(out)
	}

	resp, err := t.base().RoundTrip(out)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		t.expire(req)
	}
	return resp, nil
}

func (t *AuthTransport) expire(req *http.Request) {
	logger := t.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if err := t.Store.Clear(); err != nil {
		logger.Error("failed to clear session", "error", err)
	}
	logger.Info("session expired", "method", req.Method, "path", req.URL.Path)
	if t.Navigator != nil {
		t.Navigator.ToEntry()
	}
}

func (t *AuthTransport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

// LogTransport logs every call at debug level. Headers are never logged.
type LogTransport struct {
	Base   http.RoundTripper
	Logger *slog.Logger
}

// RoundTrip implements http.RoundTripper.
func (t *LogTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	logger := t.Logger
	if logger == nil {
		logger = slog.Default()
	}

	start := time.Now()
	logger.Debug("http request", "method", req.Method, "url", req.URL.String())

	resp, err := base.RoundTrip(req)
	if err != nil {
		logger.Error("http request failed", "method", req.Method, "url", req.URL.String(), "error", err)
		return nil, err
	}

	logger.Debug("http response",
		"method", req.Method,
		"url", req.URL.String(),
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)
	return resp, nil
}

// Options configures New.
type Options struct {
	// Base is the innermost transport. nil means http.DefaultTransport.
	Base http.RoundTripper

	// Store enables the auth stage when non-nil.
	Store     session.Store
	Navigator Navigator

	// LogHTTP enables the logging stage.
	LogHTTP bool
	Logger  *slog.Logger
}

// New composes the pipeline stages into a single transport.
func New(opts Options) http.RoundTripper {
	var rt http.RoundTripper = opts.Base
	if rt == nil {
		rt = http.DefaultTransport
	}
	if opts.Store != nil {
		rt = &AuthTransport{
			Base:      rt,
			Store:     opts.Store,
			Navigator: opts.Navigator,
			Logger:    opts.Logger,
		}
	}
	if opts.LogHTTP {
		rt = &LogTransport{Base: rt, Logger: opts.Logger}
	}
	return rt
}

// EntryHook is a Navigator whose target can be swapped after the pipeline is
// built, e.g. when an interactive screen takes over from the CLI.
type EntryHook struct {
	mu sync.Mutex
	fn func()
}

// NewEntryHook creates a hook calling fn. fn may be nil.
func NewEntryHook(fn func()) *EntryHook {
	return &EntryHook{fn: fn}
}

// Set replaces the target.
func (h *EntryHook) Set(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.fn = fn
}

// ToEntry implements Navigator.
func (h *EntryHook) ToEntry() {
	h.mu.Lock()
	fn := h.fn
	h.mu.Unlock()
	if fn != nil {
		fn()
	}
}

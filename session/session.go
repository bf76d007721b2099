// Package session collects the items of all registered modules for one query
// into a result set and activates items out of the current set only.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"resultflow/actions"
	"resultflow/items"
	"resultflow/modules"
)

const defaultQueryTimeout = 5 * time.Second

var (
	ErrStaleResult     = errors.New("result set has been replaced")
	ErrNoSuchItem      = errors.New("no such item in result set")
	ErrDuplicateModule = errors.New("module already registered")
)

// Window is the launcher window collaborator.
type Window interface {
	HideWindow()
}

// Registry keeps modules in registration order.
type Registry struct {
	mu      sync.RWMutex
	modules []modules.Module
}

func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) Register(m modules.Module) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.modules {
		if existing.Name() == m.Name() {
			return fmt.Errorf("%s: %w", m.Name(), ErrDuplicateModule)
		}
	}
	r.modules = append(r.modules, m)
	return nil
}

func (r *Registry) Modules() []modules.Module {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]modules.Module(nil), r.modules...)
}

type Option func(*Session)

// WithWindow sets the collaborator hidden after every activation.
func WithWindow(w Window) Option {
	return func(s *Session) { s.window = w }
}

// WithTimeout bounds how long one query waits for its modules. Modules that
// answer later are dropped from the result set.
func WithTimeout(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// Session owns the result set currently on display.
type Session struct {
	registry *Registry
	window   Window
	timeout  time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	current *ResultSet
	issued  uint64 // sequence number of the latest Query call
	shown   uint64 // sequence number current was issued with
}

func New(registry *Registry, opts ...Option) *Session {
	s := &Session{
		registry: registry,
		timeout:  defaultQueryTimeout,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Current returns the result set on display, or nil.
func (s *Session) Current() *ResultSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Query asks every enabled module for items, replaces the current result set
// with the merged answer and releases the previous one. Queries may overlap;
// a query that finishes after a newer one (or after Dismiss) returns an
// already released set and leaves the current one alone.
func (s *Session) Query(ctx context.Context, text string) *ResultSet {
	s.mu.Lock()
	s.issued++
	seq := s.issued
	s.mu.Unlock()

	set := newResultSet(text, s.collect(ctx, text))

	s.mu.Lock()
	if seq < s.shown {
		s.mu.Unlock()
		s.logger.Debug("dropping outdated result set", "query", text)
		set.release()
		return set
	}
	previous := s.current
	s.current = set
	s.shown = seq
	s.mu.Unlock()

	if previous != nil {
		previous.release()
	}
	return set
}

// Dismiss releases the current result set, e.g. when the launcher closes.
// Queries still in flight are dropped when they finish.
func (s *Session) Dismiss() {
	s.mu.Lock()
	previous := s.current
	s.current = nil
	s.shown = s.issued + 1
	s.issued = s.shown
	s.mu.Unlock()

	if previous != nil {
		previous.release()
	}
}

// Activate runs the effect of the item ref points to and then hides the
// window. Refs into a replaced or dismissed set fail with ErrStaleResult and
// trigger nothing. An effect failure is logged and returned but still hides
// the window.
func (s *Session) Activate(ctx context.Context, ref Ref) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return ErrStaleResult
	}
	item, err := s.current.resolve(ref)
	if err != nil {
		return err
	}

	effectErr := item.Activate(ctx)
	if effectErr != nil {
		s.logger.Warn("activation effect failed", "item", item.Name(), "error", effectErr)
	} else if action, ok := items.ActionOf(item); ok {
		if kind, target, ok := actions.Describe(action); ok {
			s.logger.Debug("item activated", "item", item.Name(), "kind", kind, "target", target)
		}
	}
	if s.window != nil {
		s.window.HideWindow()
	}
	return effectErr
}

type moduleAnswer struct {
	index int
	items []items.Item
}

func (s *Session) collect(ctx context.Context, text string) []Entry {
	mods := s.registry.Modules()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	answers := make(chan moduleAnswer, len(mods))
	pending := 0
	for i, m := range mods {
		if !m.Enabled() {
			continue
		}
		pending++
		go func(i int, m modules.Module) {
			answers <- moduleAnswer{index: i, items: s.ask(ctx, m, text)}
		}(i, m)
	}

	buffers := make([][]items.Item, len(mods))
	for pending > 0 {
		select {
		case a := <-answers:
			buffers[a.index] = a.items
			pending--
		case <-ctx.Done():
			s.logger.Warn("query timed out, dropping late modules", "query", text, "pending", pending, "error", ctx.Err())
			pending = 0
		}
	}

	var entries []Entry
	for i, buf := range buffers {
		for _, it := range buf {
			entries = append(entries, Entry{Module: mods[i].Name(), Item: it})
		}
	}
	return entries
}

func (s *Session) ask(ctx context.Context, m modules.Module, text string) (out []items.Item) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("module panicked", "module", m.Name(), "query", text, "panic", r)
			out = nil
		}
	}()

	results, err := m.ProcessQuery(ctx, text)
	if err != nil {
		if !errors.Is(err, modules.ErrDisabled) {
			s.logger.Warn("module failed", "module", m.Name(), "query", text, "error", err)
		}
		return nil
	}

	out = make([]items.Item, 0, len(results))
	for _, it := range results {
		if it != nil {
			out = append(out, it)
		}
	}
	return out
}

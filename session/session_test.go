package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resultflow/actions"
	"resultflow/items"
	"resultflow/modules"
	"resultflow/modules/websearch"
)

// recorder captures collaborator calls in the order they happen.
type recorder struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (r *recorder) OpenURL(rawURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, "open:"+rawURL)
	return r.err
}

func (r *recorder) HideWindow() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, "hide")
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// stubModule answers every query with items built by produce.
type stubModule struct {
	name      string
	disabled  bool
	delay     time.Duration
	err       error
	panicMsg  string
	produce   func(query string) []items.Item
	mu        sync.Mutex
	callCount int
}

func (m *stubModule) Name() string                 { return m.name }
func (m *stubModule) Enabled() bool                { return !m.disabled }
func (m *stubModule) DefaultIconPath() string      { return "" }
func (m *stubModule) Ownership() modules.Ownership { return modules.OwnershipFresh }

func (m *stubModule) ProcessQuery(ctx context.Context, query string) ([]items.Item, error) {
	m.mu.Lock()
	m.callCount++
	m.mu.Unlock()

	if m.panicMsg != "" {
		panic(m.panicMsg)
	}
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	if m.produce == nil {
		return nil, nil
	}
	return m.produce(query), nil
}

func (m *stubModule) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

func openItem(t *testing.T, opener actions.Opener, name, rawURL string) items.Item {
	t.Helper()
	action, err := actions.NewOpenURL(rawURL, opener)
	require.NoError(t, err)
	item, err := items.NewStandard().Name(name).Info(rawURL).Action(action).Build()
	require.NoError(t, err)
	return item
}

func names(set *ResultSet) []string {
	var out []string
	for _, e := range set.Entries() {
		out = append(out, e.Item.Name())
	}
	return out
}

func newSession(t *testing.T, window Window, mods ...modules.Module) *Session {
	t.Helper()
	reg := NewRegistry()
	for _, m := range mods {
		require.NoError(t, reg.Register(m))
	}
	return New(reg, WithWindow(window), WithTimeout(time.Second))
}

func TestActivate_StandardItemOpensThenHides(t *testing.T) {
	rec := &recorder{}
	mod := &stubModule{
		name: "static",
		produce: func(string) []items.Item {
			return []items.Item{openItem(t, rec, "Open example", "https://example.com")}
		},
	}
	s := newSession(t, rec, mod)

	set := s.Query(context.Background(), "example")
	require.Equal(t, 1, set.Len())

	require.NoError(t, s.Activate(context.Background(), set.Ref(0)))
	assert.Equal(t, []string{"open:https://example.com", "hide"}, rec.snapshot())
}

func TestActivate_EffectFailureStillHides(t *testing.T) {
	rec := &recorder{err: errors.New("no browser")}
	mod := &stubModule{
		name: "static",
		produce: func(string) []items.Item {
			return []items.Item{openItem(t, rec, "Open example", "https://example.com")}
		},
	}
	s := newSession(t, rec, mod)

	set := s.Query(context.Background(), "example")
	err := s.Activate(context.Background(), set.Ref(0))

	var effectErr *actions.EffectError
	require.ErrorAs(t, err, &effectErr)
	assert.Equal(t, []string{"open:https://example.com", "hide"}, rec.snapshot())
}

func TestQuery_PreservesRegistrationOrder(t *testing.T) {
	rec := &recorder{}
	slow := &stubModule{
		name:  "slow",
		delay: 50 * time.Millisecond,
		produce: func(string) []items.Item {
			return []items.Item{openItem(t, rec, "slow-1", "https://slow.example/1"), openItem(t, rec, "slow-2", "https://slow.example/2")}
		},
	}
	fast := &stubModule{
		name: "fast",
		produce: func(string) []items.Item {
			return []items.Item{openItem(t, rec, "fast-1", "https://fast.example/1")}
		},
	}
	s := newSession(t, rec, slow, fast)

	set := s.Query(context.Background(), "anything")
	assert.Equal(t, []string{"slow-1", "slow-2", "fast-1"}, names(set))

	entries := set.Entries()
	assert.Equal(t, "slow", entries[0].Module)
	assert.Equal(t, "fast", entries[2].Module)
}

func TestQuery_DisabledModuleContributesNothing(t *testing.T) {
	rec := &recorder{}
	opener := &recorder{}
	ws := websearch.NewExtension(opener, nil)
	require.NoError(t, ws.Configure(websearch.Config{
		Enabled: false,
		Engines: []websearch.Engine{{Name: "Example", Trigger: "g ", URL: "https://example.com/search?q=%s", Enabled: true}},
	}))
	disabledStub := &stubModule{
		name:     "off",
		disabled: true,
		produce: func(string) []items.Item {
			return []items.Item{openItem(t, rec, "never", "https://never.example")}
		},
	}
	s := newSession(t, rec, ws, disabledStub)

	set := s.Query(context.Background(), "g hello world")
	assert.Zero(t, set.Len())
	assert.Zero(t, disabledStub.calls())

	require.NoError(t, ws.Configure(websearch.Config{
		Enabled: true,
		Engines: []websearch.Engine{{Name: "Example", Trigger: "g ", URL: "https://example.com/search?q=%s", Enabled: true}},
	}))
	set = s.Query(context.Background(), "g hello world")
	require.Equal(t, 1, set.Len())
	assert.Equal(t, "https://example.com/search?q=hello%20world", set.Entries()[0].Item.Info())
}

func TestQuery_FailingAndPanickingModulesAreIsolated(t *testing.T) {
	rec := &recorder{}
	failing := &stubModule{name: "failing", err: errors.New("backend down")}
	panicking := &stubModule{name: "panicking", panicMsg: "bad module"}
	healthy := &stubModule{
		name: "healthy",
		produce: func(string) []items.Item {
			return []items.Item{openItem(t, rec, "ok", "https://ok.example"), nil}
		},
	}
	s := newSession(t, rec, failing, panicking, healthy)

	set := s.Query(context.Background(), "q")
	assert.Equal(t, []string{"ok"}, names(set))
}

func TestQuery_DropsModulesThatMissTheTimeout(t *testing.T) {
	rec := &recorder{}
	late := &stubModule{
		name:  "late",
		delay: time.Second,
		produce: func(string) []items.Item {
			return []items.Item{openItem(t, rec, "late", "https://late.example")}
		},
	}
	onTime := &stubModule{
		name: "on-time",
		produce: func(string) []items.Item {
			return []items.Item{openItem(t, rec, "on-time", "https://ontime.example")}
		},
	}
	reg := NewRegistry()
	require.NoError(t, reg.Register(late))
	require.NoError(t, reg.Register(onTime))
	s := New(reg, WithTimeout(20*time.Millisecond))

	set := s.Query(context.Background(), "q")
	assert.Equal(t, []string{"on-time"}, names(set))
}

func TestActivate_StaleRefAfterNewQuery(t *testing.T) {
	rec := &recorder{}
	mod := &stubModule{
		name: "static",
		produce: func(q string) []items.Item {
			return []items.Item{openItem(t, rec, q, "https://example.com/"+q)}
		},
	}
	s := newSession(t, rec, mod)

	first := s.Query(context.Background(), "first")
	staleRef := first.Ref(0)
	second := s.Query(context.Background(), "second")

	assert.True(t, first.Released())
	assert.Empty(t, first.Entries())
	assert.False(t, second.Released())
	assert.NotEqual(t, first.ID(), second.ID())

	err := s.Activate(context.Background(), staleRef)
	assert.ErrorIs(t, err, ErrStaleResult)
	assert.Empty(t, rec.snapshot())

	require.NoError(t, s.Activate(context.Background(), second.Ref(0)))
	assert.Equal(t, []string{"open:https://example.com/second", "hide"}, rec.snapshot())
}

func TestActivate_AfterDismiss(t *testing.T) {
	rec := &recorder{}
	mod := &stubModule{
		name: "static",
		produce: func(string) []items.Item {
			return []items.Item{openItem(t, rec, "x", "https://x.example")}
		},
	}
	s := newSession(t, rec, mod)

	set := s.Query(context.Background(), "x")
	s.Dismiss()

	assert.Nil(t, s.Current())
	assert.True(t, set.Released())
	assert.ErrorIs(t, s.Activate(context.Background(), set.Ref(0)), ErrStaleResult)
	assert.Empty(t, rec.snapshot())
}

func TestActivate_BadIndices(t *testing.T) {
	rec := &recorder{}
	mod := &stubModule{
		name: "static",
		produce: func(string) []items.Item {
			return []items.Item{openItem(t, rec, "x", "https://x.example")}
		},
	}
	s := newSession(t, rec, mod)
	set := s.Query(context.Background(), "x")

	assert.ErrorIs(t, s.Activate(context.Background(), set.Ref(5)), ErrNoSuchItem)
	assert.ErrorIs(t, s.Activate(context.Background(), set.Ref(-2)), ErrNoSuchItem)
	assert.ErrorIs(t, s.Activate(context.Background(), set.ChildRef(0, 0)), ErrNoSuchItem)
	assert.Empty(t, rec.snapshot())
}

func TestActivate_ChildOfGroup(t *testing.T) {
	rec := &recorder{}
	mod := &stubModule{
		name: "groups",
		produce: func(string) []items.Item {
			primary, err := actions.NewOpenURL("https://primary.example", rec)
			require.NoError(t, err)
			g, err := items.NewGroup().
				Name("group").
				Action(primary).
				Children(func() []items.Item {
					return []items.Item{
						openItem(t, rec, "first", "https://child.example/1"),
						openItem(t, rec, "second", "https://child.example/2"),
					}
				}).
				Build()
			require.NoError(t, err)
			return []items.Item{g}
		},
	}
	s := newSession(t, rec, mod)
	set := s.Query(context.Background(), "g")

	require.NoError(t, s.Activate(context.Background(), set.ChildRef(0, 1)))
	assert.Equal(t, []string{"open:https://child.example/2", "hide"}, rec.snapshot())
}

func TestActivate_SiblingsAreIndependent(t *testing.T) {
	rec := &recorder{}
	mod := &stubModule{
		name: "static",
		produce: func(string) []items.Item {
			return []items.Item{
				openItem(t, rec, "a", "https://a.example"),
				openItem(t, rec, "b", "https://b.example"),
			}
		},
	}
	s := newSession(t, rec, mod)
	set := s.Query(context.Background(), "x")

	require.NoError(t, s.Activate(context.Background(), set.Ref(0)))
	require.NoError(t, s.Activate(context.Background(), set.Ref(1)))
	require.NoError(t, s.Activate(context.Background(), set.Ref(0)))

	assert.Equal(t, []string{
		"open:https://a.example", "hide",
		"open:https://b.example", "hide",
		"open:https://a.example", "hide",
	}, rec.snapshot())
	assert.Equal(t, "b", set.Entries()[1].Item.Name())
}

func TestRegistry_RejectsDuplicates(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(&stubModule{name: "one"}))
	err := reg.Register(&stubModule{name: "one"})
	assert.ErrorIs(t, err, ErrDuplicateModule)
	assert.Len(t, reg.Modules(), 1)
}

func TestActivate_WithoutWindow(t *testing.T) {
	rec := &recorder{}
	mod := &stubModule{
		name: "static",
		produce: func(string) []items.Item {
			return []items.Item{openItem(t, rec, "x", "https://x.example")}
		},
	}
	reg := NewRegistry()
	require.NoError(t, reg.Register(mod))
	s := New(reg)

	set := s.Query(context.Background(), "x")
	require.NoError(t, s.Activate(context.Background(), set.Ref(0)))
	assert.Equal(t, []string{"open:https://x.example"}, rec.snapshot())
}

// gatedModule blocks queries equal to hold until open is closed.
type gatedModule struct {
	hold    string
	started chan struct{}
	open    chan struct{}
	opener  actions.Opener
	t       *testing.T
}

func (m *gatedModule) Name() string                 { return "gated" }
func (m *gatedModule) Enabled() bool                { return true }
func (m *gatedModule) DefaultIconPath() string      { return "" }
func (m *gatedModule) Ownership() modules.Ownership { return modules.OwnershipFresh }

func (m *gatedModule) ProcessQuery(ctx context.Context, query string) ([]items.Item, error) {
	if query == m.hold {
		close(m.started)
		select {
		case <-m.open:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return []items.Item{openItem(m.t, m.opener, query, "https://example.com/"+query)}, nil
}

func newGated(t *testing.T, rec *recorder) *gatedModule {
	return &gatedModule{
		hold:    "old",
		started: make(chan struct{}),
		open:    make(chan struct{}),
		opener:  rec,
		t:       t,
	}
}

func TestQuery_SlowerOlderQueryDoesNotReplaceNewer(t *testing.T) {
	rec := &recorder{}
	mod := newGated(t, rec)
	s := newSession(t, rec, mod)

	oldDone := make(chan *ResultSet, 1)
	go func() { oldDone <- s.Query(context.Background(), "old") }()
	<-mod.started

	newer := s.Query(context.Background(), "new")
	close(mod.open)
	older := <-oldDone

	require.Same(t, newer, s.Current())
	assert.Equal(t, "new", s.Current().Query())
	assert.False(t, newer.Released())
	assert.True(t, older.Released())

	require.NoError(t, s.Activate(context.Background(), newer.Ref(0)))
	assert.Equal(t, []string{"open:https://example.com/new", "hide"}, rec.snapshot())
	assert.ErrorIs(t, s.Activate(context.Background(), older.Ref(0)), ErrStaleResult)
}

func TestQuery_InFlightQueryDroppedAfterDismiss(t *testing.T) {
	rec := &recorder{}
	mod := newGated(t, rec)
	s := newSession(t, rec, mod)

	done := make(chan *ResultSet, 1)
	go func() { done <- s.Query(context.Background(), "old") }()
	<-mod.started

	s.Dismiss()
	close(mod.open)
	late := <-done

	assert.Nil(t, s.Current())
	assert.True(t, late.Released())

	next := s.Query(context.Background(), "next")
	assert.Same(t, next, s.Current())
}

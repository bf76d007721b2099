package items

import (
	"context"
	"strings"

	"resultflow/actions"
)

// ChildrenFunc produces the children of a Group on every access. It must
// build fresh items each time so every child owns its own action.
type ChildrenFunc func() []Item

// Group is a composite item: it has a primary action of its own and exposes
// lazily computed children, typically alternative actions on the same thing.
type Group struct {
	name     string
	info     string
	icon     Icon
	action   actions.Action
	children ChildrenFunc
}

func (g *Group) Name() string { return g.name }
func (g *Group) Info() string { return g.info }
func (g *Group) Icon() Icon   { return g.icon }

// Activate fails with ErrNoAction for a Group that did not come from its builder.
func (g *Group) Activate(ctx context.Context) error {
	if g.action == nil {
		return ErrNoAction
	}
	return g.action.Activate(ctx)
}

// Children never caches; nil entries returned by the producer are dropped.
func (g *Group) Children() []Item {
	if g.children == nil {
		return nil
	}
	produced := g.children()
	var out []Item
	for _, child := range produced {
		if child != nil {
			out = append(out, child)
		}
	}
	return out
}

// HasChildren evaluates the children so the answer cannot go stale.
func (g *Group) HasChildren() bool {
	return len(g.Children()) > 0
}

type GroupBuilder struct {
	name     string
	info     string
	icon     Icon
	action   actions.Action
	children ChildrenFunc
	built    bool
}

func NewGroup() *GroupBuilder {
	return &GroupBuilder{}
}

func (b *GroupBuilder) Name(name string) *GroupBuilder {
	b.name = name
	return b
}

func (b *GroupBuilder) Info(info string) *GroupBuilder {
	b.info = info
	return b
}

func (b *GroupBuilder) Icon(icon Icon) *GroupBuilder {
	b.icon = icon
	return b
}

func (b *GroupBuilder) Action(action actions.Action) *GroupBuilder {
	b.action = action
	return b
}

func (b *GroupBuilder) Children(fn ChildrenFunc) *GroupBuilder {
	b.children = fn
	return b
}

func (b *GroupBuilder) Build() (*Group, error) {
	if b.built {
		return nil, ErrBuilderUsed
	}
	if strings.TrimSpace(b.name) == "" {
		return nil, ErrNoName
	}
	if b.action == nil {
		return nil, ErrNoAction
	}

	g := &Group{
		name:     b.name,
		info:     b.info,
		icon:     b.icon,
		action:   b.action,
		children: b.children,
	}
	b.built = true
	b.action = nil
	return g, nil
}

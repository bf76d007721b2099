package items

import (
	"context"
	"strings"

	"resultflow/actions"
)

// Standard is a leaf composed purely from stored fields and one owned action.
type Standard struct {
	Leaf

	name   string
	info   string
	icon   Icon
	action actions.Action
}

func (s *Standard) Name() string { return s.name }
func (s *Standard) Info() string { return s.info }
func (s *Standard) Icon() Icon   { return s.icon }

// Activate fails with ErrNoAction for a Standard that did not come from its builder.
func (s *Standard) Activate(ctx context.Context) error {
	if s.action == nil {
		return ErrNoAction
	}
	return s.action.Activate(ctx)
}

// StandardBuilder collects the fields of a Standard item. It builds at most
// once; the action moves into the built item.
type StandardBuilder struct {
	name   string
	info   string
	icon   Icon
	action actions.Action
	built  bool
}

func NewStandard() *StandardBuilder {
	return &StandardBuilder{}
}

func (b *StandardBuilder) Name(name string) *StandardBuilder {
	b.name = name
	return b
}

func (b *StandardBuilder) Info(info string) *StandardBuilder {
	b.info = info
	return b
}

func (b *StandardBuilder) Icon(icon Icon) *StandardBuilder {
	b.icon = icon
	return b
}

func (b *StandardBuilder) Action(action actions.Action) *StandardBuilder {
	b.action = action
	return b
}

func (b *StandardBuilder) Build() (*Standard, error) {
	if b.built {
		return nil, ErrBuilderUsed
	}
	if strings.TrimSpace(b.name) == "" {
		return nil, ErrNoName
	}
	if b.action == nil {
		return nil, ErrNoAction
	}

	s := &Standard{
		name:   b.name,
		info:   b.info,
		icon:   b.icon,
		action: b.action,
	}
	b.built = true
	b.action = nil
	return s, nil
}

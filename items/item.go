// Package items defines what a result list can show and activate.
//
// An Item is immutable once built: accessors may be called from a rendering
// goroutine while the owning session still holds the item. Activation runs
// only the item's domain effect. Hiding the launcher is the caller's job.
package items

import (
	"errors"
	"strings"

	"resultflow/actions"
)

var (
	ErrNoAction    = errors.New("item has no action")
	ErrNoName      = errors.New("item has no name")
	ErrBuilderUsed = errors.New("builder already built an item")
)

// Icon is a handle to a visual resource. Resolution into something
// renderable belongs to the host.
type Icon struct {
	Path string
}

func (i Icon) IsZero() bool {
	return strings.TrimSpace(i.Path) == ""
}

// Item is a displayable, activatable unit of a result list. HasChildren
// reports true exactly when Children returns a non-empty slice.
type Item interface {
	actions.Action

	Name() string
	Info() string
	Icon() Icon
	HasChildren() bool
	Children() []Item
}

// Leaf is embedded by items that can never have children.
type Leaf struct{}

func (Leaf) HasChildren() bool { return false }
func (Leaf) Children() []Item  { return nil }

// ActionOf returns the action an item owns, for items built in this package.
func ActionOf(it Item) (actions.Action, bool) {
	switch v := it.(type) {
	case *Standard:
		return v.action, true
	case *Group:
		return v.action, true
	default:
		return nil, false
	}
}

// Package actions holds the effects a result item performs when it is chosen.
// Every action carries only its own parameters and the collaborator that
// performs the I/O; nothing here keeps global state.
package actions

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrNoCollaborator = errors.New("action has no collaborator")
	ErrEmptyURL       = errors.New("url is empty")
	ErrInvalidURL     = errors.New("url is not absolute")
	ErrEmptyCommand   = errors.New("command line is empty")
)

// Kind identifies the concrete action variant.
type Kind int

const (
	KindOpenURL Kind = iota + 1
	KindRunCommand
	KindCopyToClipboard
)

func (k Kind) String() string {
	switch k {
	case KindOpenURL:
		return "open_url"
	case KindRunCommand:
		return "run_command"
	case KindCopyToClipboard:
		return "copy_to_clipboard"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Action is a unit of effect. Activate dispatches exactly one external effect
// and reports a dispatch failure as an *EffectError instead of panicking.
type Action interface {
	Activate(ctx context.Context) error
}

// Descriptor is implemented by every action in this package so hosts can
// describe an action without switching on its concrete type.
type Descriptor interface {
	Kind() Kind
	Target() string
}

// Opener dispatches a URL to the system resource opener.
type Opener interface {
	OpenURL(rawURL string) error
}

// Launcher spawns a command line without waiting for it.
type Launcher interface {
	SpawnDetached(commandLine string) error
}

// Clipboard replaces the system clipboard contents.
type Clipboard interface {
	SetText(text string) error
}

// Effects bundles the collaborators providers hand to the actions they build.
type Effects struct {
	Opener    Opener
	Launcher  Launcher
	Clipboard Clipboard
}

// Describe returns the kind and target of a, or ok=false for actions defined
// outside this package that do not implement Descriptor.
func Describe(a Action) (kind Kind, target string, ok bool) {
	d, ok := a.(Descriptor)
	if !ok {
		return 0, "", false
	}
	return d.Kind(), d.Target(), true
}

package actions

import "context"

// CopyToClipboard replaces the clipboard contents with a fixed text. Empty
// text is a legal write and clears the clipboard.
type CopyToClipboard struct {
	text      string
	clipboard Clipboard
}

// NewCopyToClipboard rejects a nil clipboard. A typed nil clipboard only
// fails on Activate.
func NewCopyToClipboard(text string, clipboard Clipboard) (*CopyToClipboard, error) {
	if clipboard == nil {
		return nil, ErrNoCollaborator
	}
	return &CopyToClipboard{text: text, clipboard: clipboard}, nil
}

func (a *CopyToClipboard) Text() string   { return a.text }
func (a *CopyToClipboard) Kind() Kind     { return KindCopyToClipboard }
func (a *CopyToClipboard) Target() string { return a.text }

func (a *CopyToClipboard) Activate(ctx context.Context) error {
	return dispatch(ctx, KindCopyToClipboard, a.text, func() error {
		return a.clipboard.SetText(a.text)
	})
}

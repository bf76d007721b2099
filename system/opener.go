// Package system implements the launcher's collaborators on top of the
// desktop: URL opener, detached process launcher, clipboard, icon lookup and
// window adapters.
package system

import (
	"io"

	"github.com/pkg/browser"
)

// BrowserOpener hands URLs to the desktop's default handler.
type BrowserOpener struct{}

// NewBrowserOpener silences the opener subprocess; its output is not ours.
func NewBrowserOpener() *BrowserOpener {
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard
	return &BrowserOpener{}
}

func (o *BrowserOpener) OpenURL(rawURL string) error {
	return browser.OpenURL(rawURL)
}

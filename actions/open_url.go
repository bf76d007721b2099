package actions

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// OpenURL hands a URL to the system resource opener.
type OpenURL struct {
	url    string
	opener Opener
}

// NewOpenURL validates rawURL up front so a malformed URL never reaches the
// opener at activation time. A nil opener is rejected; a typed nil pointer
// wrapped in the interface is not detected here and surfaces as an
// *EffectError on Activate.
func NewOpenURL(rawURL string, opener Opener) (*OpenURL, error) {
	if opener == nil {
		return nil, ErrNoCollaborator
	}
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, ErrEmptyURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing %q: %w", rawURL, err)
	}
	if !u.IsAbs() {
		return nil, fmt.Errorf("%q: %w", rawURL, ErrInvalidURL)
	}
	return &OpenURL{url: rawURL, opener: opener}, nil
}

func (a *OpenURL) URL() string    { return a.url }
func (a *OpenURL) Kind() Kind     { return KindOpenURL }
func (a *OpenURL) Target() string { return a.url }

func (a *OpenURL) Activate(ctx context.Context) error {
	return dispatch(ctx, KindOpenURL, a.url, func() error {
		return a.opener.OpenURL(a.url)
	})
}

package websearch

import (
	"fmt"
	"net/url"
	"strings"

	"resultflow/modules"
)

// Placeholder marks where the escaped search term goes in a URL template.
const Placeholder = "%s"

// Engine is one search engine reachable through a trigger prefix.
type Engine struct {
	Name     string
	Trigger  string
	URL      string
	IconPath string
	Enabled  bool
}

// DefaultEngines mirrors the engine list a fresh installation starts with.
func DefaultEngines() []Engine {
	return []Engine{
		{Name: "Google", Trigger: "gg ", URL: "https://www.google.com/search?q=%s", Enabled: true},
		{Name: "DuckDuckGo", Trigger: "dd ", URL: "https://duckduckgo.com/?q=%s", Enabled: true},
		{Name: "Wikipedia", Trigger: "wiki ", URL: "https://en.wikipedia.org/wiki/Special:Search?search=%s", Enabled: true},
		{Name: "YouTube", Trigger: "yt ", URL: "https://www.youtube.com/results?search_query=%s", Enabled: true},
		{Name: "GitHub", Trigger: "gh ", URL: "https://github.com/search?q=%s", Enabled: true},
		{Name: "Go Packages", Trigger: "pkg ", URL: "https://pkg.go.dev/search?q=%s", Enabled: true},
	}
}

// EscapeTerm escapes user text for any position in a URL. Spaces become %20
// and every reserved character is percent-encoded.
func EscapeTerm(term string) string {
	return strings.ReplaceAll(url.QueryEscape(term), "+", "%20")
}

// ResolveURL substitutes the escaped term into every placeholder of template.
func ResolveURL(template, term string) string {
	return strings.ReplaceAll(template, Placeholder, EscapeTerm(term))
}

// match returns the search term for query, or ok=false when the engine's
// trigger does not apply or nothing follows it.
func (e Engine) match(query string) (term string, ok bool) {
	if !strings.HasPrefix(query, e.Trigger) {
		return "", false
	}
	term = strings.TrimSpace(query[len(e.Trigger):])
	return term, term != ""
}

func (e Engine) validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return &modules.ConfigError{Module: moduleName, Field: "name", Value: e.Name, Reason: "must not be empty"}
	}
	if strings.TrimSpace(e.Trigger) == "" {
		return &modules.ConfigError{Module: moduleName, Field: e.Name + ".trigger", Value: e.Trigger, Reason: "must not be empty"}
	}
	if !strings.Contains(e.URL, Placeholder) {
		return &modules.ConfigError{Module: moduleName, Field: e.Name + ".url", Value: e.URL, Reason: fmt.Sprintf("must contain %s", Placeholder)}
	}

	u, err := url.Parse(ResolveURL(e.URL, "probe"))
	if err != nil {
		return &modules.ConfigError{Module: moduleName, Field: e.Name + ".url", Value: e.URL, Reason: err.Error()}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return &modules.ConfigError{Module: moduleName, Field: e.Name + ".url", Value: e.URL, Reason: "scheme must be http or https"}
	}
	if u.Host == "" {
		return &modules.ConfigError{Module: moduleName, Field: e.Name + ".url", Value: e.URL, Reason: "missing host"}
	}
	return nil
}

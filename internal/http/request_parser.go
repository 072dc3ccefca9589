package http

import (
	"net/url"
	"strings"
	"unicode/utf8"
)

// maxQueryLen bounds free-text search terms.
const maxQueryLen = 100

// ListParams are the query parameters shared by the list partial and the
// CSV export.
type ListParams struct {
	Status   string
	Query    string
	Selected string
}

func ParseListParams(q url.Values) ListParams {
	return ListParams{
		Status:   sanitizeInput(q.Get("status")),
		Query:    truncate(stripControl(q.Get("q")), maxQueryLen),
		Selected: sanitizeInput(q.Get("selected")),
	}
}

// Encode renders the params back into a query string, omitting empty ones.
func (p ListParams) Encode() string {
	v := url.Values{}
	if p.Status != "" {
		v.Set("status", p.Status)
	}
	if p.Query != "" {
		v.Set("q", p.Query)
	}
	return v.Encode()
}

// sanitizeInput strips control characters and surrounding whitespace.
func sanitizeInput(s string) string {
	return strings.TrimSpace(stripControl(s))
}

// stripControl drops control characters other than tab and newline. The
// search term keeps its spaces since they take part in matching.
func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' {
			return -1
		}
		return r
	}, s)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

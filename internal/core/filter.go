package core

import (
	"fmt"
	"strings"
)

// StatusFilter selects projects by status; FilterAll keeps every status.
type StatusFilter string

const FilterAll StatusFilter = "todas"

// ParseStatusFilter maps the query value to a filter. "", "all" and "todas"
// mean no status restriction.
func ParseStatusFilter(s string) (StatusFilter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all", string(FilterAll):
		return FilterAll, nil
	}
	st, err := ParseProjectStatus(s)
	if err != nil {
		return "", fmt.Errorf("status filter: %w", err)
	}
	return StatusFilter(st), nil
}

func (f StatusFilter) matches(s ProjectStatus) bool {
	return f == FilterAll || f == "" || ProjectStatus(f) == s
}

// FilterProjects keeps the projects whose status matches the filter and
// whose name, responsible or client contains term, case-insensitively.
// Only an empty term matches every project; whitespace is matched literally.
// Input order is preserved and the input slice is never modified.
func FilterProjects(projects []Project, filter StatusFilter, term string) []Project {
	needle := strings.ToLower(term)
	out := make([]Project, 0, len(projects))
	for _, p := range projects {
		if !filter.matches(p.Status) {
			continue
		}
		if needle != "" && !containsFold(p, needle) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func containsFold(p Project, needle string) bool {
	return strings.Contains(strings.ToLower(p.Name), needle) ||
		strings.Contains(strings.ToLower(p.Responsible), needle) ||
		strings.Contains(strings.ToLower(p.Client), needle)
}

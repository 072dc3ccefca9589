package report

import "strings"

// Wrap splits text into lines no wider than max, breaking only on
// whitespace. A word wider than max is kept whole on its own line.
// Newlines start a new paragraph; an empty paragraph yields an empty line.
func Wrap(m Measurer, text string, f Font, max float64) []string {
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		line := words[0]
		for _, w := range words[1:] {
			candidate := line + " " + w
			if m.Width(candidate, f) <= max {
				line = candidate
				continue
			}
			lines = append(lines, line)
			line = w
		}
		lines = append(lines, line)
	}
	return lines
}

// Package canon implements text canonicalization and stable JSON
// serialization, the two pure, total primitives every downstream stage of
// the audit pipeline builds on.
package canon

import "strings"

// Text normalizes line endings to LF, strips trailing horizontal whitespace
// from every line, and trims trailing whitespace from the whole string. It
// is pure, total, and idempotent: Text(Text(x)) == Text(x).
func Text(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t\f\v")
	}
	s = strings.Join(lines, "\n")

	return strings.TrimRight(s, " \t\n\f\v")
}

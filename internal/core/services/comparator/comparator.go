// Package comparator decides whether a program's output matches the expected answer.
package comparator

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	spaceRun   = regexp.MustCompile(`\s+`)
	newlineRun = regexp.MustCompile(`\n+`)
)

// Normalize trims, collapses whitespace and newline runs, and lowercases.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	s = spaceRun.ReplaceAllString(s, " ")
	s = newlineRun.ReplaceAllString(s, "\n")
	return strings.ToLower(s)
}

// Matches applies, in order: exact match after normalization, numeric
// equality, then elementwise comparison of bracketed lists.
func Matches(actual, expected string) bool {
	a := Normalize(actual)
	e := Normalize(expected)

	if a == e {
		return true
	}

	if af, ok := parseNumber(a); ok {
		if ef, ok := parseNumber(e); ok {
			return af == ef
		}
	}

	if isBracketed(a) && isBracketed(e) {
		return equalElements(splitList(a), splitList(e))
	}

	return false
}

func parseNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

func isBracketed(s string) bool {
	return len(s) >= 2 && strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]")
}

// splitList splits the bracket body on commas that are not nested in
// brackets or parentheses. Empty elements are dropped.
func splitList(s string) []string {
	body := s[1 : len(s)-1]
	var (
		out   []string
		depth int
		start int
	)
	add := func(part string) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	for i, r := range body {
		switch r {
		case '[', '(', '{':
			depth++
		case ']', ')', '}':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				add(body[start:i])
				start = i + 1
			}
		}
	}
	add(body[start:])
	return out
}

func equalElements(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

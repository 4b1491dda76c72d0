package comparator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatches(t *testing.T) {
	tests := []struct {
		name     string
		actual   string
		expected string
		want     bool
	}{
		{"exact", "hello", "hello", true},
		{"surrounding whitespace", "  3\n", "3", true},
		{"case insensitive", "True", "true", true},
		{"inner whitespace runs", "a   b\t c", "a b c", true},
		{"numeric equivalence", "5", "5.0", true},
		{"numeric difference", "5", "6", false},
		{"numeric exponent", "1e3", "1000", true},
		{"list spacing", "[1, 2]", "[1,2]", true},
		{"list arity mismatch", "[1,2]", "[1,2,3]", false},
		{"list element mismatch", "[1,2]", "[1,3]", false},
		{"list trailing comma", "[1,2,]", "[1, 2]", true},
		{"empty lists", "[]", "[ ]", true},
		{"nested tuples", "[(1, 2), (2, 3)]", "[(1, 2),(2, 3)]", true},
		{"nested list count", "[[1, 2], [3]]", "[[1, 2],[3]]", true},
		{"nested elements are textual", "[(1,2)]", "[(1, 2)]", false},
		{"list vs scalar", "[1]", "1", false},
		{"plain mismatch", "foo", "bar", false},
		{"null", "null", "None", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Matches(tt.actual, tt.expected))
		})
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "a b", Normalize("  A\n\n\nB  "))
	assert.Equal(t, "", Normalize(" \t\n "))
}

func TestMatchesIgnoresInfinity(t *testing.T) {
	assert.False(t, Matches("inf", "1e400"))
}

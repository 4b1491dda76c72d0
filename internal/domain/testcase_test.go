package domain

import (
	"bytes"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewTestCaseIDIsOrdered(t *testing.T) {
	prev := NewTestCaseID()
	for i := 0; i < 1000; i++ {
		next := NewTestCaseID()
		assert.Negative(t, bytes.Compare(prev[:], next[:]))
		assert.Less(t, prev.String(), next.String())
		prev = next
	}
}

func TestRunsBeforeBreaksTimestampTies(t *testing.T) {
	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	var created []*TestCase
	for _, in := range []string{"a", "b", "c", "d"} {
		tc := NewTestCase("p1", in, "x", false, false)
		tc.CreatedAt = at
		created = append(created, tc)
	}
	quick := NewTestCase("p1", "q", "x", false, true)
	quick.CreatedAt = at.Add(time.Hour)

	shuffled := []*TestCase{created[2], created[0], quick, created[3], created[1]}
	sort.Slice(shuffled, func(i, j int) bool { return shuffled[i].RunsBefore(shuffled[j]) })

	var order []string
	for _, tc := range shuffled {
		order = append(order, tc.Input)
	}
	assert.Equal(t, []string{"q", "a", "b", "c", "d"}, order)
}

func TestRedactedHidesHiddenCases(t *testing.T) {
	hidden := NewTestCase("p1", "secret", "answer", true, false).Redacted()
	assert.Empty(t, hidden.Input)
	assert.Empty(t, hidden.ExpectedOutput)

	visible := NewTestCase("p1", "1", "2", false, false).Redacted()
	assert.Equal(t, "1", visible.Input)
}

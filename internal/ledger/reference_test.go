package ledger

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewReference(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	ref := newReferenceAt(now)

	assert.True(t, strings.HasPrefix(ref, "1700000000123"), ref)
	assert.Len(t, ref, len("1700000000123")+referenceSuffixLen)

	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		r := NewReference()
		assert.False(t, seen[r], "duplicate reference %s", r)
		seen[r] = true
	}
}

func TestReversalReference(t *testing.T) {
	assert.Equal(t, "123ABCDE-reversal", ReversalReference("123ABCDE"))
}

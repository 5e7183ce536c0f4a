package ledger

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const referenceSuffixLen = 8

// NewReference generates the user-facing transaction reference: the current
// time in milliseconds followed by a short random suffix.
func NewReference() string {
	return newReferenceAt(time.Now())
}

func newReferenceAt(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))[:referenceSuffixLen]
	return strconv.FormatInt(now.UnixMilli(), 10) + suffix
}

// ReversalReference names the snapshot that refunds a failed withdrawal.
func ReversalReference(reference string) string {
	return reference + "-reversal"
}

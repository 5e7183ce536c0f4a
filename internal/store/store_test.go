package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentinelErrorsAreDistinct(t *testing.T) {
	sentinels := []error{
		ErrNotFound,
		ErrSnapshotConflict,
		ErrTransactionNotPending,
		ErrDuplicate,
		ErrStorage,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j {
				assert.False(t, errors.Is(a, b), "%v should not match %v", a, b)
			}
		}
	}
}

func TestSentinelErrorsSurviveWrapping(t *testing.T) {
	err := fmt.Errorf("%w: unable to update balance: %w", ErrStorage, errors.New("disk I/O error"))
	assert.ErrorIs(t, err, ErrStorage)
	assert.NotErrorIs(t, err, ErrSnapshotConflict)
}

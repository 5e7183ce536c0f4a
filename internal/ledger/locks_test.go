package ledger

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUserLocks_SerializesSameUser(t *testing.T) {
	var locks UserLocks
	var mu sync.Mutex
	inside := 0
	maxInside := 0

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock("user1")
			defer unlock()

			mu.Lock()
			inside++
			if inside > maxInside {
				maxInside = inside
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inside--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxInside)
}

func TestUserLocks_DifferentUsersDoNotBlock(t *testing.T) {
	var locks UserLocks
	unlockA := locks.Lock("alice")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlockB := locks.Lock("bob")
		unlockB()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock for bob blocked on alice")
	}
}

func TestUserLocks_ReleasedEntriesAreEvicted(t *testing.T) {
	var locks UserLocks

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			unlock := locks.Lock(fmt.Sprintf("user%d", i%5))
			time.Sleep(time.Millisecond)
			unlock()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 0, locks.size())

	unlock := locks.Lock("alice")
	assert.Equal(t, 1, locks.size())
	unlock()
	assert.Equal(t, 0, locks.size())
}

package ledger

import "sync"

// UserLocks serializes balance work per user inside one process. Different
// users never contend. Cross-process safety comes from the store's
// compare-and-swap on the active snapshot.
//
// An entry lives only while someone holds or waits for it, so the table stays
// as small as the number of users with work in flight.
type UserLocks struct {
	mu    sync.Mutex
	locks map[string]*userLock
}

type userLock struct {
	sync.Mutex
	refs int
}

// Lock acquires the user's lock and returns the matching unlock func.
func (l *UserLocks) Lock(userId string) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[string]*userLock)
	}
	ul, ok := l.locks[userId]
	if !ok {
		ul = &userLock{}
		l.locks[userId] = ul
	}
	ul.refs++
	l.mu.Unlock()

	ul.Lock()
	return func() {
		ul.Unlock()

		l.mu.Lock()
		ul.refs--
		if ul.refs == 0 {
			delete(l.locks, userId)
		}
		l.mu.Unlock()
	}
}

func (l *UserLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

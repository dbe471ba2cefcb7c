package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	UsersRegistered     uint64
	LoginsSucceeded     uint64
	LoginsFailed        uint64
	RefreshesSucceeded  uint64
	RefreshesFailed     uint64
	AvatarsUploaded     uint64
	AuthDurationCount   uint64
	AuthDurationTotalNs int64
	ContactsCreated     uint64
	ContactsUpdated     uint64
	ContactsDeleted     uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	usersRegistered     uint64
	loginsSucceeded     uint64
	loginsFailed        uint64
	refreshesSucceeded  uint64
	refreshesFailed     uint64
	avatarsUploaded     uint64
	authDurationCount   uint64
	authDurationTotalNs int64
	contactsCreated     uint64
	contactsUpdated     uint64
	contactsDeleted     uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		UsersRegistered:     atomic.LoadUint64(&m.usersRegistered),
		LoginsSucceeded:     atomic.LoadUint64(&m.loginsSucceeded),
		LoginsFailed:        atomic.LoadUint64(&m.loginsFailed),
		RefreshesSucceeded:  atomic.LoadUint64(&m.refreshesSucceeded),
		RefreshesFailed:     atomic.LoadUint64(&m.refreshesFailed),
		AvatarsUploaded:     atomic.LoadUint64(&m.avatarsUploaded),
		AuthDurationCount:   atomic.LoadUint64(&m.authDurationCount),
		AuthDurationTotalNs: atomic.LoadInt64(&m.authDurationTotalNs),
		ContactsCreated:     atomic.LoadUint64(&m.contactsCreated),
		ContactsUpdated:     atomic.LoadUint64(&m.contactsUpdated),
		ContactsDeleted:     atomic.LoadUint64(&m.contactsDeleted),
	}
}

// IncUserRegistered increments the registration counter.
func (m *InMemoryRecorder) IncUserRegistered() {
	atomic.AddUint64(&m.usersRegistered, 1)
}

// IncLoginAttempt increments the login counter for the given status.
func (m *InMemoryRecorder) IncLoginAttempt(status string) {
	if status == "success" {
		atomic.AddUint64(&m.loginsSucceeded, 1)
		return
	}
	atomic.AddUint64(&m.loginsFailed, 1)
}

// IncTokenRefreshed increments the refresh counter for the given status.
func (m *InMemoryRecorder) IncTokenRefreshed(status string) {
	if status == "success" {
		atomic.AddUint64(&m.refreshesSucceeded, 1)
		return
	}
	atomic.AddUint64(&m.refreshesFailed, 1)
}

// IncAvatarUploaded increments the avatar upload counter.
func (m *InMemoryRecorder) IncAvatarUploaded() {
	atomic.AddUint64(&m.avatarsUploaded, 1)
}

// ObserveAuthDuration records how long an auth operation took.
func (m *InMemoryRecorder) ObserveAuthDuration(duration time.Duration) {
	atomic.AddUint64(&m.authDurationCount, 1)
	atomic.AddInt64(&m.authDurationTotalNs, duration.Nanoseconds())
}

// IncContactCreated increments the contact created counter.
func (m *InMemoryRecorder) IncContactCreated() {
	atomic.AddUint64(&m.contactsCreated, 1)
}

// IncContactUpdated increments the contact updated counter.
func (m *InMemoryRecorder) IncContactUpdated() {
	atomic.AddUint64(&m.contactsUpdated, 1)
}

// IncContactDeleted increments the contact deleted counter.
func (m *InMemoryRecorder) IncContactDeleted() {
	atomic.AddUint64(&m.contactsDeleted, 1)
}

// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Auth metrics
	IncUserRegistered()
	IncLoginAttempt(status string) // status: "success" or "failed"
	IncTokenRefreshed(status string)
	IncAvatarUploaded()
	ObserveAuthDuration(duration time.Duration)

	// Contact management metrics
	IncContactCreated()
	IncContactUpdated()
	IncContactDeleted()
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}

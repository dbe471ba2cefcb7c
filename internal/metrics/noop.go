package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncUserRegistered is a no-op.
func (n *NoopRecorder) IncUserRegistered() {}

// IncLoginAttempt is a no-op.
func (n *NoopRecorder) IncLoginAttempt(status string) {}

// IncTokenRefreshed is a no-op.
func (n *NoopRecorder) IncTokenRefreshed(status string) {}

// IncAvatarUploaded is a no-op.
func (n *NoopRecorder) IncAvatarUploaded() {}

// ObserveAuthDuration is a no-op.
func (n *NoopRecorder) ObserveAuthDuration(duration time.Duration) {}

// IncContactCreated is a no-op.
func (n *NoopRecorder) IncContactCreated() {}

// IncContactUpdated is a no-op.
func (n *NoopRecorder) IncContactUpdated() {}

// IncContactDeleted is a no-op.
func (n *NoopRecorder) IncContactDeleted() {}

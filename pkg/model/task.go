package model

import (
	"time"
)

// TaskState is the lifecycle state of a submitted task.
type TaskState int

const (
	TaskStateSubmitted TaskState = iota // must be first
	TaskStateAccepted
	TaskStateRunning

	// terminal states
	TaskStateCompleted
	TaskStateFailed
	TaskStateTimedOut
)

func (s TaskState) String() string {
	return [...]string{"Submitted", "Accepted", "Running", "Completed", "Failed", "TimedOut"}[s]
}

// IsTerminal returns true when no further transitions are possible.
func (s TaskState) IsTerminal() bool {
	return s == TaskStateCompleted || s == TaskStateFailed || s == TaskStateTimedOut
}

// CanTransitionTo reports whether the lifecycle allows moving from s to next.
// Terminal states are final.
func (s TaskState) CanTransitionTo(next TaskState) bool {
	if s.IsTerminal() {
		return false
	}
	switch s {
	case TaskStateSubmitted:
		return next == TaskStateAccepted || next == TaskStateFailed
	case TaskStateAccepted:
		return next == TaskStateRunning || next == TaskStateFailed
	case TaskStateRunning:
		return next.IsTerminal()
	}
	return false
}

// TaskRequirements are the resource and timeout constraints a task is
// submitted with. All fields must be positive.
type TaskRequirements struct {
	CPUCores       int `json:"cpu_cores"`
	MemoryMB       int `json:"memory_mb"`
	TimeoutSeconds int `json:"timeout_seconds"`
}

func (r TaskRequirements) Timeout() time.Duration {
	return time.Duration(r.TimeoutSeconds) * time.Second
}

// Task is owned by the dispatcher: created on submission, transitioned until
// terminal, then retained for audit.
type Task struct {
	ID        string `json:"id"`
	ServiceID string `json:"service_id"`
	ClientDID string `json:"client_did"`

	// EscrowID links the escrow opened for this task, empty when the
	// service is free or no escrow was requested.
	EscrowID string `json:"escrow_id,omitempty"`

	Payload      []byte           `json:"payload"`
	Requirements TaskRequirements `json:"requirements"`

	State TaskState `json:"state"`

	// Result holds the provider's output for completed tasks; Error the
	// failure reason for failed or timed-out ones.
	Result []byte `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	StartedAt time.Time `json:"started_at,omitempty"`
	EndedAt   time.Time `json:"ended_at,omitempty"`
}

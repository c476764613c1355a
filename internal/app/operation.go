package app

import (
	"docledger/internal/ids"
)

// Operation status values.
const (
	StatusSuccess  = "success"
	StatusRejected = "rejected"
	StatusError    = "error"
)

// Operation tracks a single CLI invocation. Its ID tags every log line the
// invocation writes.
type Operation struct {
	ID     string
	Name   string
	Status string
}

// NewOperation creates an operation with a fresh ULID and success status.
func NewOperation(name string) *Operation {
	return &Operation{
		ID:     ids.New(),
		Name:   name,
		Status: StatusSuccess,
	}
}

// Observe downgrades the status for a non-200 result. A rejection never
// overrides an earlier error.
func (op *Operation) Observe(code uint) {
	if code != 200 && op.Status == StatusSuccess {
		op.Status = StatusRejected
	}
}

// Fail marks the operation as failed.
func (op *Operation) Fail() {
	op.Status = StatusError
}

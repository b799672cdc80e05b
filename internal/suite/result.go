package suite

import (
	"fmt"
	"time"
)

// Status is the lifecycle state of a result record.
type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Result records the outcome of one case against one (endpoint, interface)
// combination. A record starts pending and is advanced to a terminal status
// exactly once; further transitions are rejected.
type Result struct {
	Name      string    `json:"name"`
	Interface Interface `json:"interface"`
	Endpoint  Endpoint  `json:"endpoint"`
	Status    Status    `json:"status"`

	// Duration spans only the final attempt, not backoff or throttle waits.
	Duration time.Duration `json:"duration"`

	Confidence *float64          `json:"confidence,omitempty"`
	Structures *int              `json:"structures,omitempty"`
	Details    map[string]string `json:"details,omitempty"`

	// Error holds the failure message, or the skip reason for skipped records.
	Error string `json:"error,omitempty"`
}

// NewResult constructs a pending record for the given combination.
func NewResult(name string, iface Interface, ep Endpoint) *Result {
	return &Result{
		Name:      name,
		Interface: iface,
		Endpoint:  ep,
		Status:    StatusPending,
		Details:   map[string]string{},
	}
}

// MarkSuccess advances the record to success, attaching whatever optional
// signals the outcome carried.
func (r *Result) MarkSuccess(elapsed time.Duration, out *Outcome) error {
	if err := r.advance(StatusSuccess); err != nil {
		return err
	}
	r.Duration = elapsed
	if out != nil {
		r.Confidence = out.Confidence
		r.Structures = out.Structures
		for k, v := range out.Details {
			r.Details[k] = v
		}
	}
	return nil
}

// MarkFailed advances the record to failed. Duration is recorded even on
// failure so slow failures stay visible.
func (r *Result) MarkFailed(elapsed time.Duration, message string) error {
	if err := r.advance(StatusFailed); err != nil {
		return err
	}
	r.Duration = elapsed
	r.Error = message
	return nil
}

// MarkSkipped advances the record to skipped without executing anything.
func (r *Result) MarkSkipped(reason string) error {
	if err := r.advance(StatusSkipped); err != nil {
		return err
	}
	r.Error = reason
	return nil
}

// Terminal reports whether the record has reached a final status.
func (r *Result) Terminal() bool {
	return r.Status != StatusPending
}

// Seconds returns the duration as the float seconds the report surfaces.
func (r *Result) Seconds() float64 {
	return r.Duration.Seconds()
}

func (r *Result) advance(to Status) error {
	if r.Status != StatusPending {
		return fmt.Errorf("result %s/%s/%s already %s, cannot advance to %s",
			r.Name, r.Interface, r.Endpoint, r.Status, to)
	}
	r.Status = to
	return nil
}

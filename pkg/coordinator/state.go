package coordinator

import (
	"strings"

	"innovator-portal/pkg/ideas"
	"innovator-portal/pkg/models"
)

// OpKind names a coordinator operation.
type OpKind string

const (
	OpRefresh    OpKind = "refresh"
	OpCreate     OpKind = "create"
	OpUpdate     OpKind = "update"
	OpDelete     OpKind = "delete"
	OpBulkDelete OpKind = "bulk-delete"
)

// OpKey identifies one operation slot. ID is set for per-idea operations.
type OpKey struct {
	Kind OpKind
	ID   string
}

func (k OpKey) String() string {
	if k.ID == "" {
		return string(k.Kind)
	}
	return string(k.Kind) + ":" + k.ID
}

// OpState is the lifecycle of one operation:
// Idle -> Pending -> Succeeded | Failed. A new call re-enters Pending.
type OpState int

const (
	StateIdle OpState = iota
	StatePending
	StateSucceeded
	StateFailed
)

func (s OpState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	}
	return "idle"
}

// BulkResult partitions a bulk delete. Succeeded and Failed keep the order of
// the requested ids; Errors holds the failure for every id in Failed.
type BulkResult struct {
	Succeeded []string
	Failed    []string
	Errors    map[string]error
}

// Attempted is the number of ids a delete was issued for.
func (r BulkResult) Attempted() int { return len(r.Succeeded) + len(r.Failed) }

// State returns the last recorded state for key; unseen keys are Idle.
func (c *Coordinator) State(key OpKey) OpState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.states[key]
}

func (c *Coordinator) setState(key OpKey, s OpState) {
	c.mu.Lock()
	c.states[key] = s
	c.mu.Unlock()
	if c.stateHook != nil {
		c.stateHook(key, s)
	}
}

// validateDraft enforces the submit form's rule: some content is required,
// and status/visibility must be known values when given.
func validateDraft(d models.IdeaDraft) error {
	if !d.HasContent() {
		return &ideas.ValidationError{Message: "an idea needs a title or a description"}
	}
	if d.Status != "" && !d.Status.Valid() {
		return &ideas.ValidationError{Field: "status", Message: "unknown status " + string(d.Status)}
	}
	if d.Visibility != "" && !d.Visibility.Valid() {
		return &ideas.ValidationError{Field: "visibility", Message: "unknown visibility " + string(d.Visibility)}
	}
	return nil
}

func validatePatch(p models.IdeaPatch) error {
	if p.IsEmpty() {
		return &ideas.ValidationError{Message: "nothing to update"}
	}
	if p.Status != nil && !p.Status.Valid() {
		return &ideas.ValidationError{Field: "status", Message: "unknown status " + string(*p.Status)}
	}
	if p.Visibility != nil && !p.Visibility.Valid() {
		return &ideas.ValidationError{Field: "visibility", Message: "unknown visibility " + string(*p.Visibility)}
	}
	if p.Title != nil && p.Description != nil &&
		strings.TrimSpace(*p.Title) == "" && strings.TrimSpace(*p.Description) == "" {
		return &ideas.ValidationError{Message: "an idea needs a title or a description"}
	}
	return nil
}

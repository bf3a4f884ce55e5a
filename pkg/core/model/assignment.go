package model

// AssignmentScope identifies the mutual-exclusion scope of one
// auto-assignment run: one dataset on one canonical work date. Runs for the
// same scope serialize; runs for different scopes proceed independently.
type AssignmentScope struct {
	DatasetID   string
	WorkDateISO string
}

// LockKey is the advisory-lock key for the scope.
func (s AssignmentScope) LockKey() string {
	return s.DatasetID + "|" + s.WorkDateISO
}

// AssignmentDecision is the outcome a store applies atomically: one label
// per in-scope flight plus the per-category summary for the run record.
type AssignmentDecision struct {
	Labels  []FlightLabel
	Summary []CategorySummary
}

// DecideAssignment computes the labels for a run. The store invokes it
// inside the lock-protected transaction with the dataset's flights and
// current category targets; the function must be pure so a retried
// transaction can safely re-invoke it.
type DecideAssignment func(flights []Flight, targets []CategoryTarget) (*AssignmentDecision, error)

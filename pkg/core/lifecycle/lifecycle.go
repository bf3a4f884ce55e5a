// Package lifecycle holds the rules governing a flight's operated flag.
// The operated aspect is a two-state machine: Unoperated is the initial
// state and Operated is terminal. The service-flag aspect is independent
// and re-enterable, so it has no rules here beyond value validity.
package lifecycle

import (
	"fmt"
	"strings"
	"time"

	"github.com/jakechorley/flightguard/pkg/core/model"
)

// Operation is a normalized mark-operated request.
type Operation struct {
	Operator string
	At       time.Time
}

// NewOperation normalizes the operator identity (trimmed, lower-cased) and
// defaults the timestamp to now when the caller did not supply one.
func NewOperation(operator string, at time.Time) (Operation, error) {
	operator = strings.ToLower(strings.TrimSpace(operator))
	if operator == "" {
		return Operation{}, fmt.Errorf("operator identity is required")
	}
	if at.IsZero() {
		at = time.Now().UTC()
	}
	return Operation{Operator: operator, At: at}, nil
}

// ValidateTransition checks a requested change of the operated flag against
// the current state. Marking an already-operated flight again is legal (a
// no-op the caller resolves via the store's conditional update); un-marking
// an operated flight is never legal.
func ValidateTransition(currentOperated, requestedOperated bool) error {
	if currentOperated && !requestedOperated {
		return fmt.Errorf("cannot clear operated flag: %w", model.ErrIllegalTransition)
	}
	return nil
}

// CheckInvariants verifies the operated metadata invariant on a flight:
// provenance fields are set exactly when the flag is set.
func CheckInvariants(f *model.Flight) error {
	if f.Operated {
		if f.OperatedAt == nil || f.OperatedBy == "" {
			return fmt.Errorf("flight %s: operated without provenance", f.ID)
		}
		return nil
	}
	if f.OperatedAt != nil || f.OperatedBy != "" {
		return fmt.Errorf("flight %s: provenance set on unoperated flight", f.ID)
	}
	return nil
}

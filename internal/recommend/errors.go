package recommend

import (
	"fmt"
	"strings"
)

// AddressResolutionError reports a free-form location that could not be
// turned into a coordinate. Suggestions carry user-facing hints; Expanded
// is set when an alias expansion was attempted before the failure. Cause
// holds the upstream error, if any, and stays reachable via errors.As so
// transport failures keep their own status mapping.
type AddressResolutionError struct {
	Input       string
	Expanded    string
	Suggestions []string
	Cause       error
}

func (e *AddressResolutionError) Error() string {
	msg := fmt.Sprintf("could not resolve location %q", e.Input)
	if e.Expanded != "" && e.Expanded != e.Input {
		msg += fmt.Sprintf(" (tried as %q)", e.Expanded)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	if len(e.Suggestions) > 0 {
		msg += ": " + strings.Join(e.Suggestions, "; ")
	}
	return msg
}

func (e *AddressResolutionError) Unwrap() error { return e.Cause }

// InsufficientInputError reports a request with too few locations to
// compute a meeting point.
type InsufficientInputError struct {
	Got  int
	Need int
}

func (e *InsufficientInputError) Error() string {
	return fmt.Sprintf("need at least %d locations, got %d", e.Need, e.Got)
}

// NoVenuesFoundError reports that no venues survived search and fallback.
type NoVenuesFoundError struct {
	Center     string
	Radius     int
	Categories []string
}

func (e *NoVenuesFoundError) Error() string {
	return fmt.Sprintf("no venues found within %dm of %s for %v", e.Radius, e.Center, e.Categories)
}

package analysis

import "fmt"

// ResolutionWarning records a heuristic fallback taken while mapping columns.
type ResolutionWarning struct {
	Role Role
	Msg  string
}

func (w *ResolutionWarning) Error() string {
	return fmt.Sprintf("resolve %s: %s", w.Role, w.Msg)
}

// CoercionWarning records values that could not be read as numbers.
type CoercionWarning struct {
	Role   Role
	Column string
	Count  int
	Msg    string
}

func (w *CoercionWarning) Error() string {
	if w.Column == "" {
		return fmt.Sprintf("coerce %s: %s", w.Role, w.Msg)
	}
	return fmt.Sprintf("coerce %s (%s): %s", w.Role, w.Column, w.Msg)
}

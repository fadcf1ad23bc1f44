package selection

import "fmt"

// Error reports a listing that could not be selected or enriched.
type Error struct {
	JobID   string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.JobID != "" {
		msg = fmt.Sprintf("%s (job %s)", e.Message, e.JobID)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

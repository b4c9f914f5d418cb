package sysbase

// Code classifies primitive failures. The original runtime overloaded -1
// nanoseconds as an error sentinel; here every failure carries an explicit
// code and the underlying OS error.
type Code int

const (
	CodeInvalidArgument Code = iota + 1
	CodeInterrupted
	CodeClockUnavailable
	CodeSchedulerError
	CodeQueryFailed
)

func (c Code) String() string {
	switch c {
	case CodeInvalidArgument:
		return "invalid argument"
	case CodeInterrupted:
		return "interrupted"
	case CodeClockUnavailable:
		return "clock unavailable"
	case CodeSchedulerError:
		return "scheduler error"
	case CodeQueryFailed:
		return "query failed"
	default:
		return "unknown error"
	}
}

// Error is the failure type returned by every System operation. Err holds
// the underlying OS error (an errno on POSIX targets) when there is one.
type Error struct {
	Code Code
	Op   string
	Err  error
}

func (e *Error) Error() string {
	s := e.Code.String()
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same code, so
// errors.Is(err, sysbase.ErrInterrupted) tests the taxonomy regardless of
// operation or cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code && (t.Op == "" || t.Op == e.Op)
}

var (
	ErrInvalidArgument  = &Error{Code: CodeInvalidArgument}
	ErrInterrupted      = &Error{Code: CodeInterrupted}
	ErrClockUnavailable = &Error{Code: CodeClockUnavailable}
	ErrSchedulerError   = &Error{Code: CodeSchedulerError}
	ErrQueryFailed      = &Error{Code: CodeQueryFailed}
)

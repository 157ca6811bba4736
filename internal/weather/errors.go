package weather

import (
	"errors"
	"fmt"
)

// ErrorKind tells fetch failures apart for logging and for the screen's
// error state. Callers do not branch on it for recovery.
type ErrorKind string

const (
	KindNetwork  ErrorKind = "network"  // unreachable, timeout, circuit open
	KindProtocol ErrorKind = "protocol" // non-2xx status
	KindDecode   ErrorKind = "decode"   // malformed body or missing field
)

// ErrFetch matches every *FetchError through errors.Is.
var ErrFetch = errors.New("weather fetch failed")

// FetchError is returned by providers when a query cannot produce a Report.
type FetchError struct {
	Kind ErrorKind
	City string
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch weather for %q: %s error: %v", e.City, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func (e *FetchError) Is(target error) bool {
	return target == ErrFetch
}

// KindOf returns the kind of the first *FetchError in err's chain, or an empty
// kind when there is none.
func KindOf(err error) ErrorKind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}

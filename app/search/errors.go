package search

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/rerootagency/esquery/app/search/index"
	"github.com/rerootagency/esquery/app/search/query"
)

// precondition errors, returned as is and never turned into Result
var (
	ErrConfiguration       = index.ErrInvalid
	ErrNoIndexBound        = errors.New("index was not set")
	ErrInvalidPayload      = query.ErrInvalidPayload
	ErrUnsupportedOperator = query.ErrUnsupportedOperator
)

// TransportError wraps failure of the engine call
type TransportError struct {
	Op    string
	Index string
	Err   error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %q failed: %v", e.Op, e.Index, e.Err)
}

// Unwrap returns transport error
func (e *TransportError) Unwrap() error { return e.Err }

// Cause returns transport error, for pkg/errors.Cause
func (e *TransportError) Cause() error { return e.Err }

// Result of the mutating operation. Err is set on transport failure.
type Result struct {
	Err error
}

// OK reports success
func (r Result) OK() bool { return r.Err == nil }

package flowfilter

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a validation failure.
type ErrorKind int

const (
	MissingIndex ErrorKind = iota + 1
	InvalidIndex
	MissingCondition
	MissingFilterType
	UnknownFilterType
	MissingDestination
	MissingOrder
	UnsupportedAction
	InvalidRange
	DuplicateActionOrder
	DuplicateIndex
	SelfRedirection
	InvalidValue
	InvalidDestination
)

var kindNames = map[ErrorKind]string{
	MissingIndex:         "MissingIndex",
	InvalidIndex:         "InvalidIndex",
	MissingCondition:     "MissingCondition",
	MissingFilterType:    "MissingFilterType",
	UnknownFilterType:    "UnknownFilterType",
	MissingDestination:   "MissingDestination",
	MissingOrder:         "MissingOrder",
	UnsupportedAction:    "UnsupportedAction",
	InvalidRange:         "InvalidRange",
	DuplicateActionOrder: "DuplicateActionOrder",
	DuplicateIndex:       "DuplicateIndex",
	SelfRedirection:      "SelfRedirection",
	InvalidValue:         "InvalidValue",
	InvalidDestination:   "InvalidDestination",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN (%d)", int(k))
}

// Kinds returns every error kind in declaration order.
func Kinds() []ErrorKind {
	kinds := make([]ErrorKind, 0, len(kindNames))
	for k := MissingIndex; k <= InvalidDestination; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// Error is a configuration the caller has to fix and resubmit. Value is
// the offending input when there is one.
type Error struct {
	Kind    ErrorKind
	Message string
	Value   interface{}
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches any *Error of the same kind, so the Err* values below work
// with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrMissingIndex         = &Error{Kind: MissingIndex, Message: "missing index"}
	ErrInvalidIndex         = &Error{Kind: InvalidIndex, Message: "invalid index"}
	ErrMissingCondition     = &Error{Kind: MissingCondition, Message: "missing condition"}
	ErrMissingFilterType    = &Error{Kind: MissingFilterType, Message: "missing filter type"}
	ErrUnknownFilterType    = &Error{Kind: UnknownFilterType, Message: "unknown filter type"}
	ErrMissingDestination   = &Error{Kind: MissingDestination, Message: "missing destination"}
	ErrMissingOrder         = &Error{Kind: MissingOrder, Message: "missing order"}
	ErrUnsupportedAction    = &Error{Kind: UnsupportedAction, Message: "unsupported action"}
	ErrInvalidRange         = &Error{Kind: InvalidRange, Message: "invalid range"}
	ErrDuplicateActionOrder = &Error{Kind: DuplicateActionOrder, Message: "duplicate action order"}
	ErrDuplicateIndex       = &Error{Kind: DuplicateIndex, Message: "duplicate index"}
	ErrSelfRedirection      = &Error{Kind: SelfRedirection, Message: "self redirection"}
	ErrInvalidValue         = &Error{Kind: InvalidValue, Message: "invalid value"}
	ErrInvalidDestination   = &Error{Kind: InvalidDestination, Message: "invalid destination"}
)

func newError(kind ErrorKind, value interface{}, format string, v ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, v...),
		Value:   value,
	}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

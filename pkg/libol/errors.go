package libol

import (
	"github.com/pkg/errors"
)

// NewErr returns an error carrying the call stack where it was created.
func NewErr(format string, v ...interface{}) error {
	return errors.Errorf(format, v...)
}

// Wrap annotates err with a message, nil stays nil.
func Wrap(err error, format string, v ...interface{}) error {
	return errors.Wrapf(err, format, v...)
}

func Cause(err error) error {
	return errors.Cause(err)
}

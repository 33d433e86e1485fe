package errors

import (
	"errors"
	"fmt"
)

var (
	Is  = errors.Is
	As  = errors.As
	New = errors.New
)

// Const is an error that can be declared as a constant, which keeps
// sentinels from being reassigned.
type Const string

func (e Const) Error() string {
	return string(e)
}

// Collapse drops nil errors. A single remaining error is returned as is,
// several are joined.
func Collapse(errs ...error) error {
	var (
		first error
		count int
	)

	for _, err := range errs {
		if err == nil {
			continue
		}
		if count == 0 {
			first = err
		}
		count++
	}

	switch count {
	case 0:
		return nil
	case 1:
		return first
	default:
		return errors.Join(errs...)
	}
}

func Errorf(msgFormat string, args ...any) error {
	return fmt.Errorf(msgFormat, args...)
}

const cant = "can't "

// Fail reports an operation that failed on its own, "can't <what>".
func Fail(whatFailed string) error {
	return New(cant + whatFailed)
}

func Failf(whatFailedFormat string, args ...any) error {
	return Fail(fmt.Sprintf(whatFailedFormat, args...))
}

// Wrap prefixes err with wrapper, keeping it matchable by Is and As.
// A nil err stays nil, so results of calls can be wrapped unconditionally.
func Wrap(err error, wrapper string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", wrapper, err)
}

func Wrapf(err error, wrapperFormat string, args ...any) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(wrapperFormat, args...))
}

// WrapFail is Wrap with the "can't <what>" form used across the codebase.
func WrapFail(err error, whatFailed string) error {
	return Wrap(err, cant+whatFailed)
}

func WrapFailf(err error, whatFailedFormat string, args ...any) error {
	if err == nil {
		return nil
	}
	return WrapFail(err, fmt.Sprintf(whatFailedFormat, args...))
}

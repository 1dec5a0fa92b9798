// Package checkpoint decorates errors with the file and line they passed
// through, which results in something similar to a stacktrace when the error
// is finally printed.
// Both the decorating error and the wrapped cause can be checked with
// errors.Is and retrieved with errors.As.
package checkpoint

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"strings"
)

// From wraps err in a checkpoint carrying the caller's file and line.
// It returns nil if err is nil.
func From(err error) error {
	if passThrough(err) {
		return err
	}
	return newCheckpoint(err, nil)
}

// Wrap records a checkpoint for prev and attaches err as the description of
// what went wrong at this point. It returns nil if prev is nil.
// This allows predefined sentinel errors to be attached to low level causes:
//
//	var ErrIO = errors.New("image i/o failed")
//
//	func readSomething() error {
//		_, err := io.ReadFull(r, buf)
//		return checkpoint.Wrap(err, ErrIO)
//	}
//
// errors.Is(err, ErrIO) is true for the result and so is errors.Is for the
// cause returned by io.ReadFull.
func Wrap(prev, err error) error {
	if prev == io.EOF {
		return io.EOF
	}
	if prev == nil {
		return nil
	}
	return newCheckpoint(prev, err)
}

// passThrough reports errors which must never be wrapped, as callers compare
// them with == (https://github.com/golang/go/issues/39155).
func passThrough(err error) bool {
	return err == nil || err == io.EOF || err == io.ErrUnexpectedEOF
}

func newCheckpoint(prev, err error) *checkpoint {
	// Skip newCheckpoint itself and the exported wrapper.
	_, file, line, ok := runtime.Caller(2)
	return &checkpoint{
		err:      err,
		prev:     prev,
		callerOk: ok,
		file:     filepath.Base(file),
		line:     line,
	}
}

type checkpoint struct {
	err  error
	prev error

	callerOk bool
	file     string
	line     int
}

func (e *checkpoint) location() string {
	if !e.callerOk {
		return "unknown"
	}
	return fmt.Sprintf("%s:%d", e.file, e.line)
}

func (e *checkpoint) Error() string {
	prev := e.prev.Error()
	if _, ok := e.prev.(*checkpoint); !ok {
		prev = "File: unknown\n\t" + strings.ReplaceAll(prev, "\n", "\n\t")
	}

	if e.err == nil {
		return fmt.Sprintf("File: %s\n%v", e.location(), prev)
	}
	return fmt.Sprintf("File: %s\n\t%v\n%v", e.location(), e.err, prev)
}

func (e *checkpoint) Unwrap() error {
	return e.prev
}

func (e *checkpoint) Is(target error) bool {
	return e.err != nil && errors.Is(e.err, target)
}

func (e *checkpoint) As(target interface{}) bool {
	return e.err != nil && errors.As(e.err, target)
}

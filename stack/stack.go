// Package stack implements the engine's stacked error model: a failure
// carries a primary message plus an ordered list of frames describing every
// scope it propagated through.
package stack

import (
	"errors"
	"fmt"
	"strings"
)

// Frame annotates one scope a stacked Error passed through.
type Frame struct {
	File     string
	Line     int
	Function string
	Note     string
}

func (f Frame) String() string {
	var b strings.Builder
	if f.Function != "" {
		b.WriteString(f.Function)
	}
	if f.File != "" {
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		fmt.Fprintf(&b, "at %s", f.File)
		if f.Line > 0 {
			fmt.Fprintf(&b, ":%d", f.Line)
		}
	} else if f.Line > 0 {
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		fmt.Fprintf(&b, "at line %d", f.Line)
	}
	if f.Note != "" {
		if b.Len() > 0 {
			b.WriteString(" -> ")
		}
		b.WriteString(f.Note)
	}
	return b.String()
}

// Error is a message decorated with the frames it was wrapped by, bottom-up:
// frames[0] is the innermost scope, frames[len-1] the outermost.
type Error struct {
	Msg    string
	Frames []Frame
	Cause  error
}

func New(msg string) *Error {
	return &Error{Msg: msg}
}

func Newf(format string, args ...any) *Error {
	return &Error{Msg: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Msg)
	for i, f := range e.Frames {
		fmt.Fprintf(&b, "\n%d. %s", i+1, f.String())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Wrap appends frame to err, converting it into a *Error first if it is not
// already one. A nil err returns nil: Wrap is safe to call unconditionally
// from a defer.
func Wrap(err error, frame Frame) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		clone := *se
		clone.Frames = append(append([]Frame{}, se.Frames...), frame)
		return &clone
	}
	return &Error{Msg: err.Error(), Frames: []Frame{frame}, Cause: err}
}

// Annotate wraps err with a frame carrying only a textual note, for call
// sites that have no file/line/function to report (expression evaluation,
// for instance, reports "At token ..." frames instead).
func Annotate(err error, note string) error {
	return Wrap(err, Frame{Note: note})
}

// Guard returns *errp decorated with frame (nil when *errp is nil). It is
// meant to be called from a deferred closure at the top of a method that
// wants every error it returns decorated with frame. Usage:
//
//	func (t *Tree) Find(key string) (res *Tree, err error) {
//	    defer func() { err = stack.Guard(&err, stack.Frame{Function: "Tree.Find", Note: key}) }()
//	    ...
//	}
func Guard(errp *error, frame Frame) error {
	return Wrap(*errp, frame)
}

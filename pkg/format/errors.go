package format

import (
	"errors"
	"fmt"

	"github.com/leapstack-labs/leapfmt/pkg/doc"
	"github.com/leapstack-labs/leapfmt/pkg/input"
)

// FormattingFault reports a failure raised while planning a node. Pos is
// the byte offset of the node being visited.
type FormattingFault struct {
	Pos     int
	Line    int
	Column  int
	Message string
	Cause   error
}

func (f *FormattingFault) Error() string {
	return fmt.Sprintf("formatting fault at line %d, column %d: %s", f.Line, f.Column+1, f.Message)
}

func (f *FormattingFault) Unwrap() error { return f.Cause }

// ConsistencyFault reports an op stream that does not account for every
// input token exactly once. It signals a planner defect, never bad input.
type ConsistencyFault struct {
	Pos     int
	Line    int
	Column  int
	Message string
}

func (f *ConsistencyFault) Error() string {
	return fmt.Sprintf("consistency fault at line %d, column %d: %s", f.Line, f.Column+1, f.Message)
}

// IsFault reports whether err is a FormattingFault or ConsistencyFault.
func IsFault(err error) bool {
	var ff *FormattingFault
	var cf *ConsistencyFault
	return errors.As(err, &ff) || errors.As(err, &cf)
}

func consistencyFault(in *input.Input, f *doc.Fault) *ConsistencyFault {
	pos := in.Lines.Position(min(f.Offset, len(in.Text)))
	return &ConsistencyFault{Pos: f.Offset, Line: pos.Line, Column: pos.Column, Message: f.Message}
}

func formattingFault(in *input.Input, offset int, r any) *FormattingFault {
	pos := in.Lines.Position(min(offset, len(in.Text)))
	f := &FormattingFault{Pos: offset, Line: pos.Line, Column: pos.Column}
	if err, ok := r.(error); ok {
		f.Cause = err
		f.Message = err.Error()
	} else {
		f.Message = fmt.Sprint(r)
	}
	return f
}

// recoverFault converts a planner panic into an error. Panics that are not
// faults are wrapped as a FormattingFault at offset.
func recoverFault(in *input.Input, r any, offset int) error {
	switch r := r.(type) {
	case *doc.Fault:
		return consistencyFault(in, r)
	case *FormattingFault:
		return r
	case *ConsistencyFault:
		return r
	}
	return formattingFault(in, offset, r)
}

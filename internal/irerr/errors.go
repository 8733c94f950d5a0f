// Package irerr defines the compiler's error taxonomy: IRBuildError,
// PeepholeIntegrity, and CodegenError. Each carries an optional
// source location and is wrapped with github.com/pkg/errors at the
// point it crosses a package boundary, so a top-level diagnostic keeps
// a cause chain back to where the compiler actually noticed trouble.
package irerr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind names one of the three error taxonomies the core can raise.
type Kind string

const (
	IRBuild           Kind = "IRBuildError"
	PeepholeIntegrity Kind = "PeepholeIntegrity"
	Codegen           Kind = "CodegenError"
)

// Location is a source position, when one is available to the raiser.
type Location struct {
	Line   int
	Column int
}

func (l Location) String() string {
	if l.Line == 0 {
		return ""
	}
	return fmt.Sprintf(" at %d:%d", l.Line, l.Column)
}

// CompileError is the concrete error type for all three taxonomies.
type CompileError struct {
	Kind    Kind
	Message string
	Loc     Location
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%s: %s%s", e.Kind, e.Message, e.Loc)
}

// NewIRBuildError reports an AST the lowering pass cannot translate
// (malformed AST, e.g. break outside a loop).
func NewIRBuildError(loc Location, format string, args ...interface{}) error {
	return errors.WithStack(&CompileError{Kind: IRBuild, Message: fmt.Sprintf(format, args...), Loc: loc})
}

// NewCodegenError reports an IR construct codegen cannot map to C
// (unknown opcode, missing operand type).
func NewCodegenError(format string, args ...interface{}) error {
	return errors.WithStack(&CompileError{Kind: Codegen, Message: fmt.Sprintf(format, args...)})
}

// PanicPeepholeIntegrity raises an internal invariant violation in the
// optimizer itself. This is a bug in the optimizer, not a
// recoverable condition, so it panics rather than returning an error.
func PanicPeepholeIntegrity(format string, args ...interface{}) {
	panic(errors.WithStack(&CompileError{Kind: PeepholeIntegrity, Message: fmt.Sprintf(format, args...)}))
}

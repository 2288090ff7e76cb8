package nfa

import "fmt"

// ErrorKind classifies program construction errors
type ErrorKind uint8

const (
	// EmptyProgram indicates a Build with no instructions
	EmptyProgram ErrorKind = iota

	// TooManyInsts indicates the instruction count exceeds MaxInsts
	TooManyInsts

	// BadTarget indicates an instruction referring past the program's end
	BadTarget

	// NoMatchInst indicates a program with no accepting instruction
	NoMatchInst
)

// String returns a human-readable error kind name
func (k ErrorKind) String() string {
	switch k {
	case EmptyProgram:
		return "EmptyProgram"
	case TooManyInsts:
		return "TooManyInsts"
	case BadTarget:
		return "BadTarget"
	case NoMatchInst:
		return "NoMatchInst"
	default:
		return fmt.Sprintf("UnknownErrorKind(%d)", k)
	}
}

// BuildError reports an invalid program handed to Builder.Build.
// These are precondition violations caught once at build time; the DFA
// itself never returns errors, only Match/NoMatch/Quit results.
type BuildError struct {
	Kind    ErrorKind
	Message string
}

// Error implements the error interface
func (e *BuildError) Error() string {
	return e.Message
}

// Is implements error comparison for errors.Is
func (e *BuildError) Is(target error) bool {
	t, ok := target.(*BuildError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Package emuerr defines the error kinds the emulator can stop with and the
// process exit code associated with each of them.
package emuerr

import (
	"errors"
	"fmt"
)

// Kind classifies why emulation stopped.
type Kind uint8

const (
	// Quit is a user-requested stop.
	Quit Kind = iota + 1
	// Timeout is raised when profile mode has run its frames.
	Timeout
	// UnitTestPassed is raised by the FC exit opcode.
	UnitTestPassed
	// UnitTestFailed is raised by the FD exit opcode.
	UnitTestFailed
	// Breakpoint is raised when PC reaches a configured address.
	Breakpoint

	// InvalidOpcode is raised when the CPU decodes an undefined opcode.
	InvalidOpcode

	// RomMissing means the ROM path does not exist.
	RomMissing
	// RomUnreadable means the ROM could not be read or extracted.
	RomUnreadable
	// RomTruncated means the image is shorter than its header or declared size.
	RomTruncated
	// UnsupportedCart means the cartridge type byte names a controller we lack.
	UnsupportedCart
	// HeaderChecksum means the header checksum at 0x14D does not match.
	HeaderChecksum
)

var kindNames = map[Kind]string{
	Quit:            "quit",
	Timeout:         "timeout",
	UnitTestPassed:  "unit test passed",
	UnitTestFailed:  "unit test failed",
	Breakpoint:      "breakpoint",
	InvalidOpcode:   "invalid opcode",
	RomMissing:      "rom missing",
	RomUnreadable:   "rom unreadable",
	RomTruncated:    "rom truncated",
	UnsupportedCart: "unsupported cartridge",
	HeaderChecksum:  "header checksum mismatch",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ExitCode maps a kind to the process exit status.
//
//	0: controlled exits (quit, timeout, test passed, breakpoint)
//	2: test failed
//	3: emulated program fault
//	4: load error
func (k Kind) ExitCode() int {
	switch k {
	case Quit, Timeout, UnitTestPassed, Breakpoint:
		return 0
	case UnitTestFailed:
		return 2
	case InvalidOpcode:
		return 3
	case RomMissing, RomUnreadable, RomTruncated, UnsupportedCart, HeaderChecksum:
		return 4
	}
	return 1
}

// Controlled reports whether the kind is a normal way for a run to end.
func (k Kind) Controlled() bool {
	return k.ExitCode() == 0
}

// Error is an emulator stop condition with a human readable message.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

// New builds an Error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap builds an Error of the given kind around an underlying cause.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

func (e *Error) Error() string {
	switch {
	case e.Msg == "" && e.Err == nil:
		return e.Kind.String()
	case e.Err == nil:
		return e.Kind.String() + ": " + e.Msg
	case e.Msg == "":
		return e.Kind.String() + ": " + e.Err.Error()
	}
	return e.Kind.String() + ": " + e.Msg + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same kind, so a bare kind sentinel such as
// emuerr.Of(emuerr.Timeout) works with errors.Is.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return other.Kind == e.Kind
}

// ExitCode returns the process exit status for the error.
func (e *Error) ExitCode() int { return e.Kind.ExitCode() }

// Of returns a message-less sentinel for kind, for use with errors.Is.
func Of(kind Kind) error { return &Error{Kind: kind} }

// KindOf extracts the kind from err, or zero when err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// ExitCode returns the process exit status for any error: 0 for nil or a
// controlled stop, 1 for errors outside the taxonomy.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var e *Error
	if errors.As(err, &e) {
		return e.ExitCode()
	}
	return 1
}

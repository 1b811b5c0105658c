package reader

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat means no registry fragment matched the file's
	// extension chain.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrContentAssertion means a header line lacked its marker or a numeric
	// token failed to parse: an unknown sub-version or a corrupted file.
	ErrContentAssertion = errors.New("content assertion failed")

	// ErrNoDecoder means the format is registered but its decoder was not
	// supplied.
	ErrNoDecoder = errors.New("no decoder configured")
)

// UnsupportedFormatError names the extension that no fragment matched.
type UnsupportedFormatError struct {
	Ext string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("no reader found for extension %q", e.Ext)
}

func (e *UnsupportedFormatError) Unwrap() error { return ErrUnsupportedFormat }

// AssertionError reports the first header or data line that failed
// validation.
type AssertionError struct {
	Layout string
	State  State
	Line   int    // 1-based; 0 when the file ended early
	Want   string // expected marker, if any
	Got    string
	Err    error // underlying parse error, if any
}

func (e *AssertionError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Layout, e.State)
	if e.Line > 0 {
		msg += fmt.Sprintf(" (line %d)", e.Line)
	} else {
		msg += " (end of file)"
	}
	switch {
	case e.Err != nil:
		msg += ": " + e.Err.Error()
	case e.Want != "":
		msg += fmt.Sprintf(": want %q in %q", e.Want, e.Got)
	}
	return msg
}

// Is makes every AssertionError match ErrContentAssertion.
func (e *AssertionError) Is(target error) bool { return target == ErrContentAssertion }

func (e *AssertionError) Unwrap() error { return e.Err }

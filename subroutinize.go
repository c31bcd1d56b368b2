// Package cffsubr subroutinizes CFF and CFF2 font outlines using the tx executable of the Adobe Font Development Kit for OpenType.
package cffsubr

import (
	"errors"
	"fmt"
	"os"
)

// ErrInvalidInput is returned if the font data is nil. Empty font data is passed to tx, which fails to parse it.
var ErrInvalidInput = fmt.Errorf("expected font data")

// Error is returned when tx fails, its message is what tx wrote to stderr.
type Error struct {
	Msg string
	Err *ExitError
}

func (err *Error) Error() string {
	return err.Msg
}

func (err *Error) Unwrap() error {
	return err.Err
}

// Subroutinize runs the subroutinizer on the font file and returns the new CFF2 font set.
func Subroutinize(fontdata []byte) ([]byte, error) {
	return runSubroutinizer(fontdata, "-cff2")
}

// runSubroutinizer writes the font to a temporary file since tx cannot read from stdin, see https://github.com/adobe-type-tools/afdko/issues/937
// A failure to remove the temporary file is returned only when tx succeeded.
func runSubroutinizer(fontdata []byte, format string) (cff []byte, err error) {
	if fontdata == nil {
		return nil, ErrInvalidInput
	}

	f, err := os.CreateTemp("", "tx-*")
	if err != nil {
		return nil, err
	}
	defer func() {
		if errRemove := os.Remove(f.Name()); errRemove != nil && err == nil {
			cff, err = nil, errRemove
		}
	}()

	if _, err := f.Write(fontdata); err != nil {
		f.Close()
		return nil, err
	} else if err := f.Close(); err != nil {
		return nil, err
	}

	// +b writes a bare CFF table to stdout
	result, err := Run([]string{format, "+S", "+b", f.Name()}, RunOptions{Capture: true, Check: true})
	if err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return nil, &Error{Msg: string(exitErr.Stderr), Err: exitErr}
		}
		return nil, err
	}
	return result.Stdout, nil
}

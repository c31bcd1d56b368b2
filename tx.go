package cffsubr

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
)

// TXPath overrides the location of the tx executable. When empty, tx is looked up next to the running executable, in the bin directory of this package's source tree, and finally in $PATH.
var TXPath string

// ErrTXNotFound is returned if the tx executable cannot be located.
var ErrTXNotFound = fmt.Errorf("tx executable not found")

var execCommand = exec.Command

var (
	txMu   sync.Mutex
	txPath string
)

// Path returns the location of the tx executable. A successful lookup is cached, a failed one is retried on the next call.
func Path() (string, error) {
	if TXPath != "" {
		return TXPath, nil
	}

	txMu.Lock()
	defer txMu.Unlock()
	if txPath == "" {
		path, err := lookupTX(txCandidates())
		if err != nil {
			return "", err
		}
		txPath = path
	}
	return txPath, nil
}

func txName() string {
	if runtime.GOOS == "windows" {
		return "tx.exe"
	}
	return "tx"
}

// txCandidates lists the locations where a bundled tx may be installed, in order of preference.
func txCandidates() []string {
	name := txName()
	candidates := []string{}
	if exe, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(exe), name))
	}
	if _, file, _, ok := runtime.Caller(0); ok {
		dir := filepath.Join(filepath.Dir(file), "bin")
		candidates = append(candidates, filepath.Join(dir, runtime.GOOS+"-"+runtime.GOARCH, name))
		candidates = append(candidates, filepath.Join(dir, name))
	}
	return candidates
}

func lookupTX(candidates []string) (string, error) {
	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			if runtime.GOOS == "windows" || info.Mode().Perm()&0111 != 0 {
				return candidate, nil
			}
		}
	}
	if path, err := exec.LookPath(txName()); err == nil {
		return path, nil
	}
	return "", ErrTXNotFound
}

// RunOptions are the options passed to Run.
type RunOptions struct {
	Stdin   io.Reader // standard input of tx, nil means the null device
	Dir     string    // working directory, empty means the current directory
	Env     []string  // environment, nil means the current environment
	Capture bool      // capture stdout and stderr instead of forwarding them
	Check   bool      // return an *ExitError on a non-zero exit code
}

// Result is the outcome of running tx.
type Result struct {
	Args     []string // the tx path followed by its arguments
	ExitCode int
	Stdout   []byte // only set when output is captured
	Stderr   []byte // only set when output is captured
}

// ExitError is returned by Run when tx exits with a non-zero exit code and the exit code is checked.
type ExitError struct {
	Args     []string
	ExitCode int
	Stderr   []byte
}

func (err *ExitError) Error() string {
	return fmt.Sprintf("command %q returned non-zero exit status %d", strings.Join(err.Args, " "), err.ExitCode)
}

// Run runs the tx executable with the given arguments and waits for it to finish. There is no timeout.
func Run(args []string, options RunOptions) (*Result, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}

	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cmd := execCommand(path, args...)
	cmd.Stdin = options.Stdin
	cmd.Dir = options.Dir
	cmd.Env = options.Env
	if options.Capture {
		cmd.Stdout = stdout
		cmd.Stderr = stderr
	} else {
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	}

	result := &Result{
		Args: append([]string{path}, args...),
	}
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, err
		}
		result.ExitCode = exitErr.ExitCode()
	}
	if options.Capture {
		result.Stdout = stdout.Bytes()
		result.Stderr = stderr.Bytes()
	}

	if options.Check && result.ExitCode != 0 {
		return result, &ExitError{
			Args:     result.Args,
			ExitCode: result.ExitCode,
			Stderr:   result.Stderr,
		}
	}
	return result, nil
}

// TXVersion returns the version string reported by tx.
func TXVersion() (string, error) {
	result, err := Run([]string{"-v"}, RunOptions{Capture: true, Check: true})
	if err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) && 0 < len(exitErr.Stderr) {
			return "", fmt.Errorf("tx: %s", bytes.TrimSpace(exitErr.Stderr))
		}
		return "", err
	}
	version := bytes.TrimSpace(result.Stdout)
	if len(version) == 0 {
		version = bytes.TrimSpace(result.Stderr)
	}
	return string(version), nil
}

package cffsubr

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"testing"

	"github.com/tdewolff/test"
)

// The test binary doubles as a fake tx executable when CFFSUBR_FAKE_TX is set.
func TestMain(m *testing.M) {
	if os.Getenv("CFFSUBR_FAKE_TX") == "1" {
		os.Exit(fakeTX(os.Args[1:]))
	}

	exe, err := os.Executable()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	TXPath = exe
	os.Setenv("CFFSUBR_FAKE_TX", "1")
	os.Exit(m.Run())
}

// fakeTX mimics tx for the arguments used in this package. With -exit it writes its arguments to stdout and stderr and exits with the given code.
func fakeTX(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "tx: missing arguments")
		return 1
	}
	switch args[0] {
	case "-v":
		fmt.Println("tx (fake) 1.0.0")
		return 0
	case "-exit":
		code, _ := strconv.Atoi(args[1])
		fmt.Fprint(os.Stdout, args[2])
		fmt.Fprint(os.Stderr, args[3])
		return code
	case "-cff", "-cff2":
	default:
		fmt.Fprintf(os.Stderr, "tx: unknown option %s\n", args[0])
		return 1
	}

	filename := args[len(args)-1]
	if log := os.Getenv("CFFSUBR_FAKE_TX_LOG"); log != "" {
		f, err := os.OpenFile(log, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		fmt.Fprintln(f, filename)
		f.Close()
	}

	b, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	} else if os.Getenv("CFFSUBR_FAKE_TX_REMOVE") == "1" {
		os.Remove(filename)
	}
	if output := os.Getenv("CFFSUBR_FAKE_TX_OUTPUT"); output != "" {
		out, err := os.ReadFile(output)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		os.Stdout.Write(out)
		return 0
	}

	sfnt, err := ParseSFNT(b)
	if err != nil || !sfnt.IsCFF {
		fmt.Fprintf(os.Stderr, "tx: (cfr) %s: parsing failed: unknown font format\n", filename)
		return 1
	}
	if args[0] == "-cff" {
		if table, ok := sfnt.Tables["CFF "]; ok {
			os.Stdout.Write(table)
		} else {
			os.Stdout.Write(buildTestCFF([]string{".notdef", "A", "B"}))
		}
		return 0
	}
	os.Stdout.Write(buildTestCFF2(sfnt.Tables["CFF "]))
	return 0
}

func TestRun(t *testing.T) {
	result, err := Run([]string{"-exit", "0", "out", "err"}, RunOptions{Capture: true, Check: true})
	test.Error(t, err)
	test.T(t, result.ExitCode, 0)
	test.T(t, string(result.Stdout), "out")
	test.T(t, string(result.Stderr), "err")
	test.T(t, result.Args, []string{TXPath, "-exit", "0", "out", "err"})
}

func TestRunNonZeroExit(t *testing.T) {
	result, err := Run([]string{"-exit", "3", "out", "failure"}, RunOptions{Capture: true})
	test.Error(t, err)
	test.T(t, result.ExitCode, 3)
	test.T(t, string(result.Stderr), "failure")

	result, err = Run([]string{"-exit", "3", "out", "failure"}, RunOptions{Capture: true, Check: true})
	var exitErr *ExitError
	test.That(t, errors.As(err, &exitErr), "must return an ExitError")
	test.T(t, exitErr.ExitCode, 3)
	test.T(t, string(exitErr.Stderr), "failure")
	test.T(t, result.ExitCode, 3)
	test.String(t, exitErr.Error(), fmt.Sprintf("command %q returned non-zero exit status 3", TXPath+" -exit 3 out failure"))
}

func TestRunStdin(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "font.otf")
	test.Error(t, os.WriteFile(filename, buildTestOTF(t, true), 0644))

	result, err := Run([]string{"-cff2", "+S", "+b", "font.otf"}, RunOptions{Stdin: &bytes.Buffer{}, Dir: dir, Capture: true, Check: true})
	test.Error(t, err)
	test.T(t, cffTableVersion(result.Stdout), 2)
}

func TestRunSpawnError(t *testing.T) {
	txPath := TXPath
	defer func() { TXPath = txPath }()

	TXPath = filepath.Join(t.TempDir(), "missing")
	_, err := Run([]string{"-v"}, RunOptions{Capture: true, Check: true})
	test.That(t, err != nil, "must fail to spawn")

	var exitErr *ExitError
	test.That(t, !errors.As(err, &exitErr), "spawn errors must not be an ExitError")
}

func TestTXVersion(t *testing.T) {
	version, err := TXVersion()
	test.Error(t, err)
	test.String(t, version, "tx (fake) 1.0.0")
}

func TestLookupTX(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("executable bits are not used on Windows")
	}

	dir := t.TempDir()
	t.Setenv("PATH", dir)
	notExecutable := filepath.Join(dir, "a", txName())
	executable := filepath.Join(dir, "b", txName())
	test.Error(t, os.MkdirAll(filepath.Dir(notExecutable), 0755))
	test.Error(t, os.MkdirAll(filepath.Dir(executable), 0755))
	test.Error(t, os.WriteFile(notExecutable, []byte{}, 0644))
	test.Error(t, os.WriteFile(executable, []byte{}, 0755))

	path, err := lookupTX([]string{filepath.Join(dir, "missing"), notExecutable, executable})
	test.Error(t, err)
	test.String(t, path, executable)

	_, err = lookupTX([]string{notExecutable})
	test.T(t, err, ErrTXNotFound)

	// fall back to $PATH
	onPath := filepath.Join(dir, txName())
	test.Error(t, os.WriteFile(onPath, []byte{}, 0755))
	path, err = lookupTX(nil)
	test.Error(t, err)
	test.String(t, path, onPath)
}

func TestPathRetry(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("executable bits are not used on Windows")
	}
	for _, candidate := range txCandidates() {
		if _, err := os.Stat(candidate); err == nil {
			t.Skip("tx is installed at", candidate)
		}
	}

	txPathOverride := TXPath
	defer func() {
		TXPath = txPathOverride
		txPath = ""
	}()
	TXPath = ""
	txPath = ""

	dir := t.TempDir()
	t.Setenv("PATH", dir)
	_, err := Path()
	test.T(t, err, ErrTXNotFound)

	// installed after the first lookup failed
	onPath := filepath.Join(dir, txName())
	test.Error(t, os.WriteFile(onPath, []byte{}, 0755))
	path, err := Path()
	test.Error(t, err)
	test.String(t, path, onPath)

	// cached
	test.Error(t, os.Remove(onPath))
	path, err = Path()
	test.Error(t, err)
	test.String(t, path, onPath)
}

func TestTXCandidates(t *testing.T) {
	candidates := txCandidates()
	test.That(t, 2 <= len(candidates), "must include the source tree bin directory")
	test.String(t, filepath.Base(candidates[len(candidates)-1]), txName())
	test.String(t, filepath.Base(filepath.Dir(candidates[len(candidates)-1])), "bin")
}

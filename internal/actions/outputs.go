package actions

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	// EnvOutput names the file runners read step outputs from.
	EnvOutput = "GITHUB_OUTPUT"
	// EnvActions is "true" inside a runner.
	EnvActions = "GITHUB_ACTIONS"

	outputFilePermissions = 0o644
)

var errBadOutputName = errors.New("output name must be non-empty and single-line")

// Outputs records named step outputs.
type Outputs interface {
	Set(name, value string) error
}

// FileOutputs appends outputs to a GITHUB_OUTPUT file.
type FileOutputs struct {
	path string
	mu   sync.Mutex
}

// NewFileOutputs returns outputs written to path.
func NewFileOutputs(path string) *FileOutputs {
	return &FileOutputs{
		path: filepath.Clean(path),
	}
}

// Set appends name and value using the heredoc syntax, which also carries
// multi-line values.
func (o *FileOutputs) Set(name, value string) error {
	if err := checkName(name); err != nil {
		return err
	}

	delimiter, err := newDelimiter(value)
	if err != nil {
		return err
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	file, err := os.OpenFile(o.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, outputFilePermissions)
	if err != nil {
		return fmt.Errorf("open outputs file: %w", err)
	}

	_, err = fmt.Fprintf(file, "%s<<%s\n%s\n%s\n", name, delimiter, value, delimiter)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}

	if err != nil {
		return fmt.Errorf("write output %s: %w", name, err)
	}

	return nil
}

// WriterOutputs prints "name=value" lines, indenting continuation lines.
type WriterOutputs struct {
	w  io.Writer
	mu sync.Mutex
}

// NewWriterOutputs returns outputs printed to w.
func NewWriterOutputs(w io.Writer) *WriterOutputs {
	return &WriterOutputs{w: w}
}

// Set prints one output.
func (o *WriterOutputs) Set(name, value string) error {
	if err := checkName(name); err != nil {
		return err
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	_, err := fmt.Fprintf(o.w, "%s=%s\n", name, strings.ReplaceAll(value, "\n", "\n  "))

	return err
}

// FromEnv returns FileOutputs when GITHUB_OUTPUT is set and WriterOutputs
// on fallback otherwise.
func FromEnv(lookup func(string) (string, bool), fallback io.Writer) Outputs { //nolint:ireturn // Selects an implementation.
	if path, ok := lookup(EnvOutput); ok && path != "" {
		return NewFileOutputs(path)
	}

	return NewWriterOutputs(fallback)
}

// InRunner reports whether the process runs inside GitHub Actions.
func InRunner(lookup func(string) (string, bool)) bool {
	v, ok := lookup(EnvActions)
	return ok && v == "true"
}

// Fail writes an error workflow command, marking the step as failed in the
// runner's annotations.
func Fail(w io.Writer, message string) {
	_, _ = fmt.Fprintf(w, "::error::%s\n", escapeData(message))
}

func escapeData(s string) string {
	return strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A").Replace(s)
}

func checkName(name string) error {
	if name == "" || strings.ContainsAny(name, "\r\n=<") {
		return fmt.Errorf("%w: %q", errBadOutputName, name)
	}

	return nil
}

func newDelimiter(value string) (string, error) {
	for {
		buf := make([]byte, 8) //nolint:mnd // 64 random bits.
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("generate output delimiter: %w", err)
		}

		delimiter := "ghadelimiter_" + hex.EncodeToString(buf)
		if !strings.Contains(value, delimiter) {
			return delimiter, nil
		}
	}
}

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // the pipeline itself failed
	ExitCommandError = 2 // bad flags, config or input
)

// ExitError carries the process exit code for an error.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error. Errors that are not an
// ExitError map to ExitFailure.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter writes command results as text lines or as one JSON document.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

// Response is the JSON envelope.
type Response struct {
	Status string `json:"status"`
	Data   any    `json:"data"`
}

// Lines writes each item on its own line, or the whole slice as the JSON data.
func Lines[T any](f *OutputFormatter, items []T) error {
	if f.Format == "json" {
		return f.json(items)
	}
	for _, item := range items {
		if _, err := fmt.Fprintln(f.Writer, item); err != nil {
			return err
		}
	}
	return nil
}

// Pairs writes "key=value" lines, or a JSON object in key order.
func (f *OutputFormatter) Pairs(keys []string, values map[string]any) error {
	if f.Format == "json" {
		return f.json(values)
	}
	for _, k := range keys {
		if _, err := fmt.Fprintf(f.Writer, "%s=%v\n", k, values[k]); err != nil {
			return err
		}
	}
	return nil
}

func (f *OutputFormatter) json(data any) error {
	return json.NewEncoder(f.Writer).Encode(Response{Status: "ok", Data: data})
}

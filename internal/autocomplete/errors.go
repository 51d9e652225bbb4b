package autocomplete

import (
	"errors"
	"fmt"
	"strings"

	"varologs/internal/services"
	"varologs/internal/textutil"
)

// ErrNotConfigured reports that no client handle exists. No network call was made.
var ErrNotConfigured = fmt.Errorf("%w: ai service not configured", services.ErrConfiguration)

// AttemptFailure records why one cascade candidate was rejected.
type AttemptFailure struct {
	Model string
	Stage Stage
	// Raw is the response text, when the model produced any.
	Raw string
	Err error
}

func (f AttemptFailure) Error() string {
	return fmt.Sprintf("model %s: %s: %v", f.Model, f.Stage, f.Err)
}

func (f AttemptFailure) Unwrap() error { return f.Err }

// ExhaustedCascadeError is returned when every candidate failed.
type ExhaustedCascadeError struct {
	Attempts []AttemptFailure
}

func (e *ExhaustedCascadeError) Error() string {
	if len(e.Attempts) == 0 {
		return "all AI models failed"
	}
	last := e.Attempts[len(e.Attempts)-1]
	var b strings.Builder
	fmt.Fprintf(&b, "all AI models failed (%d attempted). Last error: %s", len(e.Attempts), last.Error())
	if last.Raw != "" {
		fmt.Fprintf(&b, " (response snippet: %s)", textutil.Snippet(last.Raw, textutil.DefaultSnippetLimit))
	}
	return b.String()
}

// Unwrap returns the last candidate's underlying error.
func (e *ExhaustedCascadeError) Unwrap() error {
	if len(e.Attempts) == 0 {
		return nil
	}
	return e.Attempts[len(e.Attempts)-1].Err
}

// Models lists the attempted models in cascade order.
func (e *ExhaustedCascadeError) Models() []string {
	out := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		out[i] = a.Model
	}
	return out
}

// IsExhausted reports whether err is an exhausted cascade.
func IsExhausted(err error) bool {
	var exhausted *ExhaustedCascadeError
	return errors.As(err, &exhausted)
}

var (
	errEmptyResponse = errors.New("empty response")
	errNotObject     = errors.New("response is not a JSON object")
)

type schemaError struct {
	field  string
	reason string
}

func (e *schemaError) Error() string {
	return fmt.Sprintf("field %q %s", e.field, e.reason)
}

// Package stage defines the error taxonomy shared by the intake pipeline.
// Every error type reports the pipeline stage it failed in, so callers can
// surface a single stage-tagged message to the operator.
package stage

import (
	"errors"
	"fmt"
)

// Name identifies a pipeline stage.
type Name string

const (
	Extract  Name = "extract"
	Invoke   Name = "invoke"
	Parse    Name = "parse"
	Validate Name = "validate"
	Submit   Name = "submit"
	Attach   Name = "attach"
	Share    Name = "share"
)

// Tagged is implemented by all stage errors.
type Tagged interface {
	error
	Stage() Name
}

// Of returns the stage of the first Tagged error in err's chain.
func Of(err error) (Name, bool) {
	var t Tagged
	if errors.As(err, &t) {
		return t.Stage(), true
	}
	return "", false
}

// Message renders err as "<stage> failed: <message>" for operator-facing output.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if name, ok := Of(err); ok {
		return fmt.Sprintf("%s failed: %v", name, err)
	}
	return err.Error()
}

// ExtractionError reports an unreadable PDF or an exhausted OCR fallback.
type ExtractionError struct {
	Err error
}

func (e *ExtractionError) Error() string { return "extraction: " + e.Err.Error() }
func (e *ExtractionError) Unwrap() error { return e.Err }
func (e *ExtractionError) Stage() Name   { return Extract }

// ModelInvocationError reports a transport, auth or rate-limit failure
// talking to the language model. StatusCode is zero when unknown.
type ModelInvocationError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *ModelInvocationError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("model invocation (%s, status %d): %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("model invocation (%s): %v", e.Provider, e.Err)
}
func (e *ModelInvocationError) Unwrap() error { return e.Err }
func (e *ModelInvocationError) Stage() Name   { return Invoke }

// RateLimited reports whether the provider rejected the call with 429.
func (e *ModelInvocationError) RateLimited() bool { return e.StatusCode == 429 }

// ParseError reports model output that violates the assignment micro-syntax.
// Raw holds the full response for diagnosis; Line is 1-based, 0 when unknown.
type ParseError struct {
	Line int
	Msg  string
	Raw  string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse: line %d: %s", e.Line, e.Msg)
	}
	return "parse: " + e.Msg
}
func (e *ParseError) Stage() Name { return Parse }

// ValidationError names the required field that is missing or mistyped.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: field %q: %s", e.Field, e.Msg)
}
func (e *ValidationError) Stage() Name { return Validate }

// SubmissionError reports a record the remote system refused.
type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string { return "submission: " + e.Err.Error() }
func (e *SubmissionError) Unwrap() error { return e.Err }
func (e *SubmissionError) Stage() Name   { return Submit }

// AttachmentError reports a failed document upload for a record that
// already exists remotely.
type AttachmentError struct {
	RecordID int64
	Err      error
}

func (e *AttachmentError) Error() string {
	return fmt.Sprintf("attachment (record %d): %v", e.RecordID, e.Err)
}
func (e *AttachmentError) Unwrap() error { return e.Err }
func (e *AttachmentError) Stage() Name   { return Attach }

// ShareError reports a failed file-share upload.
type ShareError struct {
	Provider string
	Err      error
}

func (e *ShareError) Error() string { return fmt.Sprintf("share (%s): %v", e.Provider, e.Err) }
func (e *ShareError) Unwrap() error { return e.Err }
func (e *ShareError) Stage() Name   { return Share }

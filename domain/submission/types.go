// Package submission models what the FaaS validation and modelling endpoints
// answer and reduces those answers to a small outcome taxonomy.
package submission

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// Phase names one leg of a submission
type Phase string

const (
	PhaseValidate Phase = "validate"
	PhaseModel    Phase = "model"
)

// Synthesized bodies, byte-compatible with what downstream reporting expects
const (
	SkipValidationInfo  = "skip_validation"
	ValidationErrorInfo = "validation_error"
)

// ValidationResult is the answer of the validation phase, or a stand-in for it
type ValidationResult struct {
	HTTPStatus int
	Body       []byte
	// Skipped is set when validation was bypassed and Body is synthesized
	Skipped bool
	// Wrapped is set when the HTTP status was not ok and Body has the
	// {"api_status", "api_content"} envelope
	Wrapped bool
}

// ModellingResult is the answer of the modelling phase. Body always carries
// api_status_code unless the result was synthesized after a failed validation.
type ModellingResult struct {
	HTTPStatus  int
	Body        []byte
	Synthesized bool
}

// SkippedValidation is the validation stand-in used with skip_validation
func SkippedValidation() ValidationResult {
	return ValidationResult{
		Body:    []byte(`{"status":"skip_validation","info":"skip_validation"}`),
		Skipped: true,
	}
}

// ValidationFailed is the modelling stand-in used when validation did not pass
func ValidationFailed() ModellingResult {
	return ModellingResult{
		Body:        []byte(`{"info":"validation_error"}`),
		Synthesized: true,
	}
}

// WrapAPIStatus builds {"api_status": status, "api_content": body}. A body
// that is not JSON is embedded as a string.
func WrapAPIStatus(status int, body []byte) ValidationResult {
	wrapped, _ := json.Marshal(map[string]interface{}{
		"api_status":  status,
		"api_content": rawOrString(body),
	})
	return ValidationResult{HTTPStatus: status, Body: wrapped, Wrapped: true}
}

// NewModellingResult records the HTTP status inside the body as api_status_code.
// A body that is not a JSON object is kept under api_content.
func NewModellingResult(status int, body []byte) ModellingResult {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		fields = map[string]json.RawMessage{}
		content, _ := json.Marshal(string(body))
		fields["api_content"] = content
	}
	fields["api_status_code"] = json.RawMessage(fmt.Sprintf("%d", status))
	out, _ := json.Marshal(fields)
	return ModellingResult{HTTPStatus: status, Body: out}
}

func rawOrString(body []byte) interface{} {
	if len(body) > 0 && gjson.ValidBytes(body) {
		return json.RawMessage(body)
	}
	return string(body)
}

// OutcomeKind is the class a phase answer falls into
type OutcomeKind string

const (
	KindSuccess            OutcomeKind = "success"
	KindValidationErrors   OutcomeKind = "validation_errors"
	KindAuthentication     OutcomeKind = "authentication_error"
	KindServiceUnavailable OutcomeKind = "service_unavailable"
	KindTimeout            OutcomeKind = "timeout"
	KindUnmapped           OutcomeKind = "unmapped_error"
)

// FieldDetail is one entry of info.error_list or info.warning_list
type FieldDetail struct {
	Section       string
	Field         string
	Status        string
	ErrorType     string
	OriginalValue string
	DatasetError  string
}

// Outcome is the classified answer of one phase
type Outcome struct {
	Kind       OutcomeKind
	HTTPStatus int
	// Status is the body's own status rendered as text ("200", "created", "error")
	Status string
	// FromBody is set when the class was decided by the body status rather
	// than the HTTP status
	FromBody bool
	Info     string
	Errors   []FieldDetail
	Warnings []FieldDetail
	Raw      string
}

// Fatal reports whether the outcome must be surfaced as an error
func (o Outcome) Fatal() bool {
	switch o.Kind {
	case KindAuthentication, KindServiceUnavailable, KindTimeout, KindUnmapped:
		return true
	}
	return false
}

// Accepted reports whether the service took the request, even when the
// body still lists field errors
func (o Outcome) Accepted() bool {
	if !HTTPOK(o.HTTPStatus) {
		return false
	}
	switch o.Status {
	case "200", "201", "202", "created":
		return true
	}
	return false
}

// Code is the status that decided the class
func (o Outcome) Code() string {
	if o.FromBody {
		return o.Status
	}
	return fmt.Sprintf("%d", o.HTTPStatus)
}

package app

import (
	"fmt"
	"io"

	"gofaas/domain/core"
	"gofaas/domain/submission"
)

// ValidationReport is what Validate hands back
type ValidationReport struct {
	SubmissionID core.SubmissionID
	PayloadHash  core.PayloadHash
	Result       submission.ValidationResult
	Outcome      submission.Outcome
	Attempts     int
}

// Valid reports whether the service accepted the submission without errors
func (r *ValidationReport) Valid() bool {
	return r.Outcome.Kind == submission.KindSuccess
}

// Render writes the human-readable report
func (r *ValidationReport) Render(w io.Writer) error {
	rw := &reportWriter{w: w}
	renderValidation(rw, r.Outcome, "Request successfully received and validated!\nNow you can call RunModel to run your model.")
	return rw.err
}

// ModelReport is what RunModel hands back
type ModelReport struct {
	SubmissionID core.SubmissionID
	PayloadHash  core.PayloadHash
	Validation   submission.ValidationResult
	// ValidationOutcome is meaningless when Validation.Skipped is set
	ValidationOutcome submission.Outcome
	Modelling         submission.ModellingResult
	// ModellingOutcome is set unless Modelling.Synthesized
	ModellingOutcome *submission.Outcome
	Attempts         int
}

// Accepted reports whether the modelling endpoint took the job
func (r *ModelReport) Accepted() bool {
	return r.ModellingOutcome != nil && r.ModellingOutcome.Kind == submission.KindSuccess
}

// Render writes the human-readable report
func (r *ModelReport) Render(w io.Writer) error {
	rw := &reportWriter{w: w}
	if !r.Validation.Skipped {
		renderValidation(rw, r.ValidationOutcome, "Request successfully received and validated!")
	}
	if o := r.ModellingOutcome; o != nil {
		renderValidation(rw, *o, fmt.Sprintf("HTTP: %s: Request successfully received!\nResults will soon be available in your Projects module.", o.Status))
	}
	return rw.err
}

func renderValidation(rw *reportWriter, o submission.Outcome, success string) {
	if o.Kind == submission.KindSuccess || (o.Kind == submission.KindValidationErrors && o.Accepted()) {
		rw.printf("%s\n", success)
	} else {
		rw.printf("Something went wrong!\nStatus code: %s\n", o.Status)
		if o.Info != "" {
			rw.printf("%s\n", o.Info)
		}
	}

	if len(o.Errors) > 0 {
		rw.printf("\nError User Input:\n")
		section := ""
		for i, d := range o.Errors {
			if i == 0 || d.Section != section {
				section = d.Section
				rw.printf("*%s*\n\n", section)
			}
			rw.printf("%s\n - %s\n", fieldName(d), describe(d))
		}
	}

	if len(o.Warnings) > 0 {
		rw.printf("\nWarning User Input:\n\n")
		for _, d := range o.Warnings {
			rw.printf("*%s*\n", d.Section)
			if d.Field != "" {
				rw.printf("%s\n", d.Field)
			}
			rw.printf("%s\n\n", describe(d))
		}
	}
}

func fieldName(d submission.FieldDetail) string {
	if d.Field == "" {
		return d.Section
	}
	return d.Field
}

func describe(d submission.FieldDetail) string {
	return fmt.Sprintf("%s %s. Original Value: %s in dataset: %s", d.Status, d.ErrorType, d.OriginalValue, d.DatasetError)
}

// reportWriter keeps the first write error
type reportWriter struct {
	w   io.Writer
	err error
}

func (rw *reportWriter) printf(format string, args ...interface{}) {
	if rw.err != nil {
		return
	}
	_, rw.err = fmt.Fprintf(rw.w, format, args...)
}

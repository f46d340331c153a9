package submission

import (
	"github.com/tidwall/gjson"
)

// HTTPOK reports whether an HTTP status counts as accepted
func HTTPOK(status int) bool {
	return status == 200 || status == 201 || status == 202
}

// BodyStatusOK reports whether the body's own status is numerically accepted
func BodyStatusOK(body []byte) bool {
	status := gjson.GetBytes(body, "status")
	return status.Type == gjson.Number && HTTPOK(int(status.Int()))
}

// HasErrors reports whether info.error_list exists and has at least one entry
func HasErrors(body []byte) bool {
	return nonEmpty(gjson.GetBytes(body, "info.error_list"))
}

// HasStatusOrInfo reports whether the body carries either top-level key
func HasStatusOrInfo(body []byte) bool {
	return gjson.GetBytes(body, "status").Exists() || gjson.GetBytes(body, "info").Exists()
}

// Classify reduces an HTTP status and JSON body to an Outcome.
//
// HTTP failures win over anything the body says. Past that, the body's own
// status is mapped the same way, since the service reports logical failures
// inside a 200 envelope.
func Classify(httpStatus int, body []byte) Outcome {
	out := Outcome{HTTPStatus: httpStatus, Raw: string(body)}

	if !HTTPOK(httpStatus) {
		out.Kind = kindForStatus(httpStatus)
		if out.Kind == "" {
			out.Kind = KindUnmapped
		}
		return out
	}

	parsed := gjson.ParseBytes(body)
	status := parsed.Get("status")
	if !gjson.ValidBytes(body) || !status.Exists() {
		out.Kind = KindUnmapped
		return out
	}
	out.Status = status.String()

	info := parsed.Get("info")
	if info.Type == gjson.String {
		out.Info = info.String()
	}
	if info.IsObject() {
		out.Errors = details(info.Get("error_list"))
		out.Warnings = details(info.Get("warning_list"))
	}
	hasErrors := nonEmpty(info.Get("error_list"))

	if status.Type == gjson.Number {
		if kind := kindForStatus(int(status.Int())); kind != "" {
			out.Kind = kind
			out.FromBody = true
			return out
		}
	}

	if statusAccepted(status) {
		out.Kind = KindSuccess
		if hasErrors {
			out.Kind = KindValidationErrors
		}
		return out
	}

	out.FromBody = true
	if hasErrors {
		out.Kind = KindValidationErrors
	} else {
		out.Kind = KindUnmapped
	}
	return out
}

func kindForStatus(status int) OutcomeKind {
	switch status {
	case 408, 504:
		return KindTimeout
	case 401:
		return KindAuthentication
	case 503:
		return KindServiceUnavailable
	}
	return ""
}

func statusAccepted(status gjson.Result) bool {
	switch status.Type {
	case gjson.Number:
		return HTTPOK(int(status.Int()))
	case gjson.String:
		return status.Str == "created"
	}
	return false
}

func nonEmpty(list gjson.Result) bool {
	if !list.IsObject() && !list.IsArray() {
		return false
	}
	found := false
	list.ForEach(func(_, _ gjson.Result) bool {
		found = true
		return false
	})
	return found
}

// details flattens section -> field -> record into document order. A section
// whose value is itself a record becomes a single entry with an empty Field.
func details(list gjson.Result) []FieldDetail {
	if !list.IsObject() {
		return nil
	}
	var out []FieldDetail
	list.ForEach(func(section, value gjson.Result) bool {
		if isRecord(value) {
			out = append(out, record(section.String(), "", value))
			return true
		}
		if value.IsObject() {
			value.ForEach(func(field, rec gjson.Result) bool {
				out = append(out, record(section.String(), field.String(), rec))
				return true
			})
		}
		return true
	})
	return out
}

func isRecord(value gjson.Result) bool {
	if !value.IsObject() {
		return false
	}
	errType := value.Get("error_type")
	return errType.Exists() && !errType.IsObject()
}

func record(section, field string, rec gjson.Result) FieldDetail {
	return FieldDetail{
		Section:       section,
		Field:         field,
		Status:        rec.Get("status").String(),
		ErrorType:     rec.Get("error_type").String(),
		OriginalValue: rec.Get("original_value").String(),
		DatasetError:  rec.Get("dataset_error").String(),
	}
}

// Classify classifies the validation answer. A skipped validation counts as
// success; a wrapped answer is classified on its original content.
func (v ValidationResult) Classify() Outcome {
	if v.Skipped {
		return Outcome{Kind: KindSuccess, Status: SkipValidationInfo, Info: SkipValidationInfo, Raw: string(v.Body)}
	}
	if v.Wrapped {
		return Classify(v.HTTPStatus, []byte(gjson.GetBytes(v.Body, "api_content").Raw))
	}
	return Classify(v.HTTPStatus, v.Body)
}

// Classify classifies the modelling answer. Synthesized results have no
// outcome of their own and report ok as false.
func (m ModellingResult) Classify() (Outcome, bool) {
	if m.Synthesized {
		return Outcome{}, false
	}
	return Classify(m.HTTPStatus, m.Body), true
}

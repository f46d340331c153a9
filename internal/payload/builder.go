// Package payload turns local datasets and a model spec into the opaque
// body string the FaaS endpoints accept.
package payload

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"gofaas/domain/dataset"
	"gofaas/domain/modelspec"
	"gofaas/internal/errors"
	"gofaas/internal/sanitize"
)

const (
	// MaxProjectIDLength bounds the project name
	MaxProjectIDLength = 50
	// MaxColumnNameLength bounds every canonical column name
	MaxColumnNameLength = 50
	// UserEmail is the placeholder address the service requires
	UserEmail = "user@legitmail.com"
)

// Body is the decoded submission body
type Body struct {
	DataList     DataList               `json:"data_list"`
	ModelSpec    map[string]interface{} `json:"model_spec"`
	UserEmail    []string               `json:"user_email"`
	ProjectID    []string               `json:"project_id"`
	DateVariable []string               `json:"date_variable"`
	DateFormat   []string               `json:"date_format"`
}

// Key returns the data_list key of the dataset at zero-based position i
func Key(i int, name string) string {
	return fmt.Sprintf("forecast_%d_%s", i+1, sanitize.Canonicalize(name))
}

// Build validates the inputs and assembles the submission body. Every
// failure is INVALID_INPUT and nothing is sent anywhere.
func Build(datasets []dataset.Dataset, dateVariable, dateFormat string, spec modelspec.ModelSpec, projectID string) (*Body, error) {
	if utf8.RuneCountInString(projectID) > MaxProjectIDLength {
		return nil, errors.InvalidInputf("The project_name should be at most %d characters long.", MaxProjectIDLength)
	}

	dateColumn := sanitize.Canonicalize(dateVariable)

	var missingDate, longNames []string
	known := map[string]bool{}
	data := make(DataList, 0, len(datasets))

	for i, ds := range datasets {
		target := sanitize.Canonicalize(ds.Name)

		columns, err := canonicalColumns(ds)
		if err != nil {
			return nil, err
		}

		if _, ok := columns.index[target]; !ok {
			return nil, errors.InvalidInputf("Variable %s not found in the dataset", ds.Name)
		}
		if _, ok := columns.index[dateColumn]; !ok {
			missingDate = append(missingDate, ds.Name)
		}
		for _, c := range columns.names {
			if utf8.RuneCountInString(c) > MaxColumnNameLength {
				longNames = append(longNames, ds.Name)
				break
			}
		}

		for _, c := range columns.names {
			if c != target && c != dateColumn {
				known[c] = true
			}
		}

		data = append(data, Entry{
			Key:     Key(i, ds.Name),
			Records: records(ds, columns, dateColumn),
		})
	}

	if len(missingDate) > 0 {
		return nil, errors.InvalidInputf("Given date_variable '%s' not found in dataframe(s): %s", dateColumn, strings.Join(missingDate, " "))
	}
	if len(longNames) > 0 {
		return nil, errors.InvalidInputf("At least one variable name longer than %d characters found in dataframe(s): %s", MaxColumnNameLength, strings.Join(longNames, " "))
	}

	variables := make([]string, 0, len(known))
	for v := range known {
		variables = append(variables, v)
	}
	sort.Strings(variables)

	completed := modelspec.ApplyDefaults(spec.MapIdentifiers(sanitize.Canonicalize), variables)

	return &Body{
		DataList:     data,
		ModelSpec:    completed.Wire(),
		UserEmail:    []string{UserEmail},
		ProjectID:    []string{projectID},
		DateVariable: []string{dateColumn},
		DateFormat:   []string{dateFormat},
	}, nil
}

type columnSet struct {
	names    []string       // canonical, in declaration order
	original []string       // as declared
	index    map[string]int // canonical -> position
}

func canonicalColumns(ds dataset.Dataset) (columnSet, error) {
	set := columnSet{
		names:    make([]string, len(ds.Columns)),
		original: ds.Columns,
		index:    make(map[string]int, len(ds.Columns)),
	}
	for i, c := range ds.Columns {
		name := sanitize.Canonicalize(c)
		if j, dup := set.index[name]; dup {
			return columnSet{}, errors.InvalidInputf("Columns '%s' and '%s' of dataset %s both become '%s'", ds.Columns[j], c, ds.Name, name)
		}
		set.names[i] = name
		set.index[name] = i
	}
	return set, nil
}

func records(ds dataset.Dataset, columns columnSet, dateColumn string) []Record {
	out := make([]Record, 0, len(ds.Rows))
	for _, row := range ds.Rows {
		rec := make(Record, len(columns.names))
		for i, name := range columns.names {
			value, ok := cell(row[columns.original[i]])
			if !ok {
				continue
			}
			if name == dateColumn {
				value = formatDate(value)
			}
			rec[name] = value
		}
		out = append(out, rec)
	}
	return out
}

// cell normalizes a value for the wire; ok is false for missing cells
func cell(v interface{}) (interface{}, bool) {
	if dataset.IsMissing(v) {
		return nil, false
	}
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, false
		}
	case float32:
		if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
			return nil, false
		}
	case time.Time:
		return formatTime(x), true
	}
	return v, true
}

// formatDate renders date cells as text
func formatDate(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case time.Time:
		return formatTime(x)
	default:
		return fmt.Sprint(v)
	}
}

func formatTime(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format("2006-01-02 15:04:05")
}

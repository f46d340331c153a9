package dataset

import (
	"fmt"
	"strings"
)

// MissingSentinel marks a missing cell; cells holding it are omitted from the wire payload
const MissingSentinel = "NA"

// Row maps a column name to its cell value (string, float64, int, bool, time.Time or nil)
type Row map[string]interface{}

// Dataset is one named tabular relation. Name doubles as the target variable,
// so a column with the same (canonical) name is expected inside Columns.
type Dataset struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
	Source  string   `json:"source,omitempty"` // file path or "memory"
}

// New creates an in-memory dataset
func New(name string, columns []string, rows []Row) Dataset {
	return Dataset{
		Name:    name,
		Columns: columns,
		Rows:    rows,
		Source:  "memory",
	}
}

// HasColumn reports whether the dataset declares the column (exact match)
func (d Dataset) HasColumn(column string) bool {
	for _, c := range d.Columns {
		if c == column {
			return true
		}
	}
	return false
}

// RowCount returns the number of rows
func (d Dataset) RowCount() int {
	return len(d.Rows)
}

// IsMissing reports whether a cell value counts as absent
func IsMissing(v interface{}) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok && s == MissingSentinel {
		return true
	}
	return false
}

// Summary renders a short human-readable description
func (d Dataset) Summary() string {
	return fmt.Sprintf("%s (%d rows; columns: %s)", d.Name, len(d.Rows), strings.Join(d.Columns, ", "))
}

// Names returns the dataset names in order
func Names(datasets []Dataset) []string {
	names := make([]string, len(datasets))
	for i, d := range datasets {
		names[i] = d.Name
	}
	return names
}

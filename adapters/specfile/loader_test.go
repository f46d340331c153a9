package specfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gofaas/domain/modelspec"
	"gofaas/internal/errors"
)

func write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadYAML(t *testing.T) {
	path := write(t, "spec.yaml", `
n_best: 10
log: false
golden_variables: {}
exclusions:
  - [price, [promo, holiday]]
lags:
  all: [1, 2]
  price: 3
selection_methods:
  apply.collinear: false
breakdown: true
`)

	spec, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, 10, *spec.NBest)
	assert.False(t, *spec.Log)
	assert.Equal(t, []string{}, spec.GoldenVariables)
	assert.Equal(t, [][]modelspec.ExclusionItem{{modelspec.Name("price"), modelspec.Group("promo", "holiday")}}, spec.Exclusions)
	assert.Equal(t, map[string][]int{"all": {1, 2}, "price": {3}}, spec.Lags)
	assert.Equal(t, []string{}, spec.SelectionMethods.ApplyCollinear.Resolve())
	assert.Equal(t, true, spec.Extra["breakdown"])
}

func TestLoadJSON(t *testing.T) {
	path := write(t, "spec.json", `{"accuracy_crit": ["RMSE"], "user_model": [["a", "b"]]}`)

	spec, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "RMSE", *spec.AccuracyCrit)
	assert.Equal(t, [][]string{{"a", "b"}}, spec.UserModel)
}

func TestLoadEmptyFile(t *testing.T) {
	spec, err := Load(write(t, "empty.yaml", ""))

	require.NoError(t, err)
	assert.Nil(t, spec.NBest)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"missing", filepath.Join(t.TempDir(), "none.yaml")},
		{"bad yaml", write(t, "bad.yaml", "n_best: [1\n")},
		{"bad json", write(t, "bad.json", "{")},
		{"wrong type", write(t, "type.yaml", "n_best: many\n")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path)
			require.Error(t, err)
			assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
		})
	}
}

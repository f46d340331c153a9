package modelspec

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gofaas/internal/errors"
)

func decode(t *testing.T, raw string) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(raw), &m))
	return m
}

func TestParseFullSpec(t *testing.T) {
	raw := decode(t, `{
		"log": false,
		"seas.d": [true],
		"n_best": 12,
		"accuracy_crit": "RMSE",
		"exclusions": [["a", ["b", "c"]]],
		"golden_variables": ["g"],
		"lags": {"all": [1, 2], "x": 3},
		"user_model": [["u1", "u2"]],
		"selection_methods": {"lasso": false, "apply.collinear": true, "boruta": true},
		"breakdown": false
	}`)

	spec, err := Parse(raw)
	require.NoError(t, err)

	assert.False(t, *spec.Log)
	assert.True(t, *spec.SeasD)
	assert.Equal(t, 12, *spec.NBest)
	assert.Equal(t, "RMSE", *spec.AccuracyCrit)
	assert.Nil(t, spec.InfoCrit)
	assert.Equal(t, [][]ExclusionItem{{Name("a"), Group("b", "c")}}, spec.Exclusions)
	assert.Equal(t, []string{"g"}, spec.GoldenVariables)
	assert.Equal(t, map[string][]int{"all": {1, 2}, "x": {3}}, spec.Lags)
	assert.Equal(t, [][]string{{"u1", "u2"}}, spec.UserModel)
	require.NotNil(t, spec.SelectionMethods)
	assert.False(t, *spec.SelectionMethods.Lasso)
	assert.Nil(t, spec.SelectionMethods.RF)
	assert.True(t, *spec.SelectionMethods.ApplyCollinear.Flag)
	assert.Equal(t, true, spec.SelectionMethods.Extra["boruta"])
	assert.Equal(t, false, spec.Extra["breakdown"])
}

func TestParseGoldenVariablesEmptyMapping(t *testing.T) {
	spec, err := Parse(decode(t, `{"golden_variables": {}}`))
	require.NoError(t, err)

	assert.NotNil(t, spec.GoldenVariables)
	assert.Empty(t, spec.GoldenVariables)
}

func TestParseCollinearList(t *testing.T) {
	spec, err := Parse(decode(t, `{"selection_methods": {"apply.collinear": ["rf", "corr"]}}`))
	require.NoError(t, err)

	assert.Equal(t, []string{"rf", "corr"}, spec.SelectionMethods.ApplyCollinear.Resolve())
}

func TestParseRejectsWrongShapes(t *testing.T) {
	tests := []string{
		`{"log": "yes"}`,
		`{"n_best": 2.5}`,
		`{"exclusions": ["a"]}`,
		`{"exclusions": [[1]]}`,
		`{"lags": {"x": ["one"]}}`,
		`{"lags": [1]}`,
		`{"user_model": [[1]]}`,
		`{"golden_variables": "x"}`,
		`{"selection_methods": {"apply.collinear": "yes"}}`,
	}

	for _, raw := range tests {
		t.Run(raw, func(t *testing.T) {
			_, err := Parse(decode(t, raw))
			require.Error(t, err)
			assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
		})
	}
}

func TestParseYAMLStyleInts(t *testing.T) {
	spec, err := Parse(map[string]interface{}{
		"n_best": 7,
		"lags":   map[string]interface{}{"x": []interface{}{1, 12}},
	})
	require.NoError(t, err)

	assert.Equal(t, 7, *spec.NBest)
	assert.Equal(t, []int{1, 12}, spec.Lags["x"])
}

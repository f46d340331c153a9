package payload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gofaas/domain/dataset"
	"gofaas/domain/modelspec"
	"gofaas/internal/errors"
)

func TestEncodeRoundTrip(t *testing.T) {
	body, err := Build([]dataset.Dataset{salesDataset(), unitsDataset()}, "Data", "%Y-%m-%d", modelspec.ModelSpec{}, "proj")
	require.NoError(t, err)

	encoded, err := Encode(body)
	require.NoError(t, err)

	decoded, err := Decode(encoded)
	require.NoError(t, err)

	assert.Equal(t, body.DataList.Keys(), decoded.DataList.Keys())
	assert.Equal(t, body.ProjectID, decoded.ProjectID)
	assert.Equal(t, body.DateVariable, decoded.DateVariable)
	assert.Equal(t, []interface{}{"MAPE"}, decoded.ModelSpec[modelspec.KeyAccuracyCrit])

	records, _ := decoded.DataList.Get("forecast_1_sales")
	assert.Equal(t, Record{"data": "2021-01-01", "sales": 10.0, "preco": 2.5}, records[0])

	again, err := Encode(decoded)
	require.NoError(t, err)
	assert.Equal(t, encoded, again)
}

func TestEncodeIsDeterministic(t *testing.T) {
	build := func() string {
		spec := modelspec.ModelSpec{Lags: map[string][]int{"all": {1, 2}}}
		body, err := Build([]dataset.Dataset{salesDataset(), unitsDataset()}, "Data", "%Y", spec, "p")
		require.NoError(t, err)
		s, err := Encode(body)
		require.NoError(t, err)
		return s
	}

	first := build()
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, build())
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	for _, input := range []string{"%%%", "aGVsbG8=", ""} {
		_, err := Decode(input)
		require.Error(t, err, input)
		assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
	}
}

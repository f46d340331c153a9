package payload

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gofaas/domain/dataset"
	"gofaas/domain/modelspec"
	"gofaas/internal/errors"
)

func salesDataset() dataset.Dataset {
	return dataset.New("Sales", []string{"Data", "Sales", "Preço"}, []dataset.Row{
		{"Data": "2021-01-01", "Sales": 10.0, "Preço": 2.5},
		{"Data": "2021-02-01", "Sales": "NA", "Preço": nil},
	})
}

func unitsDataset() dataset.Dataset {
	return dataset.New("units", []string{"data", "units", "price"}, []dataset.Row{
		{"data": time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), "units": 3, "price": 1.0},
	})
}

func TestBuildProjectIDLength(t *testing.T) {
	ok := strings.Repeat("p", 50)
	_, err := Build([]dataset.Dataset{salesDataset()}, "Data", "%Y-%m-%d", modelspec.ModelSpec{}, ok)
	require.NoError(t, err)

	_, err = Build([]dataset.Dataset{salesDataset()}, "Data", "%Y-%m-%d", modelspec.ModelSpec{}, ok+"p")
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
	assert.Contains(t, err.Error(), "at most 50 characters")
}

func TestBuildMissingTargetColumn(t *testing.T) {
	ds := dataset.New("revenue", []string{"data", "sales"}, nil)

	_, err := Build([]dataset.Dataset{ds}, "data", "%Y", modelspec.ModelSpec{}, "p")

	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
	assert.Contains(t, err.Error(), "revenue")
}

func TestBuildMissingDateListsEveryDataset(t *testing.T) {
	a := dataset.New("sales", []string{"sales", "x"}, nil)
	b := dataset.New("units", []string{"units"}, nil)
	c := dataset.New("price", []string{"price", "date"}, nil)

	_, err := Build([]dataset.Dataset{a, b, c}, "Date", "%Y", modelspec.ModelSpec{}, "p")

	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
	assert.Equal(t, "Given date_variable 'date' not found in dataframe(s): sales units", err.Error())
}

func TestBuildLongColumnNames(t *testing.T) {
	long := strings.Repeat("x", 51)
	a := dataset.New("a", []string{"date", "a", long}, nil)
	b := dataset.New("b", []string{"date", "b", strings.Repeat("y", 50)}, nil)

	_, err := Build([]dataset.Dataset{a, b}, "date", "%Y", modelspec.ModelSpec{}, "p")

	require.Error(t, err)
	assert.Equal(t, "At least one variable name longer than 50 characters found in dataframe(s): a", err.Error())
}

func TestBuildColumnCollision(t *testing.T) {
	ds := dataset.New("y", []string{"date", "y", "a.b", "a-b"}, nil)

	_, err := Build([]dataset.Dataset{ds}, "date", "%Y", modelspec.ModelSpec{}, "p")

	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
	assert.Contains(t, err.Error(), "a_b")
}

func TestBuildKeysAndRecords(t *testing.T) {
	body, err := Build([]dataset.Dataset{salesDataset(), unitsDataset()}, "Data", "%Y-%m-%d", modelspec.ModelSpec{}, "proj")
	require.NoError(t, err)

	assert.Equal(t, []string{"forecast_1_sales", "forecast_2_units"}, body.DataList.Keys())

	sales, ok := body.DataList.Get("forecast_1_sales")
	require.True(t, ok)
	require.Len(t, sales, 2)
	assert.Equal(t, Record{"data": "2021-01-01", "sales": 10.0, "preco": 2.5}, sales[0])
	assert.Equal(t, Record{"data": "2021-02-01"}, sales[1])

	units, _ := body.DataList.Get("forecast_2_units")
	assert.Equal(t, Record{"data": "2021-01-01", "units": 3, "price": 1.0}, units[0])

	assert.Equal(t, []string{UserEmail}, body.UserEmail)
	assert.Equal(t, []string{"proj"}, body.ProjectID)
	assert.Equal(t, []string{"data"}, body.DateVariable)
	assert.Equal(t, []string{"%Y-%m-%d"}, body.DateFormat)
}

func TestBuildTransliteratesNonLatinNames(t *testing.T) {
	ds := dataset.New("Продажи", []string{"date", "Продажи", "Цена"}, []dataset.Row{
		{"date": "2021-01-01", "Продажи": 1, "Цена": 2},
	})

	body, err := Build([]dataset.Dataset{ds}, "date", "%Y-%m-%d", modelspec.ModelSpec{}, "p")
	require.NoError(t, err)

	assert.Equal(t, []string{"forecast_1_prodazhi"}, body.DataList.Keys())
	rows, _ := body.DataList.Get("forecast_1_prodazhi")
	assert.Equal(t, Record{"date": "2021-01-01", "prodazhi": 1, "tsena": 2}, rows[0])
}

func TestBuildCanonicalizesSpecAndExpandsLags(t *testing.T) {
	spec := modelspec.ModelSpec{
		GoldenVariables: []string{"Preço"},
		Lags:            map[string][]int{"all": {1}, "Price": {2}},
	}

	body, err := Build([]dataset.Dataset{salesDataset(), unitsDataset()}, "Data", "%Y", spec, "p")
	require.NoError(t, err)

	assert.Equal(t, []string{"preco"}, body.ModelSpec[modelspec.KeyGoldenVariables])
	assert.Equal(t, map[string][]int{"preco": {1}, "price": {2}}, body.ModelSpec[modelspec.KeyLags])
	for _, key := range modelspec.TemplateKeys {
		assert.Contains(t, body.ModelSpec, key)
	}
}

func TestDataListPreservesOrderOnTheWire(t *testing.T) {
	var list DataList
	for i, name := range []string{"b", "a", "c", "d", "e", "f", "g", "h", "i", "j", "k"} {
		list = append(list, Entry{Key: Key(i, name), Records: []Record{{"v": i}}})
	}

	raw, err := json.Marshal(list)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), `{"forecast_1_b":[{"v":0}],"forecast_2_a":`))
	assert.Less(t, strings.Index(string(raw), "forecast_2_a"), strings.Index(string(raw), "forecast_10_j"))

	var back DataList
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, list.Keys(), back.Keys())
}

func TestDataListEmptyRecords(t *testing.T) {
	raw, err := json.Marshal(DataList{{Key: "forecast_1_y"}})
	require.NoError(t, err)
	assert.Equal(t, `{"forecast_1_y":[]}`, string(raw))
}

package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"

	"gofaas/domain/dataset"
	"gofaas/internal"
	"gofaas/internal/errors"
)

// DefaultSheet is read unless another sheet is requested
const DefaultSheet = "Sheet1"

// DataReader handles reading Excel and CSV files
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	sheet    string
	logger   *internal.Logger
}

// ReaderOption configures a DataReader
type ReaderOption func(*DataReader)

// WithSheet selects the worksheet of an xlsx file
func WithSheet(sheet string) ReaderOption {
	return func(r *DataReader) {
		if sheet != "" {
			r.sheet = sheet
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *internal.Logger) ReaderOption {
	return func(r *DataReader) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader(filePath string, opts ...ReaderOption) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	r := &DataReader{filePath: filePath, fileType: fileType, logger: internal.NewNopLogger()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ReadData reads data from Excel or CSV files into structured format
func (r *DataReader) ReadData() (*ExcelData, error) {
	r.logger.Debug("[DataReader] Starting to read %s file: %s", r.fileType, r.filePath)

	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, errors.InvalidInputf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	switch r.fileType {
	case "csv":
		return r.readCSVData()
	case "xlsx":
		return r.readExcelData()
	default:
		return nil, errors.InvalidInputf("unsupported file type: %s", r.fileType)
	}
}

// ReadDataset reads the file and coerces its cells into a dataset
func (r *DataReader) ReadDataset(name string) (dataset.Dataset, error) {
	data, err := r.ReadData()
	if err != nil {
		return dataset.Dataset{}, err
	}
	ds := data.ToDataset(name)
	ds.Source = r.filePath
	return ds, nil
}

// readExcelData reads the selected sheet, falling back to the first one
// when the default sheet does not exist
func (r *DataReader) readExcelData() (*ExcelData, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, fmt.Errorf("failed to open Excel file: %w", err))
	}
	defer f.Close()

	sheet := r.sheet
	if sheet == "" {
		sheet = DefaultSheet
		if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
			if sheets := f.GetSheetList(); len(sheets) > 0 {
				sheet = sheets[0]
			}
		}
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, fmt.Errorf("failed to read %s: %w", sheet, err))
	}
	r.logger.Debug("[DataReader] %s read in %.2fms (%d rows)", sheet, float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))

	if len(rows) < 2 {
		return nil, errors.InvalidInput("Excel file must have at least a header row and one data row")
	}

	return r.processRows(rows)
}

// readCSVData reads CSV data into structured format
func (r *DataReader) readCSVData() (*ExcelData, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open CSV file")
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	readStart := time.Now()
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, fmt.Errorf("failed to read CSV file: %w", err))
	}
	r.logger.Debug("[DataReader] CSV file read in %.2fms (%d rows)", float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	if len(rows) < 2 {
		return nil, errors.InvalidInput("CSV file must have at least a header row and one data row")
	}

	return r.processRows(rows)
}

// processRows converts raw string rows into ExcelData format
func (r *DataReader) processRows(rows [][]string) (*ExcelData, error) {
	headerRow := rows[0]
	headers := make([]string, len(headerRow))
	seen := make(map[string]bool, len(headerRow))
	for i, header := range headerRow {
		h := strings.TrimSpace(strings.TrimPrefix(header, "\ufeff"))
		if h == "" {
			return nil, errors.InvalidInputf("%s: column %d has an empty header", r.filePath, i+1)
		}
		if seen[h] {
			return nil, errors.InvalidInputf("%s: duplicate column %q", r.filePath, h)
		}
		seen[h] = true
		headers[i] = h
	}

	dataRows := make([]RawRowData, 0, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		rowData := make(RawRowData, len(headers))
		for j, cell := range rows[i] {
			if j < len(headers) {
				rowData[headers[j]] = strings.TrimSpace(cell)
			}
		}
		dataRows = append(dataRows, rowData)
	}

	r.logger.Info("[DataReader] %s file processed (%d columns, %d rows)",
		strings.ToUpper(r.fileType), len(headers), len(dataRows))

	return &ExcelData{
		Headers: headers,
		Rows:    dataRows,
	}, nil
}

// ToDataset coerces every cell and returns the dataset
func (d *ExcelData) ToDataset(name string) dataset.Dataset {
	rows := make([]dataset.Row, len(d.Rows))
	for i, raw := range d.Rows {
		row := make(dataset.Row, len(d.Headers))
		for _, h := range d.Headers {
			row[h] = CoerceCell(raw[h])
		}
		rows[i] = row
	}
	return dataset.New(name, append([]string{}, d.Headers...), rows)
}

// CoerceCell maps a text cell to nil (empty, NA, NaN), float64, bool or string
func CoerceCell(cell string) interface{} {
	s := strings.TrimSpace(cell)
	switch strings.ToLower(s) {
	case "", "na", "nan", "null":
		return nil
	case "true":
		return true
	case "false":
		return false
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !strings.ContainsAny(s, "xXpP") {
		return f
	}
	return s
}

// ParseSource splits "name=path". Without a name, the file's base name is used.
func ParseSource(arg string) (Source, error) {
	name, path, found := strings.Cut(arg, "=")
	if !found {
		path = arg
		name = strings.TrimSuffix(filepath.Base(arg), filepath.Ext(arg))
	}
	name, path = strings.TrimSpace(name), strings.TrimSpace(path)
	if name == "" || path == "" {
		return Source{}, errors.InvalidInputf("invalid data source %q, expected name=path", arg)
	}
	return Source{Name: name, Path: path}, nil
}

// LoadAll reads every source concurrently. Datasets come back in source order.
func LoadAll(ctx context.Context, sources []Source, opts ...ReaderOption) ([]dataset.Dataset, error) {
	out := make([]dataset.Dataset, len(sources))
	g, ctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			ds, err := NewDataReader(src.Path, opts...).ReadDataset(src.Name)
			if err != nil {
				return errors.Wrapf(err, "failed to load dataset %s", src.Name)
			}
			out[i] = ds
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

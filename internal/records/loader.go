package records

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/youruser/imagefetch/internal/logging"
)

// LoadError reports input that could not be read as tabular data.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// LoadFile opens path and loads its rows.
func LoadFile(path string) ([]Record, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Source: path, Err: err}
	}
	defer fp.Close()
	return Load(fp, path)
}

// Load reads a spreadsheet from r. The name is used only to pick the format
// by its extension and to label errors. Rows keep their input order.
func Load(r io.Reader, name string) ([]Record, error) {
	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		rows, err = readWorkbook(r)
	case ".csv":
		rows, err = readCSV(r)
	default:
		err = fmt.Errorf("unsupported file type %q", filepath.Ext(name))
	}
	if err != nil {
		return nil, &LoadError{Source: name, Err: err}
	}
	if len(rows) < 1 {
		return nil, &LoadError{Source: name, Err: fmt.Errorf("no header row")}
	}
	return fromRows(name, rows), nil
}

func readWorkbook(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	return f.GetRows(sheets[0])
}

func readCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	return cr.ReadAll()
}

func fromRows(name string, rows [][]string) []Record {
	header := rows[0]
	cols := map[string]int{}
	for i, h := range header {
		// a UTF-8 BOM on the first header cell would hide the column
		cols[strings.TrimPrefix(h, "\ufeff")] = i
	}

	for _, required := range []string{ColumnImageLink, ColumnArticleNumber} {
		if _, ok := cols[required]; !ok {
			logging.Component("loader").Warn("required column missing",
				"source", name, "column", required)
		}
	}

	get := func(row []string, col string) string {
		if idx, ok := cols[col]; ok && idx < len(row) {
			return row[idx]
		}
		return ""
	}

	out := []Record{}
	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		out = append(out, Record{
			ArticleNumber: strings.TrimSpace(get(row, ColumnArticleNumber)),
			ImageLink:     get(row, ColumnImageLink),
		})
	}
	return out
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

package dataio

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/YuminosukeSato/datakit/core/table"
	"github.com/YuminosukeSato/datakit/pkg/errors"
)

// DefaultOutputDir is used by SaveResults when dir is empty.
const DefaultOutputDir = "outputs"

// SaveResults writes results as indented JSON to dir/filename, creating dir.
// It returns the written path.
func SaveResults(dir, filename string, results any) (string, error) {
	if dir == "" {
		dir = DefaultOutputDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrapf(err, "create %s", dir)
	}
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "encode results")
	}
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", errors.Wrapf(err, "write %s", path)
	}
	return path, nil
}

// SaveTable writes t as .csv (via gota) or .xlsx (via excelize), chosen by extension.
func SaveTable(path string, t *table.Table) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "create %s", dir)
		}
	}
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".csv":
		f, err := os.Create(path)
		if err != nil {
			return errors.Wrapf(err, "create %s", path)
		}
		defer f.Close()
		if err := t.ToDataFrame().WriteCSV(f); err != nil {
			return errors.Wrapf(err, "write %s", path)
		}
		return nil
	case ".xlsx":
		return writeXLSX(path, t)
	default:
		return errors.NewUnsupportedFormatError(path, ext)
	}
}

func writeXLSX(path string, t *table.Table) error {
	f := excelize.NewFile()
	defer f.Close()
	const sheet = "Sheet1"

	header := make([]interface{}, t.Ncol())
	for j, name := range t.Names() {
		header[j] = name
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return errors.Wrap(err, "write header")
	}
	for i := 0; i < t.Nrow(); i++ {
		row := make([]interface{}, t.Ncol())
		for j := 0; j < t.Ncol(); j++ {
			c := t.At(j)
			switch {
			case c.IsMissing(i):
				row[j] = nil
			case c.Kind() == table.Numerical && !math.IsInf(c.Float(i), 0):
				row[j] = c.Float(i)
			default:
				row[j] = c.String(i)
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.Wrap(err, "cell name")
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return errors.Wrapf(err, "write row %d", i)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return errors.Wrapf(err, "save %s", path)
	}
	return nil
}

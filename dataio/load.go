// Package dataio loads tables from CSV, JSON and Excel files, prints an
// inspection report, and saves tables and result documents.
package dataio

import (
	"encoding/json"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/xuri/excelize/v2"

	"github.com/YuminosukeSato/datakit/core/table"
	"github.com/YuminosukeSato/datakit/pkg/errors"
	"github.com/YuminosukeSato/datakit/pkg/log"
)

// DefaultSeed seeds row sampling.
const DefaultSeed int64 = 42

// DefaultMissingMarkers are the cell values read as missing.
var DefaultMissingMarkers = []string{"", "NA", "NaN", "nan", "null", "<nil>"}

type loadOptions struct {
	sampleSize int
	seed       int64
	output     io.Writer
	missing    []string
	logger     log.Logger
}

// Option configures Load and LoadAndInspect.
type Option func(*loadOptions)

// WithSampleSize keeps n randomly chosen rows when the file has more than n.
func WithSampleSize(n int) Option {
	return func(o *loadOptions) { o.sampleSize = n }
}

// WithSeed changes the sampling seed.
func WithSeed(seed int64) Option {
	return func(o *loadOptions) { o.seed = seed }
}

// WithOutput sets where LoadAndInspect writes its report. Default os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(o *loadOptions) { o.output = w }
}

// WithMissingMarkers replaces DefaultMissingMarkers.
func WithMissingMarkers(markers []string) Option {
	return func(o *loadOptions) { o.missing = markers }
}

// WithLogger sets the logger. Default log.GetLoggerWithName("dataio").
func WithLogger(l log.Logger) Option {
	return func(o *loadOptions) { o.logger = l }
}

func newLoadOptions(opts []Option) *loadOptions {
	o := &loadOptions{
		seed:    DefaultSeed,
		output:  os.Stdout,
		missing: DefaultMissingMarkers,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = log.GetLoggerWithName("dataio")
	}
	return o
}

// Load reads path according to its extension: .csv, .json or .xlsx.
// Any other extension is an UnsupportedFormatError.
func Load(path string, opts ...Option) (*table.Table, error) {
	o := newLoadOptions(opts)
	start := time.Now()

	ext := strings.ToLower(filepath.Ext(path))
	var (
		t   *table.Table
		err error
	)
	switch ext {
	case ".csv":
		t, err = readWithGota(path, func(r io.Reader) dataframe.DataFrame {
			return dataframe.ReadCSV(r, dataframe.NaNValues(o.missing))
		})
	case ".json":
		t, err = readJSON(path, o.missing)
	case ".xlsx":
		t, err = readXLSX(path, o.missing)
	default:
		return nil, errors.NewUnsupportedFormatError(path, ext)
	}
	if err != nil {
		o.logger.Error("load failed", err, log.PathKey, path, log.FormatKey, ext)
		return nil, err
	}

	if o.sampleSize > 0 && o.sampleSize < t.Nrow() {
		rng := rand.New(rand.NewSource(o.seed))
		t = t.Take(rng.Perm(t.Nrow())[:o.sampleSize])
	}

	o.logger.Info("table loaded",
		log.OperationKey, log.OperationLoad,
		log.PathKey, path,
		log.FormatKey, ext,
		log.SamplesKey, t.Nrow(),
		log.FeaturesKey, t.Ncol(),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return t, nil
}

// LoadAndInspect loads path and writes an inspection report.
func LoadAndInspect(path string, opts ...Option) (*table.Table, *Report, error) {
	t, err := Load(path, opts...)
	if err != nil {
		return nil, nil, err
	}
	o := newLoadOptions(opts)
	report := Inspect(t)
	report.Path = path
	if err := report.Write(o.output); err != nil {
		return nil, nil, errors.Wrap(err, "write inspection report")
	}
	return t, report, nil
}

func readWithGota(path string, read func(io.Reader) dataframe.DataFrame) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	t, err := table.FromDataFrame(read(f))
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	return t, nil
}

// readXLSX reads the first sheet; its first row is the header.
func readXLSX(path string, missing []string) (*table.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.Wrapf(errors.ErrEmptyData, "%s has no sheets", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.Wrapf(err, "read sheet %q", sheets[0])
	}
	if len(rows) == 0 {
		return nil, errors.Wrapf(errors.ErrEmptyData, "sheet %q is empty", sheets[0])
	}

	// trailing empty cells are not returned, pad to the header width
	width := len(rows[0])
	for i, row := range rows {
		if len(row) < width {
			rows[i] = append(row, make([]string, width-len(row))...)
		} else if len(row) > width {
			rows[i] = row[:width]
		}
	}
	return loadRecords(path, rows, missing)
}

func loadRecords(path string, records [][]string, missing []string) (*table.Table, error) {
	t, err := table.FromDataFrame(dataframe.LoadRecords(records, dataframe.NaNValues(missing)))
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	return t, nil
}

// readJSON reads an array of objects. Columns follow the key order of the
// file, with keys first seen in later objects appended. Absent keys and null
// values are missing.
func readJSON(path string, missing []string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	if err := expectDelim(dec, '['); err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	var (
		header []string
		index  = make(map[string]int)
		rows   []map[string]string
	)
	for dec.More() {
		row, keys, err := readJSONObject(dec)
		if err != nil {
			return nil, errors.Wrapf(err, "parse %s", path)
		}
		for _, k := range keys {
			if _, ok := index[k]; !ok {
				index[k] = len(header)
				header = append(header, k)
			}
		}
		rows = append(rows, row)
	}
	if err := expectDelim(dec, ']'); err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	if len(header) == 0 {
		return nil, errors.Wrapf(errors.ErrEmptyData, "%s has no records", path)
	}

	records := make([][]string, 0, len(rows)+1)
	records = append(records, header)
	for _, row := range rows {
		rec := make([]string, len(header))
		for j, k := range header {
			rec[j] = row[k]
		}
		records = append(records, rec)
	}
	return loadRecords(path, records, append([]string{""}, missing...))
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return errors.Newf("expected %q, got %v", want, tok)
	}
	return nil
}

// readJSONObject reads one object as text cells and returns its keys in order.
// null becomes "", nested values keep their JSON text.
func readJSONObject(dec *json.Decoder) (map[string]string, []string, error) {
	if err := expectDelim(dec, '{'); err != nil {
		return nil, nil, err
	}
	row := make(map[string]string)
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, errors.Newf("expected object key, got %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, nil, err
		}
		if _, dup := row[key]; !dup {
			keys = append(keys, key)
		}
		row[key] = jsonCell(raw)
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, nil, err
	}
	return row, keys, nil
}

func jsonCell(raw json.RawMessage) string {
	var s string
	switch {
	case string(raw) == "null":
		return ""
	case json.Unmarshal(raw, &s) == nil:
		return s
	default:
		return string(raw)
	}
}

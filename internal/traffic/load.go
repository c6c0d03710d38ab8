package traffic

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// ErrMissingColumn is returned when the input header lacks a required column.
var ErrMissingColumn = errors.New("missing required column")

// LoadOptions configures how the input file is read.
type LoadOptions struct {
	Delimiter rune
}

// Load reads a traffic export from path.
func Load(path string, opts LoadOptions, logger *slog.Logger) ([]RawRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open traffic file: %w", err)
	}
	defer file.Close()

	records, err := LoadReader(file, opts)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	logger.Info("Loaded traffic file",
		slog.String("path", path),
		slog.Int("rows", len(records)))

	return records, nil
}

// LoadReader reads a traffic export from r. Every column is kept as text;
// numeric conversion happens in Cast. A file with a header and no data rows
// yields no records.
func LoadReader(r io.Reader, opts LoadOptions) ([]RawRecord, error) {
	delimiter := opts.Delimiter
	if delimiter == 0 {
		delimiter = ','
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	header, hasRows, err := readHeader(data, delimiter)
	if err != nil {
		return nil, err
	}
	if err := checkColumns(header); err != nil {
		return nil, err
	}
	if !hasRows {
		return []RawRecord{}, nil
	}

	df := dataframe.ReadCSV(bytes.NewReader(data),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.WithDelimiter(delimiter),
		dataframe.NaNValues([]string{}),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("read csv: %w", df.Err)
	}

	available := make(map[string]string, df.Ncol())
	for _, name := range df.Names() {
		available[cleanHeader(name)] = name
	}
	columns := make(map[string][]string, len(RequiredColumns))
	for _, required := range RequiredColumns {
		columns[required] = df.Col(available[required]).Records()
	}

	records := make([]RawRecord, df.Nrow())
	for i := range records {
		records[i] = RawRecord{
			Seq:            i,
			Date:           columns[ColumnDate][i],
			DeviceCategory: columns[ColumnDeviceCategory][i],
			Browser:        columns[ColumnBrowser][i],
			Visitors:       columns[ColumnVisitors][i],
			Sessions:       columns[ColumnSessions][i],
			BounceRate:     columns[ColumnBounceRate][i],
		}
	}

	return records, nil
}

// readHeader returns the header row of data and whether a data row follows it.
func readHeader(data []byte, delimiter rune) ([]string, bool, error) {
	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = delimiter
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, false, fmt.Errorf("read csv: no header row")
	}
	if err != nil {
		return nil, false, fmt.Errorf("read csv header: %w", err)
	}

	_, err = cr.Read()
	if errors.Is(err, io.EOF) {
		return header, false, nil
	}
	return header, true, nil
}

// checkColumns verifies every required column is in header.
func checkColumns(header []string) error {
	present := make(map[string]bool, len(header))
	for _, name := range header {
		present[cleanHeader(name)] = true
	}
	for _, required := range RequiredColumns {
		if !present[required] {
			return fmt.Errorf("%w: %q", ErrMissingColumn, required)
		}
	}
	return nil
}

// cleanHeader strips a UTF-8 BOM and surrounding whitespace from a header cell.
func cleanHeader(name string) string {
	return strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
}

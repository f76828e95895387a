// Package dataset reads and writes CSV files as models.Dataset values.
//
// A UTF-8 byte order mark is stripped from the first column name on read and
// recorded in Dataset.BOM; Write puts it back, so a remapped file keeps the
// encoding marker of its source.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"teakeys/internal/models"
)

// ErrNoHeader is returned for a CSV file without a header row.
var ErrNoHeader = errors.New("csv has no header row")

const utf8BOM = "\ufeff"

// Read parses CSV from r. The first record holds the column names; rows may
// have any number of fields and are kept as read.
func Read(r io.Reader, name string) (*models.Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}

	if len(records) == 0 {
		return nil, ErrNoHeader
	}

	columns := records[0]

	hasBOM := len(columns) > 0 && strings.HasPrefix(columns[0], utf8BOM)
	if hasBOM {
		columns[0] = strings.TrimPrefix(columns[0], utf8BOM)
	}

	return &models.Dataset{
		Name:    name,
		BOM:     hasBOM,
		Columns: columns,
		Rows:    records[1:],
	}, nil
}

// Write encodes ds as CSV with a header row, preceded by a BOM when ds.BOM is set.
func Write(w io.Writer, ds *models.Dataset) error {
	if ds.BOM {
		if _, err := io.WriteString(w, utf8BOM); err != nil {
			return fmt.Errorf("failed to write byte order mark: %w", err)
		}
	}

	writer := csv.NewWriter(w)

	if err := writer.Write(ds.Columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	if err := writer.WriteAll(ds.Rows); err != nil {
		return fmt.Errorf("failed to write rows: %w", err)
	}

	return nil
}

// Load reads the CSV file at path. Any failure is a DatasetAccessError.
func Load(path string) (*models.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &models.DatasetAccessError{Op: "dataset.open", Path: path, Err: err}
	}
	defer f.Close()

	ds, err := Read(f, filepath.Base(path))
	if err != nil {
		return nil, &models.DatasetAccessError{Op: "dataset.read", Path: path, Err: err}
	}

	return ds, nil
}

// Save writes ds to path through a temporary file, so a failed save leaves
// any existing file at path untouched.
func Save(path string, ds *models.Dataset) error {
	if ds == nil {
		return &models.DatasetAccessError{Op: "dataset.save", Path: path, Err: errors.New("dataset is nil")}
	}

	tmp := path + ".tmp"

	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return &models.DatasetAccessError{Op: "dataset.create", Path: tmp, Err: err}
	}

	if err := Write(f, ds); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)

		return &models.DatasetAccessError{Op: "dataset.write", Path: tmp, Err: err}
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)

		return &models.DatasetAccessError{Op: "dataset.close", Path: tmp, Err: err}
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)

		return &models.DatasetAccessError{Op: "dataset.rename", Path: path, Err: err}
	}

	return nil
}

// Package remapper renames dataset columns using a key mapping.
package remapper

import (
	"errors"

	"teakeys/internal/dataset"
	"teakeys/internal/models"
)

// ErrNilDataset is wrapped in the DatasetAccessError returned for a nil dataset.
var ErrNilDataset = errors.New("dataset is nil")

// Remap returns a copy of ds in which every column named by a mapping key is
// renamed to the mapped value. Other columns keep their names, column order
// is unchanged and rows are copied as-is. No matching columns is not an error.
func Remap(ds *models.Dataset, m *models.KeyMapping) (*models.Dataset, error) {
	if m == nil {
		return nil, &models.NotReadyError{Stage: "remap", Prerequisite: "key mapping"}
	}

	if ds == nil {
		return nil, &models.DatasetAccessError{Op: "remap", Err: ErrNilDataset}
	}

	out := ds.Clone()
	for i, col := range out.Columns {
		if renamed, ok := m.Get(col); ok {
			out.Columns[i] = renamed
		}
	}

	return out, nil
}

// Stats describes the effect of a remap.
type Stats struct {
	Columns int
	Renamed int
}

// Diff counts how many columns changed name between before and after.
func Diff(before, after *models.Dataset) Stats {
	s := Stats{Columns: len(before.Columns)}

	for i := range before.Columns {
		if i < len(after.Columns) && before.Columns[i] != after.Columns[i] {
			s.Renamed++
		}
	}

	return s
}

// RemapFile loads the CSV at src, remaps it and writes the result to dst.
// On any failure dst is left as it was.
func RemapFile(src, dst string, m *models.KeyMapping) (Stats, error) {
	if m == nil {
		return Stats{}, &models.NotReadyError{Stage: "remap", Prerequisite: "key mapping"}
	}

	ds, err := dataset.Load(src)
	if err != nil {
		return Stats{}, err
	}

	out, err := Remap(ds, m)
	if err != nil {
		return Stats{}, err
	}

	if err := dataset.Save(dst, out); err != nil {
		return Stats{}, err
	}

	return Diff(ds, out), nil
}

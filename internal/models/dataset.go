package models

// Dataset is a table of string cells. Only the column names carry meaning here;
// row contents are copied through as-is.
type Dataset struct {
	Name    string
	Columns []string
	Rows    [][]string
	// BOM records a UTF-8 byte order mark on the source file, so it can be
	// written back.
	BOM bool
}

// Clone returns a deep copy of the dataset.
func (d *Dataset) Clone() *Dataset {
	out := &Dataset{
		Name:    d.Name,
		BOM:     d.BOM,
		Columns: make([]string, len(d.Columns)),
		Rows:    make([][]string, len(d.Rows)),
	}

	copy(out.Columns, d.Columns)

	for i, row := range d.Rows {
		out.Rows[i] = make([]string, len(row))
		copy(out.Rows[i], row)
	}

	return out
}

package core

import "database/sql"

// Rows wraps sql.Rows to provide a consistent cursor across native connections.
type Rows struct {
	*sql.Rows
}

// ColumnIndex maps result column names to their positions.
// Names are matched exactly as the catalog queries alias them.
func (r *Rows) ColumnIndex() (map[string]int, error) {
	cols, err := r.Columns()
	if err != nil {
		return nil, err
	}
	idx := make(map[string]int, len(cols))
	for i, c := range cols {
		idx[c] = i
	}
	return idx, nil
}

package sparams

// Assemble merges series into a Table keyed by grid. Series whose length
// differs from the grid are left out and named in the returned Exclusion.
// Content differences are not checked here; the Reconciler reports those.
func Assemble(grid []float64, series []*Series, p Parameter, mode DisplayMode) (*Table, Exclusion, error) {
	freqs := make([]float64, len(grid))
	copy(freqs, grid)

	table := &Table{
		Columns: []Column{{Name: FrequencyColumn, Values: freqs}},
	}
	var excluded Exclusion

	for _, s := range series {
		if s.Len() != len(grid) {
			excluded.Files = append(excluded.Files, SourceName(s.Name, p, mode))
			continue
		}
		values := make([]float64, s.Len())
		copy(values, s.Values)
		table.Columns = append(table.Columns, Column{Name: s.Name, Values: values})
	}

	if len(table.Columns) == 1 {
		return nil, excluded, &EmptyResultError{Excluded: excluded.Files}
	}
	return table, excluded, nil
}

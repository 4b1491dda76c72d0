package querybuilder

import "sort"

type InsertRows [][]interface{} // multiple Rows

// UpdateData maps column to new value
type UpdateData map[string]interface{}

// sortedColumns keeps generated SQL stable across map iteration orders
func (d UpdateData) sortedColumns() []string {
	cols := make([]string, 0, len(d))
	for col := range d {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols
}

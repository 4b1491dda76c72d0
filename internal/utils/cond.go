package querybuilder

import "strings"

// Condition is a raw clause with its args
type Condition struct {
	clause string
	args   []interface{}
}

// renderConditions ANDs the clauses in order.
func renderConditions(conditions []Condition) (string, []interface{}) {
	parts := make([]string, 0, len(conditions))
	args := make([]interface{}, 0)
	for _, c := range conditions {
		parts = append(parts, c.clause)
		args = append(args, c.args...)
	}
	return strings.Join(parts, " AND "), args
}

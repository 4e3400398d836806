package postgres

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fastygo/taskboard/domain"
)

const selectTasks = `SELECT id, title, description, owner, priority, due_date, status FROM tasks`

// buildFilterQuery assembles a parameterised query that constrains only the
// criteria present in filter.
func buildFilterQuery(filter domain.TaskFilter) (string, []interface{}) {
	f := filter.Normalized()

	var (
		sb   strings.Builder
		args []interface{}
	)
	bind := func(v interface{}) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	sb.WriteString(selectTasks)
	sb.WriteString(" WHERE 1=1")

	if f.ID != 0 {
		fmt.Fprintf(&sb, " AND id = %s", bind(f.ID))
	}
	if f.Text != "" {
		p := bind("%" + f.Text + "%")
		fmt.Fprintf(&sb, " AND (LOWER(title) LIKE LOWER(%s) OR LOWER(description) LIKE LOWER(%s))", p, p)
	}
	if f.Owner != "" {
		fmt.Fprintf(&sb, " AND LOWER(owner) = LOWER(%s)", bind(f.Owner))
	}
	if f.Priority != "" {
		fmt.Fprintf(&sb, " AND priority = %s", bind(string(f.Priority)))
	}
	if f.Status != "" {
		fmt.Fprintf(&sb, " AND status = %s", bind(string(f.Status)))
	}
	sb.WriteString(" ORDER BY id")

	return sb.String(), args
}

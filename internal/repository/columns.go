package repository

import (
	"fmt"
	"strings"

	"github.com/dsgallups/rust-atlanta/internal/presave"
)

// updateSet accumulates the SET clause of a partial UPDATE. Only fields the
// caller explicitly set are written.
type updateSet struct {
	assignments []string
	args        []any
}

// setField appends column = $n when f is set. encode converts the staged
// value into a driver argument; nil means pass the value through.
func setField[T any](u *updateSet, column string, f presave.Field[T], encode func(T) any) {
	if !f.IsSet() {
		return
	}
	var arg any = f.Value()
	if encode != nil {
		arg = encode(f.Value())
	}
	u.args = append(u.args, arg)
	u.assignments = append(u.assignments, fmt.Sprintf("%s = $%d", column, len(u.args)))
}

// build renders UPDATE table SET ... WHERE id = $n RETURNING returning.
func (u *updateSet) build(table string, id any, returning string) (string, []any) {
	args := append(u.args, id)
	query := fmt.Sprintf(
		"UPDATE %s SET %s WHERE id = $%d RETURNING %s",
		table,
		strings.Join(u.assignments, ", "),
		len(args),
		returning,
	)
	return query, args
}

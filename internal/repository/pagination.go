package repository

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidCursor is returned for a malformed pagination cursor.
var ErrInvalidCursor = errors.New("invalid pagination cursor")

// PaginationCursor represents decoded cursor for pagination.
type PaginationCursor struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// listQuery describes a keyset-paginated SELECT ordered newest first.
type listQuery struct {
	table   string
	columns string
	where   []string
	args    []any
}

// filter appends a condition; "?" is replaced with the next placeholder.
func (l *listQuery) filter(cond string, arg any) {
	l.args = append(l.args, arg)
	l.where = append(l.where, strings.Replace(cond, "?", fmt.Sprintf("$%d", len(l.args)), 1))
}

func (l *listQuery) build(cursor *PaginationCursor, limit int) (string, []any) {
	if cursor != nil {
		l.args = append(l.args, cursor.CreatedAt, cursor.ID)
		l.where = append(l.where, fmt.Sprintf("(created_at, id) < ($%d, $%d)", len(l.args)-1, len(l.args)))
	}

	query := fmt.Sprintf("SELECT %s FROM %s", l.columns, l.table)
	if len(l.where) > 0 {
		query += " WHERE " + strings.Join(l.where, " AND ")
	}

	l.args = append(l.args, limit+1) // Fetch one extra to determine hasMore
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d", len(l.args))
	return query, l.args
}

// listPage runs l and returns at most limit items plus the cursor of the next page.
func listPage[T any](
	ctx context.Context,
	q querier,
	l *listQuery,
	cursor string,
	limit int,
	scan func(rowScanner) (T, error),
	key func(T) PaginationCursor,
) ([]T, string, error) {
	var cursorData *PaginationCursor
	if cursor != "" {
		var err error
		cursorData, err = decodeCursor(cursor)
		if err != nil {
			return nil, "", ErrInvalidCursor
		}
	}

	query, args := l.build(cursorData, limit)
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list %s: %w", l.table, err)
	}
	defer rows.Close()

	items := make([]T, 0, limit)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, "", fmt.Errorf("failed to scan %s row: %w", l.table, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, "", fmt.Errorf("error iterating %s: %w", l.table, err)
	}

	var nextCursor string
	if len(items) > limit {
		items = items[:limit]
		c := key(items[len(items)-1])
		nextCursor = encodeCursor(&c)
	}
	return items, nextCursor, nil
}

// encodeCursor encodes pagination cursor to base64.
func encodeCursor(cursor *PaginationCursor) string {
	data, _ := json.Marshal(cursor)
	return base64.URLEncoding.EncodeToString(data)
}

// decodeCursor decodes base64 pagination cursor.
func decodeCursor(s string) (*PaginationCursor, error) {
	data, err := base64.URLEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}

	var cursor PaginationCursor
	if err := json.Unmarshal(data, &cursor); err != nil {
		return nil, err
	}
	return &cursor, nil
}

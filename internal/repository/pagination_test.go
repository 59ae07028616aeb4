package repository

import (
	"testing"
	"time"
)

func TestCursorRoundTrip(t *testing.T) {
	in := &PaginationCursor{ID: 42, CreatedAt: time.Date(2024, 5, 6, 7, 8, 9, 123000, time.UTC)}

	out, err := decodeCursor(encodeCursor(in))
	if err != nil {
		t.Fatalf("decodeCursor: %v", err)
	}
	if out.ID != in.ID || !out.CreatedAt.Equal(in.CreatedAt) {
		t.Fatalf("cursor mismatch: got %+v, want %+v", out, in)
	}
}

func TestDecodeCursor_Invalid(t *testing.T) {
	for _, raw := range []string{"%%%", "bm90LWpzb24="} {
		if _, err := decodeCursor(raw); err == nil {
			t.Errorf("decodeCursor(%q) should fail", raw)
		}
	}
}

func TestListQuery_Build(t *testing.T) {
	tests := []struct {
		name      string
		filters   func(l *listQuery)
		cursor    *PaginationCursor
		wantQuery string
		wantArgs  int
	}{
		{
			name:      "no filters",
			filters:   func(*listQuery) {},
			wantQuery: "SELECT id FROM news ORDER BY created_at DESC, id DESC LIMIT $1",
			wantArgs:  1,
		},
		{
			name: "filter and cursor",
			filters: func(l *listQuery) {
				l.filter("published_at <= ?", time.Unix(0, 0))
			},
			cursor:    &PaginationCursor{ID: 3, CreatedAt: time.Unix(10, 0)},
			wantQuery: "SELECT id FROM news WHERE published_at <= $1 AND (created_at, id) < ($2, $3) ORDER BY created_at DESC, id DESC LIMIT $4",
			wantArgs:  4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := &listQuery{table: "news", columns: "id"}
			tt.filters(l)
			query, args := l.build(tt.cursor, 20)
			if query != tt.wantQuery {
				t.Errorf("query = %q, want %q", query, tt.wantQuery)
			}
			if len(args) != tt.wantArgs {
				t.Fatalf("len(args) = %d, want %d", len(args), tt.wantArgs)
			}
			if args[len(args)-1] != 21 {
				t.Errorf("limit arg = %v, want 21", args[len(args)-1])
			}
		})
	}
}

package migrations

import (
	"io/fs"
	"strings"
	"testing"
)

func TestDescriptors_Order(t *testing.T) {
	got, err := Descriptors()
	if err != nil {
		t.Fatalf("Descriptors: %v", err)
	}

	want := []string{"users", "user_auths", "projects", "events", "news"}
	if len(got) != len(want) {
		t.Fatalf("got %d descriptors, want %d: %+v", len(got), len(want), got)
	}
	for i, d := range got {
		if d.Version != uint(i+1) {
			t.Errorf("descriptor %d version = %d, want %d", i, d.Version, i+1)
		}
		if d.Name != want[i] {
			t.Errorf("descriptor %d name = %q, want %q", i, d.Name, want[i])
		}
	}
}

func TestEveryUpHasDown(t *testing.T) {
	ups, _ := fs.Glob(FS, "*.up.sql")
	for _, up := range ups {
		down := strings.TrimSuffix(up, ".up.sql") + ".down.sql"
		if _, err := fs.Stat(FS, down); err != nil {
			t.Errorf("%s has no matching %s", up, down)
		}
	}
}

func TestTimestampColumns(t *testing.T) {
	ups, _ := fs.Glob(FS, "*.up.sql")
	for _, up := range ups {
		data, err := fs.ReadFile(FS, up)
		if err != nil {
			t.Fatalf("read %s: %v", up, err)
		}
		sql := string(data)
		for _, col := range []string{"created_at", "updated_at"} {
			if !strings.Contains(sql, col) {
				t.Errorf("%s is missing %s", up, col)
			}
		}
	}
}

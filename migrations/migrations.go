// Package migrations embeds the ordered SQL schema changes.
package migrations

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"
)

// FS holds every NNNNNN_name.{up,down}.sql file.
//
//go:embed *.sql
var FS embed.FS

// Descriptor identifies one schema change.
type Descriptor struct {
	Version uint
	Name    string
}

// Descriptors returns the schema changes in apply order.
func Descriptors() ([]Descriptor, error) {
	files, err := fs.Glob(FS, "*.up.sql")
	if err != nil {
		return nil, err
	}

	descriptors := make([]Descriptor, 0, len(files))
	for _, file := range files {
		base := strings.TrimSuffix(file, ".up.sql")
		rawVersion, name, ok := strings.Cut(base, "_")
		if !ok {
			return nil, fmt.Errorf("migration %q: missing version separator", file)
		}
		version, err := strconv.ParseUint(rawVersion, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("migration %q: invalid version: %w", file, err)
		}
		descriptors = append(descriptors, Descriptor{Version: uint(version), Name: name})
	}

	sort.Slice(descriptors, func(i, j int) bool {
		return descriptors[i].Version < descriptors[j].Version
	})
	return descriptors, nil
}

// Package presave normalizes staged entity writes before they reach storage.
package presave

import "time"

// Field is a staged column value. A set field is written by the pending
// operation; an unchanged field only carries the value loaded from storage.
type Field[T any] struct {
	value T
	set   bool
}

// Set returns a field explicitly set by the caller.
func Set[T any](v T) Field[T] {
	return Field[T]{value: v, set: true}
}

// Unchanged returns a field holding a loaded value that will not be written.
func Unchanged[T any](v T) Field[T] {
	return Field[T]{value: v}
}

// Value returns the staged or loaded value.
func (f Field[T]) Value() T {
	return f.value
}

// IsSet reports whether the caller explicitly set the field for this write.
func (f Field[T]) IsSet() bool {
	return f.set
}

// Set assigns v and marks the field as written.
func (f *Field[T]) Set(v T) {
	f.value = v
	f.set = true
}

// Reset keeps the current value but excludes the field from the write.
func (f *Field[T]) Reset() {
	f.set = false
}

// Stamps holds the bookkeeping timestamps shared by every entity.
type Stamps struct {
	CreatedAt Field[time.Time]
	UpdatedAt Field[time.Time]
}

// Entity is a staged write that carries bookkeeping timestamps.
type Entity interface {
	PreSaveStamps() *Stamps
}

// Credential is an entity whose secret token is issued once, on insert.
type Credential interface {
	Entity
	PreSaveToken() *Field[string]
}

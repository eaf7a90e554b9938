// Package repository contains the data access layer. Handlers never issue
// SQL directly; they depend on the repository types defined here.
//
// Sentinel errors let handlers distinguish failure classes without string
// matching. Note the API deliberately answers 400 (not 404) for unknown ids
// on catalog resources, so ErrNotFound maps to a 400 "Invalid ID" there.
package repository

import "errors"

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when an insert or update violates a unique key.
// The application performs its own pre-write uniqueness checks, but those are
// check-then-write and inherently racy; the database constraint is the
// backstop and surfaces here.
var ErrDuplicate = errors.New("duplicate record")

// Package repositories provides the in-memory reference implementation of
// the Repository contracts named in spec.md §4.6: pure CRUD over Session,
// Message, and Memory, scoped per unit of work. A durable backing store
// (ent/pgx/migrate, as the teacher uses) is not implemented here — see
// DESIGN.md for the dependency-drop justification; these guarded maps
// satisfy the same contracts the orchestrator and engine depend on.
package repositories

import "errors"

// ErrNotFound indicates the requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrAlreadyExists indicates a Create call collided with an existing ID.
var ErrAlreadyExists = errors.New("already exists")

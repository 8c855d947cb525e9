package battledb

import "errors"

var (
	// ErrNotFound indicates no battle matched the lookup.
	ErrNotFound = errors.New("battle not found")
	// ErrDuplicate indicates an insert collided with the (guild_id,
	// battle_url) uniqueness constraint. Callers treat this as "already
	// registered", not a failure.
	ErrDuplicate = errors.New("battle already registered")
)

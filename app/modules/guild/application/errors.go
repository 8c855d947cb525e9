package guildservice

import "errors"

var (
	// ErrNilConfig indicates UpsertConfig was called without a config.
	ErrNilConfig = errors.New("guild config is nil")
	// ErrMissingGuildID indicates a config without an owning guild id.
	ErrMissingGuildID = errors.New("guild ID required")
	// ErrMissingKillboardID indicates sync was enabled without a killboard
	// guild id to sync against.
	ErrMissingKillboardID = errors.New("killboard guild ID required to enable sync")
)

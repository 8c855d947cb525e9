package guilddb

import "errors"

// ErrNotFound indicates no configuration exists for the guild.
var ErrNotFound = errors.New("guild config not found")

package battleservice

import "errors"

var (
	// ErrGuildMetaUnavailable indicates the killboard returned no usable
	// metadata for a tracked guild; the guild's pass is abandoned.
	ErrGuildMetaUnavailable = errors.New("guild metadata unavailable")
	// ErrMissingTargetDay indicates a target-day sync was requested without
	// a target day.
	ErrMissingTargetDay = errors.New("target day required for target-day sync")
)

package leagueservice

import "errors"

var (
	// ErrMissingUser indicates the user directory has no such user.
	ErrMissingUser = errors.New("user not found")

	// ErrInvalidDelta indicates a negative XP delta.
	ErrInvalidDelta = errors.New("xp delta must not be negative")

	// ErrNotQualified indicates the user's lifetime XP is below the
	// admission threshold.
	ErrNotQualified = errors.New("lifetime xp below admission threshold")

	// ErrNotInLeague indicates the user holds no active membership in the
	// requested scope.
	ErrNotInLeague = errors.New("user has no active league membership")
)

package leaguedb

import (
	"errors"
	"fmt"
)

// Sentinel errors for the repository layer.
var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrCohortFull indicates the cohort already holds capacity members.
	ErrCohortFull = errors.New("cohort full")

	// ErrCohortClosed indicates the cohort is no longer active or its window
	// has ended.
	ErrCohortClosed = errors.New("cohort closed")

	// ErrAlreadyMember indicates the user already holds an active membership
	// in the cohort's scope.
	ErrAlreadyMember = errors.New("already member")

	// ErrClaimLost indicates the caller no longer holds the resolution claim.
	ErrClaimLost = errors.New("resolution claim lost")
)

// StoreError wraps an unexpected database failure. Callers treat it as
// transient: resolution retries on the next tick, ingress surfaces it.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("leaguedb.%s: %v", e.Op, e.Err) }

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Transient() bool { return true }

func storeErr(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}

// IsTransient reports whether err is a store failure worth retrying.
func IsTransient(err error) bool {
	var se *StoreError
	return errors.As(err, &se) && se.Transient()
}

package submission

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoFilesAttached is returned by Validate when the file set is empty.
	ErrNoFilesAttached = errors.New("crimson: no files have been added to the submission")

	// ErrAuthenticationRequired is returned when an operation needs a
	// logged-in session.
	ErrAuthenticationRequired = errors.New("crimson: you must first authenticate with the server")

	// ErrNotLocked is returned by Unlock when no instrument lock is held.
	ErrNotLocked = errors.New("crimson: no instrument lock is held")

	// ErrLockHeld is returned when an operation is blocked by the held
	// lock: logging out without unlocking, or locking a second instrument.
	ErrLockHeld = errors.New("crimson: an instrument lock is still held; unlock first")
)

// AuthenticationFailedError wraps a credential rejection. Session state is
// unchanged when it is returned.
type AuthenticationFailedError struct {
	Username string
	Err      error
}

func (e *AuthenticationFailedError) Error() string {
	return fmt.Sprintf("crimson: authentication failed for %q: %v", e.Username, e.Err)
}

func (e *AuthenticationFailedError) Unwrap() error { return e.Err }

// InvalidInstrumentError is returned by Lock for an instrument outside the
// observatory's fixed set.
type InvalidInstrumentError struct {
	Instrument  string
	Observatory Observatory
}

func (e *InvalidInstrumentError) Error() string {
	return fmt.Sprintf("crimson: instrument %q is not a valid choice for observatory %q", e.Instrument, e.Observatory)
}

// FileNotReadableError is returned by AddFile when the path does not exist
// or cannot be read.
type FileNotReadableError struct {
	Path string
	Err  error
}

func (e *FileNotReadableError) Error() string {
	return fmt.Sprintf("crimson: %q does not exist or is not readable", e.Path)
}

func (e *FileNotReadableError) Unwrap() error { return e.Err }

// CertificationFailedError is returned by AddFile when the certify
// collaborator rejects the file; the path is not added.
type CertificationFailedError struct {
	Path string
	Err  error
}

func (e *CertificationFailedError) Error() string {
	return fmt.Sprintf("crimson: certification failed for %q: %v", e.Path, e.Err)
}

func (e *CertificationFailedError) Unwrap() error { return e.Err }

// UnknownFileError is returned by RemoveFile for a path never added.
type UnknownFileError struct {
	Path string
}

func (e *UnknownFileError) Error() string {
	return fmt.Sprintf("crimson: %q is not part of the submission", e.Path)
}

// SchemaMismatchError indicates the record's key set drifted from the
// schema. Under correct use of Record this is unreachable; it is a
// programming-error-class failure, not a user mistake.
type SchemaMismatchError struct {
	Missing []string
	Extra   []string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("crimson: record keys drifted from schema (missing %v, extra %v)", e.Missing, e.Extra)
}

// EmptyRequiredFieldsError reports every required field that is still empty
// at validation time, not just the first.
type EmptyRequiredFieldsError struct {
	Keys []string
}

func (e *EmptyRequiredFieldsError) Error() string {
	return fmt.Sprintf("crimson: these keywords cannot be empty: %s", strings.Join(e.Keys, ", "))
}

// LockMismatchError is returned when the locked instrument differs from the
// record's instrument field.
type LockMismatchError struct {
	Locked   string
	Reported string
}

func (e *LockMismatchError) Error() string {
	return fmt.Sprintf("crimson: locked instrument is not the one being updated: locked=%q vs reported=%q", e.Locked, e.Reported)
}

// SubmissionRejectedError wraps a server-side failure during Submit. The
// record, file set and lock are unchanged when it is returned.
type SubmissionRejectedError struct {
	Err error
}

func (e *SubmissionRejectedError) Error() string {
	return fmt.Sprintf("crimson: submission rejected by server: %v", e.Err)
}

func (e *SubmissionRejectedError) Unwrap() error { return e.Err }

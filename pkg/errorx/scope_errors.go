package errorx

import (
	"fmt"
)

// Error taxonomy for the connection and transaction scopes in pkg/dbx.
//
// Each phase of the borrow/begin/work/commit-or-rollback bracket has its own
// error type, so that callers can tell apart a pool exhaustion from a failed
// commit with a plain errors.As check.

// ACQUIRE ERROR

// AcquireError - the pool could not hand out a connection. The unit of work never ran.
type AcquireError struct {
	message string
	err     error
}

// NewAcquireError - AcquireError constructor.
func NewAcquireError(msg string, args ...any) *AcquireError {
	return &AcquireError{message: fmt.Sprintf(msg, args...), err: nil}
}

// NewAcquireErrorWrapper - AcquireError constructor for wrapper of another error.
func NewAcquireErrorWrapper(err error, msg string, args ...any) *AcquireError {
	return &AcquireError{message: fmt.Sprintf(msg, args...), err: err}
}

// Error - return the error string.
func (ae *AcquireError) Error() string {
	if ae.err != nil {
		return fmt.Errorf("%s: %w", ae.message, ae.err).Error()
	}

	return ae.message
}

// Unwrap - return the wrapped error, if any.
func (ae *AcquireError) Unwrap() error {
	return ae.err
}

// BEGIN ERROR

// BeginError - the connection could not leave autocommit mode. The unit of work
// never ran and no rollback was attempted.
type BeginError struct {
	message string
	err     error
}

// NewBeginError - BeginError constructor.
func NewBeginError(msg string, args ...any) *BeginError {
	return &BeginError{message: fmt.Sprintf(msg, args...), err: nil}
}

// NewBeginErrorWrapper - BeginError constructor for wrapper of another error.
func NewBeginErrorWrapper(err error, msg string, args ...any) *BeginError {
	return &BeginError{message: fmt.Sprintf(msg, args...), err: err}
}

// Error - return the error string.
func (be *BeginError) Error() string {
	if be.err != nil {
		return fmt.Errorf("%s: %w", be.message, be.err).Error()
	}

	return be.message
}

// Unwrap - return the wrapped error, if any.
func (be *BeginError) Unwrap() error {
	return be.err
}

// COMMIT ERROR

// CommitError - commit failed after a successful unit of work. It replaces the
// unit of work's success value as the final outcome.
type CommitError struct {
	message string
	err     error
}

// NewCommitError - CommitError constructor.
func NewCommitError(msg string, args ...any) *CommitError {
	return &CommitError{message: fmt.Sprintf(msg, args...), err: nil}
}

// NewCommitErrorWrapper - CommitError constructor for wrapper of another error.
func NewCommitErrorWrapper(err error, msg string, args ...any) *CommitError {
	return &CommitError{message: fmt.Sprintf(msg, args...), err: err}
}

// Error - return the error string.
func (ce *CommitError) Error() string {
	if ce.err != nil {
		return fmt.Errorf("%s: %w", ce.message, ce.err).Error()
	}

	return ce.message
}

// Unwrap - return the wrapped error, if any.
func (ce *CommitError) Unwrap() error {
	return ce.err
}

// ROLLBACK ERROR

// RollbackError - rollback failed after a unit of work failure. It is never
// surfaced as the primary outcome of a scope: the original unit of work error
// keeps that role and the rollback failure stays secondary.
type RollbackError struct {
	message string
	err     error
}

// NewRollbackError - RollbackError constructor.
func NewRollbackError(msg string, args ...any) *RollbackError {
	return &RollbackError{message: fmt.Sprintf(msg, args...), err: nil}
}

// NewRollbackErrorWrapper - RollbackError constructor for wrapper of another error.
func NewRollbackErrorWrapper(err error, msg string, args ...any) *RollbackError {
	return &RollbackError{message: fmt.Sprintf(msg, args...), err: err}
}

// Error - return the error string.
func (re *RollbackError) Error() string {
	if re.err != nil {
		return fmt.Errorf("%s: %w", re.message, re.err).Error()
	}

	return re.message
}

// Unwrap - return the wrapped error, if any.
func (re *RollbackError) Unwrap() error {
	return re.err
}

// UNIT OF WORK ERROR

// UnitOfWorkError - a unit of work faulted synchronously (panicked) instead of
// returning an error. The recovered panic value is kept in the message.
type UnitOfWorkError struct {
	message string
	err     error
}

// NewUnitOfWorkError - UnitOfWorkError constructor.
func NewUnitOfWorkError(msg string, args ...any) *UnitOfWorkError {
	return &UnitOfWorkError{message: fmt.Sprintf(msg, args...), err: nil}
}

// NewUnitOfWorkErrorWrapper - UnitOfWorkError constructor for wrapper of another error.
func NewUnitOfWorkErrorWrapper(err error, msg string, args ...any) *UnitOfWorkError {
	return &UnitOfWorkError{message: fmt.Sprintf(msg, args...), err: err}
}

// Error - return the error string.
func (ue *UnitOfWorkError) Error() string {
	if ue.err != nil {
		return fmt.Errorf("%s: %w", ue.message, ue.err).Error()
	}

	return ue.message
}

// Unwrap - return the wrapped error, if any.
func (ue *UnitOfWorkError) Unwrap() error {
	return ue.err
}

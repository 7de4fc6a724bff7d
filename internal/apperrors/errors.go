package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrCurrencyMismatch indicates that two money amounts with different currencies
// were combined, or that an amount did not match its aggregate's currency.
var ErrCurrencyMismatch = errors.New("currency mismatch")

// ErrInvalidTransition indicates that a lifecycle operation was attempted from
// a status that does not allow it.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrVersionConflict indicates that an aggregate was saved with a stale version
// (optimistic concurrency failure).
var ErrVersionConflict = errors.New("version conflict")

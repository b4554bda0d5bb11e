package entity

import (
	"errors"
	"fmt"
)

var (
	// ErrWalletUnavailable means no wallet endpoint is configured or reachable.
	ErrWalletUnavailable = errors.New("wallet unavailable")
	// ErrUserRejected means the user declined a wallet prompt.
	ErrUserRejected = errors.New("user rejected the request")
	// ErrUserCancelled means the user declined the application confirmation prompt.
	ErrUserCancelled = errors.New("user cancelled")
	// ErrProviderUnavailable means transient provider faults exhausted all retries.
	ErrProviderUnavailable = errors.New("wallet provider temporarily unavailable")
	// ErrTransactionFailed covers reverts and any unclassified transaction error.
	ErrTransactionFailed = errors.New("transaction failed")
	// ErrNetworkMismatch means the wallet is on a chain other than the required one.
	ErrNetworkMismatch = errors.New("wrong network")
	// ErrValidation means caller input was malformed.
	ErrValidation = errors.New("validation failed")

	ErrWalletNotConnected   = errors.New("wallet not connected")
	ErrNotOwner             = errors.New("connected account is not the contract owner")
	ErrConfirmationNotFound = errors.New("confirmation not found")
)

// InvalidInputError carries a user facing validation message and matches
// ErrValidation.
type InvalidInputError struct {
	Msg string
}

func (e *InvalidInputError) Error() string { return e.Msg }

func (e *InvalidInputError) Unwrap() error { return ErrValidation }

// ValidationError returns an InvalidInputError with msg.
func ValidationError(msg string) error {
	return &InvalidInputError{Msg: msg}
}

// TxError is the failure result of a transaction pipeline run. Kind is one of
// ErrUserCancelled, ErrUserRejected, ErrProviderUnavailable or ErrTransactionFailed.
type TxError struct {
	Kind     error
	Attempts int
	Err      error
}

func (e *TxError) Error() string {
	if e.Err == nil {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s after %d attempt(s): %v", e.Kind, e.Attempts, e.Err)
}

// Unwrap exposes both the kind and the underlying cause to errors.Is / errors.As.
func (e *TxError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

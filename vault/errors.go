package vault

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

var (
	ErrVaultAlreadyExists    = errors.New("vault: already exists")
	ErrVaultNotFound         = errors.New("vault: not found")
	ErrCorruptedVault        = errors.New("vault: corrupted or tampered file")
	ErrInvalidMasterPassword = errors.New("vault: invalid master password")
	ErrDecryptionFailed      = errors.New("vault: decryption failed")
	ErrEncryptionFailed      = errors.New("vault: encryption failed")
	ErrKeyDerivation         = errors.New("vault: key derivation failed")
	ErrIO                    = errors.New("vault: i/o error")
	ErrSerialization         = errors.New("vault: serialization error")

	// ErrWeakPassword is reserved; no operation enforces a password policy.
	ErrWeakPassword = errors.New("vault: weak password")

	// ErrAuthFailed is returned by AEADOpen. Store maps it to
	// ErrInvalidMasterPassword so a wrong password and a tampered file look
	// the same to callers.
	ErrAuthFailed = errors.New("vault: authentication failed")
)

// IDNotFoundError reports that no entry carries the requested identifier.
type IDNotFoundError struct {
	Identifier string
}

func (e *IDNotFoundError) Error() string {
	return fmt.Sprintf("vault: identifier %q not found", e.Identifier)
}

// ClipboardError reports a failed clipboard read or write. Password holds the
// value that could not be copied so the caller can still surface it; it is
// empty when the failure happened while reading.
type ClipboardError struct {
	Password string
	Cause    error
}

func (e *ClipboardError) Error() string {
	if e.Cause == nil {
		return "vault: clipboard unavailable"
	}
	return fmt.Sprintf("vault: clipboard unavailable: %v", e.Cause)
}

func (e *ClipboardError) Unwrap() error { return e.Cause }

// IsIDNotFound reports whether err carries an IDNotFoundError.
func IsIDNotFound(err error) bool {
	var target *IDNotFoundError
	return errors.As(err, &target)
}

func ioError(err error, op string) error {
	return errors.Mark(errors.Wrap(err, op), ErrIO)
}

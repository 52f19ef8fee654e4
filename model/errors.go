package model

import "errors"

var (
	// ErrInvalidInput rejects malformed serials or public keys before
	// either store is touched.
	ErrInvalidInput = errors.New("invalid input")
	// ErrAlreadyExists reports a serial that is already registered.
	ErrAlreadyExists = errors.New("device already registered")
	// ErrDuplicateKey reports a public key held by another device.
	ErrDuplicateKey = errors.New("public key already registered")
	// ErrPoolExhausted reports that no tunnel addresses are left.
	ErrPoolExhausted = errors.New("no available IP addresses")
	// ErrNotFound reports an unknown serial.
	ErrNotFound = errors.New("device not found")
	// ErrExternalApply reports a failed call against the live interface.
	ErrExternalApply = errors.New("interface apply failed")
	// ErrPersist reports a failed write to one of the backing files.
	ErrPersist = errors.New("persist failed")
	// ErrInconsistent reports a detected divergence between the registry
	// and the interface that needs manual reconciliation.
	ErrInconsistent = errors.New("registry and interface are inconsistent")
)

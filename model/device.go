package model

import (
	"encoding/base64"
	"time"

	"github.com/pkg/errors"
)

const (
	// WireGuard public keys are 32 raw bytes, 44 characters in standard
	// base64.
	publicKeyEncodedLength = 44
	publicKeyRawLength     = 32
)

// Device contains the details about a registered tunnel endpoint.
type Device struct {
	Serial        string    `json:"serial"`
	PublicKey     string    `json:"publicKey"`
	AddressSuffix int       `json:"addressSuffix"`
	CreatedAt     time.Time `json:"createdAt"`
	// FullIP is derived from the pool network and AddressSuffix; it is
	// never persisted.
	FullIP string `json:"fullIp,omitempty"`
}

// Registration is what a device receives back on successful registration.
type Registration struct {
	AssignedIP     string `json:"assigned_ip"`
	RelayPublicKey string `json:"relay_public_key"`
}

func (d *Device) Clone() *Device {
	device := *d
	return &device
}

// ValidateSerial checks the serial shape only, never its ownership.
func ValidateSerial(serial string) error {
	if serial == "" {
		return errors.Wrap(ErrInvalidInput, "serial must not be empty")
	}
	return nil
}

// ValidatePublicKey checks that the key is well-formed base64 of the right
// length. It says nothing about the key's cryptographic validity.
func ValidatePublicKey(publicKey string) error {
	if len(publicKey) != publicKeyEncodedLength {
		return errors.Wrapf(ErrInvalidInput, "public key must be %d characters base64", publicKeyEncodedLength)
	}
	raw, err := base64.StdEncoding.DecodeString(publicKey)
	if err != nil {
		return errors.Wrap(ErrInvalidInput, "public key is not valid base64")
	}
	if len(raw) != publicKeyRawLength {
		return errors.Wrapf(ErrInvalidInput, "public key must decode to %d bytes", publicKeyRawLength)
	}
	return nil
}

package store

import "github.com/trevor-gituru/wireguard-relay-api/model"

// DeviceRegistry abstracts away the durable device mapping. Every
// operation is a single load-mutate-store transaction relative to other
// registry operations, including ones made by other processes.
type DeviceRegistry interface {
	// Register assigns a tunnel address and persists the new device.
	// Fails with model.ErrAlreadyExists, model.ErrDuplicateKey or
	// model.ErrPoolExhausted without modifying the stored state.
	Register(serial, publicKey string) (*model.Device, error)
	// Remove deletes the device and releases its address back to the
	// pool. Fails with model.ErrNotFound.
	Remove(serial string) error
	// Get returns a single device. Fails with model.ErrNotFound.
	Get(serial string) (*model.Device, error)
	// List returns a snapshot of all registered devices.
	List() (map[string]*model.Device, error)
}

// Package filestore persists the device registry as a single JSON file
// guarded by an advisory lock. The file may be touched by out-of-band
// tooling, so nothing is cached in process: every operation re-reads the
// file under the lock, mutates and writes it back as one unit.
package filestore

import (
	"bytes"
	"encoding/json"
	"os"
	"time"

	"github.com/gofrs/flock"
	"github.com/pkg/errors"

	"github.com/trevor-gituru/wireguard-relay-api/model"
	"github.com/trevor-gituru/wireguard-relay-api/store"
)

const registryFileMode = 0600

type registryState struct {
	IPState  *model.AddressPool       `json:"ipState"`
	Devices  map[string]*model.Device `json:"devices"`
	Metadata metadata                 `json:"metadata"`
}

type metadata struct {
	CreatedAt time.Time `json:"createdAt"`
	Version   int       `json:"version"`
}

type FileStore struct {
	path    string
	network string
	maxIP   int
}

var _ store.DeviceRegistry = &FileStore{}

func New(path, network string, maxIP int) *FileStore {
	return &FileStore{
		path:    path,
		network: network,
		maxIP:   maxIP,
	}
}

func (fs *FileStore) Register(serial, publicKey string) (*model.Device, error) {
	var device *model.Device
	err := fs.mutate(func(st *registryState) error {
		if _, ok := st.Devices[serial]; ok {
			return errors.Wrapf(model.ErrAlreadyExists, "serial %s", serial)
		}
		for _, d := range st.Devices {
			if d.PublicKey == publicKey {
				return errors.Wrapf(model.ErrDuplicateKey, "serial %s", serial)
			}
		}
		suffix, err := st.IPState.Allocate()
		if err != nil {
			return err
		}
		device = &model.Device{
			Serial:        serial,
			PublicKey:     publicKey,
			AddressSuffix: suffix,
			CreatedAt:     time.Now().UTC(),
		}
		st.Devices[serial] = device
		return nil
	})
	if err != nil {
		return nil, err
	}
	return device, nil
}

func (fs *FileStore) Remove(serial string) error {
	return fs.mutate(func(st *registryState) error {
		device, ok := st.Devices[serial]
		if !ok {
			return errors.Wrapf(model.ErrNotFound, "serial %s", serial)
		}
		delete(st.Devices, serial)
		st.IPState.Release(device.AddressSuffix)
		return nil
	})
}

func (fs *FileStore) Get(serial string) (*model.Device, error) {
	var device *model.Device
	err := fs.view(func(st *registryState) error {
		d, ok := st.Devices[serial]
		if !ok {
			return errors.Wrapf(model.ErrNotFound, "serial %s", serial)
		}
		device = d.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return device, nil
}

func (fs *FileStore) List() (map[string]*model.Device, error) {
	devices := map[string]*model.Device{}
	err := fs.view(func(st *registryState) error {
		for serial, d := range st.Devices {
			devices[serial] = d.Clone()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return devices, nil
}

// mutate runs fn on the loaded state under the exclusive lock and writes
// the state back only if fn succeeds, so failed conflict checks leave the
// file byte-for-byte unchanged. The lock is taken on a fresh file
// description each time: flock(2) only serializes across distinct open
// descriptions, so a shared one would let concurrent in-process writers
// interleave.
func (fs *FileStore) mutate(fn func(st *registryState) error) error {
	lock := flock.New(fs.path)
	if err := lock.Lock(); err != nil {
		return errors.Wrapf(model.ErrPersist, "can't lock registry: %v", err)
	}
	defer lock.Close()
	st, err := fs.load()
	if err != nil {
		return err
	}
	if err := fn(st); err != nil {
		return err
	}
	if err := fs.save(st); err != nil {
		return err
	}
	// Derived addresses are populated only on the in-memory copy handed
	// back to the caller, never persisted.
	return fs.deriveIPs(st)
}

// view runs fn under a shared lock, never writing anything back.
func (fs *FileStore) view(fn func(st *registryState) error) error {
	lock := flock.New(fs.path)
	if err := lock.RLock(); err != nil {
		return errors.Wrapf(model.ErrPersist, "can't lock registry: %v", err)
	}
	defer lock.Close()
	st, err := fs.load()
	if err != nil {
		return err
	}
	if err := fs.deriveIPs(st); err != nil {
		return err
	}
	return fn(st)
}

// load reads the registry file, starting from the fixed initial state when
// it is empty. Acquiring the lock creates an empty file, so an empty file
// and a missing one are the same thing. Nothing is written here: reads stay
// read-only under the shared lock, and the initial state reaches disk the
// first time a mutation saves it.
func (fs *FileStore) load() (*registryState, error) {
	data, err := os.ReadFile(fs.path)
	if err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrapf(model.ErrPersist, "can't read registry: %v", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return &registryState{
			IPState: model.NewAddressPool(fs.network, fs.maxIP),
			Devices: map[string]*model.Device{},
			Metadata: metadata{
				CreatedAt: time.Now().UTC(),
				Version:   1,
			},
		}, nil
	}
	st := &registryState{}
	if err := json.Unmarshal(data, st); err != nil {
		return nil, errors.Wrapf(model.ErrPersist, "can't decode registry: %v", err)
	}
	return st, nil
}

func (fs *FileStore) save(st *registryState) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return errors.Wrapf(model.ErrPersist, "can't encode registry: %v", err)
	}
	if err := os.WriteFile(fs.path, append(data, '\n'), registryFileMode); err != nil {
		return errors.Wrapf(model.ErrPersist, "can't write registry: %v", err)
	}
	return os.Chmod(fs.path, registryFileMode)
}

func (fs *FileStore) deriveIPs(st *registryState) error {
	for _, d := range st.Devices {
		ip, err := st.IPState.IPFor(d.AddressSuffix)
		if err != nil {
			return err
		}
		d.FullIP = ip.String()
	}
	return nil
}

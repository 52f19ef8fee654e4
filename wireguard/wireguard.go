// Package wireguard keeps the live tunnel interface and its on-disk
// configuration in agreement. The live interface is mutated first through
// the control channel; only then is the same change mirrored into the
// configuration file, under this package's own advisory lock.
package wireguard

import (
	"bytes"
	"context"
	"os"

	"github.com/gofrs/flock"
	"github.com/pkg/errors"

	"github.com/trevor-gituru/wireguard-relay-api/common"
	"github.com/trevor-gituru/wireguard-relay-api/log"
	"github.com/trevor-gituru/wireguard-relay-api/model"
)

// Synchronizer applies peer changes to the running interface and to its
// persisted configuration.
type Synchronizer interface {
	// AddPeer grants the key tunnel access restricted to the given
	// address. Fails with model.ErrExternalApply (nothing persisted) or
	// model.ErrPersist (live interface updated, file not).
	AddPeer(ctx context.Context, publicKey, ip string) error
	// RemovePeer is symmetric to AddPeer.
	RemovePeer(ctx context.Context, publicKey string) error
	// Status returns the live interface state, or a sentinel message
	// when the interface is not up.
	Status(ctx context.Context) (string, error)
	// RestartInterface cycles the interface with wg-quick.
	RestartInterface(ctx context.Context) error
}

type Manager struct {
	iface    string
	confPath string
	cmd      Commander
	logger   common.LoggerIface
}

var _ Synchronizer = &Manager{}

func NewManager(iface, confPath string, cmd Commander, logger common.LoggerIface) *Manager {
	return &Manager{
		iface:    iface,
		confPath: confPath,
		cmd:      cmd,
		logger:   logger,
	}
}

func (m *Manager) AddPeer(ctx context.Context, publicKey, ip string) error {
	allowedIP := ip + "/32"
	if err := m.cmd.SetPeer(ctx, m.iface, publicKey, allowedIP); err != nil {
		return errors.Wrapf(model.ErrExternalApply, "can't add peer to %s: %v", m.iface, err)
	}
	if err := m.modifyConf(func(c *ConfFile) error {
		c.AppendPeer(publicKey, allowedIP)
		return nil
	}); err != nil {
		// The live interface now has a peer the file does not know
		// about. Left for out-of-band repair.
		m.logger.Error("live interface and config file diverged after add",
			log.String("interface", m.iface), log.Err(err))
		return err
	}
	return nil
}

func (m *Manager) RemovePeer(ctx context.Context, publicKey string) error {
	if err := m.cmd.RemovePeer(ctx, m.iface, publicKey); err != nil {
		return errors.Wrapf(model.ErrExternalApply, "can't remove peer from %s: %v", m.iface, err)
	}
	if err := m.modifyConf(func(c *ConfFile) error {
		if !c.RemovePeer(publicKey) {
			m.logger.Warn("peer was not present in config file",
				log.String("interface", m.iface))
		}
		return nil
	}); err != nil {
		m.logger.Error("live interface and config file diverged after remove",
			log.String("interface", m.iface), log.Err(err))
		return err
	}
	return nil
}

func (m *Manager) Status(ctx context.Context) (string, error) {
	out, err := m.cmd.Show(ctx, m.iface)
	if err != nil {
		return NotRunningStatus(m.iface), nil
	}
	return out, nil
}

func (m *Manager) RestartInterface(ctx context.Context) error {
	// Bringing a down interface down fails; that is fine.
	if err := m.cmd.Down(ctx, m.iface); err != nil {
		m.logger.Debug("interface was not up", log.String("interface", m.iface))
	}
	if err := m.cmd.Up(ctx, m.iface); err != nil {
		return errors.Wrapf(model.ErrExternalApply, "can't bring %s up: %v", m.iface, err)
	}
	return nil
}

// modifyConf rewrites the configuration file through a parse-mutate-write
// cycle under an exclusive lock. The lock is taken on a fresh file
// description each time: flock(2) only serializes across distinct open
// descriptions, so a shared one would let concurrent in-process writers
// interleave.
func (m *Manager) modifyConf(fn func(c *ConfFile) error) error {
	lock := flock.New(m.confPath)
	if err := lock.Lock(); err != nil {
		return errors.Wrapf(model.ErrPersist, "can't lock config file: %v", err)
	}
	defer lock.Close()
	f, err := os.Open(m.confPath)
	if err != nil {
		return errors.Wrapf(model.ErrPersist, "can't open config file: %v", err)
	}
	conf, err := ParseConf(f)
	f.Close()
	if err != nil {
		return errors.Wrapf(model.ErrPersist, "can't parse config file: %v", err)
	}
	if err := fn(conf); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := conf.Write(&buf); err != nil {
		return errors.Wrapf(model.ErrPersist, "can't encode config file: %v", err)
	}
	if err := os.WriteFile(m.confPath, buf.Bytes(), 0600); err != nil {
		return errors.Wrapf(model.ErrPersist, "can't write config file: %v", err)
	}
	return nil
}

package app

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trevor-gituru/wireguard-relay-api/log"
	"github.com/trevor-gituru/wireguard-relay-api/model"
)

// RegisterDevice reserves a tunnel address in the registry and then
// applies the peer to the live interface. The registry step is committed
// first: it is the only step with a safe undo, so a failed interface apply
// is compensated by removing the reservation again.
func (a *App) RegisterDevice(ctx context.Context, serial, publicKey string) (*model.Registration, error) {
	if err := model.ValidateSerial(serial); err != nil {
		return nil, err
	}
	if err := model.ValidatePublicKey(publicKey); err != nil {
		return nil, err
	}

	device, err := a.registry.Register(serial, publicKey)
	if err != nil {
		return nil, errors.Wrap(err, "can't register device")
	}
	a.logger.Info("device registered",
		log.String("serial", serial), log.String("ip", device.FullIP))

	if err := a.wg.AddPeer(ctx, device.PublicKey, device.FullIP); err != nil {
		return nil, a.compensateRegister(ctx, device, err)
	}
	a.logger.Info("device added to interface", log.String("serial", serial))

	return &model.Registration{
		AssignedIP:     device.FullIP,
		RelayPublicKey: a.config.RelaySettings.PublicKey,
	}, nil
}

// compensateRegister undoes the registry reservation after a failed
// interface apply and translates the failure for the caller.
func (a *App) compensateRegister(ctx context.Context, device *model.Device, applyErr error) error {
	inconsistent := false

	// When the live apply succeeded and only the file write failed, the
	// interface holds a peer nothing else knows about; try to take it
	// back out before dropping the reservation.
	if errors.Is(applyErr, model.ErrPersist) {
		inconsistent = true
		if err := a.wg.RemovePeer(ctx, device.PublicKey); err != nil {
			a.logger.Error("can't remove partially applied peer",
				log.String("serial", device.Serial), log.Err(err))
		} else {
			inconsistent = false
		}
	}

	if err := a.registry.Remove(device.Serial); err != nil {
		// The reservation is now orphaned; flag it for manual repair.
		a.logger.Error("can't roll back device registration",
			log.String("serial", device.Serial), log.Err(err))
		return errors.Wrapf(model.ErrInconsistent,
			"device %s is registered but has no tunnel access", device.Serial)
	}
	a.logger.Warn("rolled back device registration",
		log.String("serial", device.Serial), log.Err(applyErr))

	if inconsistent {
		return errors.Wrapf(model.ErrInconsistent,
			"interface holds unregistered peer for device %s", device.Serial)
	}
	return errors.Wrapf(applyErr, "can't add device %s to interface", device.Serial)
}

// RemoveDevice takes the peer off the live interface first; the registry
// record goes last because releasing the address has no safe undo once
// another device may pick it up.
func (a *App) RemoveDevice(ctx context.Context, serial string) error {
	if err := model.ValidateSerial(serial); err != nil {
		return err
	}

	device, err := a.registry.Get(serial)
	if err != nil {
		return errors.Wrap(err, "can't remove device")
	}

	if err := a.wg.RemovePeer(ctx, device.PublicKey); err != nil {
		// Registry intact: the device stays registered since its live
		// peer was not removed.
		return errors.Wrapf(err, "can't remove device %s from interface", serial)
	}

	if err := a.registry.Remove(serial); err != nil {
		a.logger.Error("peer removed but registry record remains",
			log.String("serial", serial), log.Err(err))
		return errors.Wrapf(model.ErrInconsistent,
			"device %s has no tunnel access but is still registered", serial)
	}
	a.logger.Info("device removed", log.String("serial", serial))
	return nil
}

// ListDevices returns a snapshot of all registered devices with their full
// tunnel addresses.
func (a *App) ListDevices() (map[string]*model.Device, error) {
	devices, err := a.registry.List()
	if err != nil {
		return nil, errors.Wrap(err, "can't list devices")
	}
	return devices, nil
}

// InterfaceStatus returns the live interface state, best effort.
func (a *App) InterfaceStatus(ctx context.Context) (string, error) {
	return a.wg.Status(ctx)
}

// RestartInterface cycles the tunnel interface.
func (a *App) RestartInterface(ctx context.Context) error {
	return a.wg.RestartInterface(ctx)
}

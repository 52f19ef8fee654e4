// Package app sequences the device registry and the interface
// synchronizer. Neither store is owned here; what is owned is the
// cross-store invariant: every registered device has a matching live peer,
// and no live peer belongs to an unregistered device.
package app

import (
	"github.com/trevor-gituru/wireguard-relay-api/common"
	"github.com/trevor-gituru/wireguard-relay-api/model"
	"github.com/trevor-gituru/wireguard-relay-api/store"
	"github.com/trevor-gituru/wireguard-relay-api/wireguard"
)

// App represents the application layer of the relay
type App struct {
	registry store.DeviceRegistry
	wg       wireguard.Synchronizer
	config   *model.Config
	logger   common.LoggerIface
}

var _ common.AppIface = &App{}

// NewApp creates new app
func NewApp(registry store.DeviceRegistry, wg wireguard.Synchronizer, config *model.Config, logger common.LoggerIface) *App {
	return &App{
		registry: registry,
		wg:       wg,
		config:   config,
		logger:   logger,
	}
}

// RelayPublicKey returns the relay-side credential shared with devices.
func (a *App) RelayPublicKey() string {
	return a.config.RelaySettings.PublicKey
}

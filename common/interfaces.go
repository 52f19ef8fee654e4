package common

import (
	"context"

	"github.com/trevor-gituru/wireguard-relay-api/log"
	"github.com/trevor-gituru/wireguard-relay-api/model"
)

type LoggerIface interface {
	Debug(message string, fields ...log.Field)
	Info(message string, fields ...log.Field)
	Warn(message string, fields ...log.Field)
	Error(message string, fields ...log.Field)
}

type AppIface interface {
	RegisterDevice(ctx context.Context, serial, publicKey string) (*model.Registration, error)
	RemoveDevice(ctx context.Context, serial string) error
	ListDevices() (map[string]*model.Device, error)
	InterfaceStatus(ctx context.Context) (string, error)
	RestartInterface(ctx context.Context) error
	RelayPublicKey() string
}

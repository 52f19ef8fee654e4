package app_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trevor-gituru/wireguard-relay-api/app"
	"github.com/trevor-gituru/wireguard-relay-api/log"
	"github.com/trevor-gituru/wireguard-relay-api/model"
	"github.com/trevor-gituru/wireguard-relay-api/store/filestore"
	"github.com/trevor-gituru/wireguard-relay-api/wireguard"
)

const initialConf = `[Interface]
PrivateKey = SERVERKEY
Address = 10.10.0.1/24
ListenPort = 51820
`

func validKey(b byte) string {
	return base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{b}, 32))
}

type fakeCommander struct {
	failSetPeer    bool
	failRemovePeer bool
}

func (c *fakeCommander) Show(ctx context.Context, iface string) (string, error) {
	return "interface: " + iface, nil
}

func (c *fakeCommander) SetPeer(ctx context.Context, iface, publicKey, allowedIP string) error {
	if c.failSetPeer {
		return errors.New("Unable to modify interface: Operation not permitted")
	}
	return nil
}

func (c *fakeCommander) RemovePeer(ctx context.Context, iface, publicKey string) error {
	if c.failRemovePeer {
		return errors.New("Unable to modify interface: Operation not permitted")
	}
	return nil
}

func (c *fakeCommander) Down(ctx context.Context, iface string) error { return nil }
func (c *fakeCommander) Up(ctx context.Context, iface string) error { return nil }

type testEnv struct {
	app      *app.App
	cmd      *fakeCommander
	confPath string
}

func setup(t *testing.T, maxIP int) *testEnv {
	t.Helper()
	dir := t.TempDir()
	confPath := filepath.Join(dir, "wg0.conf")
	require.NoError(t, os.WriteFile(confPath, []byte(initialConf), 0600))

	config := model.NewConfig()
	config.RelaySettings.PublicKey = "RELAY_PUBLIC_KEY"
	config.RelaySettings.MaxIP = maxIP

	registry := filestore.New(filepath.Join(dir, "devices.json"), config.RelaySettings.Network, maxIP)
	cmd := &fakeCommander{}
	sync := wireguard.NewManager("wg0", confPath, cmd, &log.NoOpLogger{})

	return &testEnv{
		app:      app.NewApp(registry, sync, config, &log.NoOpLogger{}),
		cmd:      cmd,
		confPath: confPath,
	}
}

func (e *testEnv) conf(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(e.confPath)
	require.NoError(t, err)
	return string(data)
}

func TestRegisterDevice(t *testing.T) {
	e := setup(t, 254)

	reg, err := e.app.RegisterDevice(context.Background(), "sn-a", validKey(1))
	require.NoError(t, err)
	assert.Equal(t, "10.10.0.2", reg.AssignedIP)
	assert.Equal(t, "RELAY_PUBLIC_KEY", reg.RelayPublicKey)

	devices, err := e.app.ListDevices()
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, "10.10.0.2", devices["sn-a"].FullIP)

	conf := e.conf(t)
	assert.Contains(t, conf, "PublicKey = "+validKey(1))
	assert.Contains(t, conf, "AllowedIPs = 10.10.0.2/32")
}

func TestRegisterDeviceValidation(t *testing.T) {
	e := setup(t, 254)

	t.Run("empty serial", func(t *testing.T) {
		_, err := e.app.RegisterDevice(context.Background(), "", validKey(1))
		assert.ErrorIs(t, err, model.ErrInvalidInput)
	})

	t.Run("malformed key", func(t *testing.T) {
		_, err := e.app.RegisterDevice(context.Background(), "sn-a", "not-a-key")
		assert.ErrorIs(t, err, model.ErrInvalidInput)
	})

	// Neither store was touched.
	devices, err := e.app.ListDevices()
	require.NoError(t, err)
	assert.Len(t, devices, 0)
	assert.Equal(t, initialConf, e.conf(t))
}

func TestRegisterDeviceDuplicateKey(t *testing.T) {
	e := setup(t, 254)

	_, err := e.app.RegisterDevice(context.Background(), "sn-a", validKey(1))
	require.NoError(t, err)

	_, err = e.app.RegisterDevice(context.Background(), "sn-b", validKey(1))
	assert.ErrorIs(t, err, model.ErrDuplicateKey)

	devices, err := e.app.ListDevices()
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.NotContains(t, devices, "sn-b")
}

func TestRegisterDeviceCompensatesOnLiveFailure(t *testing.T) {
	e := setup(t, 254)
	e.cmd.failSetPeer = true

	_, err := e.app.RegisterDevice(context.Background(), "sn-a", validKey(1))
	assert.ErrorIs(t, err, model.ErrExternalApply)

	// The reservation was rolled back and the config file never saw the
	// key.
	devices, lerr := e.app.ListDevices()
	require.NoError(t, lerr)
	assert.NotContains(t, devices, "sn-a")
	assert.NotContains(t, e.conf(t), validKey(1))

	// The released address is immediately reusable.
	e.cmd.failSetPeer = false
	reg, err := e.app.RegisterDevice(context.Background(), "sn-b", validKey(2))
	require.NoError(t, err)
	assert.Equal(t, "10.10.0.2", reg.AssignedIP)
}

func TestRemoveDevice(t *testing.T) {
	e := setup(t, 254)

	_, err := e.app.RegisterDevice(context.Background(), "sn-a", validKey(1))
	require.NoError(t, err)
	_, err = e.app.RegisterDevice(context.Background(), "sn-b", validKey(2))
	require.NoError(t, err)

	require.NoError(t, e.app.RemoveDevice(context.Background(), "sn-a"))

	devices, err := e.app.ListDevices()
	require.NoError(t, err)
	assert.NotContains(t, devices, "sn-a")
	assert.Contains(t, devices, "sn-b")

	conf := e.conf(t)
	assert.NotContains(t, conf, validKey(1))
	assert.Contains(t, conf, validKey(2))
}

func TestRemoveDeviceNotFound(t *testing.T) {
	e := setup(t, 254)
	assert.ErrorIs(t, e.app.RemoveDevice(context.Background(), "sn-x"), model.ErrNotFound)
}

func TestRemoveDeviceLiveFailureLeavesRegistryIntact(t *testing.T) {
	e := setup(t, 254)

	_, err := e.app.RegisterDevice(context.Background(), "sn-a", validKey(1))
	require.NoError(t, err)

	e.cmd.failRemovePeer = true
	err = e.app.RemoveDevice(context.Background(), "sn-a")
	assert.ErrorIs(t, err, model.ErrExternalApply)

	// The device stays registered: its live peer was not removed.
	devices, lerr := e.app.ListDevices()
	require.NoError(t, lerr)
	assert.Contains(t, devices, "sn-a")
	assert.Contains(t, e.conf(t), validKey(1))
}

func TestPoolExhaustionThroughApp(t *testing.T) {
	e := setup(t, 3)
	ctx := context.Background()

	regA, err := e.app.RegisterDevice(ctx, "sn-a", validKey(1))
	require.NoError(t, err)
	assert.Equal(t, "10.10.0.2", regA.AssignedIP)

	regB, err := e.app.RegisterDevice(ctx, "sn-b", validKey(2))
	require.NoError(t, err)
	assert.Equal(t, "10.10.0.3", regB.AssignedIP)

	_, err = e.app.RegisterDevice(ctx, "sn-c", validKey(3))
	assert.ErrorIs(t, err, model.ErrPoolExhausted)

	require.NoError(t, e.app.RemoveDevice(ctx, "sn-a"))

	regC, err := e.app.RegisterDevice(ctx, "sn-c", validKey(3))
	require.NoError(t, err)
	assert.Equal(t, "10.10.0.2", regC.AssignedIP)
}

func TestInterfaceStatus(t *testing.T) {
	e := setup(t, 254)
	status, err := e.app.InterfaceStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "interface: wg0", status)
}

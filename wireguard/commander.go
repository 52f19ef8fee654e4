package wireguard

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Commander is the control channel to the live tunnel interface. A
// non-zero exit is the only failure signal it reports; stderr text is
// carried in the returned error.
type Commander interface {
	Show(ctx context.Context, iface string) (string, error)
	SetPeer(ctx context.Context, iface, publicKey, allowedIP string) error
	RemovePeer(ctx context.Context, iface, publicKey string) error
	Down(ctx context.Context, iface string) error
	Up(ctx context.Context, iface string) error
}

type execCommander struct {
	timeout time.Duration
}

// NewCommander returns a Commander that shells out to wg and wg-quick.
// Every invocation is bounded by timeout so a hung control call cannot
// block its caller forever.
func NewCommander(timeout time.Duration) Commander {
	return &execCommander{timeout: timeout}
}

func (c *execCommander) run(ctx context.Context, name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		return "", errors.Errorf("%s %s: %s", name, strings.Join(args, " "), detail)
	}
	return strings.TrimSpace(string(out)), nil
}

func (c *execCommander) Show(ctx context.Context, iface string) (string, error) {
	return c.run(ctx, "wg", "show", iface)
}

func (c *execCommander) SetPeer(ctx context.Context, iface, publicKey, allowedIP string) error {
	_, err := c.run(ctx, "wg", "set", iface, "peer", publicKey, "allowed-ips", allowedIP)
	return err
}

func (c *execCommander) RemovePeer(ctx context.Context, iface, publicKey string) error {
	_, err := c.run(ctx, "wg", "set", iface, "peer", publicKey, "remove")
	return err
}

func (c *execCommander) Down(ctx context.Context, iface string) error {
	_, err := c.run(ctx, "wg-quick", "down", iface)
	return err
}

func (c *execCommander) Up(ctx context.Context, iface string) error {
	_, err := c.run(ctx, "wg-quick", "up", iface)
	return err
}

// NotRunningStatus is the sentinel returned by Status when the interface
// is not currently up.
func NotRunningStatus(iface string) string {
	return fmt.Sprintf("interface %s is not running", iface)
}

package model

import (
	"fmt"

	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
	"inet.af/netaddr"
)

// PoolFirstSuffix is the first assignable last octet; .0 and .1 are kept
// for the network and the relay itself.
const PoolFirstSuffix = 2

// AddressPool hands out last octets of tunnel addresses under a fixed /24
// prefix. It is embedded in the registry's persisted state and has no lock
// of its own: every call must happen under the registry's exclusive lock.
type AddressPool struct {
	// FreeIPs holds released octets, ascending, no duplicates.
	FreeIPs []int `json:"freeIps"`
	// NextIP is the next never-before-issued octet.
	NextIP int `json:"nextIp"`
	// MaxIP is the inclusive upper bound.
	MaxIP int `json:"maxIp"`
	// Network is the /24 prefix, e.g. "10.10.0".
	Network string `json:"network"`
}

func NewAddressPool(network string, maxIP int) *AddressPool {
	return &AddressPool{
		FreeIPs: []int{},
		NextIP:  PoolFirstSuffix,
		MaxIP:   maxIP,
		Network: network,
	}
}

// Allocate returns the smallest released octet if any, otherwise advances
// the cursor. Returns ErrPoolExhausted once both are spent.
func (p *AddressPool) Allocate() (int, error) {
	if len(p.FreeIPs) > 0 {
		suffix := p.FreeIPs[0]
		p.FreeIPs = p.FreeIPs[1:]
		return suffix, nil
	}
	if p.NextIP <= p.MaxIP {
		suffix := p.NextIP
		p.NextIP++
		return suffix, nil
	}
	return 0, ErrPoolExhausted
}

// Release puts an octet back, keeping FreeIPs sorted so the smallest one
// is reused first.
func (p *AddressPool) Release(suffix int) {
	i, found := slices.BinarySearch(p.FreeIPs, suffix)
	if found {
		return
	}
	p.FreeIPs = slices.Insert(p.FreeIPs, i, suffix)
}

// IPFor derives the full tunnel address for an octet.
func (p *AddressPool) IPFor(suffix int) (netaddr.IP, error) {
	ip, err := netaddr.ParseIP(fmt.Sprintf("%s.%d", p.Network, suffix))
	if err != nil {
		return netaddr.IP{}, errors.Wrapf(err, "invalid address for network %s suffix %d", p.Network, suffix)
	}
	return ip, nil
}

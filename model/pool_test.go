package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocateSequential(t *testing.T) {
	p := NewAddressPool("10.10.0", 254)

	first, err := p.Allocate()
	require.NoError(t, err)
	assert.Equal(t, 2, first)

	second, err := p.Allocate()
	require.NoError(t, err)
	assert.Equal(t, 3, second)
}

func TestReleaseThenAllocateReusesSmallest(t *testing.T) {
	p := NewAddressPool("10.10.0", 254)
	for i := 0; i < 5; i++ {
		_, err := p.Allocate()
		require.NoError(t, err)
	}

	p.Release(5)
	p.Release(3)

	suffix, err := p.Allocate()
	require.NoError(t, err)
	assert.Equal(t, 3, suffix)

	suffix, err = p.Allocate()
	require.NoError(t, err)
	assert.Equal(t, 5, suffix)

	// Free list spent, cursor advances again.
	suffix, err = p.Allocate()
	require.NoError(t, err)
	assert.Equal(t, 7, suffix)
}

func TestReleaseIgnoresDuplicates(t *testing.T) {
	p := NewAddressPool("10.10.0", 254)
	_, err := p.Allocate()
	require.NoError(t, err)

	p.Release(2)
	p.Release(2)
	assert.Equal(t, []int{2}, p.FreeIPs)
}

func TestExhaustion(t *testing.T) {
	p := NewAddressPool("10.10.0", 3)

	a, err := p.Allocate()
	require.NoError(t, err)
	assert.Equal(t, 2, a)

	b, err := p.Allocate()
	require.NoError(t, err)
	assert.Equal(t, 3, b)

	_, err = p.Allocate()
	assert.ErrorIs(t, err, ErrPoolExhausted)

	// Releasing any octet makes the pool usable again.
	p.Release(a)
	c, err := p.Allocate()
	require.NoError(t, err)
	assert.Equal(t, 2, c)
}

func TestIPFor(t *testing.T) {
	p := NewAddressPool("10.10.0", 254)

	ip, err := p.IPFor(2)
	require.NoError(t, err)
	assert.Equal(t, "10.10.0.2", ip.String())

	_, err = p.IPFor(300)
	assert.Error(t, err)
}

package occupancy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	cases := []struct {
		name   string
		cfg    ConfigState
		ticket bool
		hold   bool
		want   State
	}{
		{"free seat", ConfigAvailable, false, false, Free},
		{"held seat", ConfigAvailable, false, true, Held},
		{"sold seat", ConfigAvailable, true, false, Sold},
		{"ticket wins over stale hold", ConfigAvailable, true, true, Sold},
		{"disabled overrides free", ConfigDisabled, false, false, Disabled},
		{"disabled overrides sold", ConfigDisabled, true, false, Disabled},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Resolve(tc.cfg, tc.ticket, tc.hold))
		})
	}
}

func TestCheckHold(t *testing.T) {
	assert.NoError(t, CheckHold(ConfigAvailable, Free, false))
	assert.NoError(t, CheckHold(ConfigAvailable, Held, true), "re-holding your own seat is idempotent")

	assert.ErrorIs(t, CheckHold(ConfigAvailable, Held, false), ErrSeatTaken)
	assert.ErrorIs(t, CheckHold(ConfigAvailable, Sold, false), ErrSeatTaken)
	assert.ErrorIs(t, CheckHold(ConfigDisabled, Free, false), ErrSeatDisabled)
	assert.ErrorIs(t, CheckHold(ConfigDisabled, Sold, false), ErrSeatDisabled)
}

func TestCheckPurchase(t *testing.T) {
	assert.NoError(t, CheckPurchase(ConfigAvailable, Held, true), "buyer confirms their own hold")
	assert.NoError(t, CheckPurchase(ConfigAvailable, Free, false), "direct sale without prior hold")

	assert.ErrorIs(t, CheckPurchase(ConfigAvailable, Sold, false), ErrSeatTaken)
	assert.ErrorIs(t, CheckPurchase(ConfigAvailable, Sold, true), ErrSeatTaken,
		"a live ticket blocks even the holder")
	assert.ErrorIs(t, CheckPurchase(ConfigAvailable, Held, false), ErrSeatTaken)
	assert.ErrorIs(t, CheckPurchase(ConfigDisabled, Free, false), ErrSeatDisabled)
}

func TestCheckRelease(t *testing.T) {
	assert.NoError(t, CheckRelease(Held))
	assert.NoError(t, CheckRelease(Sold))
	assert.ErrorIs(t, CheckRelease(Free), ErrNotReleasable)
	assert.ErrorIs(t, CheckRelease(Disabled), ErrNotReleasable)
}

func TestCheckConfigure(t *testing.T) {
	assert.NoError(t, CheckConfigure(Free))
	assert.ErrorIs(t, CheckConfigure(Held), ErrSeatTaken)
	assert.ErrorIs(t, CheckConfigure(Sold), ErrSeatTaken)
}

func TestSellable(t *testing.T) {
	assert.True(t, Sellable(Free))
	assert.False(t, Sellable(Held))
	assert.False(t, Sellable(Sold))
	assert.False(t, Sellable(Disabled))
}

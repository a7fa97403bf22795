package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPairKeyIsOrderIndependent(t *testing.T) {
	lo, hi := PairKey(7, 3)
	assert.Equal(t, uint(3), lo)
	assert.Equal(t, uint(7), hi)

	lo, hi = PairKey(3, 7)
	assert.Equal(t, uint(3), lo)
	assert.Equal(t, uint(7), hi)
}

func TestBeforeSaveSetsPairColumns(t *testing.T) {
	f := Friendship{RequesterID: 9, AddresseeID: 4, Status: StatusPending}

	require.NoError(t, f.BeforeSave(nil))
	assert.Equal(t, uint(4), f.PairLo)
	assert.Equal(t, uint(9), f.PairHi)
}

func TestBeforeSaveRejectsSelfRelation(t *testing.T) {
	f := Friendship{RequesterID: 5, AddresseeID: 5}

	assert.ErrorIs(t, f.BeforeSave(nil), ErrSelfRelation)
}

func TestCounterpartOf(t *testing.T) {
	f := Friendship{RequesterID: 1, AddresseeID: 2}

	assert.Equal(t, uint(2), f.CounterpartOf(1))
	assert.Equal(t, uint(1), f.CounterpartOf(2))
}

func TestInvolves(t *testing.T) {
	f := Friendship{RequesterID: 1, AddresseeID: 2}

	assert.True(t, f.Involves(1))
	assert.True(t, f.Involves(2))
	assert.False(t, f.Involves(3))
}

func TestPrivacyModeValid(t *testing.T) {
	assert.True(t, PrivacyPublic.Valid())
	assert.True(t, PrivacyFriends.Valid())
	assert.True(t, PrivacyPrivate.Valid())
	assert.False(t, PrivacyMode("").Valid())
	assert.False(t, PrivacyMode("custom").Valid())
}

package orderbook

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRingPushFrontAndBack(t *testing.T) {
	r := newRing(4)
	r.pushBack(Level{Price: 10})
	r.pushFront(Level{Price: 5})
	r.pushBack(Level{Price: 20})

	require.Equal(t, 3, r.len())
	require.Equal(t, uint32(5), r.at(0).Price)
	require.Equal(t, uint32(10), r.at(1).Price)
	require.Equal(t, uint32(20), r.at(2).Price)
}

func TestRingInsertAtMiddleShiftsShorterSide(t *testing.T) {
	r := newRing(8)
	for _, p := range []uint32{1, 2, 4, 5} {
		r.pushBack(Level{Price: p})
	}
	r.insertAt(2, Level{Price: 3})

	got := make([]uint32, r.len())
	for i := range got {
		got[i] = r.at(i).Price
	}
	require.Equal(t, []uint32{1, 2, 3, 4, 5}, got)
}

func TestRingRemoveAtShiftsShorterSide(t *testing.T) {
	r := newRing(8)
	for _, p := range []uint32{1, 2, 3, 4, 5} {
		r.pushBack(Level{Price: p})
	}
	removed := r.removeAt(2)
	require.Equal(t, uint32(3), removed.Price)

	got := make([]uint32, r.len())
	for i := range got {
		got[i] = r.at(i).Price
	}
	require.Equal(t, []uint32{1, 2, 4, 5}, got)
}

func TestRingWrapsAroundBackingArray(t *testing.T) {
	r := newRing(3)
	r.pushBack(Level{Price: 1})
	r.pushFront(Level{Price: 0}) // head now wraps to index 2
	r.pushFront(Level{Price: -1 & 0xFFFFFFFF})
	require.True(t, r.full())
	require.Equal(t, 3, r.len())
}

package orderbook

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddOrderOrdersAsksAscending(t *testing.T) {
	b := New("AAPL")
	require.NoError(t, b.AddOrder(1, Sell, 101_0000, 100))
	require.NoError(t, b.AddOrder(2, Sell, 100_0000, 200))
	require.NoError(t, b.AddOrder(3, Sell, 102_0000, 300))

	best, ok := b.Best(Sell)
	require.True(t, ok)
	require.Equal(t, uint32(100_0000), best.Price)

	depth := b.Depth(Sell, 3)
	require.Len(t, depth, 3)
	require.Equal(t, []uint32{100_0000, 101_0000, 102_0000}, prices(depth))
}

func TestAddOrderOrdersBidsDescending(t *testing.T) {
	b := New("AAPL")
	require.NoError(t, b.AddOrder(1, Buy, 99_0000, 100))
	require.NoError(t, b.AddOrder(2, Buy, 101_0000, 200))
	require.NoError(t, b.AddOrder(3, Buy, 100_0000, 300))

	best, ok := b.Best(Buy)
	require.True(t, ok)
	require.Equal(t, uint32(101_0000), best.Price)

	depth := b.Depth(Buy, 3)
	require.Equal(t, []uint32{101_0000, 100_0000, 99_0000}, prices(depth))
}

func TestAddOrderAggregatesSamePriceLevel(t *testing.T) {
	b := New("AAPL")
	require.NoError(t, b.AddOrder(1, Sell, 100_0000, 100))
	require.NoError(t, b.AddOrder(2, Sell, 100_0000, 50))

	best, ok := b.Best(Sell)
	require.True(t, ok)
	require.Equal(t, uint32(150), best.Volume)
}

func TestDuplicateOrderIDRejected(t *testing.T) {
	b := New("AAPL")
	require.NoError(t, b.AddOrder(1, Sell, 100_0000, 100))
	require.Error(t, b.AddOrder(1, Sell, 101_0000, 50))
}

func TestFillReducesLevelAndRemovesWhenExhausted(t *testing.T) {
	b := New("AAPL")
	require.NoError(t, b.AddOrder(1, Sell, 100_0000, 100))

	require.NoError(t, b.Fill(1, 40))
	best, ok := b.Best(Sell)
	require.True(t, ok)
	require.Equal(t, uint32(60), best.Volume)

	require.NoError(t, b.Fill(1, 60))
	_, ok = b.Best(Sell)
	require.False(t, ok)
}

func TestCancelPartial(t *testing.T) {
	b := New("AAPL")
	require.NoError(t, b.AddOrder(1, Buy, 50_0000, 500))
	require.NoError(t, b.Cancel(1, 200))
	best, ok := b.Best(Buy)
	require.True(t, ok)
	require.Equal(t, uint32(300), best.Volume)
}

func TestDeleteRemovesFullOrder(t *testing.T) {
	b := New("AAPL")
	require.NoError(t, b.AddOrder(1, Buy, 50_0000, 500))
	require.NoError(t, b.AddOrder(2, Buy, 50_0000, 300))
	require.NoError(t, b.Delete(1))

	best, ok := b.Best(Buy)
	require.True(t, ok)
	require.Equal(t, uint32(300), best.Volume)
}

func TestReplaceMovesOrderToNewPriceOnSameSide(t *testing.T) {
	b := New("AAPL")
	require.NoError(t, b.AddOrder(1, Buy, 50_0000, 500))
	require.NoError(t, b.Replace(1, 2, 51_0000, 400))

	require.Error(t, b.Delete(1))
	best, ok := b.Best(Buy)
	require.True(t, ok)
	require.Equal(t, uint32(51_0000), best.Price)
	require.Equal(t, uint32(400), best.Volume)
}

func TestUnknownOrderOperationsError(t *testing.T) {
	b := New("AAPL")
	require.Error(t, b.Fill(999, 1))
	require.Error(t, b.Cancel(999, 1))
	require.Error(t, b.Delete(999))
	require.Error(t, b.Replace(999, 1000, 1, 1))
}

func TestEvictionDemotesWorstTopLevelToMid(t *testing.T) {
	b := New("AAPL")
	// Fill top to capacity with strictly increasing ask prices.
	for i := 0; i < N; i++ {
		require.NoError(t, b.AddOrder(uint64(i+1), Sell, uint32((100+i)*10000), 10))
	}
	// A better price must evict the worst top level (100+N-1) into mid.
	require.NoError(t, b.AddOrder(uint64(N+10), Sell, 50_0000, 10))

	depth := b.Depth(Sell, N+1)
	require.Equal(t, uint32(50_0000), depth[0].Price)
	// The old worst top price should now be reachable (demoted, not lost).
	worstOriginal := uint32((100 + N - 1) * 10000)
	found := false
	for _, lvl := range depth {
		if lvl.Price == worstOriginal {
			found = true
		}
	}
	require.True(t, found, "demoted level must still be present in mid")
}

// TestAddLevelInterpolationGuessAggregatesExistingTopLevel fills top with a
// contiguous run of tick-spaced prices so the O(1) interpolation guess
// (head + (price-best) in side-relative order) lands directly on an
// existing level without falling back to findIn's scan.
func TestAddLevelInterpolationGuessAggregatesExistingTopLevel(t *testing.T) {
	b := New("AAPL")
	for i := 0; i < N; i++ {
		require.NoError(t, b.AddOrder(uint64(i+1), Sell, uint32(100+i), 10))
	}
	require.NoError(t, b.AddOrder(uint64(N+1), Sell, 105, 20))

	depth := b.Depth(Sell, N)
	for _, lvl := range depth {
		if lvl.Price == 105 {
			require.Equal(t, uint32(30), lvl.Volume)
			return
		}
	}
	t.Fatal("level at price 105 not found")
}

func TestStalePointerRescanAfterShiftingInserts(t *testing.T) {
	b := New("AAPL")
	require.NoError(t, b.AddOrder(1, Sell, 105_0000, 100))
	require.NoError(t, b.AddOrder(2, Sell, 106_0000, 100))
	// Insert several better prices ahead of order 1's level, shifting its
	// physical ring slot repeatedly without ever touching idIndex[1].
	for i := 0; i < 10; i++ {
		require.NoError(t, b.AddOrder(uint64(100+i), Sell, uint32((90+i)*10000), 5))
	}
	// Order 1's cached slot is now stale; Cancel must still find it.
	require.NoError(t, b.Cancel(1, 30))

	depth := b.Depth(Sell, 20)
	for _, lvl := range depth {
		if lvl.Price == 105_0000 {
			require.Equal(t, uint32(70), lvl.Volume)
			return
		}
	}
	t.Fatal("level at 105_0000 not found after stale-pointer rescan")
}

func TestConservationOfVolumeAcrossAddFillCancel(t *testing.T) {
	b := New("AAPL")
	var minted uint64
	for i := 0; i < 50; i++ {
		shares := uint32(10 + i)
		require.NoError(t, b.AddOrder(uint64(i+1), Buy, uint32((100-i)*10000), shares))
		minted += uint64(shares)
	}
	var removed uint64
	require.NoError(t, b.Fill(1, 5))
	removed += 5
	require.NoError(t, b.Cancel(2, 3))
	removed += 3
	require.NoError(t, b.Delete(3))
	removed += 12 // order 3's original shares (10+2)

	require.Equal(t, minted-removed, b.TotalVolume(Buy))
}

// TestSweepClearsLevelsUntilLimitReached mirrors spec scenario 4: an
// aggressor buy of qty=600 with limit >=10100 sweeps the ask side. It
// clears (9950,200) entirely, takes 400 of the 500 resting at (10000),
// and stops there with remaining=0 — never touching (10100,300).
func TestSweepClearsLevelsUntilLimitReached(t *testing.T) {
	b := New("AAPL")
	require.NoError(t, b.AddOrder(1, Sell, 9950, 200))
	require.NoError(t, b.AddOrder(2, Sell, 10000, 500))
	require.NoError(t, b.AddOrder(3, Sell, 10100, 300))

	executed := b.Sweep(Sell, 600, 10100)
	require.Equal(t, uint32(600), executed)

	best, ok := b.Best(Sell)
	require.True(t, ok)
	require.Equal(t, uint32(10000), best.Price)
	require.Equal(t, uint32(100), best.Volume)

	depth := b.Depth(Sell, 2)
	require.Equal(t, []uint32{10000, 10100}, prices(depth))
	require.Equal(t, uint32(300), depth[1].Volume)
}

func TestSweepStopsAtLimitPriceWithBookRemaining(t *testing.T) {
	b := New("AAPL")
	require.NoError(t, b.AddOrder(1, Sell, 10000, 100))
	require.NoError(t, b.AddOrder(2, Sell, 10100, 100))

	executed := b.Sweep(Sell, 500, 10000)
	require.Equal(t, uint32(100), executed)

	best, ok := b.Best(Sell)
	require.True(t, ok)
	require.Equal(t, uint32(10100), best.Price)
}

func TestSweepDrainsBookWhenQtyExceedsResting(t *testing.T) {
	b := New("AAPL")
	require.NoError(t, b.AddOrder(1, Buy, 100_0000, 50))

	executed := b.Sweep(Buy, 200, 0)
	require.Equal(t, uint32(50), executed)
	_, ok := b.Best(Buy)
	require.False(t, ok)
}

func TestFillDrainingTopPromotesFromMid(t *testing.T) {
	b := New("AAPL")
	for i := 0; i < N; i++ {
		require.NoError(t, b.AddOrder(uint64(i+1), Sell, uint32((100+i)*10000), 10))
	}
	// Evict the current worst top level into mid.
	require.NoError(t, b.AddOrder(uint64(N+10), Sell, 50_0000, 10))
	demotedPrice := uint32((100 + N - 1) * 10000)

	// Fully drain the new best level, opening a vacancy at the top.
	require.NoError(t, b.Fill(uint64(N+10), 10))

	depth := b.Depth(Sell, N)
	found := false
	for _, lvl := range depth[:N] {
		if lvl.Price == demotedPrice {
			found = true
		}
	}
	require.True(t, found, "level demoted to mid must be promoted back into top once room opens")
}

func TestApproxLevelForReturnsCombinedIndexAcrossTiers(t *testing.T) {
	b := New("AAPL")
	for i := 0; i < N; i++ {
		require.NoError(t, b.AddOrder(uint64(i+1), Sell, uint32((100+i)*10000), 10))
	}
	require.NoError(t, b.AddOrder(uint64(N+10), Sell, 50_0000, 10))

	idx, ok := b.ApproxLevelFor(Sell, 50_0000)
	require.True(t, ok)
	require.Equal(t, 0, idx)

	demotedPrice := uint32((100 + N - 1) * 10000)
	idx, ok = b.ApproxLevelFor(Sell, demotedPrice)
	require.True(t, ok)
	require.GreaterOrEqual(t, idx, N)

	_, ok = b.ApproxLevelFor(Sell, 1)
	require.False(t, ok)
}

func prices(levels []Level) []uint32 {
	out := make([]uint32, len(levels))
	for i, l := range levels {
		out[i] = l.Price
	}
	return out
}

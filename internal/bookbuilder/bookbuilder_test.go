package bookbuilder

import (
	"testing"

	"github.com/ndrandal-quant/itchbook/internal/itch"
	"github.com/ndrandal-quant/itchbook/internal/orderbook"
	"github.com/ndrandal-quant/itchbook/internal/queue"
	"github.com/stretchr/testify/require"
)

func publish(t *testing.T, q *queue.Queue, rec itch.Record) {
	t.Helper()
	var buf [itch.MaxPayloadSize]byte
	n := rec.Encode(buf[:])
	frame := append([]byte{byte(rec.Type())}, buf[:n]...)
	env, err := itch.Decode(frame)
	require.NoError(t, err)
	q.Publish(env)
}

func TestBuilderAppliesAddOrderAndDelete(t *testing.T) {
	q, err := queue.New(16)
	require.NoError(t, err)
	bd := New(q, 0, 1)

	publish(t, q, itch.StockDirectoryMsg{StockLocate: 1, Stock: "AAPL"})
	publish(t, q, itch.AddOrderMsg{StockLocate: 1, OrderRef: 42, Side: orderbook.Buy, Shares: 100, Stock: "AAPL", Price: 150_0000})

	for bd.Poll() {
	}

	book := bd.Book(1, "AAPL")
	best, ok := book.Best(orderbook.Buy)
	require.True(t, ok)
	require.Equal(t, uint32(150_0000), best.Price)
	require.Equal(t, uint32(100), best.Volume)

	publish(t, q, itch.OrderDeleteMsg{StockLocate: 1, OrderRef: 42})
	for bd.Poll() {
	}

	_, ok = book.Best(orderbook.Buy)
	require.False(t, ok)
}

func TestBuilderIgnoresUnknownLocateOnExecute(t *testing.T) {
	q, err := queue.New(16)
	require.NoError(t, err)
	bd := New(q, 0, 1)

	publish(t, q, itch.OrderExecutedMsg{StockLocate: 99, OrderRef: 1, ExecutedShares: 10})
	require.NotPanics(t, func() {
		for bd.Poll() {
		}
	})
}

func TestShardOnlyAppliesOwnedLocateCodes(t *testing.T) {
	q, err := queue.New(16)
	require.NoError(t, err)

	// Two shards of two: shard 0 owns even locate codes, shard 1 owns odd.
	even := New(q, 0, 2)
	odd := New(q, 1, 2)

	publish(t, q, itch.StockDirectoryMsg{StockLocate: 2, Stock: "AAPL"})
	publish(t, q, itch.AddOrderMsg{StockLocate: 2, OrderRef: 1, Side: orderbook.Buy, Shares: 100, Stock: "AAPL", Price: 100_0000})
	publish(t, q, itch.StockDirectoryMsg{StockLocate: 3, Stock: "MSFT"})
	publish(t, q, itch.AddOrderMsg{StockLocate: 3, OrderRef: 2, Side: orderbook.Buy, Shares: 50, Stock: "MSFT", Price: 200_0000})

	for even.Poll() {
	}
	for odd.Poll() {
	}

	_, ok := even.Books()[2]
	require.True(t, ok, "shard 0 must own locate 2")
	_, ok = even.Books()[3]
	require.False(t, ok, "shard 0 must not materialize locate 3's book")

	_, ok = odd.Books()[3]
	require.True(t, ok, "shard 1 must own locate 3")
	_, ok = odd.Books()[2]
	require.False(t, ok, "shard 1 must not materialize locate 2's book")
}

func TestDroppedTracksLaggingBuilder(t *testing.T) {
	q, err := queue.New(4)
	require.NoError(t, err)
	bd := New(q, 0, 1)

	for i := 0; i < 20; i++ {
		publish(t, q, itch.OrderDeleteMsg{StockLocate: 1, OrderRef: uint64(i)})
	}
	for bd.Poll() {
	}
	require.NotZero(t, bd.Dropped())
}

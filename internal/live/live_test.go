package live

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClientSendDropsWhenBufferFull(t *testing.T) {
	c := &Client{sendCh: make(chan []byte, 2), mgr: NewManager(2)}

	require.True(t, c.Send([]byte("a")))
	require.True(t, c.Send([]byte("b")))
	require.False(t, c.Send([]byte("c")))
	require.Equal(t, uint64(1), c.Dropped)
}

func TestClientSubscribedDefaultsToEverything(t *testing.T) {
	c := &Client{}
	require.True(t, c.subscribed("AAPL"))

	c.tickers = map[string]bool{"AAPL": true}
	require.True(t, c.subscribed("AAPL"))
	require.False(t, c.subscribed("MSFT"))
}

func TestManagerClientCount(t *testing.T) {
	m := NewManager(4)
	require.Equal(t, 0, m.ClientCount())

	c := &Client{ID: 1, sendCh: make(chan []byte, 4), mgr: m}
	m.mu.Lock()
	m.clients[c.ID] = c
	m.mu.Unlock()
	require.Equal(t, 1, m.ClientCount())

	m.unregister(c)
	require.Equal(t, 0, m.ClientCount())
}

package queue

import (
	"testing"
	"time"

	"github.com/ndrandal-quant/itchbook/internal/itch"
	"github.com/stretchr/testify/require"
)

func envelopeWithLocate(locate uint16) itch.Envelope {
	msg := itch.OrderDeleteMsg{StockLocate: locate, OrderRef: uint64(locate)}
	env, err := itch.Decode(append([]byte{byte(itch.MsgOrderDelete)}, encodeBody(msg)...))
	if err != nil {
		panic(err)
	}
	return env
}

func encodeBody(m itch.OrderDeleteMsg) []byte {
	var buf [itch.MaxPayloadSize]byte
	n := m.Encode(buf[:])
	return buf[:n]
}

func TestNewRejectsNonPowerOfTwo(t *testing.T) {
	_, err := New(0)
	require.Error(t, err)
	_, err = New(3)
	require.Error(t, err)
	_, err = New(-4)
	require.Error(t, err)
}

func TestPublishThenReadInOrder(t *testing.T) {
	q, err := New(8)
	require.NoError(t, err)

	for i := uint16(0); i < 5; i++ {
		q.Publish(envelopeWithLocate(i))
	}

	var cs ConsumerState
	for i := uint16(0); i < 5; i++ {
		env, ok := q.TryRead(&cs)
		require.True(t, ok)
		require.Equal(t, itch.MsgOrderDelete, env.Type)
	}
	_, ok := q.TryRead(&cs)
	require.False(t, ok)
	require.Zero(t, cs.Dropped)
}

func TestLaggingConsumerSkipsForward(t *testing.T) {
	q, err := New(4)
	require.NoError(t, err)

	for i := uint16(0); i < 20; i++ {
		q.Publish(envelopeWithLocate(i))
	}

	var cs ConsumerState
	env, ok := q.TryRead(&cs)
	require.True(t, ok)
	require.NotZero(t, cs.Dropped)
	require.Equal(t, itch.MsgOrderDelete, env.Type)
}

func TestIndependentConsumersDoNotInterfere(t *testing.T) {
	q, err := New(8)
	require.NoError(t, err)

	q.Publish(envelopeWithLocate(1))
	q.Publish(envelopeWithLocate(2))

	var fast, slow ConsumerState
	_, ok := q.TryRead(&fast)
	require.True(t, ok)
	_, ok = q.TryRead(&fast)
	require.True(t, ok)

	_, ok = q.TryRead(&slow)
	require.True(t, ok)
	require.Equal(t, uint64(1), slow.ReadIndex)
	require.Equal(t, uint64(2), fast.ReadIndex)
}

// TestConcurrentProducerConsumerPreservesOrderNoDuplicatesNoTornReads mirrors
// the scenario a real replay run exercises: one producer publishing (pausing
// briefly after every fourth envelope) while a consumer reads concurrently,
// sleeping briefly only when it has caught up. TryRead's
// seqlock retry (odd seq0, or seq0 != seq1 across the copy) must never hand
// back a torn or duplicated envelope, and OrderRefs read must never regress.
func TestConcurrentProducerConsumerPreservesOrderNoDuplicatesNoTornReads(t *testing.T) {
	q, err := New(1024)
	require.NoError(t, err)

	const n = 10000
	producerDone := make(chan struct{})

	go func() {
		defer close(producerDone)
		for i := uint64(0); i < n; i++ {
			msg := itch.OrderDeleteMsg{StockLocate: uint16(i % 65536), OrderRef: i}
			frame := append([]byte{byte(itch.MsgOrderDelete)}, encodeBody(msg)...)
			env, err := itch.Decode(frame)
			if err != nil {
				panic(err)
			}
			q.Publish(env)
			if i%4 == 0 {
				time.Sleep(time.Microsecond)
			}
		}
	}()

	var cs ConsumerState
	seen := make([]uint64, 0, n)
	producerFinished := false
	for {
		env, ok := q.TryRead(&cs)
		if ok {
			m := itch.DecodeOrderDelete(env.Payload[:env.Length])
			seen = append(seen, m.OrderRef)
			continue
		}
		if producerFinished {
			break
		}
		select {
		case <-producerDone:
			producerFinished = true
		default:
			time.Sleep(2 * time.Microsecond)
		}
	}

	require.NotEmpty(t, seen)
	for i := 1; i < len(seen); i++ {
		require.Greater(t, seen[i], seen[i-1], "OrderRefs must be strictly increasing: no duplicates, no reordering, no torn payload")
	}
	require.Equal(t, uint64(n-1), seen[len(seen)-1], "consumer must catch up to the last published envelope once the producer stops")
	require.Equal(t, uint64(n), uint64(len(seen))+cs.Dropped, "every published envelope must be either read or accounted for as dropped")
}

// Package bookbuilder applies decoded envelopes from a queue to the order
// books they belong to, one goroutine per shard of locate codes.
package bookbuilder

import (
	"log"

	"github.com/ndrandal-quant/itchbook/internal/itch"
	"github.com/ndrandal-quant/itchbook/internal/orderbook"
	"github.com/ndrandal-quant/itchbook/internal/queue"
)

// Builder owns one queue consumer state and the set of books it is
// responsible for. It is one shard of a locate-code partition: every
// consumer sees the same broadcast stream, but each only applies the
// envelopes whose StockLocate falls to it, mirroring the source's
// filter-by-securityNameIdx poll loop. A locate code sharded to this
// builder gets a fresh book on first touch; there is no separate
// registration step.
type Builder struct {
	q          *queue.Queue
	cs         queue.ConsumerState
	books      map[uint16]*orderbook.Book
	stocks     map[uint16]string
	shardIndex int
	shardCount int
}

// New creates a Builder reading from q, responsible for locate codes where
// locate % shardCount == shardIndex. Pass shardCount 1 (shardIndex 0) for a
// single builder that owns every locate code.
func New(q *queue.Queue, shardIndex, shardCount int) *Builder {
	return &Builder{
		q:          q,
		books:      make(map[uint16]*orderbook.Book),
		stocks:     make(map[uint16]string),
		shardIndex: shardIndex,
		shardCount: shardCount,
	}
}

// owns reports whether locate falls to this builder's shard.
func (bd *Builder) owns(locate uint16) bool {
	return int(locate)%bd.shardCount == bd.shardIndex
}

// Book returns the book for locate, creating it if this is the first time
// the builder has seen that locate code.
func (bd *Builder) Book(locate uint16, stock string) *orderbook.Book {
	b, ok := bd.books[locate]
	if !ok {
		b = orderbook.New(stock)
		bd.books[locate] = b
		bd.stocks[locate] = stock
	}
	return b
}

// Books returns the full set of books this builder has materialized so
// far, keyed by locate code.
func (bd *Builder) Books() map[uint16]*orderbook.Book {
	return bd.books
}

// Poll applies at most one pending envelope and reports whether it found
// one. The caller drives the loop (spin, sleep, or park) between calls;
// Poll never blocks.
func (bd *Builder) Poll() bool {
	env, ok := bd.q.TryRead(&bd.cs)
	if !ok {
		return false
	}
	bd.apply(env)
	return true
}

// Dropped returns the number of envelopes this builder has silently
// skipped because it fell too far behind the producer.
func (bd *Builder) Dropped() uint64 { return bd.cs.Dropped }

func (bd *Builder) apply(env itch.Envelope) {
	if bd.shardCount > 1 && !bd.owns(env.StockLocate()) {
		return
	}
	payload := env.Payload[:env.Length]

	switch env.Type {
	case itch.MsgStockDirectory:
		m := itch.DecodeStockDirectory(payload)
		bd.Book(m.StockLocate, m.Stock)

	case itch.MsgAddOrder:
		m := itch.DecodeAddOrder(payload)
		book := bd.Book(m.StockLocate, bd.stocks[m.StockLocate])
		if err := book.AddOrder(m.OrderRef, m.Side, m.Price, m.Shares); err != nil {
			log.Printf("bookbuilder: %v", err)
		}

	case itch.MsgAddOrderMPID:
		m := itch.DecodeAddOrderMPID(payload)
		book := bd.Book(m.StockLocate, bd.stocks[m.StockLocate])
		if err := book.AddOrder(m.OrderRef, m.Side, m.Price, m.Shares); err != nil {
			log.Printf("bookbuilder: %v", err)
		}

	case itch.MsgOrderExecuted:
		m := itch.DecodeOrderExecuted(payload)
		if book, ok := bd.books[m.StockLocate]; ok {
			if err := book.Fill(m.OrderRef, m.ExecutedShares); err != nil {
				log.Printf("bookbuilder: %v", err)
			}
		}

	case itch.MsgOrderExecutedWithPrice:
		m := itch.DecodeOrderExecutedWithPrice(payload)
		if book, ok := bd.books[m.StockLocate]; ok {
			if err := book.Fill(m.OrderRef, m.ExecutedShares); err != nil {
				log.Printf("bookbuilder: %v", err)
			}
		}

	case itch.MsgOrderCancel:
		m := itch.DecodeOrderCancel(payload)
		if book, ok := bd.books[m.StockLocate]; ok {
			if err := book.Cancel(m.OrderRef, m.CancelledShares); err != nil {
				log.Printf("bookbuilder: %v", err)
			}
		}

	case itch.MsgOrderDelete:
		m := itch.DecodeOrderDelete(payload)
		if book, ok := bd.books[m.StockLocate]; ok {
			if err := book.Delete(m.OrderRef); err != nil {
				log.Printf("bookbuilder: %v", err)
			}
		}

	case itch.MsgOrderReplace:
		m := itch.DecodeOrderReplace(payload)
		if book, ok := bd.books[m.StockLocate]; ok {
			if err := book.Replace(m.OrigOrderRef, m.NewOrderRef, m.Price, m.Shares); err != nil {
				log.Printf("bookbuilder: %v", err)
			}
		}

	default:
		// Every other message kind (system events, trading actions,
		// trades, NOII, ...) carries no book-mutating state; the decoder
		// still hands them through the queue for downstream consumers
		// like internal/persist that want the raw tape.
	}
}

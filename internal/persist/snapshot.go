package persist

import (
	"context"
	"log"
	"time"

	"github.com/ndrandal-quant/itchbook/internal/orderbook"
)

// Snapshotter periodically persists a BookSummary for every book it is
// given, adapted from the teacher's Snapshotter (ticker loop, final flush
// on context cancellation).
type Snapshotter struct {
	store *Store
	books map[string]*orderbook.Book // keyed by ticker
}

// NewSnapshotter creates a Snapshotter over books, keyed by ticker.
func NewSnapshotter(store *Store, books map[string]*orderbook.Book) *Snapshotter {
	return &Snapshotter{store: store, books: books}
}

// Run snapshots every book on each tick of interval until ctx is
// cancelled, then takes one final snapshot before returning.
func (s *Snapshotter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.snapshotAll(ctx)
		case <-ctx.Done():
			s.snapshotAll(context.Background())
			return
		}
	}
}

func (s *Snapshotter) snapshotAll(ctx context.Context) {
	now := time.Now()
	for stock, book := range s.books {
		bid, _ := book.Best(orderbook.Buy)
		ask, _ := book.Best(orderbook.Sell)
		sum := BookSummary{
			Stock:    stock,
			At:       now,
			BidPrice: float64(bid.Price) / 10000,
			BidSize:  bid.Volume,
			AskPrice: float64(ask.Price) / 10000,
			AskSize:  ask.Volume,
		}
		if err := s.store.InsertBookSummary(ctx, sum); err != nil {
			log.Printf("persist: snapshot %s: %v", stock, err)
		}
	}
}

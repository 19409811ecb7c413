package persist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// Trade is one persisted execution derived from a decoded Trade, CrossTrade,
// or BrokenTrade record.
type Trade struct {
	Stock       string    `bson:"stock" json:"stock"`
	Price       float64   `bson:"price" json:"price"`
	Shares      uint64    `bson:"shares" json:"shares"`
	MatchNumber uint64    `bson:"match_number" json:"match_number"`
	Broken      bool      `bson:"broken" json:"broken"`
	ExecutedAt  time.Time `bson:"executed_at" json:"executed_at"`
}

// BookSummary is a point-in-time top-of-book snapshot.
type BookSummary struct {
	Stock    string    `bson:"stock" json:"stock"`
	At       time.Time `bson:"at" json:"at"`
	BidPrice float64   `bson:"bid_price" json:"bid_price"`
	BidSize  uint32    `bson:"bid_size" json:"bid_size"`
	AskPrice float64   `bson:"ask_price" json:"ask_price"`
	AskSize  uint32    `bson:"ask_size" json:"ask_size"`
}

// ReplayState is the resumable position within a capture file.
type ReplayState struct {
	CapturePath string `bson:"capture_path" json:"capture_path"`
	Offset      int64  `bson:"offset" json:"offset"`
	Locate      uint16 `bson:"locate" json:"locate"`
	Sequence    uint64 `bson:"sequence" json:"sequence"`
}

// TradeFilter narrows a trade tape query.
type TradeFilter struct {
	Stock string
	Since time.Time
	Until time.Time
	Limit int64
}

func (s *Store) InsertTrade(ctx context.Context, t Trade) error {
	_, err := s.db.Collection("trades").InsertOne(ctx, t)
	if err != nil {
		return fmt.Errorf("persist: insert trade: %w", err)
	}
	return nil
}

func (s *Store) InsertBookSummary(ctx context.Context, sum BookSummary) error {
	_, err := s.db.Collection("book_summaries").InsertOne(ctx, sum)
	if err != nil {
		return fmt.Errorf("persist: insert book summary: %w", err)
	}
	return nil
}

// Trades runs f against the trade tape, oldest first.
func (s *Store) Trades(ctx context.Context, f TradeFilter) ([]Trade, error) {
	filter := bson.M{}
	if f.Stock != "" {
		filter["stock"] = f.Stock
	}
	rangeFilter := bson.M{}
	if !f.Since.IsZero() {
		rangeFilter["$gte"] = f.Since
	}
	if !f.Until.IsZero() {
		rangeFilter["$lte"] = f.Until
	}
	if len(rangeFilter) > 0 {
		filter["executed_at"] = rangeFilter
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 1000
	}

	cur, err := s.db.Collection("trades").Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "executed_at", Value: 1}}).SetLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("persist: query trades: %w", err)
	}
	defer cur.Close(ctx)

	var out []Trade
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("persist: decode trades: %w", err)
	}
	return out, nil
}

// DeleteTrades removes the trades named by matchNumbers. The archiver calls
// this once a batch has been durably written to its destination so the tape
// doesn't grow without bound.
func (s *Store) DeleteTrades(ctx context.Context, matchNumbers []uint64) error {
	if len(matchNumbers) == 0 {
		return nil
	}
	_, err := s.db.Collection("trades").DeleteMany(ctx, bson.M{
		"match_number": bson.M{"$in": matchNumbers},
	})
	if err != nil {
		return fmt.Errorf("persist: delete archived trades: %w", err)
	}
	return nil
}

// LatestBookSummary returns the most recent snapshot for stock.
func (s *Store) LatestBookSummary(ctx context.Context, stock string) (BookSummary, bool, error) {
	var sum BookSummary
	err := s.db.Collection("book_summaries").FindOne(ctx,
		bson.M{"stock": stock},
		options.FindOne().SetSort(bson.D{{Key: "at", Value: -1}}),
	).Decode(&sum)
	if err != nil {
		if isNoDocuments(err) {
			return BookSummary{}, false, nil
		}
		return BookSummary{}, false, fmt.Errorf("persist: latest book summary: %w", err)
	}
	return sum, true, nil
}

// SaveReplayState upserts the current resume position.
func (s *Store) SaveReplayState(ctx context.Context, st ReplayState) error {
	_, err := s.db.Collection("replay_state").ReplaceOne(ctx,
		bson.M{"capture_path": st.CapturePath}, st,
		options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("persist: save replay state: %w", err)
	}
	return nil
}

// LoadReplayState fetches the last saved resume position, if any.
func (s *Store) LoadReplayState(ctx context.Context, capturePath string) (ReplayState, bool, error) {
	var st ReplayState
	err := s.db.Collection("replay_state").FindOne(ctx, bson.M{"capture_path": capturePath}).Decode(&st)
	if err != nil {
		if isNoDocuments(err) {
			return ReplayState{}, false, nil
		}
		return ReplayState{}, false, fmt.Errorf("persist: load replay state: %w", err)
	}
	return st, true, nil
}

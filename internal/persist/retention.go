package persist

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// RunRetention deletes trade tape documents older than retentionDays,
// once immediately and then on every tick of interval, until ctx is
// cancelled. Adapted from the teacher's retention pruner.
func RunRetention(ctx context.Context, store *Store, retentionDays int, interval time.Duration) {
	prune := func() {
		cutoff := time.Now().AddDate(0, 0, -retentionDays)
		res, err := store.db.Collection("trades").DeleteMany(ctx, bson.M{"executed_at": bson.M{"$lt": cutoff}})
		if err != nil {
			log.Printf("persist: retention prune: %v", err)
			return
		}
		if res.DeletedCount > 0 {
			log.Printf("persist: retention pruned %d trades older than %s", res.DeletedCount, cutoff.Format(time.RFC3339))
		}
	}

	prune()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			prune()
		case <-ctx.Done():
			return
		}
	}
}

// Package archive gzips batches of the persisted trade tape, stages them
// locally, uploads them to S3, and deletes the source documents once the
// upload is confirmed, adapted from the teacher's local-only Archiver. The
// teacher's own config already carried S3Bucket/S3Region/S3Prefix flags
// that its archiver never used; this package is where that promise is
// actually kept.
package archive

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/ndrandal-quant/itchbook/internal/persist"
)

// Archiver periodically gathers trades older than MaxAge, gzips them into
// one NDJSON batch per calendar day, stages the batch on local disk,
// uploads it to S3, and deletes the source documents once the upload is
// confirmed. Local staging is retention-capped by maxLocalBytes.
type Archiver struct {
	store         *persist.Store
	s3            *s3.Client
	bucket        string
	prefix        string
	stageDir      string
	maxAge        time.Duration
	interval      time.Duration
	maxLocalBytes int64
}

// New constructs an Archiver. It loads AWS credentials the standard SDK
// way (environment, shared config, or instance role) rather than
// accepting them as explicit parameters.
func New(ctx context.Context, store *persist.Store, bucket, region, prefix, stageDir string, maxAge, interval time.Duration, maxLocalMB int) (*Archiver, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("archive: load aws config: %w", err)
	}
	if err := os.MkdirAll(stageDir, 0o755); err != nil {
		return nil, fmt.Errorf("archive: create staging dir: %w", err)
	}
	return &Archiver{
		store:         store,
		s3:            s3.NewFromConfig(cfg),
		bucket:        bucket,
		prefix:        prefix,
		stageDir:      stageDir,
		maxAge:        maxAge,
		interval:      interval,
		maxLocalBytes: int64(maxLocalMB) << 20,
	}, nil
}

// Run archives on every tick of a.interval until ctx is cancelled.
func (a *Archiver) Run(ctx context.Context) {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()
	for {
		if err := a.cycle(ctx); err != nil {
			log.Printf("archive: cycle failed: %v", err)
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}

func (a *Archiver) cycle(ctx context.Context) error {
	cutoff := time.Now().Add(-a.maxAge)
	trades, err := a.store.Trades(ctx, persist.TradeFilter{Until: cutoff, Limit: 100000})
	if err != nil {
		return fmt.Errorf("query trades: %w", err)
	}
	if len(trades) == 0 {
		return nil
	}

	byDay := groupByDay(trades)
	for day, batch := range byDay {
		key := fmt.Sprintf("%s/%s.jsonl.gz", a.prefix, day)

		staged, err := a.stageBatch(key, batch)
		if err != nil {
			return fmt.Errorf("stage batch %s: %w", day, err)
		}
		if err := a.uploadStaged(ctx, key, staged); err != nil {
			return fmt.Errorf("upload batch %s: %w", day, err)
		}
		if err := a.store.DeleteTrades(ctx, matchNumbers(batch)); err != nil {
			return fmt.Errorf("delete archived batch %s: %w", day, err)
		}
		log.Printf("archive: archived %d trades to s3://%s/%s", len(batch), a.bucket, key)
	}

	a.rotate()
	return nil
}

func matchNumbers(batch []persist.Trade) []uint64 {
	ids := make([]uint64, len(batch))
	for i, t := range batch {
		ids[i] = t.MatchNumber
	}
	return ids
}

func groupByDay(trades []persist.Trade) map[string][]persist.Trade {
	out := make(map[string][]persist.Trade)
	for _, t := range trades {
		day := t.ExecutedAt.Format("2006/01/02")
		out[day] = append(out[day], t)
	}
	return out
}

// stageBatch gzips batch as NDJSON and writes it under stageDir, returning
// the local path. The staged file stays on disk after upload until rotate
// removes it; a failed upload is not retried from it, the next cycle
// queries Mongo and stages the batch again.
func (a *Archiver) stageBatch(key string, batch []persist.Trade) (string, error) {
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	enc := json.NewEncoder(gw)
	for _, t := range batch {
		if err := enc.Encode(t); err != nil {
			return "", fmt.Errorf("encode trade: %w", err)
		}
	}
	if err := gw.Close(); err != nil {
		return "", fmt.Errorf("close gzip writer: %w", err)
	}

	path := a.stagePath(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("mkdir: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write staged batch: %w", err)
	}
	return path, nil
}

func (a *Archiver) uploadStaged(ctx context.Context, key, stagedPath string) error {
	f, err := os.Open(stagedPath)
	if err != nil {
		return fmt.Errorf("open staged batch: %w", err)
	}
	defer f.Close()

	_, err = a.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
		Body:   f,
	})
	if err != nil {
		return fmt.Errorf("s3 put object: %w", err)
	}
	return nil
}

// stagePath returns the local staging path for a batch key.
func (a *Archiver) stagePath(key string) string {
	return filepath.Join(a.stageDir, filepath.FromSlash(key))
}

// rotate deletes the oldest staged batches until total local size is under
// maxLocalBytes, mirroring the teacher's size-capped local retention.
func (a *Archiver) rotate() {
	if a.maxLocalBytes <= 0 {
		return
	}

	type entry struct {
		path string
		size int64
	}
	var files []entry
	var total int64

	filepath.Walk(a.stageDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		files = append(files, entry{path: path, size: info.Size()})
		total += info.Size()
		return nil
	})
	if total <= a.maxLocalBytes {
		return
	}

	// Path is prefix/YYYY/MM/DD.jsonl.gz, so lexicographic order is
	// chronological order.
	sort.Slice(files, func(i, j int) bool { return files[i].path < files[j].path })

	for _, f := range files {
		if total <= a.maxLocalBytes {
			break
		}
		if err := os.Remove(f.path); err != nil {
			log.Printf("archive: rotate remove %s: %v", f.path, err)
			continue
		}
		total -= f.size
		log.Printf("archive: rotated out staged batch %s (%d bytes)", f.path, f.size)
	}
}

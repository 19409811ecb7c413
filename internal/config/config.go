// Package config loads runtime configuration from flags with environment
// variable fallback, the same shape the teacher's own config loader uses:
// flags win when set explicitly, environment variables supply defaults
// otherwise, and everything ultimately has a hardcoded fallback.
package config

import (
	"flag"
	"os"
	"strconv"
)

// Config holds every setting cmd/replay needs to wire the pipeline.
type Config struct {
	CapturePath string // path to the ITCH capture file to replay
	QueueCap    int    // SPMC queue capacity; must be a power of two
	Workers     int    // number of book-builder goroutines (shards by locate code)

	HTTPAddr string // REST API + health check listen address
	WSAddr   string // live websocket publication listen address

	MongoURI        string // persistence target; empty disables internal/persist
	RetentionDays   int    // trade tape retention before pruning
	SnapshotEvery   int    // seconds between periodic book snapshots

	S3Bucket          string // archive destination; empty disables internal/archive
	S3Region          string
	S3Prefix          string
	ArchiveDir        string // local staging directory before upload
	ArchiveMaxAgeHr   int    // age in hours before a local batch is archived
	ArchiveMaxLocalMB int    // size cap on staged local batches before the oldest are rotated out

	SendBufferSize int // per live.Client bounded send channel capacity
}

func envStr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// Load parses flags (falling back to environment variables, then hardcoded
// defaults) into a Config. It calls flag.Parse.
func Load() *Config {
	c := &Config{}

	flag.StringVar(&c.CapturePath, "capture", envStr("ITCHBOOK_CAPTURE", ""), "path to ITCH capture file")
	flag.IntVar(&c.QueueCap, "queue-cap", envInt("ITCHBOOK_QUEUE_CAP", 4096), "SPMC queue capacity (power of two)")
	flag.IntVar(&c.Workers, "workers", envInt("ITCHBOOK_WORKERS", 4), "number of book-builder shards")

	flag.StringVar(&c.HTTPAddr, "http-addr", envStr("ITCHBOOK_HTTP_ADDR", ":8080"), "REST API listen address")
	flag.StringVar(&c.WSAddr, "ws-addr", envStr("ITCHBOOK_WS_ADDR", ":8081"), "live websocket listen address")

	flag.StringVar(&c.MongoURI, "mongo-uri", envStr("ITCHBOOK_MONGO_URI", ""), "MongoDB connection URI (empty disables persistence)")
	flag.IntVar(&c.RetentionDays, "retention-days", envInt("ITCHBOOK_RETENTION_DAYS", 30), "trade tape retention in days")
	flag.IntVar(&c.SnapshotEvery, "snapshot-interval-sec", envInt("ITCHBOOK_SNAPSHOT_INTERVAL_SEC", 60), "seconds between book snapshots")

	flag.StringVar(&c.S3Bucket, "s3-bucket", envStr("ITCHBOOK_S3_BUCKET", ""), "S3 bucket for trade tape archival (empty disables archival)")
	flag.StringVar(&c.S3Region, "s3-region", envStr("ITCHBOOK_S3_REGION", "us-east-1"), "S3 region")
	flag.StringVar(&c.S3Prefix, "s3-prefix", envStr("ITCHBOOK_S3_PREFIX", "itchbook/trades"), "S3 key prefix")
	flag.StringVar(&c.ArchiveDir, "archive-dir", envStr("ITCHBOOK_ARCHIVE_DIR", "./archive"), "local staging directory for archive batches")
	flag.IntVar(&c.ArchiveMaxAgeHr, "archive-max-age-hours", envInt("ITCHBOOK_ARCHIVE_MAX_AGE_HOURS", 24), "age in hours before a batch is archived to S3")
	flag.IntVar(&c.ArchiveMaxLocalMB, "archive-max-local-mb", envInt("ITCHBOOK_ARCHIVE_MAX_LOCAL_MB", 512), "size cap in MB on staged local archive batches before the oldest are rotated out")

	flag.IntVar(&c.SendBufferSize, "send-buffer", envInt("ITCHBOOK_SEND_BUFFER", 256), "per-client live send channel capacity")

	flag.Parse()
	return c
}

package archive

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ndrandal-quant/itchbook/internal/persist"
)

func TestGroupByDaySplitsOnExecutedAtDate(t *testing.T) {
	day1 := time.Date(2026, 1, 2, 9, 30, 0, 0, time.UTC)
	day2 := time.Date(2026, 1, 3, 9, 30, 0, 0, time.UTC)
	trades := []persist.Trade{
		{MatchNumber: 1, ExecutedAt: day1},
		{MatchNumber: 2, ExecutedAt: day1},
		{MatchNumber: 3, ExecutedAt: day2},
	}

	byDay := groupByDay(trades)
	require.Len(t, byDay, 2)
	require.Len(t, byDay["2026/01/02"], 2)
	require.Len(t, byDay["2026/01/03"], 1)
}

func TestMatchNumbersExtractsIDsInOrder(t *testing.T) {
	trades := []persist.Trade{{MatchNumber: 7}, {MatchNumber: 9}, {MatchNumber: 3}}
	require.Equal(t, []uint64{7, 9, 3}, matchNumbers(trades))
}

func TestStageBatchWritesGzippedFileUnderStageDir(t *testing.T) {
	dir := t.TempDir()
	a := &Archiver{stageDir: dir}

	batch := []persist.Trade{{Stock: "AAPL", Price: 190.5, Shares: 100, MatchNumber: 1}}
	path, err := a.stageBatch("trades/2026/01/02.jsonl.gz", batch)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "trades", "2026", "01", "02.jsonl.gz"), path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Greater(t, info.Size(), int64(0))
}

func TestRotateRemovesOldestStagedBatchesUntilUnderCap(t *testing.T) {
	dir := t.TempDir()
	a := &Archiver{stageDir: dir, maxLocalBytes: 30}

	old := filepath.Join(dir, "2026", "01", "01.jsonl.gz")
	newer := filepath.Join(dir, "2026", "01", "02.jsonl.gz")
	require.NoError(t, os.MkdirAll(filepath.Dir(old), 0o755))
	require.NoError(t, os.WriteFile(old, make([]byte, 20), 0o644))
	require.NoError(t, os.WriteFile(newer, make([]byte, 20), 0o644))

	a.rotate()

	_, err := os.Stat(old)
	require.True(t, os.IsNotExist(err), "oldest staged batch should be rotated out")
	_, err = os.Stat(newer)
	require.NoError(t, err, "newer staged batch should survive rotation")
}

func TestRotateNoopWhenUnderCap(t *testing.T) {
	dir := t.TempDir()
	a := &Archiver{stageDir: dir, maxLocalBytes: 1 << 30}

	path := filepath.Join(dir, "2026", "01", "01.jsonl.gz")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, make([]byte, 20), 0o644))

	a.rotate()

	_, err := os.Stat(path)
	require.NoError(t, err)
}

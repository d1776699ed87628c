package sink

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/SteelMorgan/logslice/internal/clickhouse"
	"github.com/SteelMorgan/logslice/internal/domain"
)

const extractedLinesDDL = `
CREATE TABLE IF NOT EXISTS logs.extracted_lines (
	inserted_at DateTime64(3),
	run_id String,
	target_date Date,
	line_no UInt64,
	line String
) ENGINE = MergeTree()
ORDER BY (target_date, run_id, line_no)
`

type pendingLine struct {
	lineNo uint64
	line   string
}

// ClickHouseSink batches matched lines into logs.extracted_lines. Every
// row carries the run ID so overlapping extractions stay distinguishable.
type ClickHouseSink struct {
	client *clickhouse.Client
	cfg    BatchConfig

	runID      string
	targetDate time.Time
	lineNo     uint64
	batch      []pendingLine
}

// BatchConfig configures batching for the ClickHouse sink.
type BatchConfig struct {
	MaxSize int // Maximum lines buffered before an automatic flush
}

// NewClickHouseSink creates the destination table if needed and returns a
// sink bound to one extraction run. The client stays owned by the caller.
func NewClickHouseSink(ctx context.Context, client *clickhouse.Client, runID string, targetDate time.Time, cfg BatchConfig) (*ClickHouseSink, error) {
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = 10000
	}

	if err := client.Exec(ctx, extractedLinesDDL); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrOutputUnavailable, err)
	}

	return &ClickHouseSink{
		client:     client,
		cfg:        cfg,
		runID:      runID,
		targetDate: targetDate,
		batch:      make([]pendingLine, 0, cfg.MaxSize),
	}, nil
}

// WriteLine buffers one matched line, flushing when the batch is full.
func (s *ClickHouseSink) WriteLine(ctx context.Context, line []byte) error {
	s.lineNo++
	s.batch = append(s.batch, pendingLine{lineNo: s.lineNo, line: string(line)})

	if len(s.batch) >= s.cfg.MaxSize {
		return s.Flush(ctx)
	}
	return nil
}

// Flush sends all buffered lines in one insert batch.
func (s *ClickHouseSink) Flush(ctx context.Context) error {
	if len(s.batch) == 0 {
		return nil
	}

	batch, err := s.client.Conn().PrepareBatch(ctx, "INSERT INTO logs.extracted_lines")
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrOutputUnavailable, err)
	}

	now := time.Now()
	for _, p := range s.batch {
		if err := batch.Append(now, s.runID, s.targetDate, p.lineNo, p.line); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrOutputUnavailable, err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrOutputUnavailable, err)
	}

	log.Debug().
		Int("lines", len(s.batch)).
		Str("run_id", s.runID).
		Msg("Flushed batch to ClickHouse")

	s.batch = s.batch[:0]
	return nil
}

// Close flushes any pending lines. The underlying connection is left open
// for the owning client.
func (s *ClickHouseSink) Close() error {
	return s.Flush(context.Background())
}

package extract

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/SteelMorgan/logslice/internal/domain"
	"github.com/SteelMorgan/logslice/internal/sink"
	"github.com/SteelMorgan/logslice/internal/source"
)

// DefaultMargin is the safety buffer around the located window and the
// sequential read granularity during the scan: 10 MiB. It must be large
// enough both to absorb local date disorder and to amortize I/O.
const DefaultMargin = 10 * 1024 * 1024

// WindowCache stores located windows keyed by (path, file size, date) so a
// repeated extraction of the same date can skip the binary search. A stale
// entry is impossible as long as the file only grows: any size change
// changes the key.
type WindowCache interface {
	Get(ctx context.Context, path string, size int64, date string) (domain.Window, bool, error)
	Put(ctx context.Context, path string, size int64, date string, w domain.Window) error
}

// Config configures an Extractor.
type Config struct {
	// InputPath identifies the file behind the byte source; used for
	// progress reports and as part of the window cache key.
	InputPath string

	// Margin is the safety buffer and scan granularity in bytes.
	// Defaults to DefaultMargin when zero.
	Margin int64

	// Cache is optional; nil disables window caching.
	Cache WindowCache

	// Reporter receives progress events; nil discards them.
	Reporter Reporter

	// RunID identifies this run in progress reports and sink rows.
	// Generated when empty.
	RunID string
}

// Extractor runs the two-phase search-and-scan: locate an approximate byte
// window for the target date, then scan it chunk by chunk, writing matched
// lines to the sink in file order.
type Extractor struct {
	src      source.ByteSource
	path     string
	margin   int64
	cache    WindowCache
	reporter Reporter
	runID    string
}

// New creates an extractor over src.
func New(src source.ByteSource, cfg Config) *Extractor {
	margin := cfg.Margin
	if margin <= 0 {
		margin = DefaultMargin
	}
	reporter := cfg.Reporter
	if reporter == nil {
		reporter = NopReporter{}
	}

	return &Extractor{
		src:      src,
		path:     cfg.InputPath,
		margin:   margin,
		cache:    cfg.Cache,
		reporter: reporter,
		runID:    cfg.RunID,
	}
}

// Extract pulls every line dated date out of the source into out. The date
// must be a real calendar date in YYYY-MM-DD form; validation failures are
// fatal and produce no output.
func (e *Extractor) Extract(ctx context.Context, date string, out sink.LineSink) (domain.Result, error) {
	key, err := ParseDateKey(date)
	if err != nil {
		return domain.Result{}, err
	}

	runID := e.runID
	if runID == "" {
		runID = uuid.NewString()
	}
	size := e.src.Size()

	ctx, span := startSpan(ctx, "extract",
		attribute.String("logslice.date", key.String()),
		attribute.String("logslice.run_id", runID),
		attribute.Int64("logslice.file_size", size),
	)

	e.reporter.Progress(domain.Progress{
		RunID:         runID,
		Phase:         domain.PhaseLocate,
		Date:          key.String(),
		FilePath:      e.path,
		FileSizeBytes: size,
	})

	window, cached, err := e.locate(ctx, key)
	if err != nil {
		endSpan(span, err)
		return domain.Result{}, fmt.Errorf("locate window: %w", err)
	}

	e.reporter.Progress(domain.Progress{
		RunID:         runID,
		Phase:         domain.PhaseScan,
		Date:          key.String(),
		FilePath:      e.path,
		FileSizeBytes: size,
		Window:        window,
		WindowCached:  cached,
	})

	scanCtx, scanSpan := startSpan(ctx, "extract.scan",
		attribute.Int64("logslice.window_start", window.Start),
		attribute.Int64("logslice.window_end", window.End),
	)
	stats, err := NewScanner(e.src, e.margin).Scan(scanCtx, window, key, func(line []byte) error {
		return out.WriteLine(scanCtx, line)
	})
	endSpan(scanSpan, err)
	if err != nil {
		endSpan(span, err)
		return domain.Result{}, fmt.Errorf("scan window: %w", err)
	}

	if err := out.Flush(ctx); err != nil {
		endSpan(span, err)
		return domain.Result{}, err
	}

	result := domain.Result{
		RunID:      runID,
		Date:       key.String(),
		Matches:    stats.Matches,
		LossyLines: stats.LossyLines,
		Window:     window,
	}

	e.reporter.Progress(domain.Progress{
		RunID:         runID,
		Phase:         domain.PhaseDone,
		Date:          key.String(),
		FilePath:      e.path,
		FileSizeBytes: size,
		Window:        window,
		WindowCached:  cached,
		Matches:       stats.Matches,
		LossyLines:    stats.LossyLines,
	})

	endSpan(span, nil)
	return result, nil
}

// locate resolves the byte window for key, consulting the cache first.
// Cache failures degrade to a full binary search, never to a run failure.
func (e *Extractor) locate(ctx context.Context, key DateKey) (domain.Window, bool, error) {
	date := key.String()
	size := e.src.Size()

	if e.cache != nil {
		if w, ok, err := e.cache.Get(ctx, e.path, size, date); err == nil && ok {
			return w, true, nil
		}
	}

	ctx, span := startSpan(ctx, "extract.locate")
	window, err := NewLocator(e.src, e.margin).Locate(ctx, key)
	endSpan(span, err)
	if err != nil {
		return domain.Window{}, false, err
	}

	if e.cache != nil {
		// Best effort: a failed Put only costs the next run a re-search.
		_ = e.cache.Put(ctx, e.path, size, date, window)
	}

	return window, false, nil
}

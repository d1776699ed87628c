package observability

import (
	"github.com/rs/zerolog"

	"github.com/SteelMorgan/logslice/internal/domain"
)

// ZerologReporter translates extraction progress events into structured log
// output. It is the production implementation of the reporting capability
// the extractor is constructed with.
type ZerologReporter struct {
	log zerolog.Logger
}

// NewZerologReporter wraps the given logger.
func NewZerologReporter(l zerolog.Logger) *ZerologReporter {
	return &ZerologReporter{log: l}
}

// Progress logs one progress event.
func (r *ZerologReporter) Progress(p domain.Progress) {
	switch p.Phase {
	case domain.PhaseLocate:
		r.log.Info().
			Str("run_id", p.RunID).
			Str("date", p.Date).
			Str("file", p.FilePath).
			Int64("file_size", p.FileSizeBytes).
			Msg("Starting log extraction")
	case domain.PhaseScan:
		r.log.Info().
			Str("run_id", p.RunID).
			Str("date", p.Date).
			Int64("window_start", p.Window.Start).
			Int64("window_end", p.Window.End).
			Bool("window_cached", p.WindowCached).
			Msg("Scanning located window")
	case domain.PhaseDone:
		evt := r.log.Info().
			Str("run_id", p.RunID).
			Str("date", p.Date).
			Int64("matches", p.Matches).
			Int64("window_start", p.Window.Start).
			Int64("window_end", p.Window.End)
		if p.LossyLines > 0 {
			evt = evt.Int64("lossy_lines", p.LossyLines)
		}
		evt.Msg("Extraction complete")
	default:
		r.log.Debug().
			Str("run_id", p.RunID).
			Str("phase", string(p.Phase)).
			Msg("Extraction progress")
	}
}

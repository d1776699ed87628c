package extract

import "github.com/SteelMorgan/logslice/internal/domain"

// Reporter receives progress events from an extraction run. It is supplied
// by the caller at construction; the core never logs through process-wide
// state on its own.
type Reporter interface {
	Progress(p domain.Progress)
}

// NopReporter discards all progress events.
type NopReporter struct{}

// Progress implements Reporter.
func (NopReporter) Progress(domain.Progress) {}

package domain

// Window is a half-open byte range [Start, End) over the input file that is
// believed to contain every record for the target date. The range is a
// heuristic: it is padded by the configured margin on both sides to absorb
// local disorder in the file.
type Window struct {
	Start int64
	End   int64
}

// Len returns the number of bytes covered by the window.
func (w Window) Len() int64 {
	return w.End - w.Start
}

// Result summarizes one extraction run.
type Result struct {
	RunID      string
	Date       string
	Matches    int64
	LossyLines int64 // matched lines that contained invalid UTF-8 sequences
	Window     Window
}

// Phase identifies the stage an extraction run is in.
type Phase string

const (
	PhaseLocate Phase = "locate"
	PhaseScan   Phase = "scan"
	PhaseDone   Phase = "done"
)

// Progress is a snapshot of a running extraction, delivered to the reporter
// the caller supplied.
type Progress struct {
	RunID         string
	Phase         Phase
	Date          string
	FilePath      string
	FileSizeBytes int64
	Window        Window
	WindowCached  bool
	Matches       int64
	LossyLines    int64
}

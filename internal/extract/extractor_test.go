package extract

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SteelMorgan/logslice/internal/domain"
	"github.com/SteelMorgan/logslice/internal/sink"
)

// fakeCache is an in-memory WindowCache recording its traffic.
type fakeCache struct {
	windows map[string]domain.Window
	gets    int
	puts    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{windows: make(map[string]domain.Window)}
}

func (c *fakeCache) key(path string, size int64, date string) string {
	return path + "|" + date
}

func (c *fakeCache) Get(ctx context.Context, path string, size int64, date string) (domain.Window, bool, error) {
	c.gets++
	w, ok := c.windows[c.key(path, size, date)]
	return w, ok, nil
}

func (c *fakeCache) Put(ctx context.Context, path string, size int64, date string, w domain.Window) error {
	c.puts++
	c.windows[c.key(path, size, date)] = w
	return nil
}

// recordingReporter captures progress events for assertions.
type recordingReporter struct {
	events []domain.Progress
}

func (r *recordingReporter) Progress(p domain.Progress) {
	r.events = append(r.events, p)
}

func extractToFile(t *testing.T, data, date string, margin int64) (string, domain.Result, error) {
	t.Helper()

	outPath := filepath.Join(t.TempDir(), "out.txt")
	out, err := sink.NewFileSink(outPath)
	require.NoError(t, err)

	extractor := New(newMemSource(data), Config{InputPath: "test.log", Margin: margin})
	res, extractErr := extractor.Extract(context.Background(), date, out)
	require.NoError(t, out.Close())

	content, err := os.ReadFile(outPath)
	require.NoError(t, err)
	return string(content), res, extractErr
}

func TestExtractConcreteScenario(t *testing.T) {
	data := "2024-01-01 a\n2024-01-02 b\n2024-01-02 c\n2024-01-03 d\n"

	content, res, err := extractToFile(t, data, "2024-01-02", 1<<20)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-02 b\n2024-01-02 c\n", content)
	assert.Equal(t, int64(2), res.Matches)
}

func TestExtractNoMatch(t *testing.T) {
	data := "2024-01-01 a\n2024-01-02 b\n2024-01-02 c\n2024-01-03 d\n"

	content, res, err := extractToFile(t, data, "2024-01-05", 1<<20)
	require.NoError(t, err)
	assert.Empty(t, content)
	assert.Zero(t, res.Matches)
}

func TestExtractIdempotence(t *testing.T) {
	data := "2024-01-01 a\n2024-01-02 b\n2024-01-02 c\n2024-01-03 d\n"

	first, _, err := extractToFile(t, data, "2024-01-02", 64)
	require.NoError(t, err)
	second, _, err := extractToFile(t, data, "2024-01-02", 64)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestExtractBoundaryDates(t *testing.T) {
	data := "2024-01-01 first\n2024-01-02 mid\n2024-01-03 last\n"

	content, res, err := extractToFile(t, data, "2024-01-01", 32)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01 first\n", content)
	assert.Equal(t, int64(1), res.Matches)

	content, res, err = extractToFile(t, data, "2024-01-03", 32)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-03 last\n", content)
	assert.Equal(t, int64(1), res.Matches)
}

func TestExtractMonthRolloverDoesNotLeak(t *testing.T) {
	data := strings.Join([]string{
		"2024-01-30 a",
		"2024-01-31 b",
		"2024-01-31 c",
		"2024-02-01 d",
		"2024-02-01 e",
		"2024-02-02 f",
	}, "\n") + "\n"

	content, res, err := extractToFile(t, data, "2024-01-31", 1<<20)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-31 b\n2024-01-31 c\n", content)
	assert.Equal(t, int64(2), res.Matches)
	assert.NotContains(t, content, "2024-02-01")

	content, res, err = extractToFile(t, data, "2024-02-01", 1<<20)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-01 d\n2024-02-01 e\n", content)
	assert.Equal(t, int64(2), res.Matches)
	assert.NotContains(t, content, "2024-01-31")
}

func TestExtractLocalDisorderWithinMargin(t *testing.T) {
	// Two adjacent records swapped out of order, well within the margin:
	// extraction must still be complete.
	data := strings.Join([]string{
		"2024-01-01 a",
		"2024-01-02 b",
		"2024-01-01 late", // locally disordered
		"2024-01-02 c",
		"2024-01-03 d",
	}, "\n") + "\n"

	content, res, err := extractToFile(t, data, "2024-01-02", int64(len(data)))
	require.NoError(t, err)
	assert.Equal(t, "2024-01-02 b\n2024-01-02 c\n", content)
	assert.Equal(t, int64(2), res.Matches)
}

func TestExtractDisorderBeyondMarginIsIncomplete(t *testing.T) {
	// A known limitation: a record displaced by more than the margin can
	// fall outside the located window and be missed.
	var b strings.Builder
	for i := 0; i < 200; i++ {
		if i == 10 {
			b.WriteString("2024-01-02 stray displaced far ahead of its block\n")
		}
		b.WriteString("2024-01-01 filler line padding out the byte distance\n")
	}
	b.WriteString("2024-01-02 x\n")
	b.WriteString("2024-01-03 y\n")
	data := b.String()

	content, res, err := extractToFile(t, data, "2024-01-02", 64)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Matches, "the displaced record is expected to be missed")
	assert.Equal(t, "2024-01-02 x\n", content)
}

func TestExtractInvalidDate(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "out.txt")
	out, err := sink.NewFileSink(outPath)
	require.NoError(t, err)
	defer out.Close()

	extractor := New(newMemSource("2024-01-02 a\n"), Config{})
	_, err = extractor.Extract(context.Background(), "2024-02-30", out)
	assert.ErrorIs(t, err, domain.ErrInvalidDate)

	// Validation fails before any scan: nothing may be written.
	require.NoError(t, out.Flush(context.Background()))
	content, readErr := os.ReadFile(outPath)
	require.NoError(t, readErr)
	assert.Empty(t, content)
}

func TestExtractEmptyFile(t *testing.T) {
	content, res, err := extractToFile(t, "", "2024-01-02", 1<<20)
	require.NoError(t, err)
	assert.Empty(t, content)
	assert.Zero(t, res.Matches)
	assert.Equal(t, domain.Window{}, res.Window)
}

func TestExtractUsesWindowCache(t *testing.T) {
	data := "2024-01-01 a\n2024-01-02 b\n2024-01-02 c\n2024-01-03 d\n"
	cache := newFakeCache()
	reporter := &recordingReporter{}

	run := func() domain.Result {
		outPath := filepath.Join(t.TempDir(), "out.txt")
		out, err := sink.NewFileSink(outPath)
		require.NoError(t, err)
		defer out.Close()

		extractor := New(newMemSource(data), Config{
			InputPath: "cached.log",
			Margin:    1 << 20,
			Cache:     cache,
			Reporter:  reporter,
		})
		res, err := extractor.Extract(context.Background(), "2024-01-02", out)
		require.NoError(t, err)
		return res
	}

	first := run()
	require.Equal(t, 1, cache.puts, "first run must populate the cache")

	second := run()
	assert.Equal(t, 1, cache.puts, "second run must not re-locate")
	assert.Equal(t, first.Window, second.Window)
	assert.Equal(t, first.Matches, second.Matches)

	var sawCachedScan bool
	for _, ev := range reporter.events {
		if ev.Phase == domain.PhaseScan && ev.WindowCached {
			sawCachedScan = true
		}
	}
	assert.True(t, sawCachedScan, "second run must report a cached window")
}

func TestExtractReportsProgressPhases(t *testing.T) {
	data := "2024-01-02 a\n"
	reporter := &recordingReporter{}

	outPath := filepath.Join(t.TempDir(), "out.txt")
	out, err := sink.NewFileSink(outPath)
	require.NoError(t, err)
	defer out.Close()

	extractor := New(newMemSource(data), Config{Reporter: reporter, RunID: "run-1"})
	res, err := extractor.Extract(context.Background(), "2024-01-02", out)
	require.NoError(t, err)
	assert.Equal(t, "run-1", res.RunID)

	require.Len(t, reporter.events, 3)
	assert.Equal(t, domain.PhaseLocate, reporter.events[0].Phase)
	assert.Equal(t, domain.PhaseScan, reporter.events[1].Phase)
	assert.Equal(t, domain.PhaseDone, reporter.events[2].Phase)
	for _, ev := range reporter.events {
		assert.Equal(t, "run-1", ev.RunID)
	}
}

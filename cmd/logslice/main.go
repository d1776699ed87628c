package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"
	goflags "github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"

	"github.com/SteelMorgan/logslice/internal/clickhouse"
	"github.com/SteelMorgan/logslice/internal/config"
	"github.com/SteelMorgan/logslice/internal/extract"
	"github.com/SteelMorgan/logslice/internal/observability"
	"github.com/SteelMorgan/logslice/internal/sink"
	"github.com/SteelMorgan/logslice/internal/source"
	"github.com/SteelMorgan/logslice/internal/windowcache"
)

const version = "0.1.0"

type options struct {
	Input    string `short:"i" long:"input" required:"true" description:"Input log file path"`
	Output   string `short:"o" long:"output" description:"Output file path (default: <output-dir>/output_<date>.txt)"`
	Margin   int64  `long:"margin" description:"Safety margin and read granularity in bytes (default: 10 MiB)"`
	Config   string `long:"config" description:"Optional YAML config file"`
	LogLevel string `long:"log-level" description:"Log level (debug, info, warn, error)"`
	NoCache  bool   `long:"no-cache" description:"Skip the window cache even when configured"`

	Args struct {
		Date string `positional-arg-name:"date" description:"Date to extract logs for (YYYY-MM-DD)"`
	} `positional-args:"yes" required:"yes"`
}

func main() {
	var opts options
	parser := goflags.NewParser(&opts, goflags.Default)
	parser.Name = "logslice"
	parser.LongDescription = "Extract all lines for a single calendar date from a large, date-prefixed log file without scanning it end-to-end."

	if _, err := parser.Parse(); err != nil {
		var flagsErr *goflags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == goflags.ErrHelp {
			return
		}
		os.Exit(1)
	}

	cfg, err := config.Load(opts.Config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if opts.Margin > 0 {
		cfg.MarginBytes = opts.Margin
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}

	observability.InitLogger(cfg.LogLevel, cfg.LogFile)

	if err := run(&opts, cfg); err != nil {
		log.Error().Err(err).Msg("Extraction failed")
		os.Exit(1)
	}
}

func run(opts *options, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := observability.InitTracer(observability.TracerConfig{
		ServiceName:    "logslice",
		ServiceVersion: version,
		Endpoint:       cfg.TracingEndpoint,
		Protocol:       cfg.TracingProtocol,
		Enabled:        cfg.TracingEnabled,
	})
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize tracer, continuing without tracing")
	} else {
		defer shutdownTracer(context.Background())
	}

	// Fail fast on a bad date before touching any I/O.
	key, err := extract.ParseDateKey(opts.Args.Date)
	if err != nil {
		return err
	}
	date := key.String()

	src, err := source.Open(opts.Input)
	if err != nil {
		return err
	}
	defer src.Close()

	var cache extract.WindowCache
	if cfg.WindowCachePath != "" && !opts.NoCache {
		store, err := windowcache.NewBoltStore(cfg.WindowCachePath)
		if err != nil {
			log.Warn().Err(err).Msg("Window cache unavailable, continuing without it")
		} else {
			defer store.Close()
			cache = store
		}
	}

	runID := uuid.NewString()

	outPath := opts.Output
	if outPath == "" {
		outPath = filepath.Join(cfg.OutputDir, fmt.Sprintf("output_%s.txt", date))
	}
	fileSink, err := sink.NewFileSink(outPath)
	if err != nil {
		return err
	}
	sinks := []sink.LineSink{fileSink}

	if cfg.ClickHouseEnabled {
		client, err := clickhouse.NewClient(cfg.ClickHouseHost, cfg.ClickHousePort, cfg.ClickHouseDB)
		if err != nil {
			fileSink.Close()
			return err
		}
		defer client.Close()

		chSink, err := sink.NewClickHouseSink(ctx, client, runID, key.Time(), sink.BatchConfig{})
		if err != nil {
			fileSink.Close()
			return err
		}
		sinks = append(sinks, chSink)
	}

	out := sink.NewMultiSink(sinks...)
	defer out.Close()

	extractor := extract.New(src, extract.Config{
		InputPath: opts.Input,
		Margin:    cfg.MarginBytes,
		Cache:     cache,
		Reporter:  observability.NewZerologReporter(log.Logger),
		RunID:     runID,
	})

	res, err := extractor.Extract(ctx, date, out)
	if err != nil {
		return err
	}

	log.Info().
		Str("run_id", res.RunID).
		Int64("matches", res.Matches).
		Str("output", outPath).
		Msg("Results saved")

	return nil
}

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"fix2json/internal/codec"
	"fix2json/internal/dictionary"
	"fix2json/internal/ingest"
	"fix2json/internal/obs"
	"fix2json/internal/ops"
	"fix2json/internal/output"
	"fix2json/internal/pipeline"
	"fix2json/internal/sink"
	"fix2json/pkg/conn"
	"fix2json/pkg/exception"

	pyroscope "github.com/grafana/pyroscope-go"
	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
)

const usage = `Usage: fix2json [flags] [-p] <data dictionary xml file> [path to FIX message file]

fix2json will use standard input in the absence of a message file.
A message path may be a plain file, a .gz file or a directory of files.
`

func main() {
	if err := run(os.Args, os.Stdout); err != nil {
		logs.Errorf("fix2json: %+v", err)
		os.Exit(1)
	}
}

type options struct {
	config ops.Loaded
}

func parseArgs(args []string, stderr io.Writer) (options, error) {
	fs := flag.NewFlagSet(filepath.Base(args[0]), flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}

	configFlag := fs.String("config", "", "JSON config file")
	prettyFlag := fs.Bool("p", false, "pretty-print JSON output")
	formatFlag := fs.String("format", "", "output format: json or yaml")
	outFlag := fs.String("o", "", "output file (default standard output)")
	sepFlag := fs.String("sep", "", `field separator, e.g. "|" or "\x01" (default SOH)`)
	strictFlag := fs.Bool("strict", false, "fail lines whose group counters disagree with the entries found")
	workersFlag := fs.Int("workers", 0, "concurrent decoders (default GOMAXPROCS)")
	batchFlag := fs.Int("batch", 0, "lines decoded per batch")
	statsFlag := fs.Bool("stats", false, "log decode statistics on exit")
	pgFlag := fs.String("pg", "", "PostgreSQL DSN; stores every decoded message")
	quietFlag := fs.Bool("q", false, "suppress document output")
	pyroscopeFlag := fs.String("pyroscope", "", "pyroscope server address")

	if err := fs.Parse(args[1:]); err != nil {
		return options{}, err
	}

	cfg := ops.Default()
	if *configFlag != "" {
		loaded, err := ops.Load(*configFlag)
		if err != nil {
			return options{}, err
		}
		cfg = loaded
	}

	if strings.Contains(strings.ToLower(filepath.Base(args[0])), string(output.FormatYAML)) {
		cfg.Output.Format = output.FormatYAML
	}

	var err error
	fs.Visit(func(f *flag.Flag) {
		if err != nil {
			return
		}
		switch f.Name {
		case "p":
			cfg.Output.Pretty = *prettyFlag
		case "format":
			cfg.Output.Format, err = output.ParseFormat(*formatFlag)
		case "o":
			cfg.Output.Path = *outFlag
		case "sep":
			cfg.Decoder.Separator, err = ops.ParseSeparator(*sepFlag)
		case "strict":
			cfg.Decoder.CheckGroupCounts = *strictFlag
		case "workers":
			cfg.Pipeline.Workers = *workersFlag
		case "batch":
			cfg.Pipeline.BatchSize = *batchFlag
		case "stats":
			cfg.Stats = *statsFlag
		case "pg":
			if cfg.Postgres == nil {
				cfg.Postgres = &ops.PostgresSpec{}
			}
			cfg.Postgres.Conn.ConnString = *pgFlag
		case "q":
			cfg.Output.Disabled = *quietFlag
		case "pyroscope":
			cfg.Pyroscope = &ops.PyroscopeSpec{ServerAddress: *pyroscopeFlag, ApplicationName: "fix2json"}
		}
	})
	if err != nil {
		return options{}, err
	}

	switch rest := fs.Args(); len(rest) {
	case 2:
		cfg.Input = rest[1]
		fallthrough
	case 1:
		cfg.Dictionary = rest[0]
	case 0:
		if cfg.Dictionary == "" {
			fs.Usage()
			return options{}, errors.Wrap(exception.ErrInvalidArgument, "missing data dictionary")
		}
	default:
		fs.Usage()
		return options{}, errors.Wrapf(exception.ErrInvalidArgument, "unexpected arguments %v", rest[2:])
	}

	return options{config: cfg}, nil
}

func run(args []string, stdout io.Writer) error {
	opts, err := parseArgs(args, os.Stderr)
	if err != nil {
		if err == flag.ErrHelp {
			return nil
		}
		return err
	}
	cfg := opts.config

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Pyroscope != nil {
		profiler, err := pyroscope.Start(pyroscope.Config{
			ApplicationName: cfg.Pyroscope.ApplicationName,
			ServerAddress:   cfg.Pyroscope.ServerAddress,
			Tags:            cfg.Pyroscope.Tags,
			Logger:          profilerLogger{},
			ProfileTypes: []pyroscope.ProfileType{
				pyroscope.ProfileCPU,
				pyroscope.ProfileAllocObjects,
				pyroscope.ProfileAllocSpace,
				pyroscope.ProfileInuseObjects,
				pyroscope.ProfileInuseSpace,
			},
		})
		if err != nil {
			return errors.Wrap(err, "start pyroscope")
		}
		defer func() {
			_ = profiler.Stop()
		}()
	}

	dict, err := dictionary.LoadFile(cfg.Dictionary)
	if err != nil {
		return err
	}
	decoder, err := codec.NewDecoder(dict, dictionary.Compile(dict), cfg.Decoder)
	if err != nil {
		return err
	}

	src, err := ingest.Open(cfg.Input)
	if err != nil {
		return err
	}
	defer src.Close()

	metrics := obs.NewMetrics()
	reader := ingest.NewReader(src, ingest.ReaderOptions{
		Separator: decoder.Separator(),
		Metrics:   metrics,
	})

	var sinks []pipeline.Sink
	if !cfg.Output.Disabled {
		out := stdout
		if cfg.Output.Path != "" && cfg.Output.Path != ingest.Stdin {
			f, err := os.Create(cfg.Output.Path)
			if err != nil {
				return errors.Wrapf(err, "create %s", cfg.Output.Path)
			}
			defer f.Close()
			out = f
		}
		w, err := output.NewWriter(out, output.WriterOptions{
			Format:    cfg.Output.Format,
			Pretty:    cfg.Output.Pretty,
			AutoFlush: cfg.Input == "" || cfg.Input == ingest.Stdin,
		})
		if err != nil {
			return err
		}
		sinks = append(sinks, w)
	}

	if cfg.Postgres != nil {
		client, err := conn.New(ctx, cfg.Postgres.Conn)
		if err != nil {
			return err
		}
		defer client.Close()

		pg, err := sink.NewPostgres(ctx, client.DB(), cfg.Postgres.Sink, metrics)
		if err != nil {
			return err
		}
		defer func() {
			if err := pg.Close(context.WithoutCancel(ctx)); err != nil {
				logs.Errorf("close postgres sink: %+v", err)
			}
		}()
		sinks = append(sinks, pg)
		logs.Infof("storing messages in %s", cfg.Postgres.Conn.Redacted())
	}

	p, err := pipeline.New(decoder, cfg.Pipeline, metrics, sinks...)
	if err != nil {
		return err
	}
	runErr := p.Run(ctx, reader)

	if cfg.Stats {
		metrics.Snapshot().Log()
	}
	return runErr
}

// profilerLogger forwards pyroscope diagnostics to the process logger.
type profilerLogger struct{}

func (profilerLogger) Infof(format string, args ...interface{})  { logs.Infof(format, args...) }
func (profilerLogger) Debugf(_ string, _ ...interface{})         {}
func (profilerLogger) Errorf(format string, args ...interface{}) { logs.Errorf(format, args...) }

package pipeline

import (
	"context"
	"io"
	"runtime"
	"time"

	"fix2json/internal/codec"
	"fix2json/internal/ingest"
	"fix2json/internal/obs"
	"fix2json/pkg/exception"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
	"golang.org/x/sync/errgroup"
)

const defaultBatchSize = 256

// Source yields input lines until io.EOF.
type Source interface {
	Next(ctx context.Context) (ingest.Line, error)
}

// Sink receives decoded messages in input order.
type Sink interface {
	Emit(ctx context.Context, line ingest.Line, msg *codec.Message) error
	Flush(ctx context.Context) error
}

// Config controls batching and fan-out.
type Config struct {
	// Workers bounds concurrent decodes within a batch. Zero uses GOMAXPROCS.
	Workers   int
	BatchSize int
}

func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	if c.BatchSize <= 0 {
		c.BatchSize = defaultBatchSize
	}
	return c
}

// Pipeline reads lines, decodes them in parallel batches and hands the
// results to its sinks in the order the lines were read. A line that fails
// to decode is logged and counted; a sink error stops the run.
type Pipeline struct {
	decoder *codec.Decoder
	sinks   []Sink
	cfg     Config
	metrics *obs.Metrics
}

// New creates a pipeline. metrics may be nil.
func New(decoder *codec.Decoder, cfg Config, metrics *obs.Metrics, sinks ...Sink) (*Pipeline, error) {
	if decoder == nil {
		return nil, errors.Wrap(exception.ErrNilInstance, "decoder")
	}
	return &Pipeline{
		decoder: decoder,
		sinks:   sinks,
		cfg:     cfg.withDefaults(),
		metrics: metrics,
	}, nil
}

type result struct {
	line    ingest.Line
	msg     *codec.Message
	err     error
	elapsed time.Duration
}

// Run drains src. Cancelling ctx or a process shutdown ends the run
// gracefully: lines already read are still decoded and flushed.
func (p *Pipeline) Run(ctx context.Context, src Source) error {
	batch := make([]ingest.Line, 0, p.cfg.BatchSize)
	for {
		line, err := src.Next(ctx)
		if err == nil {
			batch = append(batch, line)
			if len(batch) < p.cfg.BatchSize {
				continue
			}
			if err := p.process(ctx, batch); err != nil {
				return err
			}
			batch = batch[:0]
			continue
		}

		stopped := ctx.Err() != nil || err == exception.ErrIngestClosed
		if err != io.EOF && !stopped {
			return errors.Wrap(err, "read input")
		}
		if stopped {
			logs.Infof("input stopped: %v", err)
			ctx = context.WithoutCancel(ctx)
		}
		if err := p.process(ctx, batch); err != nil {
			return err
		}
		return p.flush(ctx)
	}
}

func (p *Pipeline) process(ctx context.Context, batch []ingest.Line) error {
	if len(batch) == 0 {
		return nil
	}
	results := p.decode(batch)
	for i := range results {
		if err := p.emit(ctx, &results[i]); err != nil {
			return err
		}
	}
	return nil
}

// decode fills one result per line. Workers write to distinct slots, so the
// slice needs no locking and keeps input order.
func (p *Pipeline) decode(batch []ingest.Line) []result {
	results := make([]result, len(batch))
	var g errgroup.Group
	g.SetLimit(p.cfg.Workers)
	for i := range batch {
		g.Go(func() error {
			start := time.Now()
			msg, err := p.decoder.Decode(batch[i].Text)
			results[i] = result{
				line:    batch[i],
				msg:     msg,
				err:     err,
				elapsed: time.Since(start),
			}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (p *Pipeline) emit(ctx context.Context, r *result) error {
	if r.err != nil {
		if le, ok := r.err.(*codec.LineError); ok {
			le.Line = r.line.Number
		}
		p.metrics.IncFailed()
		logs.Errorf("decode: %+v", r.err)
		return nil
	}

	p.metrics.ObserveDecoded(r.msg.Type, r.elapsed)
	for _, s := range p.sinks {
		if err := s.Emit(ctx, r.line, r.msg); err != nil {
			return errors.Wrapf(err, "emit line %d", r.line.Number)
		}
	}
	return nil
}

func (p *Pipeline) flush(ctx context.Context) error {
	for _, s := range p.sinks {
		if err := s.Flush(ctx); err != nil {
			return errors.Wrap(err, "flush sink")
		}
	}
	return nil
}

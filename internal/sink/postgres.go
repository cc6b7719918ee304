package sink

import (
	"context"
	"sync"
	"time"

	"fix2json/internal/codec"
	"fix2json/internal/ingest"
	"fix2json/internal/obs"
	"fix2json/pkg/exception"

	"github.com/bytedance/sonic"
	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
	"gorm.io/gorm"
)

const defaultBatchSize = 500

// MessageRow is one decoded message as stored in PostgreSQL.
type MessageRow struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	Batch     uint64    `gorm:"index;not null"`
	Line      int64     `gorm:"not null"`
	MsgType   string    `gorm:"size:16;index;not null"`
	MsgName   string    `gorm:"size:128"`
	Raw       string    `gorm:"type:text;not null"`
	Document  string    `gorm:"type:jsonb;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// TableName pins the table name.
func (MessageRow) TableName() string {
	return "fix_messages"
}

// PostgresConfig controls buffering.
type PostgresConfig struct {
	// BatchSize is the number of rows buffered before an insert.
	BatchSize int
}

func (c PostgresConfig) withDefaults() PostgresConfig {
	if c.BatchSize <= 0 {
		c.BatchSize = defaultBatchSize
	}
	return c
}

type storeFunc func(ctx context.Context, rows []MessageRow) error

// Postgres buffers decoded messages and inserts them in batches. Every
// insert gets its own batch number.
type Postgres struct {
	cfg     PostgresConfig
	store   storeFunc
	seq     *obs.Sequence
	metrics *obs.Metrics

	mu     sync.Mutex
	buf    []MessageRow
	closed bool
}

// NewPostgres migrates the message table and returns a sink writing to db.
func NewPostgres(ctx context.Context, db *gorm.DB, cfg PostgresConfig, metrics *obs.Metrics) (*Postgres, error) {
	if db == nil {
		return nil, exception.ErrSinkNilDB
	}
	if err := db.WithContext(ctx).AutoMigrate(&MessageRow{}); err != nil {
		return nil, errors.Wrap(err, "migrate fix_messages")
	}
	cfg = cfg.withDefaults()
	store := func(ctx context.Context, rows []MessageRow) error {
		return db.WithContext(ctx).CreateInBatches(rows, cfg.BatchSize).Error
	}
	return newPostgres(store, cfg, metrics), nil
}

func newPostgres(store storeFunc, cfg PostgresConfig, metrics *obs.Metrics) *Postgres {
	cfg = cfg.withDefaults()
	return &Postgres{
		cfg:     cfg,
		store:   store,
		seq:     obs.NewSequence(0),
		metrics: metrics,
		buf:     make([]MessageRow, 0, cfg.BatchSize),
	}
}

// Emit buffers msg and inserts the buffer once it is full.
func (p *Postgres) Emit(ctx context.Context, line ingest.Line, msg *codec.Message) error {
	row, err := newRow(line, msg)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return exception.ErrSinkClosed
	}
	p.buf = append(p.buf, row)
	if len(p.buf) < p.cfg.BatchSize {
		return nil
	}
	return p.flushLocked(ctx)
}

// Flush inserts buffered rows.
func (p *Postgres) Flush(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.flushLocked(ctx)
}

// Close flushes and rejects further messages.
func (p *Postgres) Close(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.flushLocked(ctx)
}

func (p *Postgres) flushLocked(ctx context.Context) error {
	if len(p.buf) == 0 {
		return nil
	}
	batch := p.seq.Next()
	for i := range p.buf {
		p.buf[i].Batch = batch
	}
	if err := p.store(ctx, p.buf); err != nil {
		return errors.Wrapf(err, "insert batch %d (%d rows)", batch, len(p.buf))
	}
	logs.Infof("stored batch %d: %d message(s)", batch, len(p.buf))
	p.metrics.AddStored(len(p.buf))
	p.buf = p.buf[:0]
	return nil
}

func newRow(line ingest.Line, msg *codec.Message) (MessageRow, error) {
	doc, err := sonic.ConfigStd.Marshal(msg.Record)
	if err != nil {
		return MessageRow{}, errors.Wrapf(err, "encode line %d", line.Number)
	}
	return MessageRow{
		Line:     line.Number,
		MsgType:  msg.Type,
		MsgName:  msg.Name,
		Raw:      line.Text,
		Document: string(doc),
	}, nil
}

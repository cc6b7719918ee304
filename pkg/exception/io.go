package exception

import "errors"

var (
	ErrIngestClosed      = errors.New("ingest: reader closed")
	ErrIngestLineTooLong = errors.New("ingest: line too long")
	ErrSinkClosed        = errors.New("sink: closed")
	ErrSinkNilDB         = errors.New("sink: nil database")
	ErrUnsupportedFormat = errors.New("output: unsupported format")
)

package ops

import (
	"os"
	"strconv"
	"strings"

	"fix2json/internal/codec"
	"fix2json/internal/output"
	"fix2json/internal/pipeline"
	"fix2json/internal/sink"
	"fix2json/pkg/conn"
	"fix2json/pkg/exception"

	"github.com/bytedance/sonic"
	"github.com/yanun0323/errors"
)

const defaultApplicationName = "fix2json"

// FileConfig mirrors the JSON config layout.
type FileConfig struct {
	Dictionary string          `json:"dictionary"`
	Input      string          `json:"input"`
	Output     OutputConfig    `json:"output"`
	Decode     DecodeConfig    `json:"decode"`
	Pipeline   PipelineConfig  `json:"pipeline"`
	Stats      *bool           `json:"stats"`
	Postgres   PostgresConfig  `json:"postgres"`
	Pyroscope  PyroscopeConfig `json:"pyroscope"`
}

// OutputConfig selects the document encoding.
type OutputConfig struct {
	Format string `json:"format"`
	Pretty *bool  `json:"pretty"`
	// Path is the output file. Empty or "-" writes to standard output.
	Path string `json:"path"`
	// Disabled suppresses document output, e.g. when only persisting.
	Disabled bool `json:"disabled"`
}

// DecodeConfig tunes line decoding.
type DecodeConfig struct {
	Separator         string `json:"separator"`
	StrictGroupCounts *bool  `json:"strictGroupCounts"`
}

// PipelineConfig bounds decode concurrency.
type PipelineConfig struct {
	Workers   int `json:"workers"`
	BatchSize int `json:"batchSize"`
}

// PostgresConfig describes the optional persistence target.
type PostgresConfig struct {
	DSN       string            `json:"dsn"`
	Host      string            `json:"host"`
	Port      int               `json:"port"`
	User      string            `json:"user"`
	Password  string            `json:"password"`
	Database  string            `json:"database"`
	SSLMode   string            `json:"sslMode"`
	Params    map[string]string `json:"params"`
	BatchSize int               `json:"batchSize"`
}

// PyroscopeConfig describes the optional continuous profiler.
type PyroscopeConfig struct {
	ServerAddress   string            `json:"serverAddress"`
	ApplicationName string            `json:"applicationName"`
	Tags            map[string]string `json:"tags"`
}

// Loaded is the resolved configuration ready for use.
type Loaded struct {
	Dictionary string
	Input      string
	Output     OutputSpec
	Decoder    codec.Options
	Pipeline   pipeline.Config
	Stats      bool
	// Postgres is nil when persistence is not configured.
	Postgres *PostgresSpec
	// Pyroscope is nil when profiling is not configured.
	Pyroscope *PyroscopeSpec
}

// OutputSpec is the resolved output definition.
type OutputSpec struct {
	Format   output.Format
	Pretty   bool
	Path     string
	Disabled bool
}

// PostgresSpec is the resolved persistence definition.
type PostgresSpec struct {
	Conn conn.Option
	Sink sink.PostgresConfig
}

// PyroscopeSpec is the resolved profiler definition.
type PyroscopeSpec struct {
	ServerAddress   string
	ApplicationName string
	Tags            map[string]string
}

// Load reads a JSON config file and resolves it.
func Load(path string) (Loaded, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Loaded{}, errors.Wrapf(err, "read config %s", path)
	}
	var cfg FileConfig
	if err := sonic.ConfigStd.Unmarshal(data, &cfg); err != nil {
		return Loaded{}, errors.Wrapf(exception.ErrInvalidConfig, "parse %s: %v", path, err)
	}
	return Resolve(cfg)
}

// Default returns the configuration used without a config file.
func Default() Loaded {
	loaded, _ := Resolve(FileConfig{})
	return loaded
}

// Resolve validates cfg and applies defaults.
func Resolve(cfg FileConfig) (Loaded, error) {
	format, err := output.ParseFormat(cfg.Output.Format)
	if err != nil {
		return Loaded{}, err
	}
	sep, err := ParseSeparator(cfg.Decode.Separator)
	if err != nil {
		return Loaded{}, err
	}
	if cfg.Pipeline.Workers < 0 {
		return Loaded{}, errors.Wrap(exception.ErrInvalidConfig, "pipeline workers must be >= 0")
	}
	if cfg.Pipeline.BatchSize < 0 {
		return Loaded{}, errors.Wrap(exception.ErrInvalidConfig, "pipeline batchSize must be >= 0")
	}
	pg, err := resolvePostgres(cfg.Postgres)
	if err != nil {
		return Loaded{}, err
	}

	return Loaded{
		Dictionary: strings.TrimSpace(cfg.Dictionary),
		Input:      strings.TrimSpace(cfg.Input),
		Output: OutputSpec{
			Format:   format,
			Pretty:   boolOr(cfg.Output.Pretty, false),
			Path:     strings.TrimSpace(cfg.Output.Path),
			Disabled: cfg.Output.Disabled,
		},
		Decoder: codec.Options{
			Separator:        sep,
			CheckGroupCounts: boolOr(cfg.Decode.StrictGroupCounts, false),
		},
		Pipeline: pipeline.Config{
			Workers:   cfg.Pipeline.Workers,
			BatchSize: cfg.Pipeline.BatchSize,
		},
		Stats:     boolOr(cfg.Stats, false),
		Postgres:  pg,
		Pyroscope: resolvePyroscope(cfg.Pyroscope),
	}, nil
}

// ParseSeparator accepts a single character, "SOH", or an escape such as
// "\x01". Empty selects SOH.
func ParseSeparator(s string) (byte, error) {
	switch {
	case s == "":
		return codec.DefaultSeparator, nil
	case strings.EqualFold(s, "SOH"):
		return codec.DefaultSeparator, nil
	case len(s) == 1:
		return s[0], nil
	}
	unquoted, err := strconv.Unquote(`"` + s + `"`)
	if err != nil || len(unquoted) != 1 {
		return 0, errors.Wrapf(exception.ErrInvalidSeparator, "separator %q", s)
	}
	return unquoted[0], nil
}

func resolvePostgres(cfg PostgresConfig) (*PostgresSpec, error) {
	if cfg.DSN == "" && cfg.Host == "" {
		return nil, nil
	}
	if cfg.Port < 0 || cfg.Port > 65535 {
		return nil, errors.Wrapf(exception.ErrInvalidConfig, "postgres port %d", cfg.Port)
	}
	if cfg.BatchSize < 0 {
		return nil, errors.Wrap(exception.ErrInvalidConfig, "postgres batchSize must be >= 0")
	}
	return &PostgresSpec{
		Conn: conn.Option{
			Host:       cfg.Host,
			Port:       cfg.Port,
			User:       cfg.User,
			Password:   cfg.Password,
			Database:   cfg.Database,
			SSLMode:    cfg.SSLMode,
			Params:     cfg.Params,
			ConnString: cfg.DSN,
		},
		Sink: sink.PostgresConfig{BatchSize: cfg.BatchSize},
	}, nil
}

func resolvePyroscope(cfg PyroscopeConfig) *PyroscopeSpec {
	if cfg.ServerAddress == "" {
		return nil
	}
	name := cfg.ApplicationName
	if name == "" {
		name = defaultApplicationName
	}
	return &PyroscopeSpec{
		ServerAddress:   cfg.ServerAddress,
		ApplicationName: name,
		Tags:            cfg.Tags,
	}
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

// Package config assembles the settings of one mysqlts run.
//
// Values are layered: Default, then an optional YAML file (Load), then
// environment variables (ApplyEnv), then command-line flags applied by the
// CLI. The result is validated once and treated as read-only afterwards.
package config

import (
	"bytes"
	"errors"
	"io"
	"os"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/koustreak/mysqlts/internal/database"
	"github.com/koustreak/mysqlts/internal/errs"
	"github.com/koustreak/mysqlts/internal/filestore"
	"github.com/koustreak/mysqlts/internal/logger"
	"github.com/koustreak/mysqlts/internal/tsgen"
)

// Environment variables read by ApplyEnv.
const (
	EnvDSN            = "MYSQLTS_DSN"
	EnvMinioEndpoint  = "MYSQLTS_MINIO_ENDPOINT"
	EnvMinioAccessKey = "MYSQLTS_MINIO_ACCESS_KEY"
	EnvMinioSecretKey = "MYSQLTS_MINIO_SECRET_KEY"
)

// Config is the full configuration of a run.
type Config struct {
	Database database.Config `yaml:"database"`
	Generate GenerateConfig  `yaml:"generate"`
	Output   OutputConfig    `yaml:"output"`
	Upload   UploadConfig    `yaml:"upload"`
	Server   ServerConfig    `yaml:"server"`
	Log      logger.Config   `yaml:"log"`
}

// GenerateConfig selects what is generated and how types are mapped.
type GenerateConfig struct {
	// Table restricts generation to one table. Empty means all tables.
	Table string `yaml:"table"`

	// Prefix is prepended verbatim to every interface name.
	Prefix string `yaml:"prefix"`

	// Workers bounds concurrent table fetches. 0 means GOMAXPROCS.
	Workers int `yaml:"workers"`

	tsgen.Options `yaml:",inline"`
}

// OutputConfig says where generated text is written locally.
type OutputConfig struct {
	// Path is the output file. Empty means stdout.
	Path string `yaml:"path"`
}

// UploadConfig publishes the generated text to object storage.
// Upload is skipped when Bucket is empty.
type UploadConfig struct {
	filestore.Config `yaml:",inline"`

	Bucket string `yaml:"bucket"`
	Key    string `yaml:"key"`

	// PresignTTL, when positive, makes the CLI log a download link valid that long.
	PresignTTL time.Duration `yaml:"presign_ttl"`
}

// ServerConfig configures the HTTP mode. The server runs only when Addr is set.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Default returns the configuration used when no file or flag says otherwise.
func Default() *Config {
	return &Config{
		Database: *database.DefaultConfig(""),
		Upload: UploadConfig{
			Config: filestore.Config{Provider: filestore.ProviderMinIO},
		},
		Server: ServerConfig{
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		Log: *logger.DefaultConfig(),
	}
}

// Load reads a YAML file over Default. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, errs.Wrap(errs.ErrKindNotFound, "config file "+path+" not found", err)
		}
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "cannot open config file "+path, err)
	}
	defer f.Close()

	return Decode(f)
}

// Decode reads YAML from r over Default. An empty document yields Default.
func Decode(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "cannot read config", err)
	}

	cfg := Default()
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "invalid config", err)
	}
	if cfg.Log.Output == nil {
		cfg.Log.Output = os.Stderr
	}
	return cfg, nil
}

// ApplyEnv overrides settings from environment variables that are set
// and non-empty. getenv is usually os.Getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvDSN); v != "" {
		c.Database.DSN = v
	}
	if v := getenv(EnvMinioEndpoint); v != "" {
		c.Upload.Endpoint = v
	}
	if v := getenv(EnvMinioAccessKey); v != "" {
		c.Upload.AccessKey = v
	}
	if v := getenv(EnvMinioSecretKey); v != "" {
		c.Upload.SecretKey = v
	}
}

// SetUploadTarget parses "bucket" or "bucket/key/path" into the upload
// section. Without a key the object is named after the generated scope.
func (c *Config) SetUploadTarget(target string) {
	bucket, key, _ := strings.Cut(strings.TrimPrefix(target, "/"), "/")
	c.Upload.Bucket = bucket
	c.Upload.Key = key
}

// UploadKey returns the object key for the generated text.
func (c *Config) UploadKey() string {
	if c.Upload.Key != "" {
		return c.Upload.Key
	}
	if c.Generate.Table != "" {
		return c.Generate.Table + ".ts"
	}
	return "schema.ts"
}

// Validate checks the settings that must hold before any connection is made.
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return errs.New(errs.ErrKindInvalidInput, "no database DSN given")
	}
	if c.Generate.Workers < 0 {
		return errs.Newf(errs.ErrKindInvalidInput, "workers must not be negative, got %d", c.Generate.Workers)
	}
	if c.Upload.Bucket != "" && c.Upload.Endpoint == "" {
		return errs.New(errs.ErrKindInvalidInput, "upload bucket set but no object store endpoint")
	}
	if c.Upload.Bucket != "" && c.Upload.Provider != filestore.ProviderMinIO {
		return errs.Newf(errs.ErrKindInvalidInput, "unsupported object store provider %q", c.Upload.Provider)
	}
	if c.Server.Addr != "" && c.Output.Path != "" {
		return errs.New(errs.ErrKindInvalidInput, "output path cannot be combined with server mode")
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return errs.Newf(errs.ErrKindInvalidInput, "unknown log format %q", c.Log.Format)
	}
	return nil
}

// Package config loads bioforge settings from an optional TOML file with
// environment overrides.
package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

// Storage drivers.
const (
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

// Blob drivers.
const (
	BlobFS     = "fs"
	BlobMemory = "memory"
	BlobS3     = "s3"
)

// Config is the full runtime configuration.
type Config struct {
	Storage Storage `toml:"storage"`
	Blob    Blob    `toml:"blob"`
	Log     Log     `toml:"log"`
}

// Storage selects the state store.
type Storage struct {
	Driver      string `toml:"driver" env:"BIOFORGE_STORAGE_DRIVER"`
	SQLitePath  string `toml:"sqlite_path" env:"BIOFORGE_SQLITE_PATH"`
	PostgresDSN string `toml:"postgres_dsn" env:"BIOFORGE_POSTGRES_DSN"`
}

// Blob selects where export artifacts are written.
type Blob struct {
	Driver      string `toml:"driver" env:"BIOFORGE_BLOB_DRIVER"`
	FSRoot      string `toml:"fs_root" env:"BIOFORGE_BLOB_FS_ROOT"`
	S3Bucket    string `toml:"s3_bucket" env:"BIOFORGE_BLOB_S3_BUCKET"`
	S3Region    string `toml:"s3_region" env:"BIOFORGE_BLOB_S3_REGION"`
	S3Endpoint  string `toml:"s3_endpoint" env:"BIOFORGE_BLOB_S3_ENDPOINT"`
	S3PathStyle bool   `toml:"s3_path_style" env:"BIOFORGE_BLOB_S3_PATH_STYLE"`
}

// Log controls logger verbosity.
type Log struct {
	Verbose bool `toml:"verbose" env:"BIOFORGE_LOG_VERBOSE"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Storage: Storage{Driver: StorageSQLite, SQLitePath: "bioforge.db"},
		Blob:    Blob{Driver: BlobFS, FSRoot: "./exports"},
	}
}

// Load starts from Default, applies the TOML file at path when path is not
// empty, then applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("load config %s: %w", path, err)
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	c.Blob.Driver = strings.ToLower(strings.TrimSpace(c.Blob.Driver))
	if c.Storage.Driver == "" {
		c.Storage.Driver = StorageSQLite
	}
	if c.Blob.Driver == "" {
		c.Blob.Driver = BlobFS
	}
}

// Validate reports unknown drivers and missing driver settings.
func (c Config) Validate() error {
	switch c.Storage.Driver {
	case StorageMemory, StorageSQLite:
	case StoragePostgres:
		if c.Storage.PostgresDSN == "" {
			return fmt.Errorf("postgres storage requires BIOFORGE_POSTGRES_DSN")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	switch c.Blob.Driver {
	case BlobFS, BlobMemory:
	case BlobS3:
		if c.Blob.S3Bucket == "" {
			return fmt.Errorf("s3 blob driver requires BIOFORGE_BLOB_S3_BUCKET")
		}
	default:
		return fmt.Errorf("unknown blob driver %q", c.Blob.Driver)
	}
	return nil
}

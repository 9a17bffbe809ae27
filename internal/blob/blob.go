// Package blob is the entry point for export artifact storage. Callers depend
// on blob.Store; the concrete backends live under internal/infra/blob.
package blob

import (
	"context"
	"fmt"

	"bioforge/internal/blob/core"
	"bioforge/internal/config"
	"bioforge/internal/infra/blob/fs"
	"bioforge/internal/infra/blob/memory"
	"bioforge/internal/infra/blob/s3"
)

type (
	// Driver identifies a blob backend driver.
	Driver = core.Driver
	// PutOptions configures a blob write.
	PutOptions = core.PutOptions
	// SignedURLOptions configures URL pre-signing.
	SignedURLOptions = core.SignedURLOptions
	// Info describes stored blob metadata.
	Info = core.Info
	// Store is the interface for blob storage backends.
	Store = core.Store
)

const (
	DriverFilesystem = core.DriverFilesystem
	DriverS3         = core.DriverS3
	DriverMemory     = core.DriverMemory
)

var (
	ErrUnsupported = core.ErrUnsupported
	ErrNotFound    = core.ErrNotFound
	ErrExists      = core.ErrExists
)

// Open builds the store selected by cfg.
//
//	fs: directory FSRoot (default ./exports)
//	s3: bucket S3Bucket in S3Region, optionally at S3Endpoint (MinIO)
//	memory: process memory (tests)
func Open(ctx context.Context, cfg config.Blob) (Store, error) {
	switch Driver(cfg.Driver) {
	case DriverFilesystem, "":
		store, err := fs.New(cfg.FSRoot)
		if err != nil {
			return nil, err
		}
		return store, nil
	case DriverS3:
		store, err := s3.New(ctx, s3.Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			PathStyle: cfg.S3PathStyle,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	case DriverMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %s", cfg.Driver)
	}
}

// NewMemory returns an in-memory store.
func NewMemory() Store { return memory.New() }

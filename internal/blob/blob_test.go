package blob

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"bioforge/internal/config"
)

func TestOpenSelectsDriver(t *testing.T) {
	ctx := context.Background()
	root := filepath.Join(t.TempDir(), "exports")
	fsStore, err := Open(ctx, config.Blob{Driver: config.BlobFS, FSRoot: root})
	if err != nil {
		t.Fatalf("open fs: %v", err)
	}
	if fsStore.Driver() != DriverFilesystem {
		t.Fatalf("expected fs driver, got %s", fsStore.Driver())
	}

	mem, err := Open(ctx, config.Blob{Driver: config.BlobMemory})
	if err != nil || mem.Driver() != DriverMemory {
		t.Fatalf("expected memory store, got %v %v", mem, err)
	}

	if _, err := Open(ctx, config.Blob{Driver: config.BlobS3}); err == nil {
		t.Fatalf("expected missing bucket error")
	}
	if _, err := Open(ctx, config.Blob{Driver: "gcs"}); err == nil || !strings.Contains(err.Error(), "unknown blob driver") {
		t.Fatalf("expected unknown driver error, got %v", err)
	}
}

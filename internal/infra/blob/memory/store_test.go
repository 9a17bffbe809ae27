package memory

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"bioforge/internal/blob/core"
)

func TestStoreLifecycle(t *testing.T) {
	s := New()
	ctx := context.Background()
	md := map[string]string{"plan": "default"}
	info, err := s.Put(ctx, "protocols/a.md", strings.NewReader("# plan"), core.PutOptions{ContentType: "text/markdown", Metadata: md})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	md["plan"] = "mutated"
	if info.Size != 6 || info.ETag == "" {
		t.Fatalf("unexpected info %+v", info)
	}
	if _, err := s.Put(ctx, "protocols/a.md", strings.NewReader("x"), core.PutOptions{}); !errors.Is(err, core.ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	head, err := s.Head(ctx, "protocols/a.md")
	if err != nil || head.Metadata["plan"] != "default" {
		t.Fatalf("metadata should be copied on put: %v %+v", err, head)
	}
	head.Metadata["plan"] = "changed"
	again, _ := s.Head(ctx, "protocols/a.md")
	if again.Metadata["plan"] != "default" {
		t.Fatalf("head must return a copy")
	}

	_, rc, err := s.Get(ctx, "protocols/a.md")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	b, _ := io.ReadAll(rc)
	if string(b) != "# plan" {
		t.Fatalf("unexpected body %q", b)
	}

	_, _ = s.Put(ctx, "backups/b.json", strings.NewReader("{}"), core.PutOptions{})
	list, err := s.List(ctx, "")
	if err != nil || len(list) != 2 || list[0].Key != "backups/b.json" {
		t.Fatalf("list: %v %+v", err, list)
	}

	if ok, _ := s.Delete(ctx, "protocols/a.md"); !ok {
		t.Fatalf("expected delete to report existing key")
	}
	if ok, _ := s.Delete(ctx, "protocols/a.md"); ok {
		t.Fatalf("expected second delete to report missing key")
	}
	if _, _, err := s.Get(ctx, "protocols/a.md"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.PresignURL(ctx, "backups/b.json", core.SignedURLOptions{}); !errors.Is(err, core.ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
	if _, err := s.Put(ctx, "", strings.NewReader("x"), core.PutOptions{}); err == nil {
		t.Fatalf("expected empty key error")
	}
}

// Package export writes plan backups and rendered protocol documents to blob
// storage and reads backups back.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"bioforge/internal/blob"
	"bioforge/internal/catalog"
	"bioforge/internal/protocol"
	"bioforge/pkg/domain"
)

// Format selects the protocol document encoding.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// Key prefixes under which artifacts are stored.
const (
	BackupPrefix   = "backups/"
	ProtocolPrefix = "protocols/"
)

var (
	// ErrEmptyProtocol is returned when the plan has no blocks to export.
	ErrEmptyProtocol = errors.New("export: protocol is empty")
	// ErrNotFound is returned when a backup key does not exist.
	ErrNotFound = errors.New("export: not found")
	// ErrUnknownFormat is returned for formats other than markdown and html.
	ErrUnknownFormat = errors.New("export: unknown format")
)

// ParseFormat maps a flag value onto a Format. "md" is accepted for markdown.
func ParseFormat(raw string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "markdown", "md":
		return FormatMarkdown, nil
	case "html":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, raw)
	}
}

func (f Format) ext() string {
	if f == FormatHTML {
		return "html"
	}
	return "md"
}

func (f Format) contentType() string {
	if f == FormatHTML {
		return "text/html; charset=utf-8"
	}
	return "text/markdown; charset=utf-8"
}

// Exporter renders artifacts into Blob. Nil Catalog, Clock and NewID fall back
// to the embedded catalog, time.Now and random UUIDs.
type Exporter struct {
	Blob    blob.Store
	Catalog *catalog.Catalog
	Clock   func() time.Time
	NewID   func() string
}

// New returns an exporter writing to store.
func New(store blob.Store, c *catalog.Catalog) *Exporter {
	return &Exporter{Blob: store, Catalog: c}
}

func (e *Exporter) now() time.Time {
	if e.Clock != nil {
		return e.Clock().UTC()
	}
	return time.Now().UTC()
}

func (e *Exporter) id() string {
	if e.NewID != nil {
		return e.NewID()
	}
	return uuid.NewString()
}

func (e *Exporter) key(prefix, kind, ext string, now time.Time) string {
	return fmt.Sprintf("%sbioforge-%s-%s-%s.%s", prefix, kind, now.Format(time.DateOnly), e.id(), ext)
}

// NewBundle projects the current plan and tracking logs out of st.
func NewBundle(st domain.State, now time.Time) domain.ExportBundle {
	st = st.Clone().Normalize()
	return domain.ExportBundle{
		ExportedAt:     domain.FormatTimestamp(now),
		Plan:           st.CurrentPlan,
		DoseLogs:       st.DoseLogs,
		BiomarkerLogs:  st.BiomarkerLogs,
		SymptomEntries: st.SymptomEntries,
	}
}

// Backup writes the JSON bundle of st to backups/.
func (e *Exporter) Backup(ctx context.Context, st domain.State) (blob.Info, error) {
	now := e.now()
	payload, err := json.MarshalIndent(NewBundle(st, now), "", "  ")
	if err != nil {
		return blob.Info{}, fmt.Errorf("encode backup: %w", err)
	}
	key := e.key(BackupPrefix, "backup", "json", now)
	info, err := e.Blob.Put(ctx, key, bytes.NewReader(payload), blob.PutOptions{
		ContentType: "application/json",
		Metadata:    map[string]string{"kind": "backup", "exported-at": domain.FormatTimestamp(now)},
	})
	if err != nil {
		return blob.Info{}, fmt.Errorf("store backup: %w", err)
	}
	return info, nil
}

// Protocol renders plan in format and writes it to protocols/.
func (e *Exporter) Protocol(ctx context.Context, plan *domain.UserPlan, format Format) (blob.Info, error) {
	if protocol.Empty(plan) {
		return blob.Info{}, ErrEmptyProtocol
	}
	doc, err := Render(protocol.Generate(plan, e.Catalog), format)
	if err != nil {
		return blob.Info{}, err
	}
	now := e.now()
	key := e.key(ProtocolPrefix, "protocol", format.ext(), now)
	info, err := e.Blob.Put(ctx, key, bytes.NewReader(doc), blob.PutOptions{
		ContentType: format.contentType(),
		Metadata:    map[string]string{"kind": "protocol", "plan-id": plan.ID},
	})
	if err != nil {
		return blob.Info{}, fmt.Errorf("store protocol: %w", err)
	}
	return info, nil
}

// Render encodes a generated protocol.
func Render(p *protocol.GeneratedProtocol, format Format) ([]byte, error) {
	switch format {
	case FormatMarkdown, "":
		return protocol.RenderMarkdown(p), nil
	case FormatHTML:
		doc, err := protocol.RenderHTML(p)
		if err != nil {
			return nil, fmt.Errorf("render html: %w", err)
		}
		return doc, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Restore reads a backup bundle back from key.
func (e *Exporter) Restore(ctx context.Context, key string) (domain.ExportBundle, error) {
	_, rc, err := e.Blob.Get(ctx, key)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			return domain.ExportBundle{}, fmt.Errorf("restore %s: %w", key, ErrNotFound)
		}
		return domain.ExportBundle{}, fmt.Errorf("restore %s: %w", key, err)
	}
	defer func() { _ = rc.Close() }()
	data, err := io.ReadAll(rc)
	if err != nil {
		return domain.ExportBundle{}, fmt.Errorf("read backup: %w", err)
	}
	var bundle domain.ExportBundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		return domain.ExportBundle{}, fmt.Errorf("decode backup: %w", err)
	}
	return bundle, nil
}

// List returns stored artifacts under prefix.
func (e *Exporter) List(ctx context.Context, prefix string) ([]blob.Info, error) {
	infos, err := e.Blob.List(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("list exports: %w", err)
	}
	return infos, nil
}

package ledger

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// SchemaVersion is the version marker for the persisted document. Migration
// is forward-only by deletion: a mismatch wipes the document rather than
// transforming it.
const SchemaVersion = 2

type document struct {
	Version int      `json:"version"`
	Data    Snapshot `json:"data"`
}

// DocumentStore persists the whole ledger as one JSON document at a fixed
// path, the durable-local-storage analog.
type DocumentStore struct {
	path   string
	logger *slog.Logger
}

func NewDocumentStore(path string, logger *slog.Logger) *DocumentStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &DocumentStore{path: path, logger: logger}
}

// Load reads the persisted snapshot. A missing file or a version mismatch
// yields a fresh snapshot; the mismatch case also removes the stale file.
func (d *DocumentStore) Load() (Snapshot, error) {
	b, err := os.ReadFile(d.path)
	if err != nil {
		if os.IsNotExist(err) {
			return fresh(), nil
		}
		return fresh(), fmt.Errorf("read ledger document: %w", err)
	}

	var doc document
	if err := json.Unmarshal(b, &doc); err != nil {
		d.logger.Warn("ledger.load.corrupt_document", "path", d.path, "error", err)
		d.wipe()
		return fresh(), nil
	}
	if doc.Version != SchemaVersion {
		d.logger.Warn("ledger.load.version_mismatch",
			"found", doc.Version, "want", SchemaVersion)
		d.wipe()
		return fresh(), nil
	}
	if doc.Data.Vendors == nil {
		doc.Data.Vendors = []Vendor{}
	}
	if doc.Data.Bills == nil {
		doc.Data.Bills = []Bill{}
	}
	return doc.Data, nil
}

// Save writes the snapshot atomically (temp file + rename).
func (d *DocumentStore) Save(snap Snapshot) error {
	doc := document{Version: SchemaVersion, Data: snap}
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode ledger document: %w", err)
	}
	dir := filepath.Dir(d.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create ledger dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".ledger-*")
	if err != nil {
		return fmt.Errorf("stage ledger document: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write ledger document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("flush ledger document: %w", err)
	}
	return os.Rename(tmp.Name(), d.path)
}

func (d *DocumentStore) wipe() {
	if err := os.Remove(d.path); err != nil && !os.IsNotExist(err) {
		d.logger.Warn("ledger.wipe.failed", "path", d.path, "error", err)
	}
}

func fresh() Snapshot {
	return Snapshot{
		Vendors: []Vendor{},
		Bills:   []Bill{},
	}
}

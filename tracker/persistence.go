package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

const ledgerFileExt = ".json.zst"

// FileGateway persists ledgers as zstd-compressed JSON records, one file
// per account key, in a single directory.
//
// Saves are atomic from the perspective of the stored file: the record is
// written to a temporary sibling and renamed into place, so a torn write
// can never be mistaken for a valid ledger. Loads treat unreadable or
// corrupt records as no record at all.
type FileGateway struct {
	dir    string
	logger Logger
}

// NewFileGateway creates a gateway rooted at dir, creating it if needed.
func NewFileGateway(dir string, logger Logger) (*FileGateway, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create ledger directory: %w", err)
	}
	return &FileGateway{dir: dir, logger: logger}, nil
}

func (g *FileGateway) path(accountKey string) string {
	return filepath.Join(g.dir, accountKey+ledgerFileExt)
}

// Load reads the ledger for an account key. A missing, unreadable or
// corrupt record yields (nil, nil): the caller starts a fresh ledger.
func (g *FileGateway) Load(ctx context.Context, accountKey string) (*AccountLedger, error) {
	f, err := os.Open(g.path(accountKey))
	if err != nil {
		if !os.IsNotExist(err) {
			g.logger.Warn("ledger %s unreadable, starting fresh: %v", accountKey, err)
		}
		return nil, nil
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		g.logger.Warn("ledger %s corrupt, starting fresh: %v", accountKey, err)
		return nil, nil
	}
	defer dec.Close()

	data, err := io.ReadAll(dec)
	if err != nil {
		g.logger.Warn("ledger %s corrupt, starting fresh: %v", accountKey, err)
		return nil, nil
	}

	ledger := &AccountLedger{}
	if err := json.Unmarshal(data, ledger); err != nil {
		g.logger.Warn("ledger %s does not parse, starting fresh: %v", accountKey, err)
		return nil, nil
	}
	ledger.normalize()
	return ledger, nil
}

// Save writes the ledger record with a write-then-rename.
func (g *FileGateway) Save(ctx context.Context, accountKey string, ledger *AccountLedger) error {
	data, err := json.Marshal(ledger)
	if err != nil {
		return fmt.Errorf("encode ledger %s: %w", accountKey, err)
	}

	tmp, err := os.CreateTemp(g.dir, accountKey+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp ledger file: %w", err)
	}
	defer os.Remove(tmp.Name())

	enc, err := zstd.NewWriter(tmp, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		tmp.Close()
		return fmt.Errorf("compress ledger %s: %w", accountKey, err)
	}
	if _, err := enc.Write(data); err != nil {
		enc.Close()
		tmp.Close()
		return fmt.Errorf("write ledger %s: %w", accountKey, err)
	}
	if err := enc.Close(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush ledger %s: %w", accountKey, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close ledger %s: %w", accountKey, err)
	}

	if err := os.Rename(tmp.Name(), g.path(accountKey)); err != nil {
		return fmt.Errorf("install ledger %s: %w", accountKey, err)
	}
	return nil
}

package ocr

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jinjernot/wg-sub000/internal/adapter"
	"github.com/jinjernot/wg-sub000/internal/logger"
)

const receiptIndexFile = "receipt_hashes.json"

// StoredAttachment describes an attachment written to the archive
type StoredAttachment struct {
	Path     string
	Hash     string
	MimeType string
	IsImage  bool
}

// Receipt is the first trade an image hash was seen on
type Receipt struct {
	ImageHash string    `json:"image_hash"`
	TradeHash string    `json:"trade_hash"`
	Owner     string    `json:"owner"`
	SeenAt    time.Time `json:"seen_at"`
}

// Record is one OCR audit entry
type Record struct {
	ID        string    `json:"id"`
	TradeHash string    `json:"trade_hash"`
	Owner     string    `json:"owner"`
	ImagePath string    `json:"image_path"`
	ImageHash string    `json:"image_hash"`
	MimeType  string    `json:"mime_type"`
	Bank      string    `json:"bank,omitempty"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Archive stores receipt attachments, OCR audit records and the image-hash index
//
//go:generate mockgen -source=archive.go -destination=../mocks/receipt_archive.go -package=mocks -mock_names=Archive=MockReceiptArchive
type Archive interface {
	// SaveAttachment writes the attachment and returns where it was stored
	SaveAttachment(ctx context.Context, owner, tradeHash string, data []byte) (StoredAttachment, error)

	// CheckDuplicate registers imageHash for the trade and returns the receipt
	// of another trade that already used the same image, if any
	CheckDuplicate(ctx context.Context, imageHash, tradeHash, owner string) (*Receipt, error)

	// RecordOCR appends an audit record for the owner
	RecordOCR(ctx context.Context, record Record) error
}

type archive struct {
	fs            adapter.FileSystem
	json          adapter.JSON
	clock         adapter.Clock
	attachmentDir string
	auditDir      string

	mu sync.Mutex
}

// NewArchive creates a file backed Archive
func NewArchive(fs adapter.FileSystem, json adapter.JSON, clock adapter.Clock, attachmentDir, auditDir string) Archive {
	return &archive{
		fs:            fs,
		json:          json,
		clock:         clock,
		attachmentDir: attachmentDir,
		auditDir:      auditDir,
	}
}

func (a *archive) SaveAttachment(ctx context.Context, owner, tradeHash string, data []byte) (StoredAttachment, error) {
	sum := sha256.Sum256(data)
	mt := mimetype.Detect(data)

	dir := filepath.Join(a.attachmentDir, sanitize(owner))
	if err := a.fs.MkdirAll(dir, 0o755); err != nil {
		return StoredAttachment{}, fmt.Errorf("failed to create attachment dir: %w", err)
	}

	name := fmt.Sprintf("%s_%s%s", sanitize(tradeHash), uuid.New().String(), mt.Extension())
	path := filepath.Join(dir, name)
	if err := a.fs.WriteFile(path, data, 0o644); err != nil {
		return StoredAttachment{}, fmt.Errorf("failed to write attachment: %w", err)
	}

	stored := StoredAttachment{
		Path:     path,
		Hash:     hex.EncodeToString(sum[:]),
		MimeType: mt.String(),
		IsImage:  strings.HasPrefix(mt.String(), "image/"),
	}
	logger.DebugCtx(ctx, "Stored attachment",
		zap.String("trade_hash", tradeHash),
		zap.String("path", path),
		zap.String("mime_type", stored.MimeType))
	return stored, nil
}

func (a *archive) CheckDuplicate(ctx context.Context, imageHash, tradeHash, owner string) (*Receipt, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	index, err := a.loadIndex(ctx)
	if err != nil {
		return nil, err
	}

	if prior, ok := index[imageHash]; ok {
		if prior.TradeHash == tradeHash {
			return nil, nil
		}
		logger.WarnCtx(ctx, "Duplicate receipt detected",
			zap.String("trade_hash", tradeHash),
			zap.String("previous_trade_hash", prior.TradeHash),
			zap.String("image_hash", imageHash))
		return &prior, nil
	}

	index[imageHash] = Receipt{
		ImageHash: imageHash,
		TradeHash: tradeHash,
		Owner:     owner,
		SeenAt:    a.clock.Now().UTC(),
	}
	if err := a.saveIndex(index); err != nil {
		return nil, err
	}
	return nil, nil
}

func (a *archive) RecordOCR(ctx context.Context, record Record) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = a.clock.Now().UTC()
	}

	line, err := a.json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode ocr record: %w", err)
	}

	if err := a.fs.MkdirAll(a.auditDir, 0o755); err != nil {
		return fmt.Errorf("failed to create audit dir: %w", err)
	}
	path := filepath.Join(a.auditDir, sanitize(record.Owner)+"_ocr.jsonl")

	a.mu.Lock()
	defer a.mu.Unlock()

	f, err := a.fs.OpenAppend(path)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write audit record: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to sync audit log: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close audit log: %w", err)
	}

	logger.DebugCtx(ctx, "Recorded OCR audit", zap.String("id", record.ID), zap.String("trade_hash", record.TradeHash))
	return nil
}

func (a *archive) loadIndex(ctx context.Context) (map[string]Receipt, error) {
	index := make(map[string]Receipt)
	path := filepath.Join(a.auditDir, receiptIndexFile)
	data, err := a.fs.ReadFile(path)
	if err != nil {
		if adapter.IsNotExist(err) {
			return index, nil
		}
		return nil, fmt.Errorf("failed to read receipt index: %w", err)
	}
	if len(data) == 0 {
		return index, nil
	}
	if err := a.json.Unmarshal(data, &index); err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("corrupt receipt index: %w", err), zap.String("path", path))
		backup := fmt.Sprintf("%s.corrupt-%d", path, a.clock.Now().Unix())
		if err := a.fs.WriteFile(backup, data, 0o600); err != nil {
			return nil, fmt.Errorf("failed to preserve corrupt receipt index: %w", err)
		}
		return make(map[string]Receipt), nil
	}
	return index, nil
}

// saveIndex replaces the index through a temp file and rename
func (a *archive) saveIndex(index map[string]Receipt) error {
	data, err := a.json.MarshalIndent(index)
	if err != nil {
		return fmt.Errorf("failed to encode receipt index: %w", err)
	}
	if err := a.fs.MkdirAll(a.auditDir, 0o755); err != nil {
		return fmt.Errorf("failed to create audit dir: %w", err)
	}

	tmp, err := a.fs.CreateTemp(a.auditDir, receiptIndexFile+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp index: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = a.fs.Remove(tmpName)
		return fmt.Errorf("failed to write temp index: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = a.fs.Remove(tmpName)
		return fmt.Errorf("failed to sync temp index: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = a.fs.Remove(tmpName)
		return fmt.Errorf("failed to close temp index: %w", err)
	}
	if err := a.fs.Rename(tmpName, filepath.Join(a.auditDir, receiptIndexFile)); err != nil {
		_ = a.fs.Remove(tmpName)
		return fmt.Errorf("failed to replace receipt index: %w", err)
	}
	return nil
}

func sanitize(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "unknown"
	}
	return b.String()
}

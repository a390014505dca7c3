package store

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/jinjernot/wg-sub000/internal/adapter"
	"github.com/jinjernot/wg-sub000/internal/domain"
	"github.com/jinjernot/wg-sub000/internal/logger"
)

type fileStore struct {
	dir   string
	fs    adapter.FileSystem
	json  adapter.JSON
	clock adapter.Clock

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewFileStore creates a TradeStateStore writing {dir}/{owner}_{platform}.json.
// Writes go to a temp file in dir which is fsynced and renamed over the document.
func NewFileStore(dir string, fs adapter.FileSystem, json adapter.JSON, clock adapter.Clock) (TradeStateStore, error) {
	if err := fs.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create state dir: %w", err)
	}
	return &fileStore{
		dir:   dir,
		fs:    fs,
		json:  json,
		clock: clock,
		locks: make(map[string]*sync.Mutex),
	}, nil
}

func (s *fileStore) path(owner string, platform domain.Platform) string {
	return filepath.Join(s.dir, documentKey(owner, platform)+".json")
}

// lock returns the mutex serializing writers of one document
func (s *fileStore) lock(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	return l
}

func (s *fileStore) Load(ctx context.Context, owner string, platform domain.Platform) (map[string]domain.TradeState, error) {
	states, _, err := s.read(ctx, s.path(owner, platform))
	return states, err
}

func (s *fileStore) Save(ctx context.Context, owner string, platform domain.Platform, states map[string]domain.TradeState) error {
	l := s.lock(documentKey(owner, platform))
	l.Lock()
	defer l.Unlock()

	path := s.path(owner, platform)
	_, raw, err := s.read(ctx, path)
	if err != nil {
		return err
	}
	return s.write(ctx, path, states, raw)
}

func (s *fileStore) Put(ctx context.Context, owner string, platform domain.Platform, state domain.TradeState) error {
	if state.TradeHash == "" {
		return fmt.Errorf("%w: missing trade hash", domain.ErrInvalidSnapshot)
	}

	l := s.lock(documentKey(owner, platform))
	l.Lock()
	defer l.Unlock()

	path := s.path(owner, platform)
	states, raw, err := s.read(ctx, path)
	if err != nil {
		return err
	}
	states[state.TradeHash] = state
	return s.write(ctx, path, states, raw)
}

// read returns the decoded document and its raw bytes. Missing and corrupt
// documents yield an empty map; only other I/O errors are returned.
func (s *fileStore) read(ctx context.Context, path string) (map[string]domain.TradeState, []byte, error) {
	states := make(map[string]domain.TradeState)

	raw, err := s.fs.ReadFile(path)
	if err != nil {
		if adapter.IsNotExist(err) {
			logger.DebugCtx(ctx, "No trade state document yet", zap.String("path", path))
			return states, nil, nil
		}
		return nil, nil, fmt.Errorf("failed to read trade state document: %w", err)
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		logger.ErrorCtx(ctx, fmt.Errorf("trade state document is empty"), zap.String("path", path))
		return states, nil, nil
	}

	if err := s.json.Unmarshal(raw, &states); err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("trade state document is corrupt, treating as empty: %w", err), zap.String("path", path))
		s.preserveCorrupt(ctx, path, raw)
		return make(map[string]domain.TradeState), nil, nil
	}

	return states, raw, nil
}

// preserveCorrupt keeps a copy of an unreadable document before it is overwritten
func (s *fileStore) preserveCorrupt(ctx context.Context, path string, raw []byte) {
	backup := fmt.Sprintf("%s.corrupt-%d", path, s.clock.Now().Unix())
	if err := s.fs.WriteFile(backup, raw, 0o600); err != nil {
		logger.WarnCtx(ctx, "Failed to preserve corrupt trade state document", zap.String("path", backup), zap.Error(err))
	}
}

func (s *fileStore) write(ctx context.Context, path string, states map[string]domain.TradeState, previous []byte) error {
	data, err := s.json.MarshalIndent(states)
	if err != nil {
		return fmt.Errorf("failed to encode trade state document: %w", err)
	}

	if previous != nil && s.unchanged(previous, data) {
		logger.DebugCtx(ctx, "Trade state document unchanged, skipping write", zap.String("path", path))
		return nil
	}

	return s.atomicWrite(path, data)
}

// unchanged compares canonical forms so formatting differences do not force a rewrite
func (s *fileStore) unchanged(previous, next []byte) bool {
	a, err := s.json.Canonicalize(previous)
	if err != nil {
		return false
	}
	b, err := s.json.Canonicalize(next)
	if err != nil {
		return false
	}
	return bytes.Equal(a, b)
}

func (s *fileStore) atomicWrite(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	tmp, err := s.fs.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			if rmErr := s.fs.Remove(tmpName); rmErr != nil && !adapter.IsNotExist(rmErr) {
				logger.Warn("Failed to remove temp file", zap.String("path", tmpName), zap.Error(rmErr))
			}
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err = s.fs.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace trade state document: %w", err)
	}
	if syncErr := s.fs.SyncDir(dir); syncErr != nil {
		logger.Warn("Failed to sync state dir", zap.String("dir", dir), zap.Error(syncErr))
	}
	return nil
}

package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/talx-hub/coinledger/internal/model"
	"github.com/talx-hub/coinledger/internal/serviceerrs"
)

// A lock file older than this is left over from a crashed writer.
const staleLockAge = 30 * time.Second

type fileEnvelope struct {
	Data    json.RawMessage `json:"data"`
	Version int64           `json:"version"`
}

// FileBackend keeps every document as <dir>/<name>.json. Writers in other
// processes are excluded with a <name>.lock file.
type FileBackend struct {
	log       *slog.Logger
	dir       string
	staleLock time.Duration
	mu        sync.Mutex
}

func NewFileBackend(dir string, log *slog.Logger) (*FileBackend, error) {
	const dirPerm = 0o750
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, fmt.Errorf("failed to create data dir %s: %w", dir, err)
	}
	return &FileBackend{
		log:       log,
		dir:       dir,
		staleLock: staleLockAge,
	}, nil
}

func (b *FileBackend) path(name string) string {
	return filepath.Join(b.dir, name+".json")
}

func (b *FileBackend) Read(_ context.Context, name string) ([]byte, int64, error) {
	env, err := b.readEnvelope(name)
	if err != nil {
		return nil, 0, err
	}
	return env.Data, env.Version, nil
}

func (b *FileBackend) readEnvelope(name string) (fileEnvelope, error) {
	raw, err := os.ReadFile(b.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return fileEnvelope{}, nil
	}
	if err != nil {
		return fileEnvelope{}, fmt.Errorf("failed to read document %s: %w", name, err)
	}
	if len(raw) == 0 {
		return fileEnvelope{}, nil
	}

	var env fileEnvelope
	if err = json.Unmarshal(raw, &env); err != nil {
		return fileEnvelope{}, fmt.Errorf("failed to decode document %s: %w", name, err)
	}
	return env, nil
}

func (b *FileBackend) Write(ctx context.Context,
	name string, body []byte, version int64,
) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	unlock, err := b.lock(ctx, name)
	if err != nil {
		return 0, err
	}
	defer unlock()

	current, err := b.readEnvelope(name)
	if err != nil {
		return 0, err
	}
	if current.Version != version {
		return 0, fmt.Errorf("document %s: stored v%d, loaded v%d: %w",
			name, current.Version, version, serviceerrs.ErrVersionConflict)
	}

	next := fileEnvelope{Data: body, Version: version + 1}
	raw, err := json.MarshalIndent(next, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("failed to encode document %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(b.dir, name+".*.tmp")
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file for %s: %w", name, err)
	}
	tmpName := tmp.Name()
	_, err = tmp.Write(raw)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmpName)
		return 0, fmt.Errorf("failed to write document %s: %w", name, err)
	}
	if err = os.Rename(tmpName, b.path(name)); err != nil {
		_ = os.Remove(tmpName)
		return 0, fmt.Errorf("failed to replace document %s: %w", name, err)
	}

	return next.Version, nil
}

func (b *FileBackend) lock(ctx context.Context, name string) (func(), error) {
	lockPath := filepath.Join(b.dir, name+".lock")
	deadline := time.Now().Add(model.DefaultTimeout)
	const pollInterval = 10 * time.Millisecond

	for {
		f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
		if err == nil {
			_ = f.Close()
			return func() {
				if rmErr := os.Remove(lockPath); rmErr != nil {
					b.log.LogAttrs(ctx, slog.LevelError,
						"failed to remove lock file",
						slog.String("path", lockPath),
						slog.Any(model.KeyLoggerError, rmErr))
				}
			}, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("failed to lock document %s: %w", name, err)
		}
		if b.removeStaleLock(ctx, lockPath) {
			continue
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("document %s is locked by another writer: %w",
				name, serviceerrs.ErrVersionConflict)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("failed to lock document %s: %w", name, ctx.Err())
		case <-time.After(pollInterval):
		}
	}
}

// removeStaleLock deletes the lock file when it is older than staleLock and
// reports whether the caller should try to take the lock again.
func (b *FileBackend) removeStaleLock(ctx context.Context, lockPath string) bool {
	info, err := os.Stat(lockPath)
	if errors.Is(err, fs.ErrNotExist) {
		return true
	}
	if err != nil || time.Since(info.ModTime()) < b.staleLock {
		return false
	}

	if err = os.Remove(lockPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		b.log.LogAttrs(ctx, slog.LevelError,
			"failed to remove stale lock file",
			slog.String("path", lockPath),
			slog.Any(model.KeyLoggerError, err))
		return false
	}
	b.log.LogAttrs(ctx, slog.LevelWarn, "stale lock file removed",
		slog.String("path", lockPath),
		slog.Time("locked_at", info.ModTime()))
	return true
}

func (b *FileBackend) Ping(_ context.Context) error {
	if _, err := os.Stat(b.dir); err != nil {
		return fmt.Errorf("data dir is unavailable: %w", err)
	}
	return nil
}

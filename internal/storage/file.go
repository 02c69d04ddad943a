package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"
)

// File stores every key as a separate json file under rootDir.
// Writes go to a temp file first and are renamed into place.
type File struct {
	rootDir string
}

func NewFile(rootDir string) (*File, error) {
	if err := pkg.EnsureDir(rootDir); err != nil {
		return nil, fmt.Errorf("ensure storage dir %s: %w", rootDir, err)
	}
	return &File{
		rootDir: rootDir,
	}, nil
}

func (f *File) path(key string) string {
	safeKey := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == os.PathSeparator {
			return '_'
		}
		return r
	}, key)
	return filepath.Join(f.rootDir, safeKey+".json")
}

func (f *File) Get(ctx context.Context, key string) ([]byte, error) {
	_, span := tracing.GlobalTracer.Start(ctx, "storage.file.get")
	defer span.End()

	value, err := os.ReadFile(f.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read %s: %w", key, err)
	}

	return value, nil
}

func (f *File) Set(ctx context.Context, key string, value []byte) (err error) {
	_, span := tracing.GlobalTracer.Start(ctx, "storage.file.set")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tmp, err := os.CreateTemp(f.rootDir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpName, f.path(key)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}

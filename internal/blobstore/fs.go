package blobstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

// FSBackend stores zstd-compressed blobs on local disk, fanned out into
// subdirectories named by the first two characters of the reference.
type FSBackend struct {
	root    string
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

func NewFSBackend(root string) (*FSBackend, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create blob dir: %w", err)
	}

	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("init zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("init zstd decoder: %w", err)
	}

	return &FSBackend{root: root, encoder: encoder, decoder: decoder}, nil
}

func (b *FSBackend) path(ref string) string {
	return filepath.Join(b.root, ref[:2], ref+".zst")
}

func (b *FSBackend) Put(_ context.Context, ref string, data []byte) error {
	target := b.path(ref)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".upload-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b.encoder.EncodeAll(data, nil)); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), target)
}

func (b *FSBackend) Get(_ context.Context, ref string) ([]byte, error) {
	compressed, err := os.ReadFile(b.path(ref))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrBlobNotFound
	}
	if err != nil {
		return nil, err
	}
	return b.decoder.DecodeAll(compressed, nil)
}

func (b *FSBackend) Exists(_ context.Context, ref string) (bool, error) {
	_, err := os.Stat(b.path(ref))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}

// Close releases the decoder's background workers.
func (b *FSBackend) Close() {
	b.decoder.Close()
}

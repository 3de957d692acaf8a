// Package blobstore keeps document and image bytes outside the relational
// records. Blobs are addressed by the BLAKE3-256 digest of their content,
// so identical uploads share one stored object. A stored blob never changes
// and is never removed, since any number of records may point at it.
package blobstore

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"

	"dashboard/internal/apperror"

	"github.com/zeebo/blake3"
)

// ErrBlobNotFound is returned by backends for a reference they do not hold.
var ErrBlobNotFound = errors.New("blob not found")

// Backend persists raw bytes under a reference chosen by the Store.
type Backend interface {
	Put(ctx context.Context, ref string, data []byte) error
	Get(ctx context.Context, ref string) ([]byte, error)
	Exists(ctx context.Context, ref string) (bool, error)
}

// Store is the content-addressed front of a Backend.
type Store struct {
	backend Backend
}

func New(backend Backend) *Store {
	return &Store{backend: backend}
}

// Ref returns the content reference for data: 64 lowercase hex characters.
func Ref(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ValidRef reports whether ref has the shape produced by Ref.
func ValidRef(ref string) bool {
	if len(ref) != 64 {
		return false
	}
	_, err := hex.DecodeString(ref)
	return err == nil
}

// Put stores data and returns its reference. Storing the same bytes twice is a no-op.
func (s *Store) Put(ctx context.Context, data []byte) (string, error) {
	ref := Ref(data)

	exists, err := s.backend.Exists(ctx, ref)
	if err != nil {
		return "", apperror.Infrastructure(err, "failed to check blob")
	}
	if exists {
		return ref, nil
	}

	if err := s.backend.Put(ctx, ref, data); err != nil {
		return "", apperror.Infrastructure(err, "failed to store blob")
	}
	return ref, nil
}

func (s *Store) Get(ctx context.Context, ref string) ([]byte, error) {
	if !ValidRef(ref) {
		return nil, apperror.NotFound("blob %q not found", ref)
	}

	data, err := s.backend.Get(ctx, ref)
	if errors.Is(err, ErrBlobNotFound) {
		return nil, apperror.NotFound("blob %s not found", ref)
	}
	if err != nil {
		return nil, apperror.Infrastructure(err, "failed to load blob")
	}
	if Ref(data) != ref {
		return nil, apperror.Infrastructure(fmt.Errorf("content hash mismatch for %s", ref), "blob is corrupt")
	}
	return data, nil
}


package services

import (
	"context"
	"sync"

	"github.com/SscSPs/twoline_ledger/internal/apperrors"
)

type serializerKey struct{}

type heldMode int

const (
	heldRead heldMode = iota + 1
	heldWrite
)

type held struct {
	owner *WriteSerializer
	mode  heldMode
}

// WriteSerializer admits one mutation at a time. Reads share the lock, so
// they never observe a half-applied batch. Sections nested inside a held
// section of the same serializer run without locking again.
type WriteSerializer struct {
	mu sync.RWMutex
}

func NewWriteSerializer() *WriteSerializer {
	return &WriteSerializer{}
}

func (s *WriteSerializer) heldIn(ctx context.Context) (heldMode, bool) {
	h, ok := ctx.Value(serializerKey{}).(held)
	if !ok || h.owner != s {
		return 0, false
	}
	return h.mode, true
}

// Write runs fn under the exclusive lock.
func (s *WriteSerializer) Write(ctx context.Context, fn func(ctx context.Context) error) error {
	if mode, ok := s.heldIn(ctx); ok {
		if mode != heldWrite {
			return apperrors.New(apperrors.CodeInternal, "write attempted inside a read section")
		}
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(context.WithValue(ctx, serializerKey{}, held{owner: s, mode: heldWrite}))
}

// Read runs fn under the shared lock.
func (s *WriteSerializer) Read(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := s.heldIn(ctx); ok {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(context.WithValue(ctx, serializerKey{}, held{owner: s, mode: heldRead}))
}

func withWrite[T any](ctx context.Context, s *WriteSerializer, fn func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := s.Write(ctx, func(ctx context.Context) error {
		var err error
		out, err = fn(ctx)
		return err
	})
	return out, err
}

func withRead[T any](ctx context.Context, s *WriteSerializer, fn func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := s.Read(ctx, func(ctx context.Context) error {
		var err error
		out, err = fn(ctx)
		return err
	})
	return out, err
}

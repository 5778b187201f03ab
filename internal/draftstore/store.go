// Package draftstore persists unsubmitted field content.
//
// A Store maps a persistence key (see Key) to the raw text of one draft.
// Backends are scoped to a single origin: two editors configured with
// different origins never see each other's drafts.
package draftstore

import (
	"context"
	"errors"
	"io"
)

// KeySuffix is appended to a field id to form its persistence key.
const KeySuffix = "_draft"

var (
	// ErrQuotaExceeded indicates the backend refused a write for lack of space
	// or write budget.
	ErrQuotaExceeded = errors.New("draft storage quota exceeded")

	// ErrUnavailable indicates the backend cannot be used at all.
	ErrUnavailable = errors.New("draft storage unavailable")

	// ErrListUnsupported is returned by Keys when the backend cannot enumerate.
	ErrListUnsupported = errors.New("draft store does not support listing")
)

// Store is a durable key/value store of draft content.
//
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the content stored under key. ok is false when no record exists.
	Get(ctx context.Context, key string) (content string, ok bool, err error)

	// Set stores content under key, replacing any previous record.
	Set(ctx context.Context, key, content string) error

	// Remove deletes the record under key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
}

// Lister is implemented by stores that can enumerate their keys.
type Lister interface {
	Keys(ctx context.Context) ([]string, error)
}

// Key returns the persistence key for a field id.
func Key(fieldID string) string {
	return fieldID + KeySuffix
}

// FieldID returns the field id encoded in key, or false if key is not a draft key.
func FieldID(key string) (string, bool) {
	if len(key) <= len(KeySuffix) || key[len(key)-len(KeySuffix):] != KeySuffix {
		return "", false
	}
	return key[:len(key)-len(KeySuffix)], true
}

// Keys lists the keys of s, or returns ErrListUnsupported.
func Keys(ctx context.Context, s Store) ([]string, error) {
	l, ok := s.(Lister)
	if !ok {
		return nil, ErrListUnsupported
	}
	return l.Keys(ctx)
}

// Close releases resources held by s, if any.
func Close(s Store) error {
	if c, ok := s.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Package kv defines the persistence collaborator port: a synchronous
// key-value store of opaque byte documents. The ledger writes its whole
// serialized collection under one fixed key and reads it back once at
// startup.
package kv

import "context"

// Store is implemented by the outbound persistence adapters.
type Store interface {
	// Get returns the value stored under key. A missing key is not an
	// error; it reports found=false.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)

	// Set replaces the value stored under key with the given document.
	Set(ctx context.Context, key string, value []byte) error
}

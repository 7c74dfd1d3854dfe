// Package ledger holds the authoritative in-memory payment collection and
// delegates durability to a kv.Store collaborator. Every mutation replaces
// the entire persisted document with the current collection; there is no
// partial save.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"vendorpay/internal/core"
	"vendorpay/internal/kv"
)

// SnapshotKey is the fixed logical name the serialized ledger lives under.
const SnapshotKey = "vendor_payments"

// Store keeps payments in insertion order. Mutations are serialized by a
// single mutex around read-mutate-persist so concurrent callers cannot
// lose updates.
type Store struct {
	mu       sync.Mutex
	kv       kv.Store
	payments []core.Payment
}

func NewStore(store kv.Store) *Store {
	return &Store{kv: store}
}

// Load rehydrates the ledger from the persistence collaborator. Absence of
// a prior save is an empty ledger, not an error.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, found, err := s.kv.Get(ctx, SnapshotKey)
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}
	if !found {
		s.payments = nil
		slog.InfoContext(ctx, "No prior ledger snapshot, starting empty", "key", SnapshotKey)
		return nil
	}

	var payments []core.Payment
	if err := json.Unmarshal(doc, &payments); err != nil {
		return fmt.Errorf("decode ledger snapshot: %w", err)
	}
	s.payments = payments
	slog.InfoContext(ctx, "Ledger loaded", "key", SnapshotKey, "payments", len(payments))
	return nil
}

// Add appends one validated payment and persists the full collection. A
// persistence failure rolls the ledger back and propagates unmodified.
func (s *Store) Add(ctx context.Context, p core.Payment) error {
	return s.AddBatch(ctx, []core.Payment{p})
}

// AddBatch appends the payments in order, atomically with respect to the
// caller. It is used after batch validation has already succeeded; any
// invalid or duplicate record rejects the whole batch.
func (s *Store) AddBatch(ctx context.Context, payments []core.Payment) error {
	if len(payments) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(s.payments)+len(payments))
	for _, existing := range s.payments {
		seen[existing.ID] = struct{}{}
	}
	for _, p := range payments {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("payment %s: %w", p.ID, err)
		}
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("payment %s: duplicate id", p.ID)
		}
		seen[p.ID] = struct{}{}
	}

	prev := s.payments
	s.payments = append(append([]core.Payment(nil), s.payments...), payments...)
	if err := s.persist(ctx); err != nil {
		s.payments = prev
		return err
	}
	return nil
}

// Remove deletes the payment with the given id and reports whether it was
// present. A missing id is a successful no-op and does not touch
// persistence.
func (s *Store) Remove(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, p := range s.payments {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, nil
	}

	prev := s.payments
	next := make([]core.Payment, 0, len(prev)-1)
	next = append(next, prev[:idx]...)
	next = append(next, prev[idx+1:]...)
	s.payments = next

	if err := s.persist(ctx); err != nil {
		s.payments = prev
		return false, err
	}
	return true, nil
}

// Clear drops every payment.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.payments
	s.payments = nil
	if err := s.persist(ctx); err != nil {
		s.payments = prev
		return err
	}
	return nil
}

// Snapshot returns a read-only copy of the collection in insertion order,
// the input for every derived-view computation.
func (s *Store) Snapshot() []core.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Payment(nil), s.payments...)
}

// Len reports the current payment count.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.payments)
}

// persist writes the whole collection as one JSON document. Callers hold
// the mutex. An empty ledger is stored as an empty array so a later Load
// distinguishes "cleared" from "never saved".
func (s *Store) persist(ctx context.Context) error {
	payments := s.payments
	if payments == nil {
		payments = []core.Payment{}
	}
	doc, err := json.Marshal(payments)
	if err != nil {
		return fmt.Errorf("encode ledger snapshot: %w", err)
	}
	if err := s.kv.Set(ctx, SnapshotKey, doc); err != nil {
		return fmt.Errorf("persist ledger: %w", err)
	}
	return nil
}

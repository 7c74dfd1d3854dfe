// Package service wires the ledger engine together: ingestion in front,
// the store in the middle, and the optional change notifier and sheet
// mirror behind it. Handlers talk to this package only.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"vendorpay/internal/core"
	"vendorpay/internal/ingest"
	"vendorpay/internal/ledger"
	"vendorpay/internal/log"
	"vendorpay/internal/notify"
)

type (
	// Notifier announces ledger mutations. Implemented by notify.Client.
	Notifier interface {
		PublishLedgerChanged(ctx context.Context, operation string, payments int) error
	}

	// Mirror receives the full collection after each mutation.
	// Implemented by sheets.Mirror.
	Mirror interface {
		Replace(ctx context.Context, payments []core.Payment) error
	}

	// PaymentService runs every ledger operation to completion before
	// returning; nothing here suspends mid-computation. Notifier and
	// mirror are best-effort and may be nil.
	PaymentService struct {
		store    *ledger.Store
		notifier Notifier
		mirror   Mirror
	}
)

func New(store *ledger.Store, notifier Notifier, mirror Mirror) *PaymentService {
	return &PaymentService{store: store, notifier: notifier, mirror: mirror}
}

// CreatePayment validates one manual-entry tuple and appends it.
func (s *PaymentService) CreatePayment(ctx context.Context, fields ingest.Fields) (core.Payment, error) {
	p, err := ingest.NewPayment(fields)
	if err != nil {
		return core.Payment{}, err
	}
	if err := s.store.Add(ctx, p); err != nil {
		return core.Payment{}, fmt.Errorf("add payment: %w", err)
	}
	s.afterMutation(ctx, notify.OpAdd)
	return p, nil
}

// ImportText runs the all-or-nothing bulk import over raw newline
// separated text and returns how many payments were added. Validation
// failures leave the ledger untouched and carry every line error at once.
func (s *PaymentService) ImportText(ctx context.Context, text string) (int, error) {
	payments, err := ingest.ParseBatch(text)
	if err != nil {
		return 0, err
	}
	if err := s.store.AddBatch(ctx, payments); err != nil {
		return 0, fmt.Errorf("add imported payments: %w", err)
	}
	s.afterMutation(ctx, notify.OpImport)
	return len(payments), nil
}

// DeletePayment removes one payment by id. Deleting an id that is not
// there succeeds without touching anything, and nothing is announced
// because nothing changed.
func (s *PaymentService) DeletePayment(ctx context.Context, id string) error {
	removed, err := s.store.Remove(ctx, id)
	if err != nil {
		return fmt.Errorf("remove payment: %w", err)
	}
	if removed {
		s.afterMutation(ctx, notify.OpRemove)
	}
	return nil
}

// ClearAll drops the whole ledger.
func (s *PaymentService) ClearAll(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear ledger: %w", err)
	}
	s.afterMutation(ctx, notify.OpClear)
	return nil
}

// ListPayments returns the ledger in insertion order.
func (s *PaymentService) ListPayments() []core.Payment {
	return s.store.Snapshot()
}

// DailySummary recomputes the per-day totals from the current snapshot.
func (s *PaymentService) DailySummary() []core.DailyTotal {
	return core.DailyTotals(s.store.Snapshot())
}

// Calendar recomputes the month grid with heat levels from the current
// snapshot. Nothing is cached; the view always reflects the ledger.
func (s *PaymentService) Calendar(year, month int) Calendar {
	cells := core.MonthCells(s.store.Snapshot(), year, month)
	max := core.MaxTotal(cells)

	days := make([]CalendarDay, len(cells))
	for i, c := range cells {
		days[i] = CalendarDay{
			Day:      c.Day,
			FMCG:     c.FMCG.Float64(),
			Homeware: c.Homeware.Float64(),
			Total:    c.Total.Float64(),
			Level:    core.HeatLevel(c.Total, max),
		}
	}
	return Calendar{Year: year, Month: month, Days: days}
}

// afterMutation fans the change out to the notifier and the mirror. Both
// are best-effort: the mutation already persisted, so failures are logged
// and swallowed.
func (s *PaymentService) afterMutation(ctx context.Context, operation string) {
	count := s.store.Len()
	slog.InfoContext(ctx, "Ledger changed",
		log.FieldComponent, log.ComponentLedger,
		log.FieldOperation, operation,
		log.FieldCount, count)

	if s.notifier != nil {
		if err := s.notifier.PublishLedgerChanged(ctx, operation, count); err != nil {
			slog.ErrorContext(ctx, "Failed to publish ledger change",
				log.FieldComponent, log.ComponentAMQP,
				log.FieldOperation, operation,
				log.FieldError, err)
		}
	}
	if s.mirror != nil {
		if err := s.mirror.Replace(ctx, s.store.Snapshot()); err != nil {
			slog.ErrorContext(ctx, "Failed to refresh sheet mirror",
				log.FieldComponent, log.ComponentSheets,
				log.FieldOperation, operation,
				log.FieldError, err)
		}
	}
}

type (
	// CalendarDay is one day of the outward month view: rounded decimal
	// amounts per category, the day total, and the 0-7 heat level.
	CalendarDay struct {
		Day      int     `json:"day"`
		FMCG     float64 `json:"fmcg"`
		Homeware float64 `json:"homeware"`
		Total    float64 `json:"total"`
		Level    int     `json:"level"`
	}

	// Calendar is the month grid for one target year and month.
	Calendar struct {
		Year  int           `json:"year"`
		Month int           `json:"month"`
		Days  []CalendarDay `json:"days"`
	}
)

package service

import (
	"context"
	"errors"
	"testing"

	"vendorpay/internal/core"
	"vendorpay/internal/ingest"
	"vendorpay/internal/kv/memory"
	"vendorpay/internal/ledger"
)

type (
	recordingNotifier struct {
		ops    []string
		counts []int
	}
	recordingMirror struct {
		replaced [][]core.Payment
	}
)

func (n *recordingNotifier) PublishLedgerChanged(_ context.Context, op string, payments int) error {
	n.ops = append(n.ops, op)
	n.counts = append(n.counts, payments)
	return nil
}

func (m *recordingMirror) Replace(_ context.Context, payments []core.Payment) error {
	m.replaced = append(m.replaced, payments)
	return nil
}

func newService(t *testing.T) (*PaymentService, *recordingNotifier, *recordingMirror) {
	t.Helper()
	store := ledger.NewStore(memory.New())
	n := &recordingNotifier{}
	m := &recordingMirror{}
	return New(store, n, m), n, m
}

const importText = "Acme,FMCG,Cheque,100.50,2024-03-05,CHQ1,HDFC\nBeta,Homeware,Bank Transfer,50,2024-03-05,,"

func TestImportThenViews(t *testing.T) {
	ctx := context.Background()
	svc, notifier, mirror := newService(t)

	added, err := svc.ImportText(ctx, importText)
	if err != nil {
		t.Fatalf("ImportText: %v", err)
	}
	if added != 2 {
		t.Fatalf("expected 2 added, got %d", added)
	}

	summary := svc.DailySummary()
	if len(summary) != 1 || summary[0].Date != "2024-03-05" || summary[0].Total.Cents != 15050 {
		t.Fatalf("daily summary wrong: %+v", summary)
	}

	cal := svc.Calendar(2024, 3)
	if len(cal.Days) != 31 {
		t.Fatalf("expected 31 days, got %d", len(cal.Days))
	}
	day5 := cal.Days[4]
	if day5.FMCG != 100.50 || day5.Homeware != 50 || day5.Total != 150.50 {
		t.Fatalf("day 5 wrong: %+v", day5)
	}
	if day5.Level != 7 {
		t.Fatalf("single busy day should be level 7, got %d", day5.Level)
	}
	for _, d := range cal.Days {
		if d.Day != 5 && d.Level != 0 {
			t.Fatalf("empty day %d has level %d", d.Day, d.Level)
		}
	}

	if len(notifier.ops) != 1 || notifier.ops[0] != "import" || notifier.counts[0] != 2 {
		t.Fatalf("notifier calls wrong: %+v %+v", notifier.ops, notifier.counts)
	}
	if len(mirror.replaced) != 1 || len(mirror.replaced[0]) != 2 {
		t.Fatalf("mirror calls wrong: %d", len(mirror.replaced))
	}
}

func TestImportFailureAddsNothing(t *testing.T) {
	ctx := context.Background()
	svc, notifier, _ := newService(t)

	_, err := svc.ImportText(ctx, importText+"\nGamma,Grocery,Cheque,10,2024-03-06,,")
	var batchErr *ingest.BatchError
	if !errors.As(err, &batchErr) {
		t.Fatalf("expected *BatchError, got %v", err)
	}
	if got := len(svc.ListPayments()); got != 0 {
		t.Fatalf("failed batch added %d payments", got)
	}
	if len(notifier.ops) != 0 {
		t.Fatalf("failed batch must not notify: %v", notifier.ops)
	}
}

func TestCreateAndDelete(t *testing.T) {
	ctx := context.Background()
	svc, notifier, _ := newService(t)

	p, err := svc.CreatePayment(ctx, ingest.Fields{
		Vendor: "Acme", Category: "FMCG", Type: "Bank Transfer",
		Amount: "75.25", Date: "2024-03-05",
	})
	if err != nil {
		t.Fatalf("CreatePayment: %v", err)
	}
	if len(svc.ListPayments()) != 1 {
		t.Fatal("payment not stored")
	}

	if err := svc.DeletePayment(ctx, p.ID); err != nil {
		t.Fatalf("DeletePayment: %v", err)
	}
	if len(svc.ListPayments()) != 0 {
		t.Fatal("payment not removed")
	}

	// Deleting an unknown id succeeds but changes nothing, so no change
	// message goes out.
	if err := svc.DeletePayment(ctx, "missing"); err != nil {
		t.Fatalf("DeletePayment(missing): %v", err)
	}

	if len(notifier.ops) != 2 {
		t.Fatalf("expected 2 notifications, got %v", notifier.ops)
	}
	if notifier.ops[0] != "add" || notifier.ops[1] != "remove" {
		t.Fatalf("notification order wrong: %v", notifier.ops)
	}
}

func TestClearAll(t *testing.T) {
	ctx := context.Background()
	svc, _, mirror := newService(t)
	if _, err := svc.ImportText(ctx, importText); err != nil {
		t.Fatalf("ImportText: %v", err)
	}
	if err := svc.ClearAll(ctx); err != nil {
		t.Fatalf("ClearAll: %v", err)
	}
	if len(svc.ListPayments()) != 0 {
		t.Fatal("ledger not cleared")
	}
	last := mirror.replaced[len(mirror.replaced)-1]
	if len(last) != 0 {
		t.Fatalf("mirror should see the empty ledger, got %d rows", len(last))
	}
}

func TestImportAcceptsZeroDate(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)

	// 0000-00-00 is shape-valid, so the record must land in the ledger
	// instead of failing between ingestion and the store.
	if _, err := svc.ImportText(ctx, "Acme,FMCG,Cheque,10,0000-00-00,CHQ1,HDFC"); err != nil {
		t.Fatalf("ImportText: %v", err)
	}
	summary := svc.DailySummary()
	if len(summary) != 1 || summary[0].Date != "0000-00-00" {
		t.Fatalf("zero date should group under its literal text: %+v", summary)
	}
}

func TestCalendarEmptyMonthAllZeroLevels(t *testing.T) {
	svc, _, _ := newService(t)
	cal := svc.Calendar(2024, 2)
	if len(cal.Days) != 29 {
		t.Fatalf("leap Feb should have 29 days, got %d", len(cal.Days))
	}
	for _, d := range cal.Days {
		if d.Level != 0 || d.Total != 0 {
			t.Fatalf("empty month day wrong: %+v", d)
		}
	}
}

func TestNilCollaboratorsAreFine(t *testing.T) {
	svc := New(ledger.NewStore(memory.New()), nil, nil)
	if _, err := svc.ImportText(context.Background(), importText); err != nil {
		t.Fatalf("ImportText with nil collaborators: %v", err)
	}
}

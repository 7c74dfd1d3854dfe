package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"vendorpay/internal/core"
	"vendorpay/internal/kv/memory"
	"vendorpay/internal/ledger"
	"vendorpay/internal/service"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	store := ledger.NewStore(memory.New())
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("load store: %v", err)
	}
	return NewServer(":0", service.New(store, nil, nil))
}

func doRequest(t *testing.T, srv *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	rr := doRequest(t, srv, http.MethodGet, "/health", "")
	if rr.Code != 200 {
		t.Fatalf("health status=%d", rr.Code)
	}
}

func TestCreatePayment(t *testing.T) {
	srv := newTestServer(t)

	body := `{"vendorName":"Acme Traders","vendorCategory":"FMCG","paymentType":"Cheque","paymentAmount":"100.50","paymentDate":"2024-03-05","chequeNumber":"001234","bankName":"First National"}`
	rr := doRequest(t, srv, http.MethodPost, "/api/payments", body)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}

	var p core.Payment
	if err := json.Unmarshal(rr.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if p.ID == "" {
		t.Fatalf("expected generated id")
	}
	if p.Amount.Cents != 10050 {
		t.Fatalf("amount cents = %d, want 10050", p.Amount.Cents)
	}
	if p.ChequeNumber != "001234" || p.BankName != "First National" {
		t.Fatalf("cheque details lost: %+v", p)
	}

	rr = doRequest(t, srv, http.MethodGet, "/api/payments", "")
	if rr.Code != 200 {
		t.Fatalf("list status=%d", rr.Code)
	}
	var listed []core.Payment
	if err := json.Unmarshal(rr.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != p.ID {
		t.Fatalf("unexpected list: %+v", listed)
	}
}

func TestCreatePaymentValidation(t *testing.T) {
	srv := newTestServer(t)

	cases := []struct {
		name string
		body string
	}{
		{"bad json", `{`},
		{"bad amount", `{"vendorName":"A","vendorCategory":"FMCG","paymentType":"Cheque","paymentAmount":"abc","paymentDate":"2024-03-05"}`},
		{"bad category", `{"vendorName":"A","vendorCategory":"Grocery","paymentType":"Cheque","paymentAmount":"10","paymentDate":"2024-03-05"}`},
		{"bad type", `{"vendorName":"A","vendorCategory":"FMCG","paymentType":"cheque","paymentAmount":"10","paymentDate":"2024-03-05"}`},
		{"bad date", `{"vendorName":"A","vendorCategory":"FMCG","paymentType":"Cheque","paymentAmount":"10","paymentDate":"05-03-2024"}`},
		{"empty vendor", `{"vendorName":"  ","vendorCategory":"FMCG","paymentType":"Cheque","paymentAmount":"10","paymentDate":"2024-03-05"}`},
	}
	for _, tc := range cases {
		rr := doRequest(t, srv, http.MethodPost, "/api/payments", tc.body)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d: %s", tc.name, rr.Code, rr.Body.String())
		}
	}

	rr := doRequest(t, srv, http.MethodGet, "/api/payments", "")
	if body := strings.TrimSpace(rr.Body.String()); body != "[]" {
		t.Fatalf("ledger should stay empty, got %s", body)
	}
}

func TestImportAllOrNothing(t *testing.T) {
	srv := newTestServer(t)

	text := "Acme, FMCG, Cheque, 100.50, 2024-03-05, 001234, First National\n" +
		"Beta, Grocery, Cheque, 10, 2024-03-05\n" +
		"Gamma, Homeware, Bank Transfer, 50, 2024-03-06"
	rr := doRequest(t, srv, http.MethodPost, "/api/payments/import", text)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}

	var resp errorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if len(resp.Rows) != 1 {
		t.Fatalf("expected 1 row error, got %+v", resp.Rows)
	}
	if resp.Rows[0].Row != 2 || resp.Rows[0].Value != "Grocery" {
		t.Fatalf("unexpected row error: %+v", resp.Rows[0])
	}

	rr = doRequest(t, srv, http.MethodGet, "/api/payments", "")
	if body := strings.TrimSpace(rr.Body.String()); body != "[]" {
		t.Fatalf("failed import must add nothing, got %s", body)
	}
}

func TestImportThenSummaryAndCalendar(t *testing.T) {
	srv := newTestServer(t)

	text := "Acme, FMCG, Cheque, 100.50, 2024-03-05, 001234, First National\n" +
		"Beta, Homeware, Bank Transfer, 50, 2024-03-05\n" +
		"Gamma, FMCG, Cheque Pending, 25, 2024-03-06"
	rr := doRequest(t, srv, http.MethodPost, "/api/payments/import", text)
	if rr.Code != 200 {
		t.Fatalf("import status=%d: %s", rr.Code, rr.Body.String())
	}
	var imported importResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &imported); err != nil {
		t.Fatalf("decode import response: %v", err)
	}
	if imported.Imported != 3 {
		t.Fatalf("imported = %d, want 3", imported.Imported)
	}

	rr = doRequest(t, srv, http.MethodGet, "/api/summary/daily", "")
	var rows []dailyTotalRow
	if err := json.Unmarshal(rr.Body.Bytes(), &rows); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 summary rows, got %+v", rows)
	}
	if rows[0].Date != "2024-03-05" || rows[0].Total != 150.50 {
		t.Fatalf("unexpected first row: %+v", rows[0])
	}

	rr = doRequest(t, srv, http.MethodGet, "/api/calendar?year=2024&month=3", "")
	var cal service.Calendar
	if err := json.Unmarshal(rr.Body.Bytes(), &cal); err != nil {
		t.Fatalf("decode calendar: %v", err)
	}
	if cal.Year != 2024 || cal.Month != 3 || len(cal.Days) != 31 {
		t.Fatalf("unexpected calendar: year=%d month=%d days=%d", cal.Year, cal.Month, len(cal.Days))
	}
	day5 := cal.Days[4]
	if day5.Total != 150.50 || day5.Level != 7 {
		t.Fatalf("day 5 = %+v", day5)
	}
	if cal.Days[0].Level != 0 {
		t.Fatalf("empty day should be level 0, got %+v", cal.Days[0])
	}
}

func TestImportEmptyBody(t *testing.T) {
	srv := newTestServer(t)
	rr := doRequest(t, srv, http.MethodPost, "/api/payments/import", "\n  \n")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestDeleteAndClear(t *testing.T) {
	srv := newTestServer(t)

	body := `{"vendorName":"Acme","vendorCategory":"FMCG","paymentType":"Bank Transfer","paymentAmount":"10","paymentDate":"2024-03-05"}`
	rr := doRequest(t, srv, http.MethodPost, "/api/payments", body)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status=%d", rr.Code)
	}
	var p core.Payment
	if err := json.Unmarshal(rr.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}

	rr = doRequest(t, srv, http.MethodDelete, "/api/payments/"+p.ID, "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete status=%d", rr.Code)
	}

	// Deleting an id that is not there still succeeds.
	rr = doRequest(t, srv, http.MethodDelete, "/api/payments/no-such-id", "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("absent delete status=%d", rr.Code)
	}

	rr = doRequest(t, srv, http.MethodPost, "/api/payments", body)
	if rr.Code != http.StatusCreated {
		t.Fatalf("recreate status=%d", rr.Code)
	}
	rr = doRequest(t, srv, http.MethodDelete, "/api/payments", "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("clear status=%d", rr.Code)
	}
	rr = doRequest(t, srv, http.MethodGet, "/api/payments", "")
	if body := strings.TrimSpace(rr.Body.String()); body != "[]" {
		t.Fatalf("expected empty ledger, got %s", body)
	}
}

func TestCalendarNavigation(t *testing.T) {
	srv := newTestServer(t)

	rr := doRequest(t, srv, http.MethodGet, "/api/calendar?year=2024&month=1&nav=prev", "")
	var cal service.Calendar
	if err := json.Unmarshal(rr.Body.Bytes(), &cal); err != nil {
		t.Fatalf("decode calendar: %v", err)
	}
	if cal.Year != 2023 || cal.Month != 12 {
		t.Fatalf("prev from 2024-01 = %d-%d, want 2023-12", cal.Year, cal.Month)
	}

	rr = doRequest(t, srv, http.MethodGet, "/api/calendar?year=2024&month=12&nav=next", "")
	if err := json.Unmarshal(rr.Body.Bytes(), &cal); err != nil {
		t.Fatalf("decode calendar: %v", err)
	}
	if cal.Year != 2025 || cal.Month != 1 {
		t.Fatalf("next from 2024-12 = %d-%d, want 2025-01", cal.Year, cal.Month)
	}

	for _, target := range []string{
		"/api/calendar?month=13",
		"/api/calendar?year=abc",
		"/api/calendar?nav=sideways",
	} {
		rr := doRequest(t, srv, http.MethodGet, target, "")
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", target, rr.Code)
		}
	}
}

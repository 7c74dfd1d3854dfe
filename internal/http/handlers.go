package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"vendorpay/internal/core"
	"vendorpay/internal/ingest"
	"vendorpay/internal/log"
)

// maxImportBody caps bulk-import request bodies at 1 MiB.
const maxImportBody = 1 << 20

type (
	createPaymentRequest struct {
		Vendor       string `json:"vendorName"`
		Category     string `json:"vendorCategory"`
		Type         string `json:"paymentType"`
		Amount       string `json:"paymentAmount"`
		Date         string `json:"paymentDate"`
		ChequeNumber string `json:"chequeNumber"`
		BankName     string `json:"bankName"`
	}

	importResponse struct {
		Imported int `json:"imported"`
	}

	dailyTotalRow struct {
		Date  string  `json:"date"`
		Total float64 `json:"total"`
	}

	rowError struct {
		Row     int    `json:"row"`
		Value   string `json:"value"`
		Message string `json:"message"`
	}

	errorResponse struct {
		Error string     `json:"error"`
		Rows  []rowError `json:"rows,omitempty"`
	}
)

func (s *Server) handleCreatePayment(w http.ResponseWriter, r *http.Request) {
	var req createPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := s.svc.CreatePayment(r.Context(), ingest.Fields{
		Vendor:       req.Vendor,
		Category:     req.Category,
		Type:         req.Type,
		Amount:       req.Amount,
		Date:         req.Date,
		ChequeNumber: req.ChequeNumber,
		BankName:     req.BankName,
	})
	if err != nil {
		if isValidationError(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.ErrorContext(r.Context(), "Create payment failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable request body")
		return
	}

	count, err := s.svc.ImportText(r.Context(), string(body))
	if err != nil {
		var batchErr *ingest.BatchError
		switch {
		case errors.As(err, &batchErr):
			resp := errorResponse{Error: "import rejected"}
			for _, le := range batchErr.Lines {
				resp.Rows = append(resp.Rows, rowError{
					Row:     le.Line,
					Value:   le.Value,
					Message: le.Error(),
				})
			}
			writeJSON(w, http.StatusBadRequest, resp)
		case errors.Is(err, ingest.ErrEmptyInput):
			writeError(w, http.StatusBadRequest, "empty input")
		default:
			slog.ErrorContext(r.Context(), "Import failed", log.FieldError, err)
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, importResponse{Imported: count})
}

func (s *Server) handleListPayments(w http.ResponseWriter, r *http.Request) {
	payments := s.svc.ListPayments()
	if payments == nil {
		payments = []core.Payment{}
	}
	writeJSON(w, http.StatusOK, payments)
}

func (s *Server) handleDeletePayment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.svc.DeletePayment(r.Context(), id); err != nil {
		slog.ErrorContext(r.Context(), "Delete payment failed", log.FieldPaymentID, id, log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearPayments(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.ClearAll(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "Clear ledger failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDailySummary(w http.ResponseWriter, r *http.Request) {
	totals := s.svc.DailySummary()
	rows := make([]dailyTotalRow, len(totals))
	for i, t := range totals {
		rows[i] = dailyTotalRow{Date: t.Date, Total: t.Total.Float64()}
	}
	writeJSON(w, http.StatusOK, rows)
}

// handleCalendar serves the month grid. Year and month default to the
// current month; nav=prev|next steps one month from the resolved target,
// wrapping years.
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	year := now.Year()
	month := int(now.Month())

	if v := strings.TrimSpace(r.URL.Query().Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid year")
			return
		}
		year = y
	}
	if v := strings.TrimSpace(r.URL.Query().Get("month")); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			writeError(w, http.StatusBadRequest, "invalid month")
			return
		}
		month = m
	}

	switch nav := r.URL.Query().Get("nav"); nav {
	case "":
	case "prev":
		year, month = core.AddMonths(year, month, -1)
	case "next":
		year, month = core.AddMonths(year, month, 1)
	default:
		writeError(w, http.StatusBadRequest, "invalid nav")
		return
	}

	writeJSON(w, http.StatusOK, s.svc.Calendar(year, month))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// isValidationError reports whether err traces back to one of the record
// validation rules rather than infrastructure.
func isValidationError(err error) bool {
	return errors.Is(err, core.ErrEmptyVendor) ||
		errors.Is(err, core.ErrInvalidAmount) ||
		errors.Is(err, core.ErrInvalidCategory) ||
		errors.Is(err, core.ErrInvalidPaymentType) ||
		errors.Is(err, core.ErrInvalidDateFormat)
}

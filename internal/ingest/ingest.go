// Package ingest turns raw input into validated payments. Both entry
// points, manual entry and bulk text import, share one rule set and both
// hand finished records to the ledger only after every check has passed.
package ingest

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"vendorpay/internal/core"
)

// Bulk lines carry at least vendor, category, type, amount and date;
// cheque number and bank name are optional trailing fields.
const minFields = 5

var (
	ErrEmptyInput       = errors.New("empty input")
	ErrInsufficientData = errors.New("insufficient data")
)

type (
	// LineError is one rejected bulk-import line: its 1-based position
	// after blank-line filtering, the offending value, and the rule it
	// broke.
	LineError struct {
		Line  int
		Value string
		Err   error
	}

	// BatchError carries every line error of a failed batch at once.
	BatchError struct {
		Lines []LineError
	}
)

func (e LineError) Error() string {
	if errors.Is(e.Err, ErrInsufficientData) {
		return fmt.Sprintf("row %d: insufficient data, expected at least %d fields", e.Line, minFields)
	}
	return fmt.Sprintf("row %d: %v %q", e.Line, e.Err, e.Value)
}

func (e LineError) Unwrap() error { return e.Err }

func (e *BatchError) Error() string {
	msgs := make([]string, len(e.Lines))
	for i, le := range e.Lines {
		msgs[i] = le.Error()
	}
	return fmt.Sprintf("%d invalid row(s): %s", len(e.Lines), strings.Join(msgs, "; "))
}

// Fields is one manual-entry tuple. Amount arrives as text and is parsed
// here; every other field is already the right primitive kind.
type Fields struct {
	Vendor       string
	Category     string
	Type         string
	Amount       string
	Date         string
	ChequeNumber string
	BankName     string
}

// NewPayment builds one validated payment from manual-entry fields. The
// surrounding form used to gate presence at the HTML level; this surface is
// an API, so the equivalent checks run here too.
func NewPayment(f Fields) (core.Payment, error) {
	amount, err := core.ParseAmount(f.Amount)
	if err != nil {
		return core.Payment{}, err
	}
	category, err := core.ParseCategory(f.Category)
	if err != nil {
		return core.Payment{}, err
	}
	paymentType, err := core.ParsePaymentType(f.Type)
	if err != nil {
		return core.Payment{}, err
	}
	date, err := core.ParseDate(f.Date)
	if err != nil {
		return core.Payment{}, err
	}

	p := core.Payment{
		ID:           uuid.NewString(),
		Vendor:       strings.TrimSpace(f.Vendor),
		Category:     category,
		Type:         paymentType,
		Amount:       amount,
		Date:         date,
		ChequeNumber: strings.TrimSpace(f.ChequeNumber),
		BankName:     strings.TrimSpace(f.BankName),
	}.Normalize()

	if err := p.Validate(); err != nil {
		return core.Payment{}, err
	}
	return p, nil
}

// ParseBatch validates bulk-import text line by line. Lines are comma
// separated with no quoting; a field value containing a comma will
// misparse, a documented limitation of the format. Blank and
// whitespace-only lines are dropped before numbering. The batch is
// all-or-nothing: any failing line means no payments are returned and the
// complete set of line errors surfaces together as a *BatchError.
func ParseBatch(text string) ([]core.Payment, error) {
	var rows []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			rows = append(rows, line)
		}
	}
	if len(rows) == 0 {
		return nil, ErrEmptyInput
	}

	payments := make([]core.Payment, 0, len(rows))
	var batchErr BatchError
	for i, row := range rows {
		p, lineErr := parseRow(row, i+1)
		if lineErr != nil {
			batchErr.Lines = append(batchErr.Lines, *lineErr)
			continue
		}
		payments = append(payments, p)
	}

	if len(batchErr.Lines) > 0 {
		return nil, &batchErr
	}
	return payments, nil
}

// parseRow applies the shared rule set to one line. Expected field order:
// vendorName, vendorCategory, paymentType, paymentAmount, paymentDate,
// chequeNumber, bankName.
func parseRow(row string, num int) (core.Payment, *LineError) {
	tokens := strings.Split(row, ",")
	if len(tokens) < minFields {
		return core.Payment{}, &LineError{Line: num, Value: row, Err: ErrInsufficientData}
	}

	fields := make([]string, 7)
	for i := range fields {
		if i < len(tokens) {
			fields[i] = strings.TrimSpace(tokens[i])
		}
	}
	vendor, categoryText, typeText, amountText, dateText := fields[0], fields[1], fields[2], fields[3], fields[4]
	chequeNumber, bankName := fields[5], fields[6]

	amount, err := core.ParseAmount(amountText)
	if err != nil {
		return core.Payment{}, &LineError{Line: num, Value: amountText, Err: err}
	}
	category, err := core.ParseCategory(categoryText)
	if err != nil {
		return core.Payment{}, &LineError{Line: num, Value: categoryText, Err: err}
	}
	paymentType, err := core.ParsePaymentType(typeText)
	if err != nil {
		return core.Payment{}, &LineError{Line: num, Value: typeText, Err: err}
	}
	date, err := core.ParseDate(dateText)
	if err != nil {
		return core.Payment{}, &LineError{Line: num, Value: dateText, Err: err}
	}
	if vendor == "" {
		return core.Payment{}, &LineError{Line: num, Value: vendor, Err: core.ErrEmptyVendor}
	}

	p := core.Payment{
		ID:           uuid.NewString(),
		Vendor:       vendor,
		Category:     category,
		Type:         paymentType,
		Amount:       amount,
		Date:         date,
		ChequeNumber: chequeNumber,
		BankName:     bankName,
	}.Normalize()
	return p, nil
}

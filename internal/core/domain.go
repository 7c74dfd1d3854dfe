package core

import (
	"errors"
	"strings"
)

const (
	FMCG     Category = "FMCG"
	Homeware Category = "Homeware"
)

const (
	Cheque        PaymentType = "Cheque"
	BankTransfer  PaymentType = "Bank Transfer"
	ChequePending PaymentType = "Cheque Pending"
)

type (
	// Category is the closed set of vendor categories.
	Category string

	// PaymentType is the closed set of payment methods. The spellings are
	// canonical and matched case-sensitively on ingestion.
	PaymentType string

	// Payment is one scheduled or executed vendor payment. Payments are
	// immutable once created; a correction is a delete plus a re-create.
	Payment struct {
		ID           string      `json:"id"`
		Vendor       string      `json:"vendorName"`
		Category     Category    `json:"vendorCategory"`
		Type         PaymentType `json:"paymentType"`
		Amount       Money       `json:"amountCents"`
		Date         Date        `json:"paymentDate"`
		ChequeNumber string      `json:"chequeNumber,omitempty"`
		BankName     string      `json:"bankName,omitempty"`
	}
)

var (
	ErrEmptyVendor        = errors.New("empty vendor name")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidCategory    = errors.New("invalid vendor category")
	ErrInvalidPaymentType = errors.New("invalid payment type")
	ErrInvalidDateFormat  = errors.New("invalid date format")
)

// ParseCategory matches s against the closed category set.
func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case FMCG, Homeware:
		return Category(s), nil
	}
	return "", ErrInvalidCategory
}

// ParsePaymentType matches s against the closed payment type set.
// Matching is exact: no trimming, no case folding.
func ParsePaymentType(s string) (PaymentType, error) {
	switch PaymentType(s) {
	case Cheque, BankTransfer, ChequePending:
		return PaymentType(s), nil
	}
	return "", ErrInvalidPaymentType
}

// Normalize discards cheque details for non-cheque payment types. Supplying
// them there is not an error; they are simply dropped.
func (p Payment) Normalize() Payment {
	if p.Type != Cheque {
		p.ChequeNumber = ""
		p.BankName = ""
	}
	return p
}

// Validate checks every record invariant. Both ingestion paths run it
// before a payment may reach the ledger.
func (p Payment) Validate() error {
	if strings.TrimSpace(p.Vendor) == "" {
		return ErrEmptyVendor
	}
	if _, err := ParseCategory(string(p.Category)); err != nil {
		return err
	}
	if _, err := ParsePaymentType(string(p.Type)); err != nil {
		return err
	}
	if err := p.Amount.Validate(); err != nil {
		return err
	}
	if err := p.Date.Validate(); err != nil {
		return err
	}
	if p.Type != Cheque && (p.ChequeNumber != "" || p.BankName != "") {
		return errors.New("cheque details on non-cheque payment")
	}
	return nil
}

package types

import (
	"github.com/shopspring/decimal"
)

// MoneyPrecision is the number of decimal places monetary amounts are rounded to.
const MoneyPrecision = 2

// RatePrecision is the number of decimal places daily rates are rounded to
// before being multiplied back into monetary amounts.
const RatePrecision = 4

// TaxableFee is a net amount plus a tax rate, snapshotted onto contracts so that
// later plan price changes never affect what the member agreed to pay.
type TaxableFee struct {
	Amount   decimal.Decimal `db:"amount" json:"amount"`
	Currency string          `db:"currency" json:"currency"`
	TaxRate  decimal.Decimal `db:"tax_rate" json:"tax_rate"`
}

// NewTaxableFee creates a taxable fee with the given net amount, currency and tax rate percentage
func NewTaxableFee(amount decimal.Decimal, currency string, taxRate decimal.Decimal) TaxableFee {
	return TaxableFee{
		Amount:   amount,
		Currency: currency,
		TaxRate:  taxRate,
	}
}

// GrossAmount returns the net amount plus tax, rounded to money precision
func (f TaxableFee) GrossAmount() decimal.Decimal {
	tax := f.Amount.Mul(f.TaxRate).Div(decimal.NewFromInt(100))
	return f.Amount.Add(tax).Round(MoneyPrecision)
}

// IsZero reports whether the fee has no net amount
func (f TaxableFee) IsZero() bool {
	return f.Amount.IsZero()
}

// LocalizedText holds a member-facing string in the languages the club serves.
type LocalizedText struct {
	En string `db:"en" json:"en"`
	Ar string `db:"ar" json:"ar"`
}

// Get returns the text for the given locale, falling back to English
func (t LocalizedText) Get(locale string) string {
	if locale == "ar" && t.Ar != "" {
		return t.Ar
	}
	return t.En
}

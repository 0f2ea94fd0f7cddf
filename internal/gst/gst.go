// Package gst computes the Indian GST split for vendor bills.
package gst

import "github.com/shopspring/decimal"

var (
	hundred = decimal.NewFromInt(100)
	two     = decimal.NewFromInt(2)
)

// Breakdown holds the tax components of a bill, each rounded to two decimal
// places.
type Breakdown struct {
	Taxable decimal.Decimal
	CGST    decimal.Decimal
	SGST    decimal.Decimal
	IGST    decimal.Decimal
	Total   decimal.Decimal
}

// Split computes the GST components for a taxable amount at the given percent
// rate. Inter-state supply (both state codes present and different) puts the
// whole tax into IGST; otherwise, including when either state code is missing,
// the tax is split evenly into CGST and SGST. Total = taxable + cgst + sgst +
// igst, all rounded to two decimals before use.
func Split(taxable, ratePercent decimal.Decimal, vendorState, projectState string) Breakdown {
	gstAmount := taxable.Mul(ratePercent).Div(hundred)

	b := Breakdown{
		Taxable: taxable.Round(2),
		CGST:    decimal.Zero.Round(2),
		SGST:    decimal.Zero.Round(2),
		IGST:    decimal.Zero.Round(2),
	}

	if InterState(vendorState, projectState) {
		b.IGST = gstAmount.Round(2)
	} else {
		half := gstAmount.Div(two).Round(2)
		b.CGST = half
		b.SGST = half
	}

	b.Total = b.Taxable.Add(b.CGST).Add(b.SGST).Add(b.IGST)
	return b
}

// InterState reports whether the supply crosses state lines. A missing state
// code on either side defaults to intra-state treatment.
func InterState(vendorState, projectState string) bool {
	return vendorState != "" && projectState != "" && vendorState != projectState
}

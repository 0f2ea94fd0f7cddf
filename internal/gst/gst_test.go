package gst

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestSplitIntraState(t *testing.T) {
	b := Split(d("1000"), d("18"), "27", "27")

	assert.True(t, b.CGST.Equal(d("90.00")), "cgst = %s", b.CGST)
	assert.True(t, b.SGST.Equal(d("90.00")), "sgst = %s", b.SGST)
	assert.True(t, b.IGST.Equal(d("0")), "igst = %s", b.IGST)
	assert.True(t, b.Total.Equal(d("1180.00")), "total = %s", b.Total)
}

func TestSplitInterState(t *testing.T) {
	b := Split(d("1000"), d("18"), "27", "29")

	assert.True(t, b.CGST.Equal(d("0")), "cgst = %s", b.CGST)
	assert.True(t, b.SGST.Equal(d("0")), "sgst = %s", b.SGST)
	assert.True(t, b.IGST.Equal(d("180.00")), "igst = %s", b.IGST)
	assert.True(t, b.Total.Equal(d("1180.00")), "total = %s", b.Total)
}

func TestSplitMissingStateCodeDefaultsToIntraState(t *testing.T) {
	cases := []struct {
		name         string
		vendorState  string
		projectState string
	}{
		{"vendor missing", "", "27"},
		{"project missing", "27", ""},
		{"both missing", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := Split(d("500"), d("12"), tc.vendorState, tc.projectState)

			assert.True(t, b.IGST.IsZero(), "igst = %s", b.IGST)
			assert.True(t, b.CGST.Equal(d("30.00")), "cgst = %s", b.CGST)
			assert.True(t, b.SGST.Equal(d("30.00")), "sgst = %s", b.SGST)
		})
	}
}

func TestSplitRoundsHalvesToTwoDecimals(t *testing.T) {
	// 999.99 * 18% = 179.9982, half = 89.9991 -> 90.00 per component.
	b := Split(d("999.99"), d("18"), "27", "27")

	assert.Equal(t, "90.00", b.CGST.StringFixed(2))
	assert.Equal(t, "90.00", b.SGST.StringFixed(2))
	assert.Equal(t, "1179.99", b.Total.StringFixed(2))
}

func TestSplitZeroRate(t *testing.T) {
	b := Split(d("250.50"), d("0"), "27", "29")

	assert.True(t, b.IGST.IsZero())
	assert.True(t, b.CGST.IsZero())
	assert.True(t, b.SGST.IsZero())
	assert.True(t, b.Total.Equal(d("250.50")))
}

func TestInterState(t *testing.T) {
	assert.True(t, InterState("27", "29"))
	assert.False(t, InterState("27", "27"))
	assert.False(t, InterState("", "29"))
	assert.False(t, InterState("27", ""))
}

package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScanPath(t *testing.T) {
	projectID := uuid.New()
	billID := uuid.New()

	t.Run("valid jpg", func(t *testing.T) {
		ref, ok := ParseScanPath("bills/" + projectID.String() + "/" + billID.String() + ".jpg")
		require.True(t, ok)
		assert.Equal(t, projectID, ref.ProjectID)
		assert.Equal(t, billID, ref.BillID)
		assert.Equal(t, "jpg", ref.Ext)
	})

	t.Run("valid pdf", func(t *testing.T) {
		ref, ok := ParseScanPath("bills/" + projectID.String() + "/" + billID.String() + ".pdf")
		require.True(t, ok)
		assert.Equal(t, "pdf", ref.Ext)
	})

	t.Run("wrong prefix", func(t *testing.T) {
		_, ok := ParseScanPath("invoices/" + projectID.String() + "/" + billID.String() + ".jpg")
		assert.False(t, ok)
	})

	t.Run("too few segments", func(t *testing.T) {
		_, ok := ParseScanPath("bills/" + billID.String() + ".jpg")
		assert.False(t, ok)
	})

	t.Run("too many segments", func(t *testing.T) {
		_, ok := ParseScanPath("bills/x/" + projectID.String() + "/" + billID.String() + ".jpg")
		assert.False(t, ok)
	})

	t.Run("bad project uuid", func(t *testing.T) {
		_, ok := ParseScanPath("bills/not-a-uuid/" + billID.String() + ".jpg")
		assert.False(t, ok)
	})

	t.Run("bad bill uuid", func(t *testing.T) {
		_, ok := ParseScanPath("bills/" + projectID.String() + "/receipt.jpg")
		assert.False(t, ok)
	})

	t.Run("missing extension", func(t *testing.T) {
		_, ok := ParseScanPath("bills/" + projectID.String() + "/" + billID.String())
		assert.False(t, ok)

		_, ok = ParseScanPath("bills/" + projectID.String() + "/" + billID.String() + ".")
		assert.False(t, ok)
	})

	t.Run("random object", func(t *testing.T) {
		_, ok := ParseScanPath("random/file.jpg")
		assert.False(t, ok)
	})
}

package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Asif12as/wsm-warehouse/internal/reconcile/model"
)

func TestSynthesize(t *testing.T) {
	t.Run("reuses canonical id", func(t *testing.T) {
		p := &model.CatalogProduct{SKU: "W-1", CanonicalID: "MSKU-0001"}
		assert.Equal(t, "MSKU-0001", Synthesize("ANY", model.Amazon, p))
	})
	t.Run("falls back to matched sku", func(t *testing.T) {
		p := &model.CatalogProduct{SKU: "W-1"}
		assert.Equal(t, "W-1", Synthesize("ANY", model.Amazon, p))
	})
	t.Run("new id", func(t *testing.T) {
		assert.Equal(t, "WMS-AMA-AFE3FE", Synthesize("AMZ-B001122334", model.Amazon, nil))
		assert.Equal(t, "WMS-WAL-2F5799", Synthesize("WMT-12345678", model.Walmart, nil))
		assert.Equal(t, "WMS-CUS-36DE45", Synthesize("ACME-1001", model.Custom, nil))
	})
	t.Run("short marketplace tag", func(t *testing.T) {
		assert.Equal(t, "WMS-AB-00FC42", Synthesize("ABC", model.Marketplace("ab"), nil))
	})
	t.Run("stable", func(t *testing.T) {
		assert.Equal(t, Synthesize("SHO-X", model.Shopify, nil), Synthesize("SHO-X", model.Shopify, nil))
	})
}

func TestRollingHash(t *testing.T) {
	assert.Equal(t, "000000", rollingHash(""))
	assert.Equal(t, "000041", rollingHash("A"))
	assert.Equal(t, "00FC42", rollingHash("ABC"))
	assert.Equal(t, "C42FAC", rollingHash("SHO-TSHIRT-RED-L"))
	assert.Len(t, rollingHash("a much longer sku value that overflows"), 6)
}

func TestMarketplacePrefix(t *testing.T) {
	assert.Equal(t, "AMA", marketplacePrefix(model.Amazon))
	assert.Equal(t, "EBA", marketplacePrefix(model.EBay))
	assert.Equal(t, "X", marketplacePrefix(model.Marketplace("x")))
	assert.Equal(t, "", marketplacePrefix(""))
}

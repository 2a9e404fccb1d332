package service

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Asif12as/wsm-warehouse/internal/reconcile/model"
)

// Synthesize returns the canonical id (MSKU) for a decision. An existing
// canonical id on the matched product is always reused; a matched product
// without one lends its sku; otherwise a new id is derived from the
// transformed sku: WMS-{first 3 letters of marketplace}-{6 hex digits}.
func Synthesize(transformed string, mp model.Marketplace, matched *model.CatalogProduct) string {
	if matched != nil {
		if matched.CanonicalID != "" {
			return matched.CanonicalID
		}
		return matched.SKU
	}
	return fmt.Sprintf("WMS-%s-%s", marketplacePrefix(mp), rollingHash(transformed))
}

func marketplacePrefix(mp model.Marketplace) string {
	s := string(mp)
	if utf8.RuneCountInString(s) > 3 {
		s = string([]rune(s)[:3])
	}
	return strings.ToUpper(s)
}

// rollingHash: h = h*31 + code point по модулю 2^32, hex в верхнем регистре,
// дополнено нулями слева и обрезано до 6 знаков. Без соли — результат
// стабилен между запусками.
func rollingHash(s string) string {
	var h uint32
	for _, r := range s {
		h = h*31 + uint32(r)
	}
	hex := fmt.Sprintf("%06X", h)
	return hex[:6]
}

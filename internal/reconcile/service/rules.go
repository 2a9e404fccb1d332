package service

import (
	"regexp"
	"strings"

	"github.com/Asif12as/wsm-warehouse/internal/reconcile/model"
)

// Rule — правило площадки: переписывание нормализованного SKU + шаблон формата.
// Transform всегда тотальна: неподходящий по форме SKU возвращается как есть.
type Rule struct {
	Transform func(string) string
	Pattern   *regexp.Regexp
}

var (
	reEbayItemID = regexp.MustCompile(`^\d{12}$`)
	reWalmartSKU = regexp.MustCompile(`^[A-Z0-9]{8,15}$`)
	reShopifyBad = regexp.MustCompile(`[^a-zA-Z0-9\-]`)

	reStandard = regexp.MustCompile(`^[A-Z]{2,4}-\d{4,8}$`)
	reCombo    = regexp.MustCompile(`^([A-Z]{2,4}-\d{4,8})(,([A-Z]{2,4}-\d{4,8}))*$`)
)

// rules заполняется один раз при инициализации пакета и дальше только читается.
var rules = map[model.Marketplace]Rule{
	model.Amazon: {
		Transform: func(s string) string {
			if strings.HasPrefix(s, "B") && len(s) == 10 {
				return "AMZ-" + s
			}
			return s
		},
		Pattern: regexp.MustCompile(`^(B[0-9A-Z]{9}|[A-Z0-9]{10})$`),
	},
	model.EBay: {
		Transform: func(s string) string {
			if reEbayItemID.MatchString(s) {
				return "EBY-" + s[len(s)-8:]
			}
			return s
		},
		Pattern: reEbayItemID,
	},
	model.Shopify: {
		Transform: func(s string) string {
			return "SHO-" + reShopifyBad.ReplaceAllString(s, "")
		},
		Pattern: regexp.MustCompile(`^[a-zA-Z0-9\-_]{1,100}$`),
	},
	model.Walmart: {
		Transform: func(s string) string {
			if reWalmartSKU.MatchString(s) {
				return "WMT-" + s
			}
			return s
		},
		Pattern: reWalmartSKU,
	},
}

// форматы без площадки: перебираются при валидации, когда площадка неизвестна
var genericPatterns = []*regexp.Regexp{reStandard, reCombo}

// Transform applies the marketplace rewrite rule. Marketplaces without a rule
// get the identity transform.
func Transform(normalized string, mp model.Marketplace) string {
	if r, ok := rules[mp]; ok {
		return r.Transform(normalized)
	}
	return normalized
}

// HasRule reports whether the marketplace has a registered transform.
func HasRule(mp model.Marketplace) bool {
	_, ok := rules[mp]
	return ok
}

// Validate checks sku against the marketplace pattern, or against every known
// pattern when the marketplace has none.
func Validate(sku string, mp model.Marketplace) bool {
	s := strings.ToUpper(strings.TrimSpace(sku))
	if s == "" {
		return false
	}
	if r, ok := rules[mp]; ok {
		return r.Pattern.MatchString(s)
	}
	for _, r := range rules {
		if r.Pattern.MatchString(s) {
			return true
		}
	}
	for _, p := range genericPatterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

// SplitCombo разбивает комбо-SKU ("AB-1234,CD-5678") на части.
// Не комбо — срез из одного исходного значения.
func SplitCombo(sku string) []string {
	if !reCombo.MatchString(sku) {
		return []string{sku}
	}
	parts := strings.Split(sku, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

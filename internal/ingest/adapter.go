package ingest

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/Asif12as/wsm-warehouse/internal/reconcile/model"
	"github.com/Asif12as/wsm-warehouse/internal/utils"
)

var (
	ErrMissingField = errors.New("missing required field")
	ErrInvalidField = errors.New("invalid field")
)

var rxHeaderJunk = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// normHeaderKey: "Order-ID ", "order_id", "ORDER ID" → "order id".
func normHeaderKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = rxHeaderJunk.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// lookupField ищет значение поля по списку алиасов: сначала точное имя колонки,
// потом нормализованное. Пустые значения пропускаются, берётся первый непустой.
func lookupField(rec map[string]string, aliases []string) string {
	for _, a := range aliases {
		if v := strings.TrimSpace(rec[a]); v != "" {
			return v
		}
	}
	byNorm := make(map[string]string, len(rec))
	for k, v := range rec {
		if v = strings.TrimSpace(v); v != "" {
			if _, dup := byNorm[normHeaderKey(k)]; !dup {
				byNorm[normHeaderKey(k)] = v
			}
		}
	}
	for _, a := range aliases {
		if v, ok := byNorm[normHeaderKey(a)]; ok {
			return v
		}
	}
	return ""
}

// isRepeatedHeader — склеенные выгрузки повторяют строку заголовков посреди данных.
func isRepeatedHeader(rec map[string]string) bool {
	same := 0
	for k, v := range rec {
		if v != "" && normHeaderKey(k) == normHeaderKey(v) {
			same++
		}
	}
	return same >= 2
}

// Adapt maps one raw export row to the canonical sales row for a marketplace.
// Every problem in the row is reported at once, joined; each wraps
// ErrMissingField or ErrInvalidField. now is used when the row has no order date.
func Adapt(rec map[string]string, mp model.Marketplace, now time.Time) (model.SalesRow, error) {
	aliases := aliasesFor(mp)
	raw := make(map[Field]string, len(fieldOrder))
	for _, f := range fieldOrder {
		raw[f] = lookupField(rec, aliases[f])
	}

	var errs []error
	for _, f := range requiredFields {
		if raw[f] == "" {
			errs = append(errs, fmt.Errorf("%w: %s", ErrMissingField, f))
		}
	}

	row := model.SalesRow{
		OrderID:     raw[FieldOrderID],
		SKU:         raw[FieldSKU],
		ProductName: raw[FieldProductName],
		Status:      strings.ToLower(raw[FieldStatus]),
		OrderDate:   now,
	}
	if row.Status == "" {
		row.Status = "pending"
	}

	if s := raw[FieldQuantity]; s != "" {
		q, ok := utils.ParseAmount(s)
		switch {
		case !ok:
			errs = append(errs, fmt.Errorf("%w: quantity %q", ErrInvalidField, s))
		case q <= 0:
			errs = append(errs, fmt.Errorf("%w: quantity must be greater than 0", ErrInvalidField))
		default:
			row.Quantity = int(q)
		}
	}
	if s := raw[FieldUnitPrice]; s != "" {
		p, ok := utils.ParseAmount(s)
		switch {
		case !ok:
			errs = append(errs, fmt.Errorf("%w: unit price %q", ErrInvalidField, s))
		case p < 0:
			errs = append(errs, fmt.Errorf("%w: unit price cannot be negative", ErrInvalidField))
		default:
			row.UnitPrice = p
		}
	}
	optional := []struct {
		f   Field
		dst *float64
	}{{FieldTotal, &row.TotalAmount}, {FieldFees, &row.Fees}}
	for _, o := range optional {
		if s := raw[o.f]; s != "" {
			v, ok := utils.ParseAmount(s)
			if !ok {
				errs = append(errs, fmt.Errorf("%w: %s %q", ErrInvalidField, o.f, s))
				continue
			}
			*o.dst = v
		}
	}
	if s := raw[FieldOrderDate]; s != "" {
		t, err := parseDate(s)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: order date %q", ErrInvalidField, s))
		} else {
			row.OrderDate = t
		}
	}

	if len(errs) > 0 {
		return model.SalesRow{}, errors.Join(errs...)
	}
	if row.TotalAmount == 0 && row.UnitPrice > 0 && row.Quantity > 0 {
		row.TotalAmount = row.UnitPrice * float64(row.Quantity)
	}
	return row, nil
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"1/2/2006 15:04",
	"01/02/2006",
	"1/2/2006",
	"02.01.2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2006-01-02 15:04:05 -0700",
}

// parseDate: американский порядок (месяц/день) раньше европейского.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

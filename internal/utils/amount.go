package utils

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	rxKeepNums  = regexp.MustCompile(`[^\d.,\-]`)
	rxThousands = regexp.MustCompile(`^-?\d{1,3}(,\d{3})+$`)
)

// ParseAmount парсит суммы из выгрузок разных площадок:
// "1,234.50", "$12.00", "1 234,50" (NBSP/NNBSP), "(12.00)" как отрицательное, "EUR 3,5".
// Десятичным разделителем считается последний из '.'/','; одиночная запятая
// в группах по три цифры ("1,234") — разделитель тысяч.
func ParseAmount(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = s[1 : len(s)-1]
	}
	s = rxKeepNums.ReplaceAllString(s, "")
	if s == "" || s == "-" || s == "." || s == "," {
		return 0, false
	}

	dot, comma := strings.LastIndex(s, "."), strings.LastIndex(s, ",")
	switch {
	case dot >= 0 && comma >= 0:
		if comma > dot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case comma >= 0:
		if rxThousands.MatchString(s) {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.Replace(s, ",", ".", 1)
		}
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if neg {
		f = -f
	}
	return f, true
}

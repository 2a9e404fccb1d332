package service

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// по краям срезаем любые юникодные пробелы и кавычки (в т.ч. вперемешку: ` "B00X" `)
func isTrimmable(r rune) bool {
	return unicode.IsSpace(r) || unicode.Is(unicode.Zs, r) || r == '"' || r == '\''
}

var (
	reSpaces = regexp.MustCompile(`[\s\p{Zs}]+`)
	reNotSKU = regexp.MustCompile(`[^A-Za-z0-9\-]`)
)

// Normalize cleans raw SKU text into the canonical token shape: trimmed of
// surrounding whitespace and quotes, whitespace runs turned into a single
// hyphen, everything but [A-Z0-9-] dropped, upper-cased.
// Empty or whitespace-only input yields "" and must be treated as invalid.
func Normalize(raw string) string {
	s := strings.TrimFunc(raw, isTrimmable)
	if s == "" {
		return ""
	}

	// é → e, ﬁ → fi: буква не должна пропасть целиком
	s = foldAccents(s)

	s = reSpaces.ReplaceAllString(s, "-")
	s = reNotSKU.ReplaceAllString(s, "")
	return strings.ToUpper(s)
}

// transform.Chain хранит состояние, поэтому собираем на каждый вызов
func foldAccents(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

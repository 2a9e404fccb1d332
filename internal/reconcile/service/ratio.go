package service

import (
	"math"
	"regexp"
	"strings"
)

var reFuzzyJunk = regexp.MustCompile(`[^\p{L}\p{N}_]+`)

// fuzzyKey: нижний регистр, разделители → пробел. "AMZ-B001" и "amz_b001" сравниваются по сути.
func fuzzyKey(s string) string {
	return strings.TrimSpace(reFuzzyJunk.ReplaceAllString(strings.ToLower(s), " "))
}

// Ratio is an edit-distance similarity on a 0..100 scale:
// round(100 * (len(a)+len(b) - d) / (len(a)+len(b))), where d is the
// Levenshtein distance with substitutions weighted 2 (insert/delete only).
// Either side empty after preprocessing scores 0.
func Ratio(a, b string) int {
	ka, kb := fuzzyKey(a), fuzzyKey(b)
	if ka == "" || kb == "" {
		return 0
	}
	ra, rb := []rune(ka), []rune(kb)
	total := len(ra) + len(rb)
	d := indelDistance(ra, rb)
	return int(math.RoundToEven(100 * float64(total-d) / float64(total)))
}

// indelDistance = len(a)+len(b)-2*LCS(a,b); держим только две строки DP.
func indelDistance(a, b []rune) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				cur[j] = prev[j-1] + 1
			case prev[j] >= cur[j-1]:
				cur[j] = prev[j]
			default:
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}
	return len(a) + len(b) - 2*prev[len(b)]
}

package domain

import (
	"regexp"
	"strings"
)

// codePattern matches marker-prefixed hashtag codes in caption text. \w+ is
// greedy, so "#A12x" yields "#A12x", never a shorter prefix.
var codePattern = regexp.MustCompile(`#\w+`)

// ExtractCodes returns the marker-prefixed codes embedded in caption, in
// order of appearance. Duplicates are collapsed only when byte-identical;
// "#A12" and "#a12" both survive extraction and are unified later by
// case-insensitive comparison.
func ExtractCodes(caption string) []string {
	if caption == "" {
		return nil
	}

	matches := codePattern.FindAllString(caption, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(matches))
	codes := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		codes = append(codes, m)
	}
	return codes
}

// NormalizeCode strips the leading marker from a code, leaving the bare
// indexing key. Case is preserved; comparisons are case-insensitive at the
// lookup sites.
func NormalizeCode(code string) string {
	return strings.TrimPrefix(strings.TrimSpace(code), "#")
}

// equalFoldASCII compares two codes case-insensitively. Codes are \w runs,
// so ASCII folding is sufficient.
func equalFoldASCII(a, b string) bool {
	return strings.EqualFold(a, b)
}

// isShortNumeric reports whether a code qualifies for prefix-guess fallback:
// purely numeric, 1 to 3 digits, not starting with 0 (so "007" is never
// expanded to "M007").
func isShortNumeric(code string) bool {
	if len(code) < 1 || len(code) > 3 {
		return false
	}
	if code[0] == '0' {
		return false
	}
	return AllDigits(code)
}

// AllDigits reports whether code is non-empty and purely ASCII digits.
func AllDigits(code string) bool {
	if code == "" {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}

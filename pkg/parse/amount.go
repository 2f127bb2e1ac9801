package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// amountRE finds currency-amount candidates: an optional currency marker,
// grouped thousands, a 1-2 digit decimal part, or a bare integer run.
// Ordering matters: grouped forms must win over their decimal prefixes. Bare
// integers only count at line end, where receipts print prices; mid-line
// digit runs are addresses, ids and quantities.
var amountRE = regexp.MustCompile(`(?i)(?:rp|idr|[$€£])\s*[0-9][0-9.,]*|[0-9]{1,3}(?:[.,][0-9]{3})+(?:[.,][0-9]{1,2})?|[0-9]+[.,][0-9]{1,2}\b|\b[0-9]{3,9}\s*$`)

var decimalTailRE = regexp.MustCompile(`[.,][0-9]{1,2}$`)

// amountMatch is one currency token located in a line.
type amountMatch struct {
	start, end int
	minor      int64
}

// findAmounts scans a digit-repaired line for plausible currency amounts, in
// order of appearance. Implausible numerics (phone numbers, ids) are skipped.
func findAmounts(line string) []amountMatch {
	var out []amountMatch
	for _, loc := range amountRE.FindAllStringIndex(line, -1) {
		tok := line[loc[0]:loc[1]]
		if !plausibleAmount(tok) {
			continue
		}
		minor, err := ParseMinor(tok)
		if err != nil || minor < 0 {
			continue
		}
		out = append(out, amountMatch{start: loc[0], end: loc[1], minor: minor})
	}
	return out
}

// ParseMinor converts an amount token into integer minor units (cents).
// A trailing 1-2 digit separator group is the decimal part; all other
// separators are thousands grouping. "10.000,50" -> 1000050, "1234" -> 123400.
func ParseMinor(tok string) (int64, error) {
	tok = strings.TrimSpace(tok)
	if tok == "" {
		return 0, fmt.Errorf("empty amount token")
	}
	cents := int64(0)
	body := tok
	if m := decimalTailRE.FindStringIndex(tok); m != nil {
		tail := tok[m[0]+1:]
		body = tok[:m[0]]
		c, err := strconv.ParseInt(tail, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parse decimal part %q: %w", tail, err)
		}
		if len(tail) == 1 {
			c *= 10
		}
		cents = c
	}
	digits := onlyDigits(body)
	if digits == "" {
		return 0, fmt.Errorf("no digits in %q", tok)
	}
	units, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", digits, err)
	}
	return units*100 + cents, nil
}

// plausibleAmount rejects numeric runs that look like phone numbers,
// transaction ids or dates rather than money. Currency-marked or
// separator-grouped tokens are trusted; bare integers must be short and must
// not start with zero.
func plausibleAmount(tok string) bool {
	tok = strings.TrimSpace(tok)
	if tok == "" {
		return false
	}
	low := strings.ToLower(tok)
	if strings.Contains(low, "rp") || strings.Contains(low, "idr") ||
		strings.ContainsAny(tok, "$€£") {
		return true
	}
	// Explicit cents ("3.50", "0.85") are always money.
	if decimalTailRE.MatchString(tok) {
		return true
	}
	d := onlyDigits(tok)
	if d == "" || d[0] == '0' {
		return false
	}
	if len(d) > 9 {
		return false
	}
	return len(d) >= 3
}

func onlyDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

// repairDigits fixes the classic OCR digit confusions (O->0, l->1, S->5,
// B->8) when the character sits next to a digit, so mangled amounts still
// match the patterns. Replacements are 1:1, so indexes into the repaired
// string are valid in the original.
func repairDigits(s string) string {
	b := []byte(s)
	isDigit := func(i int) bool { return i >= 0 && i < len(b) && b[i] >= '0' && b[i] <= '9' }
	for i := range b {
		if !isDigit(i-1) && !isDigit(i+1) {
			continue
		}
		switch b[i] {
		case 'O', 'o':
			b[i] = '0'
		case 'l', 'I', '|':
			b[i] = '1'
		case 'S', 's':
			b[i] = '5'
		case 'B':
			b[i] = '8'
		}
	}
	return string(b)
}

package parse

import (
	"regexp"
	"strings"
	"unicode"

	"shoper/pkg/receipt"
)

// Tolerant of OCR-mangled labels like "Cashiersn" or "Billt#".
var (
	cashierRE = regexp.MustCompile(`(?i)cashier\w*\s*[:#]?\s*([A-Za-z0-9-]+)`)
	billRE    = regexp.MustCompile(`(?i)bill\w*\s*[:#]?\s*([A-Za-z0-9-]+)`)
)

// ClassifierOptions configures role assignment. The zero value is unusable;
// start from DefaultClassifierOptions.
type ClassifierOptions struct {
	Keywords    Keywords
	HeaderLines int // first N amount-less lines become HEADER
	FooterLines int // last M amount-less lines become FOOTER
}

func DefaultClassifierOptions() ClassifierOptions {
	return ClassifierOptions{
		Keywords:    EnglishKeywords(),
		HeaderLines: 6,
		FooterLines: 3,
	}
}

// Classifier assigns a structural role to every raw line. It holds no state
// across calls; one value is safe for concurrent pipeline runs.
type Classifier struct {
	opts ClassifierOptions
}

func NewClassifier(opts ClassifierOptions) *Classifier {
	return &Classifier{opts: opts}
}

// Classify tags each line with exactly one role, preserving input order and
// length. Lines it cannot place become NOISE rather than being dropped, so
// downstream stages always see the complete sequence.
//
// Two passes: the first locates the amount-bearing span of the receipt; the
// positional header/footer rules then apply only outside that span, so a
// wrapped item description in the middle is never mistaken for store-address
// or thank-you text.
func (c *Classifier) Classify(lines []receipt.RawTextLine) []receipt.ClassifiedLine {
	n := len(lines)
	folded := make([]string, n)
	hasAmount := make([]bool, n)
	firstAmt, lastAmt := n, -1
	for i, ln := range lines {
		folded[i] = fold(ln.Text)
		if len(findAmounts(repairDigits(folded[i]))) > 0 {
			hasAmount[i] = true
			if firstAmt == n {
				firstAmt = i
			}
			lastAmt = i
		}
	}

	out := make([]receipt.ClassifiedLine, 0, n)
	for i, ln := range lines {
		role, conf := c.classifyOne(folded[i], hasAmount[i], i, n, firstAmt, lastAmt)
		out = append(out, receipt.ClassifiedLine{RawTextLine: ln, Role: role, RoleConfidence: conf})
	}
	return out
}

func (c *Classifier) classifyOne(folded string, hasAmount bool, idx, total, firstAmt, lastAmt int) (receipt.LineRole, float64) {
	if folded == "" {
		return receipt.RoleNoise, 1
	}
	if hasAmount {
		kw := c.opts.Keywords
		// Subtotal first: "sub total" contains "total" and must not win as
		// TOTAL. Remaining ties (total vs tax) resolve to TOTAL, the most
		// specific category.
		switch {
		case matches(folded, kw.Subtotal):
			return receipt.RoleSubtotal, 0.9
		case matches(folded, kw.Total):
			return receipt.RoleTotal, 0.9
		case matches(folded, kw.Tax):
			return receipt.RoleTax, 0.9
		case matches(folded, kw.Cash) || matches(folded, kw.Change):
			// Payment lines come after the total block.
			return receipt.RoleFooter, 0.8
		}
		return receipt.RoleItem, 0.7
	}

	if idx < c.opts.HeaderLines && idx < firstAmt {
		return receipt.RoleHeader, 0.7
	}
	if idx >= total-c.opts.FooterLines && idx > lastAmt {
		return receipt.RoleFooter, 0.7
	}
	if hasLetter(folded) {
		// Mid-receipt text without an amount: most likely a wrapped item
		// description whose price lands on the next line.
		return receipt.RoleItem, 0.4
	}
	return receipt.RoleNoise, 0.5
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

// Detected carries the amounts lifted from keyword-classified lines. Nil
// means no such line was found. When a role matched several lines, the last
// one in reading order wins.
type Detected struct {
	Subtotal *int64
	Tax      *int64
	Total    *int64
	Cash     *int64
	Change   *int64
}

// DetectAmounts walks the classified sequence and pulls the rightmost amount
// off each SUBTOTAL/TAX/TOTAL line, plus cash/change payment lines parked in
// the footer.
func (c *Classifier) DetectAmounts(lines []receipt.ClassifiedLine) Detected {
	var det Detected
	kw := c.opts.Keywords
	for _, ln := range lines {
		folded := fold(ln.Text)
		amounts := findAmounts(repairDigits(folded))
		if len(amounts) == 0 {
			continue
		}
		v := amounts[len(amounts)-1].minor
		switch ln.Role {
		case receipt.RoleSubtotal:
			det.Subtotal = &v
		case receipt.RoleTax:
			det.Tax = &v
		case receipt.RoleTotal:
			det.Total = &v
		case receipt.RoleFooter:
			switch {
			case matches(folded, kw.Cash):
				det.Cash = &v
			case matches(folded, kw.Change):
				det.Change = &v
			}
		}
	}
	return det
}

// ExtractHeader pulls merchant, cashier and bill number out of the
// classified lines, mirroring the first-alphabetic-header-line merchant
// heuristic.
func ExtractHeader(lines []receipt.ClassifiedLine) (merchant, cashier, bill string) {
	for _, ln := range lines {
		if ln.Role != receipt.RoleHeader {
			continue
		}
		t := strings.TrimSpace(ln.Text)
		if len(t) >= 3 && hasLetter(t) {
			merchant = t
			break
		}
	}
	for _, ln := range lines {
		if m := cashierRE.FindStringSubmatch(ln.Text); m != nil && cashier == "" {
			cashier = m[1]
		}
		if m := billRE.FindStringSubmatch(ln.Text); m != nil && bill == "" {
			bill = m[1]
		}
	}
	return merchant, cashier, bill
}

package parse

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"shoper/pkg/receipt"
)

// Leading "2 x" / "2*" multipliers and bare leading quantities, optionally
// with a unit indicator ("1.5 kg").
var (
	qtyMulRE  = regexp.MustCompile(`^\s*([0-9]{1,3}(?:[.,][0-9]{1,3})?)\s*[x*]\s+`)
	qtyBareRE = regexp.MustCompile(`^\s*([0-9]{1,3}(?:[.,][0-9]{1,3})?)\s*(?:kg|g|l|ml|pcs)?\s+`)
	// parser-style "description qty price": a small integer right before the
	// line total.
	qtyMidRE = regexp.MustCompile(`\s([0-9]{1,3})\s*$`)

	descTrimRE = regexp.MustCompile(`^[\s.,:;#*-]+|[\s.,:;#*-]+$`)
)

// ItemOptions tunes item extraction. AmountTolerance is the allowed
// difference, in minor units, between quantity x unit price and the line
// total before an item is flagged inconsistent.
type ItemOptions struct {
	AmountTolerance int64
}

func DefaultItemOptions() ItemOptions {
	return ItemOptions{AmountTolerance: 1}
}

// ItemParser turns ITEM-classified lines into structured line items,
// merging wrapped descriptions into the following priced line.
type ItemParser struct {
	opts ItemOptions
}

func NewItemParser(opts ItemOptions) *ItemParser {
	return &ItemParser{opts: opts}
}

// ParseAll walks the classified sequence in order. An ITEM line without a
// currency amount defers: its text is held and prepended to the next ITEM
// line's description. Holding never crosses a non-ITEM line, so totals and
// subtotals are never merged into.
func (p *ItemParser) ParseAll(lines []receipt.ClassifiedLine) ([]receipt.LineItem, []string) {
	var items []receipt.LineItem
	var warnings []string
	pending := ""
	flush := func() {
		if pending != "" {
			warnings = append(warnings, fmt.Sprintf("description without a price: %q", pending))
			pending = ""
		}
	}
	for _, ln := range lines {
		if ln.Role != receipt.RoleItem {
			flush()
			continue
		}
		item, ok := p.ParseLine(ln.Text)
		if !ok {
			t := strings.TrimSpace(ln.Text)
			if pending == "" {
				pending = t
			} else {
				pending += " " + t
			}
			continue
		}
		if pending != "" {
			item.Description = strings.TrimSpace(pending + " " + item.Description)
			pending = ""
		}
		if item.Description == "" {
			warnings = append(warnings, fmt.Sprintf("amount with no description dropped: %q", strings.TrimSpace(ln.Text)))
			continue
		}
		items = append(items, item)
	}
	flush()
	return items, warnings
}

// ParseLine extracts one structured item from a single line. Returns false
// when the line carries no currency amount, signaling "defer to merge".
func (p *ItemParser) ParseLine(text string) (receipt.LineItem, bool) {
	repaired := repairDigits(text)
	amounts := findAmounts(repaired)
	if len(amounts) == 0 {
		return receipt.LineItem{}, false
	}

	// Receipts put the line total at the end: the rightmost amount wins.
	totalM := amounts[len(amounts)-1]
	item := receipt.LineItem{Quantity: 1, LineTotal: totalM.minor}
	prefix := repaired[:totalM.start]

	qty := 0.0
	qtyStart, qtyEnd := -1, -1
	if m := qtyMulRE.FindStringSubmatchIndex(prefix); m != nil {
		qty = parseQty(prefix[m[2]:m[3]])
		qtyStart, qtyEnd = m[0], m[1]
	} else if m := qtyBareRE.FindStringSubmatchIndex(prefix); m != nil {
		// A bare leading number is only a quantity when something readable
		// follows it.
		if rest := strings.TrimSpace(prefix[m[1]:]); hasLetter(rest) || len(amounts) > 1 {
			qty = parseQty(prefix[m[2]:m[3]])
			qtyStart, qtyEnd = m[0], m[1]
		}
	}

	// Unit price: a second currency token between the quantity and the total.
	unitFound := false
	var unitM amountMatch
	if len(amounts) >= 2 {
		cand := amounts[len(amounts)-2]
		if cand.start >= qtyEnd {
			unitM = cand
			unitFound = true
		}
	}

	if qty == 0 && !unitFound {
		// "description qty price" layout: small trailing integer before the
		// total, not itself matched as an amount.
		trimmed := strings.TrimRight(prefix, " \t")
		if m := qtyMidRE.FindStringSubmatchIndex(trimmed); m != nil && hasLetter(trimmed[:m[0]]) {
			qty = parseQty(trimmed[m[2]:m[3]])
			qtyStart, qtyEnd = m[0], m[1]
		}
	}

	if qty > 0 {
		item.Quantity = qty
	}

	switch {
	case unitFound && qty > 0:
		item.UnitPrice = unitM.minor
		// Consistency: quantity x unit price must land on the line total.
		prod := int64(math.Round(qty * float64(unitM.minor)))
		diff := prod - item.LineTotal
		if diff < 0 {
			diff = -diff
		}
		if diff > p.opts.AmountTolerance {
			// The line total is ground truth; recompute the unit price from
			// it and flag the item.
			item.Inconsistent = true
			item.UnitPrice = int64(math.Round(float64(item.LineTotal) / qty))
		}
	case unitFound:
		item.UnitPrice = unitM.minor
		if item.UnitPrice != item.LineTotal {
			item.Inconsistent = true
		}
	case qty > 0:
		item.UnitPrice = int64(math.Round(float64(item.LineTotal) / qty))
	default:
		item.UnitPrice = item.LineTotal
	}

	// Description: the line minus quantity and currency tokens. Slicing the
	// original text keeps the item name's casing; repairDigits is 1:1 so the
	// indexes line up.
	desc := text[:totalM.start]
	if unitFound {
		desc = desc[:unitM.start]
	}
	if qtyStart >= 0 && qtyEnd <= len(desc) {
		desc = desc[:qtyStart] + " " + desc[qtyEnd:]
	}
	item.Description = descTrimRE.ReplaceAllString(strings.Join(strings.Fields(desc), " "), "")
	return item, true
}

func parseQty(tok string) float64 {
	tok = strings.ReplaceAll(tok, ",", ".")
	q, err := strconv.ParseFloat(tok, 64)
	if err != nil || q <= 0 {
		return 0
	}
	return q
}

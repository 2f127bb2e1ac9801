package receipt

import "encoding/json"

// LineRole is the structural role of a recognized text line within a receipt.
type LineRole int

const (
	RoleNoise LineRole = iota
	RoleHeader
	RoleItem
	RoleSubtotal
	RoleTax
	RoleTotal
	RoleFooter
)

func (r LineRole) String() string {
	switch r {
	case RoleHeader:
		return "header"
	case RoleItem:
		return "item"
	case RoleSubtotal:
		return "subtotal"
	case RoleTax:
		return "tax"
	case RoleTotal:
		return "total"
	case RoleFooter:
		return "footer"
	default:
		return "noise"
	}
}

// RawTextLine is one line of recognizer output. Position is the vertical
// order index assigned by the extractor. Confidence is in [0,1]; negative
// when the engine does not report one.
type RawTextLine struct {
	Text       string
	Position   int
	Confidence float64
}

// ClassifiedLine is a RawTextLine tagged with its role and how confident the
// classifier is about the assignment.
type ClassifiedLine struct {
	RawTextLine
	Role           LineRole
	RoleConfidence float64
}

// LineItem is one purchased item. All currency amounts are integers in minor
// units (cents). Quantity defaults to 1 when no quantity token was found.
type LineItem struct {
	Description  string  `json:"description"`
	Quantity     float64 `json:"quantity"`
	UnitPrice    int64   `json:"unit_price"`
	LineTotal    int64   `json:"line_total"`
	Inconsistent bool    `json:"inconsistent,omitempty"`
}

// ReconStatus is the outcome of checking item sums against the detected total.
type ReconStatus int

const (
	StatusUnverifiable ReconStatus = iota
	StatusMatch
	StatusMismatch
)

// MarshalJSON serializes the status as its lowercase name so exported
// records stay readable without the enum values.
func (s ReconStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s ReconStatus) String() string {
	switch s {
	case StatusMatch:
		return "match"
	case StatusMismatch:
		return "mismatch"
	default:
		return "unverifiable"
	}
}

// Reconciliation reports computed vs detected totals. Detected fields are nil
// when no such line was classified.
type Reconciliation struct {
	ComputedSubtotal int64       `json:"computed_subtotal"`
	DetectedSubtotal *int64      `json:"detected_subtotal,omitempty"`
	DetectedTax      *int64      `json:"detected_tax,omitempty"`
	DetectedTotal    *int64      `json:"detected_total,omitempty"`
	Discrepancy      int64       `json:"discrepancy"`
	Status           ReconStatus `json:"status"`
}

// Receipt is the final structured record for one processed image. Immutable
// after assembly; the caller owns it.
type Receipt struct {
	Merchant       string         `json:"merchant,omitempty"`
	Cashier        string         `json:"cashier,omitempty"`
	BillNo         string         `json:"bill_no,omitempty"`
	Items          []LineItem     `json:"items"`
	Reconciliation Reconciliation `json:"reconciliation"`
	Cash           *int64         `json:"cash,omitempty"`
	Change         *int64         `json:"change,omitempty"`
	Confidence     float64        `json:"confidence"`
	Warnings       []string       `json:"warnings,omitempty"`
	Rectified      bool           `json:"rectified"`
}

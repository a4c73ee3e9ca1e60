package pmr

import (
	"encoding/json"
	"fmt"
)

// Quarter is a reporting quarter label as it appears in column names.
type Quarter string

const (
	Q1 Quarter = "Q1"
	Q2 Quarter = "Q2"
	Q3 Quarter = "Q3"
	Q4 Quarter = "Q4"
)

// AllQuarters in calendar order.
var AllQuarters = []Quarter{Q1, Q2, Q3, Q4}

// ParseQuarter validates a quarter label.
func ParseQuarter(s string) (Quarter, error) {
	switch Quarter(s) {
	case Q1, Q2, Q3, Q4:
		return Quarter(s), nil
	}
	return "", fmt.Errorf("invalid quarter %q (want Q1..Q4)", s)
}

// Period identifies which column group of the wide table is active.
// Exactly one period is active per dataset view; every derived field is
// recomputed when it changes.
type Period struct {
	Quarter Quarter `json:"quarter"`
	Year    int     `json:"year"`
}

func (p Period) String() string {
	return fmt.Sprintf("%s Y%d", p.Quarter, p.Year)
}

// Status is the derived tracking category. It is never an input column.
type Status string

const (
	StatusOnTrack  Status = "OnTrack"
	StatusAtRisk   Status = "AtRisk"
	StatusOffTrack Status = "OffTrack"
)

// Maybe is a numeric cell that may be missing. Coercion failures and blank
// cells become missing rather than zero so aggregation can skip them.
type Maybe struct {
	Value float64
	Valid bool
}

// Some wraps a present value.
func Some(v float64) Maybe { return Maybe{Value: v, Valid: true} }

// None is the missing value.
var None = Maybe{}

// Or returns the value or the given fallback when missing.
func (m Maybe) Or(fallback float64) float64 {
	if m.Valid {
		return m.Value
	}
	return fallback
}

// MarshalJSON renders a missing value as null so API clients can show "N/A"
// without a separate presence flag.
func (m Maybe) MarshalJSON() ([]byte, error) {
	if !m.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(m.Value)
}

// UnmarshalJSON accepts a number or null.
func (m *Maybe) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*m = None
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*m = Some(v)
	return nil
}

// Table is the raw rectangular input: one header row plus data rows.
// Cells are kept as the source strings; nothing here is ever mutated after
// load, so derived views can always recompute from it.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Cell returns the raw cell at (row, col), or "" when col is -1 (column
// absent from the source) or the row is ragged.
func (t Table) Cell(row, col int) string {
	if col < 0 || row < 0 || row >= len(t.Rows) {
		return ""
	}
	r := t.Rows[row]
	if col >= len(r) {
		return ""
	}
	return r[col]
}

// Record is one normalized row of the active period. Raw inputs stay in the
// Table; a Record is purely derived and safe to rebuild at any time.
type Record struct {
	Sector    string `json:"sector"`
	Agency    string `json:"agency"`
	Programme string `json:"programme"`
	Remarks   string `json:"remarks"`

	OutputTarget   Maybe `json:"outputTarget"`
	OutputActual   Maybe `json:"outputActual"`
	OutputPerf     Maybe `json:"outputPerf"`     // ratio on [0,1]
	PlannedPerf    Maybe `json:"plannedPerf"`    // ratio on [0,1]
	ApprovedBudget Maybe `json:"approvedBudget"`
	ReleasedBudget Maybe `json:"releasedBudget"`
	BudgetPerf     Maybe `json:"budgetPerf"`     // ratio on [0,1]
	TrackingScore  Maybe `json:"trackingScore"`  // ratio on [0,1] after scale detection

	Status Status `json:"status"` // "" when the score is missing
}

// Dataset is the immutable result of resolving and normalizing one period.
type Dataset struct {
	Table   Table
	Period  Period
	Fields  FieldMap
	Records []Record
}

// View is a filtered subset of a Dataset. It holds row indices, never
// copies, so concurrent views share the base table without conflict.
type View struct {
	Dataset *Dataset
	Indices []int
}

// Len reports the number of records in the view.
func (v View) Len() int { return len(v.Indices) }

// Record returns the i-th record of the view.
func (v View) Record(i int) Record { return v.Dataset.Records[v.Indices[i]] }

// All returns the unfiltered view over the dataset.
func (d *Dataset) All() View {
	idx := make([]int, len(d.Records))
	for i := range idx {
		idx[i] = i
	}
	return View{Dataset: d, Indices: idx}
}

package pmr

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Field is a semantic column of the PMR table. The source table addresses
// these by period-interpolated header names; the resolver maps each Field to
// a concrete column index once, and every downstream stage uses the map
// instead of repeating string lookups.
type Field int

const (
	FieldSector Field = iota
	FieldAgency
	FieldProgramme
	FieldOutputTarget
	FieldOutputActual
	FieldOutputPerf
	FieldPlannedPerf
	FieldApprovedBudget
	FieldReleasedBudget
	FieldBudgetPerf
	FieldTrackingScore
	FieldRemarks
	numFields
)

// FieldMap maps each semantic field to its column index in the table.
// An absent column is -1: the field reads as all-missing, never an error,
// except FieldTrackingScore whose absence is fatal at resolution time.
type FieldMap [numFields]int

// Col returns the column index for f, -1 when absent.
func (m FieldMap) Col(f Field) int { return m[f] }

var (
	quarterPerfRe = regexp.MustCompile(`^(Q[1-4])\s+(?:PMR\s+)?Output Performance$`)
	yearBudgetRe  = regexp.MustCompile(`^Y(\d{4})\s+Approved Budget$`)
)

// Resolution is the set of reporting periods discoverable from the headers.
type Resolution struct {
	Quarters []Quarter `json:"quarters"`
	Years    []int     `json:"years"`
}

// Default picks the first available quarter and year. Only valid on a
// successful resolution, which guarantees both sets are non-empty.
func (r Resolution) Default() Period {
	return Period{Quarter: r.Quarters[0], Year: r.Years[0]}
}

// Contains reports whether the period is one of the resolved combinations.
func (r Resolution) Contains(p Period) bool {
	okQ, okY := false, false
	for _, q := range r.Quarters {
		if q == p.Quarter {
			okQ = true
		}
	}
	for _, y := range r.Years {
		if y == p.Year {
			okY = true
		}
	}
	return okQ && okY
}

// ResolvePeriods inspects the column names and returns every quarter with an
// "<Q> Output Performance" column and every year with a "Y<year> Approved
// Budget" column. Headers are trimmed first; source systems pad them.
// Either set coming up empty is a SchemaMismatch naming the absent pattern.
func ResolvePeriods(headers []string) (Resolution, error) {
	seenQ := map[Quarter]bool{}
	seenY := map[int]bool{}
	for _, h := range headers {
		h = strings.TrimSpace(h)
		if m := quarterPerfRe.FindStringSubmatch(h); m != nil {
			seenQ[Quarter(m[1])] = true
		}
		if m := yearBudgetRe.FindStringSubmatch(h); m != nil {
			y, _ := strconv.Atoi(m[1])
			seenY[y] = true
		}
	}
	if len(seenQ) == 0 {
		return Resolution{}, SchemaMismatchf("no column matching %q", "<Q> Output Performance")
	}
	if len(seenY) == 0 {
		return Resolution{}, SchemaMismatchf("no column matching %q", "Y<year> Approved Budget")
	}
	var res Resolution
	for _, q := range AllQuarters {
		if seenQ[q] {
			res.Quarters = append(res.Quarters, q)
		}
	}
	for y := range seenY {
		res.Years = append(res.Years, y)
	}
	sort.Ints(res.Years)
	return res, nil
}

// fieldHeaders returns the acceptable header names per field for a period,
// in preference order. Spellings follow the source system, including the
// doubled-m in "Cummulative".
func fieldHeaders(p Period) [numFields][]string {
	q := string(p.Quarter)
	return [numFields][]string{
		FieldSector:         {"COFOG"},
		FieldAgency:         {"MDA REVISED", "MDA"},
		FieldProgramme:      {"Programme / Project"},
		FieldOutputTarget:   {fmt.Sprintf("%s Output Target (in numbers)", q), fmt.Sprintf("%s Output Target", q)},
		FieldOutputActual:   {fmt.Sprintf("%s Actual Output", q)},
		FieldOutputPerf:     {fmt.Sprintf("%s Output Performance", q), fmt.Sprintf("%s PMR Output Performance", q)},
		FieldPlannedPerf:    {fmt.Sprintf("Planned %s Perf", q)},
		FieldApprovedBudget: {fmt.Sprintf("Y%d Approved Budget", p.Year)},
		FieldReleasedBudget: {fmt.Sprintf("Budget Released as at %s", q)},
		FieldBudgetPerf:     {fmt.Sprintf("%s Budget Performance", q)},
		FieldTrackingScore:  {"Cummulative TPR Score", "Cumulative TPR Score"},
		FieldRemarks:        {"Remarks"},
	}
}

// ResolveFields builds the field-resolution table for one period. Columns
// absent from the table resolve to -1 and read as all-missing data, with
// one exception: the tracking-score column is the discriminator for scale
// detection and status classification, so its absence is fatal.
func ResolveFields(headers []string, p Period) (FieldMap, error) {
	byName := make(map[string]int, len(headers))
	for i, h := range headers {
		h = strings.TrimSpace(h)
		if _, dup := byName[h]; !dup {
			byName[h] = i
		}
	}
	var fm FieldMap
	wanted := fieldHeaders(p)
	for f := Field(0); f < numFields; f++ {
		fm[f] = -1
		for _, name := range wanted[f] {
			if idx, ok := byName[name]; ok {
				fm[f] = idx
				break
			}
		}
	}
	if fm[FieldTrackingScore] < 0 {
		return fm, SchemaMismatchf("no column matching %q", "Cummulative TPR Score")
	}
	return fm, nil
}

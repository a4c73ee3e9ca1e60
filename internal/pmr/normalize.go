package pmr

import (
	"strconv"
	"strings"
)

// parseNumber coerces one raw cell to a number. Trailing "%" is stripped,
// comma thousands separators are dropped, and anything unparseable (stray
// text, blanks) becomes missing. Never an error: coercion failures recover
// locally per cell.
func parseNumber(raw string) Maybe {
	s := strings.TrimSpace(raw)
	if s == "" {
		return None
	}
	s = strings.TrimSuffix(s, "%")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return None
	}
	return Some(v)
}

// columnNumbers reads field f for every row, coerced.
func columnNumbers(t Table, fm FieldMap, f Field) []Maybe {
	col := fm.Col(f)
	out := make([]Maybe, len(t.Rows))
	for i := range t.Rows {
		out[i] = parseNumber(t.Cell(i, col))
	}
	return out
}

// normalizeScale maps a ratio-like column onto [0,1]. The source stores
// these on either a 0-1 or 0-100 scale; the rule is global per column, not
// per row: when the maximum non-missing value exceeds 1, every value is
// divided by 100. An all-missing column passes through untouched.
func normalizeScale(vals []Maybe) []Maybe {
	max, any := 0.0, false
	for _, m := range vals {
		if m.Valid {
			if !any || m.Value > max {
				max = m.Value
			}
			any = true
		}
	}
	if !any || max <= 1 {
		return vals
	}
	out := make([]Maybe, len(vals))
	for i, m := range vals {
		if m.Valid {
			out[i] = Some(m.Value / 100)
		}
	}
	return out
}

// Normalize resolves the field map for the period and builds the derived
// record view. The raw table is retained untouched so a period change can
// recompute everything from source.
func Normalize(t Table, p Period) (*Dataset, error) {
	fm, err := ResolveFields(t.Headers, p)
	if err != nil {
		return nil, err
	}

	outputTarget := columnNumbers(t, fm, FieldOutputTarget)
	outputActual := columnNumbers(t, fm, FieldOutputActual)
	outputPerf := normalizeScale(columnNumbers(t, fm, FieldOutputPerf))
	plannedPerf := normalizeScale(columnNumbers(t, fm, FieldPlannedPerf))
	approved := columnNumbers(t, fm, FieldApprovedBudget)
	released := columnNumbers(t, fm, FieldReleasedBudget)
	budgetPerf := normalizeScale(columnNumbers(t, fm, FieldBudgetPerf))
	score := normalizeScale(columnNumbers(t, fm, FieldTrackingScore))

	records := make([]Record, len(t.Rows))
	for i := range t.Rows {
		rec := Record{
			Sector:         strings.TrimSpace(t.Cell(i, fm.Col(FieldSector))),
			Agency:         strings.TrimSpace(t.Cell(i, fm.Col(FieldAgency))),
			Programme:      strings.TrimSpace(t.Cell(i, fm.Col(FieldProgramme))),
			Remarks:        strings.TrimSpace(t.Cell(i, fm.Col(FieldRemarks))),
			OutputTarget:   outputTarget[i],
			OutputActual:   outputActual[i],
			OutputPerf:     outputPerf[i],
			PlannedPerf:    plannedPerf[i],
			ApprovedBudget: approved[i],
			ReleasedBudget: released[i],
			BudgetPerf:     budgetPerf[i],
			TrackingScore:  score[i],
		}
		rec.Status = Classify(rec.TrackingScore)
		records[i] = rec
	}

	return &Dataset{Table: t, Period: p, Fields: fm, Records: records}, nil
}

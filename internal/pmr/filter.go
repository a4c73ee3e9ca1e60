package pmr

// All is the unconstrained sentinel for every filter dimension.
const All = "All"

// Selection is the cascading filter state: status, then sector, then
// agency, then programme. Each level narrows the candidate set offered to
// the next.
type Selection struct {
	Status    string `json:"status"`
	Sector    string `json:"sector"`
	Agency    string `json:"agency"`
	Programme string `json:"programme"`
}

// normalized fills empty dimensions with the All sentinel.
func (s Selection) normalized() Selection {
	if s.Status == "" {
		s.Status = All
	}
	if s.Sector == "" {
		s.Sector = All
	}
	if s.Agency == "" {
		s.Agency = All
	}
	if s.Programme == "" {
		s.Programme = All
	}
	return s
}

// Choices are the candidate values offered at each filter level, computed
// under the constraints of the levels above. Each list is in first-seen
// order and excludes the All sentinel (callers prepend it).
type Choices struct {
	Statuses   []string `json:"statuses"`
	Sectors    []string `json:"sectors"`
	Agencies   []string `json:"agencies"`
	Programmes []string `json:"programmes"`
}

func narrow(ds *Dataset, idx []int, keep func(Record) bool) []int {
	out := make([]int, 0, len(idx))
	for _, i := range idx {
		if keep(ds.Records[i]) {
			out = append(out, i)
		}
	}
	return out
}

func distinct(ds *Dataset, idx []int, key func(Record) string) []string {
	seen := map[string]bool{}
	var out []string
	for _, i := range idx {
		k := key(ds.Records[i])
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}

func contains(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

// Apply runs the cascading filter chain and returns the resulting view plus
// the effective selection. A selected value not present in its candidate
// set (because an upstream level changed) resets to All rather than
// producing an empty view; the returned selection reflects any resets so
// the caller can sync its controls.
func (d *Dataset) Apply(sel Selection) (View, Selection) {
	sel = sel.normalized()
	idx := d.All().Indices

	if sel.Status != All {
		statuses := distinct(d, idx, func(r Record) string { return string(r.Status) })
		if !contains(statuses, sel.Status) {
			sel.Status = All
		}
	}
	if sel.Status != All {
		idx = narrow(d, idx, func(r Record) bool { return string(r.Status) == sel.Status })
	}

	if sel.Sector != All {
		sectors := distinct(d, idx, func(r Record) string { return r.Sector })
		if !contains(sectors, sel.Sector) {
			sel.Sector = All
		}
	}
	if sel.Sector != All {
		idx = narrow(d, idx, func(r Record) bool { return r.Sector == sel.Sector })
	}

	if sel.Agency != All {
		agencies := distinct(d, idx, func(r Record) string { return r.Agency })
		if !contains(agencies, sel.Agency) {
			sel.Agency = All
		}
	}
	if sel.Agency != All {
		idx = narrow(d, idx, func(r Record) bool { return r.Agency == sel.Agency })
	}

	if sel.Programme != All {
		programmes := distinct(d, idx, func(r Record) string { return r.Programme })
		if !contains(programmes, sel.Programme) {
			sel.Programme = All
		}
	}
	if sel.Programme != All {
		idx = narrow(d, idx, func(r Record) bool { return r.Programme == sel.Programme })
	}

	return View{Dataset: d, Indices: idx}, sel
}

// ChoicesFor computes the candidate lists offered at each level under the
// (already reset-validated) selection. Agency candidates come from the
// status+sector-filtered set, programme candidates from the agency-filtered
// set, so the UI can only offer values that yield non-empty views.
func (d *Dataset) ChoicesFor(sel Selection) (Choices, Selection) {
	_, sel = d.Apply(sel) // apply resets first
	base := d.All().Indices

	var ch Choices
	ch.Statuses = distinct(d, base, func(r Record) string { return string(r.Status) })

	idx := base
	if sel.Status != All {
		idx = narrow(d, idx, func(r Record) bool { return string(r.Status) == sel.Status })
	}
	ch.Sectors = distinct(d, idx, func(r Record) string { return r.Sector })

	if sel.Sector != All {
		idx = narrow(d, idx, func(r Record) bool { return r.Sector == sel.Sector })
	}
	ch.Agencies = distinct(d, idx, func(r Record) string { return r.Agency })

	if sel.Agency != All {
		idx = narrow(d, idx, func(r Record) bool { return r.Agency == sel.Agency })
	}
	ch.Programmes = distinct(d, idx, func(r Record) string { return r.Programme })

	return ch, sel
}

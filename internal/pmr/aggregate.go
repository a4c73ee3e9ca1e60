package pmr

// SectorCount pairs a sector with its distinct-agency count, used by the
// executive summary's sector distribution list.
type SectorCount struct {
	Sector   string `json:"sector"`
	Agencies int    `json:"agencies"`
}

// StatusCounts holds the record tally per tracking status. Records with no
// score contribute to none of the three.
type StatusCounts struct {
	OnTrack  int `json:"onTrack"`
	AtRisk   int `json:"atRisk"`
	OffTrack int `json:"offTrack"`
}

// Summary is the scalar aggregate block behind the scorecards.
type Summary struct {
	Agencies   int `json:"agencies"`
	Programmes int `json:"programmes"`
	KPIs       int `json:"kpis"`

	MeanOutputPerf Maybe `json:"meanOutputPerf"`
	MeanBudgetPerf Maybe `json:"meanBudgetPerf"`

	ApprovedTotal float64 `json:"approvedTotal"`
	ReleasedTotal float64 `json:"releasedTotal"`

	Statuses       StatusCounts  `json:"statuses"`
	SectorAgencies []SectorCount `json:"sectorAgencies"`
}

// mean ignores missing values; if every value is missing the result is
// missing, rendered downstream as "N/A" rather than dividing by zero.
func mean(vals []Maybe) Maybe {
	sum, n := 0.0, 0
	for _, m := range vals {
		if m.Valid {
			sum += m.Value
			n++
		}
	}
	if n == 0 {
		return None
	}
	return Some(sum / float64(n))
}

func sumValid(vals []Maybe) float64 {
	var s float64
	for _, m := range vals {
		if m.Valid {
			s += m.Value
		}
	}
	return s
}

// Summarize computes the scalar metrics for a view.
func Summarize(v View) Summary {
	var (
		outPerf, budPerf, approved, released []Maybe
		s                                    Summary
	)
	agencies := map[string]bool{}
	programmes := map[string]bool{}
	sectorAgencies := map[string]map[string]bool{}
	var sectorOrder []string

	for _, i := range v.Indices {
		r := v.Dataset.Records[i]
		if r.Agency != "" {
			agencies[r.Agency] = true
		}
		if r.Programme != "" {
			programmes[r.Programme] = true
		}
		if r.OutputTarget.Valid {
			s.KPIs++
		}
		outPerf = append(outPerf, r.OutputPerf)
		budPerf = append(budPerf, r.BudgetPerf)
		approved = append(approved, r.ApprovedBudget)
		released = append(released, r.ReleasedBudget)

		switch r.Status {
		case StatusOnTrack:
			s.Statuses.OnTrack++
		case StatusAtRisk:
			s.Statuses.AtRisk++
		case StatusOffTrack:
			s.Statuses.OffTrack++
		}

		if r.Sector != "" && r.Agency != "" {
			if _, ok := sectorAgencies[r.Sector]; !ok {
				sectorAgencies[r.Sector] = map[string]bool{}
				sectorOrder = append(sectorOrder, r.Sector)
			}
			sectorAgencies[r.Sector][r.Agency] = true
		}
	}

	s.Agencies = len(agencies)
	s.Programmes = len(programmes)
	s.MeanOutputPerf = mean(outPerf)
	s.MeanBudgetPerf = mean(budPerf)
	s.ApprovedTotal = sumValid(approved)
	s.ReleasedTotal = sumValid(released)
	for _, sec := range sectorOrder {
		s.SectorAgencies = append(s.SectorAgencies, SectorCount{Sector: sec, Agencies: len(sectorAgencies[sec])})
	}
	return s
}

// GroupMetrics is one (sector, agency) row of the grouped aggregation.
// Ratios stay on [0,1]; renderers scale to percent.
type GroupMetrics struct {
	Sector     string `json:"sector"`
	Agency     string `json:"agency"`
	Programmes int    `json:"programmes"`
	KPIs       int    `json:"kpis"`

	AvgOutputPerf  Maybe `json:"avgOutputPerf"`
	AvgPlannedPerf Maybe `json:"avgPlannedPerf"`

	ApprovedTotal float64 `json:"approvedTotal"`
	ReleasedTotal float64 `json:"releasedTotal"`

	// AvgBudgetPerf is sum(released)/sum(approved). A zero approved total
	// yields 0, not NaN: zero-budget agencies display as 0% utilization.
	AvgBudgetPerf float64 `json:"avgBudgetPerf"`
}

// GroupByAgency aggregates the view per (sector, agency) pair, in first-seen
// order of the pair in the source table so output is reproducible across
// runs for identical input.
func GroupByAgency(v View) []GroupMetrics {
	type key struct{ sector, agency string }
	type acc struct {
		programmes map[string]bool
		kpis       int
		outPerf    []Maybe
		planned    []Maybe
		approved   float64
		released   float64
	}
	accs := map[key]*acc{}
	var order []key

	for _, i := range v.Indices {
		r := v.Dataset.Records[i]
		k := key{r.Sector, r.Agency}
		a, ok := accs[k]
		if !ok {
			a = &acc{programmes: map[string]bool{}}
			accs[k] = a
			order = append(order, k)
		}
		if r.Programme != "" {
			a.programmes[r.Programme] = true
		}
		if r.OutputTarget.Valid {
			a.kpis++
		}
		a.outPerf = append(a.outPerf, r.OutputPerf)
		a.planned = append(a.planned, r.PlannedPerf)
		a.approved += r.ApprovedBudget.Or(0)
		a.released += r.ReleasedBudget.Or(0)
	}

	out := make([]GroupMetrics, 0, len(order))
	for _, k := range order {
		a := accs[k]
		g := GroupMetrics{
			Sector:         k.sector,
			Agency:         k.agency,
			Programmes:     len(a.programmes),
			KPIs:           a.kpis,
			AvgOutputPerf:  mean(a.outPerf),
			AvgPlannedPerf: mean(a.planned),
			ApprovedTotal:  a.approved,
			ReleasedTotal:  a.released,
		}
		if a.approved != 0 {
			g.AvgBudgetPerf = a.released / a.approved
		}
		out = append(out, g)
	}
	return out
}

// Sectors returns the distinct sectors of the view in first-seen order.
func Sectors(v View) []string {
	return distinct(v.Dataset, v.Indices, func(r Record) string { return r.Sector })
}

// AgenciesIn returns the distinct agencies of one sector, first-seen order.
func AgenciesIn(v View, sector string) []string {
	idx := narrow(v.Dataset, v.Indices, func(r Record) bool { return r.Sector == sector })
	return distinct(v.Dataset, idx, func(r Record) string { return r.Agency })
}

// Restrict narrows a view to one (sector, agency) pair; empty agency keeps
// the whole sector.
func Restrict(v View, sector, agency string) View {
	idx := narrow(v.Dataset, v.Indices, func(r Record) bool {
		if r.Sector != sector {
			return false
		}
		return agency == "" || r.Agency == agency
	})
	return View{Dataset: v.Dataset, Indices: idx}
}

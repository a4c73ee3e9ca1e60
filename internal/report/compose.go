package report

import (
	"fmt"

	"pmr-generator/internal/config"
	"pmr-generator/internal/pmr"
)

// SectionKind discriminates the abstract section types a renderer can
// receive. Every section carries its own data; rendering never re-queries
// the dataset.
type SectionKind int

const (
	SectionTitle SectionKind = iota
	SectionText
	SectionTable
	SectionChart
)

// Section is one renderer-agnostic unit of the composed report. The same
// sequence drives both a page in the PDF and a widget block on screen.
type Section struct {
	Kind  SectionKind
	Title string

	Lines []string // SectionTitle / SectionText

	Columns []string   // SectionTable
	Rows    [][]string // SectionTable

	Chart *ChartSpec // SectionChart
}

// Options fixes everything the composer needs beyond the filtered view, so
// a report job can snapshot them at creation time.
type Options struct {
	Period      pmr.Period
	Selection   pmr.Selection
	SummaryOnly bool
	Landscape   bool
	Report      config.ReportConfig
}

// Filename follows the original export naming.
func (o Options) Filename() string {
	kind := "Report"
	if o.SummaryOnly {
		kind = "Summary"
	}
	return fmt.Sprintf("PMR_%s_%s_Y%d.pdf", kind, o.Period.Quarter, o.Period.Year)
}

func pct(m pmr.Maybe) string {
	if !m.Valid {
		return "N/A"
	}
	return fmt.Sprintf("%.1f%%", m.Value*100)
}

func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// Compose assembles the ordered section sequence from the filtered view:
// cover, TOC, narrative pages, the COFOG summary table and chart, one MDA
// chart per sector, then one annexure chart+table per (sector, agency)
// pair. Pairs with zero records are skipped, never rendered empty. The
// selection baked into opts is the one that produced v, so the document
// matches the screen.
func Compose(v pmr.View, opts Options) []Section {
	summary := pmr.Summarize(v)
	grouped := pmr.GroupByAgency(v)

	var sections []Section

	sections = append(sections, Section{
		Kind:  SectionTitle,
		Title: opts.Report.CoverTitle,
		Lines: []string{
			fmt.Sprintf("%s Y%d", opts.Period.Quarter, opts.Period.Year),
			opts.Report.Government,
			opts.Report.Department,
		},
	})

	sections = append(sections, tocSection(opts))
	sections = append(sections, overviewSection(opts))
	sections = append(sections, objectivesSection())
	sections = append(sections, executiveSummarySection(summary, opts))

	if tbl := cofogTableSection(v, grouped); tbl != nil {
		sections = append(sections, *tbl)
	}
	if ch := cofogChartSection(v, grouped); ch != nil {
		sections = append(sections, *ch)
	}
	if summary.Statuses.OnTrack+summary.Statuses.AtRisk+summary.Statuses.OffTrack > 0 {
		sections = append(sections, Section{
			Kind:  SectionChart,
			Title: "1.6 Tracking Status Distribution",
			Chart: donutSpec(summary.Statuses),
		})
	}

	if opts.SummaryOnly {
		return sections
	}

	for _, sector := range pmr.Sectors(v) {
		if ch := sectorChartSection(sector, grouped); ch != nil {
			sections = append(sections, *ch)
		}
	}

	for _, sector := range pmr.Sectors(v) {
		for _, agency := range pmr.AgenciesIn(v, sector) {
			sections = append(sections, annexureSections(v, grouped, sector, agency)...)
		}
	}

	return sections
}

func tocSection(opts Options) Section {
	entries := []string{
		"1.1 PMR Overview",
		"1.2 PMR Objectives",
		"1.3 Executive Summary",
		"1.4 Tabular Summary by COFOG",
		"1.5 Graphical Summary by COFOG",
		"1.6 Tracking Status Distribution",
	}
	if !opts.SummaryOnly {
		entries = append(entries, "2.0 MDA Chart by Sector", "3.0 Annexure (by MDA)")
	}
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = fmt.Sprintf("%s ............................................... %d", e, i+3)
	}
	return Section{Kind: SectionText, Title: "Table of Contents", Lines: lines}
}

func overviewSection(opts Options) Section {
	gov := opts.Report.Government
	if gov == "" {
		gov = "the government"
	}
	return Section{
		Kind:  SectionText,
		Title: "1.1 PMR Overview",
		Lines: []string{
			fmt.Sprintf("Performance Management in %s involves a strategic and cohesive approach to public sector performance, "+
				"ensuring the achievement of planned outcomes, accountability, and value for money in governance.", gov),
		},
	}
}

func objectivesSection() Section {
	return Section{
		Kind:  SectionText,
		Title: "1.2 PMR Objectives",
		Lines: []string{
			"- Tracking Progress",
			"- Answering Key Questions",
			"- Guiding Budget and Plans",
			"- Understanding Impact",
		},
	}
}

func executiveSummarySection(s pmr.Summary, opts Options) Section {
	lines := []string{
		fmt.Sprintf("This %s Y%d Performance Management Report (PMR) presents insights from %d Ministries, Departments, and Agencies (MDAs) "+
			"implementing a total of %d Programmes/Projects, tracked using %d Key Performance Indicators (KPIs).",
			opts.Period.Quarter, opts.Period.Year, s.Agencies, s.Programmes, s.KPIs),
		"All MDAs are classified under the internationally recognized Classification of the Functions of Government (COFOG) framework.",
		"",
		"Sector Distribution (COFOG Classification):",
	}
	for _, sc := range s.SectorAgencies {
		lines = append(lines, fmt.Sprintf("- %s - %d MDAs", sc.Sector, sc.Agencies))
	}
	lines = append(lines,
		"",
		fmt.Sprintf("Average Output Performance: %s. Average Budget Performance: %s.", pct(s.MeanOutputPerf), pct(s.MeanBudgetPerf)),
		"",
		"Recommendations:",
		"- Efficiency in Expenditure",
		"- Data-Driven Decision Making",
		"- Monitoring and Evaluation",
		"- Stakeholder Engagement",
		"- Capacity Building",
	)
	return Section{Kind: SectionText, Title: "1.3 Executive Summary", Lines: lines}
}

// cofogTableSection rolls the grouped metrics up to one row per sector.
func cofogTableSection(v pmr.View, grouped []pmr.GroupMetrics) *Section {
	sectors := pmr.Sectors(v)
	if len(sectors) == 0 {
		return nil
	}
	rows := make([][]string, 0, len(sectors))
	for _, sec := range sectors {
		var (
			mdas, programmes, kpis int
			approved, released     float64
			perfs                  []pmr.Maybe
		)
		for _, g := range grouped {
			if g.Sector != sec {
				continue
			}
			mdas++
			programmes += g.Programmes
			kpis += g.KPIs
			approved += g.ApprovedTotal
			released += g.ReleasedTotal
			perfs = append(perfs, g.AvgOutputPerf)
		}
		util := 0.0
		if approved != 0 {
			util = released / approved
		}
		rows = append(rows, []string{
			sec,
			fmt.Sprintf("%d", mdas),
			fmt.Sprintf("%d", programmes),
			fmt.Sprintf("%d", kpis),
			pct(meanOf(perfs)),
			money(approved),
			money(released),
			pct(pmr.Some(util)),
		})
	}
	return &Section{
		Kind:    SectionTable,
		Title:   "1.4 Tabular Summary by COFOG",
		Columns: []string{"COFOG", "MDAs", "Programmes", "KPIs", "Avg Output Perf", "Approved Budget", "Budget Released", "Budget Utilization"},
		Rows:    rows,
	}
}

func meanOf(vals []pmr.Maybe) pmr.Maybe {
	sum, n := 0.0, 0
	for _, m := range vals {
		if m.Valid {
			sum += m.Value
			n++
		}
	}
	if n == 0 {
		return pmr.None
	}
	return pmr.Some(sum / float64(n))
}

func annexureSections(v pmr.View, grouped []pmr.GroupMetrics, sector, agency string) []Section {
	sub := pmr.Restrict(v, sector, agency)
	if sub.Len() == 0 {
		return nil
	}
	var g *pmr.GroupMetrics
	for i := range grouped {
		if grouped[i].Sector == sector && grouped[i].Agency == agency {
			g = &grouped[i]
			break
		}
	}
	if g == nil {
		return nil
	}

	sections := []Section{{
		Kind:  SectionChart,
		Title: fmt.Sprintf("3.0 Annexure - %s", agency),
		Chart: annexureSpec(agency, *g),
	}}

	rows := make([][]string, 0, sub.Len())
	for i := 0; i < sub.Len(); i++ {
		r := sub.Record(i)
		rows = append(rows, []string{
			r.Programme,
			numOrBlank(r.OutputActual),
			pct(r.OutputPerf),
			r.Remarks,
		})
	}
	sections = append(sections, Section{
		Kind:    SectionTable,
		Title:   fmt.Sprintf("%s Annexure Data", agency),
		Columns: []string{"Programme / Project", "Actual Output", "Output Performance", "Remarks"},
		Rows:    rows,
	})
	return sections
}

func numOrBlank(m pmr.Maybe) string {
	if !m.Valid {
		return ""
	}
	return fmt.Sprintf("%g", m.Value)
}

package report

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"pmr-generator/internal/pmr"
)

// ChartKind discriminates the chart shapes the report uses.
type ChartKind int

const (
	// ChartPairedBars compares average output vs budget performance per
	// label (sector or agency), two bars per label.
	ChartPairedBars ChartKind = iota
	// ChartAgencyBars is the annexure chart: one colored bar per metric
	// for a single agency.
	ChartAgencyBars
	// ChartDonut is the tracking-status distribution.
	ChartDonut
)

// Bar is one rendered bar: a label, a percent value and its color band.
type Bar struct {
	Label string
	Pct   float64 // already capped to [0,100]
	Note  string
	Color pmr.Color
}

// PairedBar carries the two compared percentages for one label.
type PairedBar struct {
	Label     string
	OutputPct float64
	BudgetPct float64
}

// ChartSpec is the data behind one chart section, renderer-agnostic.
type ChartSpec struct {
	Kind   ChartKind
	Title  string
	Pairs  []PairedBar
	Bars   []Bar
	Counts pmr.StatusCounts
}

// chartCap caps a ratio at 100% for chart axes. Released budgets can exceed
// approved budgets, so ratios above 1 are legitimate data; tables and JSON
// keep the raw value, charts cap uniformly so every bar fits the fixed
// 0-100 axis. One policy everywhere.
func chartCap(ratio float64) float64 {
	p := ratio * 100
	if p > 100 {
		return 100
	}
	if p < 0 {
		return 0
	}
	return p
}

func cofogChartSection(v pmr.View, grouped []pmr.GroupMetrics) *Section {
	sectors := pmr.Sectors(v)
	if len(sectors) == 0 {
		return nil
	}
	spec := &ChartSpec{Kind: ChartPairedBars, Title: "1.5 Graphical Summary by COFOG"}
	for _, sec := range sectors {
		var (
			approved, released float64
			perfs              []pmr.Maybe
		)
		for _, g := range grouped {
			if g.Sector != sec {
				continue
			}
			approved += g.ApprovedTotal
			released += g.ReleasedTotal
			perfs = append(perfs, g.AvgOutputPerf)
		}
		util := 0.0
		if approved != 0 {
			util = released / approved
		}
		spec.Pairs = append(spec.Pairs, PairedBar{
			Label:     sec,
			OutputPct: chartCap(meanOf(perfs).Or(0)),
			BudgetPct: chartCap(util),
		})
	}
	return &Section{Kind: SectionChart, Title: spec.Title, Chart: spec}
}

func sectorChartSection(sector string, grouped []pmr.GroupMetrics) *Section {
	spec := &ChartSpec{Kind: ChartPairedBars, Title: fmt.Sprintf("2.0 MDA Chart by Sector - %s", sector)}
	for _, g := range grouped {
		if g.Sector != sector {
			continue
		}
		spec.Pairs = append(spec.Pairs, PairedBar{
			Label:     g.Agency,
			OutputPct: chartCap(g.AvgOutputPerf.Or(0)),
			BudgetPct: chartCap(g.AvgBudgetPerf),
		})
	}
	if len(spec.Pairs) == 0 {
		return nil
	}
	return &Section{Kind: SectionChart, Title: spec.Title, Chart: spec}
}

func annexureSpec(agency string, g pmr.GroupMetrics) *ChartSpec {
	outPct := chartCap(g.AvgOutputPerf.Or(0))
	budPct := chartCap(g.AvgBudgetPerf)
	return &ChartSpec{
		Kind:  ChartAgencyBars,
		Title: fmt.Sprintf("%s Performance", agency),
		Bars: []Bar{
			{
				Label: "Output Performance",
				Pct:   outPct,
				Note:  fmt.Sprintf("%.1f%% (Planned: %.1f%%)", outPct, chartCap(g.AvgPlannedPerf.Or(0))),
				Color: pmr.ColorFor(g.AvgOutputPerf.Or(0)),
			},
			{
				Label: "Budget Performance",
				Pct:   budPct,
				Note:  fmt.Sprintf("%.1f%%", budPct),
				Color: pmr.ColorFor(g.AvgBudgetPerf),
			},
		},
	}
}

func donutSpec(counts pmr.StatusCounts) *ChartSpec {
	return &ChartSpec{Kind: ChartDonut, Title: "Tracking Status Distribution", Counts: counts}
}

var (
	colorGreen = drawing.Color{R: 0x2e, G: 0x8b, B: 0x57, A: 255}
	colorAmber = drawing.Color{R: 0xf5, G: 0xa6, B: 0x23, A: 255}
	colorRed   = drawing.Color{R: 0xd9, G: 0x3a, B: 0x2b, A: 255}
	colorBlue  = drawing.Color{R: 0x2f, G: 0x6f, B: 0xb5, A: 255}
	colorGray  = drawing.Color{R: 0x9a, G: 0x9a, B: 0x9a, A: 255}
)

func bandColor(c pmr.Color) drawing.Color {
	switch c {
	case pmr.ColorGreen:
		return colorGreen
	case pmr.ColorAmber:
		return colorAmber
	default:
		return colorRed
	}
}

// RenderPNG draws the chart spec to PNG bytes.
func RenderPNG(spec *ChartSpec, width, height int) ([]byte, error) {
	switch spec.Kind {
	case ChartPairedBars:
		return renderPairedBars(spec, width, height)
	case ChartAgencyBars:
		return renderAgencyBars(spec, width, height)
	case ChartDonut:
		return renderDonut(spec, width, height)
	}
	return nil, fmt.Errorf("unknown chart kind %d", spec.Kind)
}

func barStyle(c drawing.Color) chart.Style {
	return chart.Style{FillColor: c, StrokeColor: c, StrokeWidth: 0}
}

func percentAxis() chart.YAxis {
	return chart.YAxis{
		Range: &chart.ContinuousRange{Min: 0, Max: 100},
		Ticks: []chart.Tick{
			{Value: 0, Label: "0"}, {Value: 25, Label: "25"}, {Value: 50, Label: "50"},
			{Value: 75, Label: "75"}, {Value: 100, Label: "100"},
		},
	}
}

// renderPairedBars draws two bars per label: output (blue) then budget
// (gray), mirroring the original grouped barmode.
func renderPairedBars(spec *ChartSpec, width, height int) ([]byte, error) {
	values := make([]chart.Value, 0, len(spec.Pairs)*2)
	for _, p := range spec.Pairs {
		label := p.Label
		if len(label) > 24 {
			label = label[:21] + "..."
		}
		values = append(values,
			chart.Value{Label: label, Value: p.OutputPct, Style: barStyle(colorBlue)},
			chart.Value{Label: "", Value: p.BudgetPct, Style: barStyle(colorGray)},
		)
	}
	bc := chart.BarChart{
		Title:      spec.Title,
		Width:      width,
		Height:     height,
		BarWidth:   40,
		BarSpacing: 12,
		YAxis:      percentAxis(),
		Bars:       values,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 24}},
	}
	var buf bytes.Buffer
	if err := bc.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render paired bars: %w", err)
	}
	return buf.Bytes(), nil
}

func renderAgencyBars(spec *ChartSpec, width, height int) ([]byte, error) {
	values := make([]chart.Value, 0, len(spec.Bars))
	for _, b := range spec.Bars {
		values = append(values, chart.Value{Label: b.Label, Value: b.Pct, Style: barStyle(bandColor(b.Color))})
	}
	bc := chart.BarChart{
		Title:      spec.Title,
		Width:      width,
		Height:     height,
		BarWidth:   80,
		BarSpacing: 40,
		YAxis:      percentAxis(),
		Bars:       values,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 24}},
	}
	var buf bytes.Buffer
	if err := bc.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render agency bars: %w", err)
	}
	return buf.Bytes(), nil
}

func renderDonut(spec *ChartSpec, width, height int) ([]byte, error) {
	var values []chart.Value
	if spec.Counts.OnTrack > 0 {
		values = append(values, chart.Value{Label: "On Track", Value: float64(spec.Counts.OnTrack), Style: barStyle(colorGreen)})
	}
	if spec.Counts.AtRisk > 0 {
		values = append(values, chart.Value{Label: "At Risk", Value: float64(spec.Counts.AtRisk), Style: barStyle(colorAmber)})
	}
	if spec.Counts.OffTrack > 0 {
		values = append(values, chart.Value{Label: "Off Track", Value: float64(spec.Counts.OffTrack), Style: barStyle(colorRed)})
	}
	dc := chart.DonutChart{
		Title:  spec.Title,
		Width:  width,
		Height: height,
		Values: values,
	}
	var buf bytes.Buffer
	if err := dc.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render donut: %w", err)
	}
	return buf.Bytes(), nil
}

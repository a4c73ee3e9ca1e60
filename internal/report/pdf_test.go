package report

import (
	"bytes"
	"testing"

	"pmr-generator/internal/pmr"
)

func TestRenderPNG_AllKinds(t *testing.T) {
	specs := []*ChartSpec{
		{
			Kind:  ChartPairedBars,
			Title: "by sector",
			Pairs: []PairedBar{{Label: "General", OutputPct: 60, BudgetPct: 45}, {Label: "Health", OutputPct: 80, BudgetPct: 95}},
		},
		{
			Kind:  ChartAgencyBars,
			Title: "Ministry X Performance",
			Bars: []Bar{
				{Label: "Output Performance", Pct: 90, Color: pmr.ColorGreen},
				{Label: "Budget Performance", Pct: 40, Color: pmr.ColorRed},
			},
		},
		{
			Kind:   ChartDonut,
			Title:  "status",
			Counts: pmr.StatusCounts{OnTrack: 3, AtRisk: 2, OffTrack: 1},
		},
	}
	for _, spec := range specs {
		png, err := RenderPNG(spec, 600, 300)
		if err != nil {
			t.Fatalf("render kind %d: %v", spec.Kind, err)
		}
		if !bytes.HasPrefix(png, []byte("\x89PNG")) {
			t.Errorf("kind %d did not produce PNG bytes", spec.Kind)
		}
	}
}

func TestRenderPDF_ProducesDocument(t *testing.T) {
	v := testView(t)
	opts := testOptions(false)
	sections := Compose(v, opts)

	var progressed int
	data, err := RenderPDF(sections, opts, 600, 300, func(i, total int, title string) {
		progressed++
		if total != len(sections) {
			t.Errorf("progress total = %d, want %d", total, len(sections))
		}
	})
	if err != nil {
		t.Fatalf("render pdf: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Errorf("output is not a PDF")
	}
	if progressed != len(sections) {
		t.Errorf("expected %d progress callbacks, got %d", len(sections), progressed)
	}
}

func TestRenderPDF_Landscape(t *testing.T) {
	v := testView(t)
	opts := testOptions(true)
	opts.Landscape = true
	data, err := RenderPDF(Compose(v, opts), opts, 600, 300, nil)
	if err != nil {
		t.Fatalf("render landscape pdf: %v", err)
	}
	if len(data) == 0 {
		t.Errorf("empty landscape PDF")
	}
}

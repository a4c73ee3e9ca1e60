package api

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"pmr-generator/internal/pmr"
	"pmr-generator/internal/report"
	"pmr-generator/internal/session"
	"pmr-generator/internal/source"
)

// DatasetResponse is the metadata returned after a successful load and by
// GET /datasets/:id.
type DatasetResponse struct {
	ID         string         `json:"id"`
	Rows       int            `json:"rows"`
	Resolution pmr.Resolution `json:"resolution"`
	Period     pmr.Period     `json:"period"`
}

func datasetResponse(s *session.Session, p pmr.Period) DatasetResponse {
	return DatasetResponse{
		ID:         s.ID,
		Rows:       len(s.Table.Rows),
		Resolution: s.Resolution,
		Period:     p,
	}
}

// loadSession resolves periods and validates the default period's
// normalization before the session is handed out, so schema problems
// surface at load time, not on the first dashboard call.
func loadSession(store *session.Store, t pmr.Table) (*session.Session, pmr.Period, error) {
	res, err := pmr.ResolvePeriods(t.Headers)
	if err != nil {
		return nil, pmr.Period{}, err
	}
	s := store.Create(t, res)
	p := res.Default()
	if _, err := s.DatasetFor(p); err != nil {
		return nil, pmr.Period{}, err
	}
	return s, p, nil
}

// POST /datasets (multipart field "file", .csv or .xlsx)
func UploadDatasetHandler(store *session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		fh, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing file upload"})
			return
		}
		f, err := fh.Open()
		if err != nil {
			apiError(c, pmr.SourceUnavailablef("cannot open upload %q: %v", fh.Filename, err))
			return
		}
		defer f.Close()

		var t pmr.Table
		switch strings.ToLower(filepath.Ext(fh.Filename)) {
		case ".csv":
			t, err = source.ParseCSV(f)
		case ".xlsx":
			t, err = source.ParseXLSX(f)
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unsupported file type %q (want .csv or .xlsx)", filepath.Ext(fh.Filename))})
			return
		}
		if err != nil {
			apiError(c, err)
			return
		}

		s, p, err := loadSession(store, t)
		if err != nil {
			apiError(c, err)
			return
		}
		c.JSON(http.StatusCreated, datasetResponse(s, p))
	}
}

type linkRequest struct {
	URL string `json:"url" binding:"required"`
}

// POST /datasets/link
func LinkDatasetHandler(store *session.Store, fetcher *source.SheetFetcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req linkRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), fetcher.Client.Timeout)
		defer cancel()
		t, err := fetcher.Fetch(ctx, req.URL)
		if err != nil {
			apiError(c, err)
			return
		}
		s, p, err := loadSession(store, t)
		if err != nil {
			apiError(c, err)
			return
		}
		c.JSON(http.StatusCreated, datasetResponse(s, p))
	}
}

// requestDataset resolves session, period (quarter/year query params,
// defaulting to the first resolved pair) and the cascading filter state
// from one request.
func requestDataset(c *gin.Context, store *session.Store) (*session.Session, *pmr.Dataset, pmr.Selection, error) {
	s, err := store.Get(c.Param("id"))
	if err != nil {
		return nil, nil, pmr.Selection{}, err
	}
	p := s.Resolution.Default()
	if qs := c.Query("quarter"); qs != "" {
		q, err := pmr.ParseQuarter(qs)
		if err != nil {
			return nil, nil, pmr.Selection{}, pmr.SchemaMismatchf("%v", err)
		}
		p.Quarter = q
	}
	if ys := c.Query("year"); ys != "" {
		y, err := strconv.Atoi(ys)
		if err != nil {
			return nil, nil, pmr.Selection{}, pmr.SchemaMismatchf("invalid year %q", ys)
		}
		p.Year = y
	}
	ds, err := s.DatasetFor(p)
	if err != nil {
		return nil, nil, pmr.Selection{}, err
	}
	sel := pmr.Selection{
		Status:    c.Query("status"),
		Sector:    c.Query("sector"),
		Agency:    c.Query("agency"),
		Programme: c.Query("programme"),
	}
	return s, ds, sel, nil
}

// GET /datasets/:id
func GetDatasetHandler(store *session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ds, _, err := requestDataset(c, store)
		if err != nil {
			apiError(c, err)
			return
		}
		c.JSON(http.StatusOK, datasetResponse(s, ds.Period))
	}
}

// GET /datasets/:id/filters
func FilterChoicesHandler(store *session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, ds, sel, err := requestDataset(c, store)
		if err != nil {
			apiError(c, err)
			return
		}
		choices, effective := ds.ChoicesFor(sel)
		c.JSON(http.StatusOK, gin.H{
			"choices":   choices,
			"selection": effective,
		})
	}
}

// GridRow is one row of the on-screen table: the normalized record plus the
// color bands the grid paints cells with. Bands come from the same ColorFor
// the PDF uses, so screen and document can never disagree.
type GridRow struct {
	pmr.Record
	OutputColor string `json:"outputColor,omitempty"`
	BudgetColor string `json:"budgetColor,omitempty"`
}

// GET /datasets/:id/summary
func SummaryHandler(store *session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, ds, sel, err := requestDataset(c, store)
		if err != nil {
			apiError(c, err)
			return
		}
		view, effective := ds.Apply(sel)
		summary := pmr.Summarize(view)

		rows := make([]GridRow, 0, view.Len())
		for i := 0; i < view.Len(); i++ {
			r := view.Record(i)
			row := GridRow{Record: r}
			if r.OutputPerf.Valid {
				row.OutputColor = string(pmr.ColorFor(r.OutputPerf.Value))
			}
			if r.BudgetPerf.Valid {
				row.BudgetColor = string(pmr.ColorFor(r.BudgetPerf.Value))
			}
			rows = append(rows, row)
		}

		c.JSON(http.StatusOK, gin.H{
			"period":    ds.Period,
			"selection": effective,
			"summary":   summary,
			"rows":      rows,
		})
	}
}

// GET /datasets/:id/grouped
func GroupedHandler(store *session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, ds, sel, err := requestDataset(c, store)
		if err != nil {
			apiError(c, err)
			return
		}
		view, effective := ds.Apply(sel)
		c.JSON(http.StatusOK, gin.H{
			"period":    ds.Period,
			"selection": effective,
			"groups":    pmr.GroupByAgency(view),
		})
	}
}

// GET /datasets/:id/export?format=csv|xlsx
func DataExportHandler(store *session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, ds, sel, err := requestDataset(c, store)
		if err != nil {
			apiError(c, err)
			return
		}
		view, _ := ds.Apply(sel)

		format := c.DefaultQuery("format", "csv")
		base := fmt.Sprintf("PMR_Data_%s_Y%d", ds.Period.Quarter, ds.Period.Year)
		switch format {
		case "csv":
			data, err := report.WriteCSV(view)
			if err != nil {
				apiError(c, err)
				return
			}
			c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.csv", base))
			c.Data(http.StatusOK, "text/csv", data)
		case "xlsx":
			data, err := report.WriteXLSX(view)
			if err != nil {
				apiError(c, err)
				return
			}
			c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.xlsx", base))
			c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unsupported format %q (want csv or xlsx)", format)})
		}
	}
}

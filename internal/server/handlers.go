package server

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"co2-chart/internal/chart"
	"co2-chart/internal/emissions"
	"co2-chart/internal/logger"
	"co2-chart/internal/query"
	"co2-chart/internal/types"
)

const (
	stateLoading = "loading"
	stateError   = "error"
	stateNoData  = "nodata"
	stateChart   = "chart"
)

var errLoading = errors.New("data is loading")

type pageData struct {
	Title   string
	State   string
	Options []YearOption
	Year    int
	Width   int
	Height  int
	Chart   template.HTML
}

// snapshot returns the cached records without waiting for a fetch. Stale
// data is served while a refetch runs; an error is only returned when there
// is nothing to show.
func (s *Server) snapshot() ([]types.DailyRecord, query.State, error) {
	records, st, err := s.queries.Peek(s.key)
	if err != nil {
		return nil, st, err
	}
	if st.HasData {
		return records, st, nil
	}
	if st.Status == query.StatusError {
		return nil, st, errors.New(st.Error)
	}
	return nil, st, errLoading
}

// apiRecords writes the error response itself when no data is available.
func (s *Server) apiRecords(c *gin.Context) ([]types.DailyRecord, bool) {
	records, _, err := s.snapshot()
	switch {
	case err == nil:
		return records, true
	case errors.Is(err, errLoading):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case errors.Is(err, query.ErrUnknownQuery):
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	}
	return nil, false
}

// yearParam reads ?year= strictly: empty means all years, anything else must
// be an integer.
func yearParam(c *gin.Context) (int, bool) {
	v := c.Query("year")
	if v == "" {
		return 0, true
	}
	y, err := strconv.Atoi(v)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid year '%s'", v)})
		return 0, false
	}
	return y, true
}

// index serves the page: year select plus the chart, or one of the
// loading / error / no data messages.
func (s *Server) index(c *gin.Context) {
	year := ParseYear(c.Query("year"))
	data := pageData{
		Title:  "World CO2 emissions",
		Year:   year,
		Width:  s.chart.Width,
		Height: s.chart.Height,
	}

	records, _, err := s.snapshot()
	switch {
	case errors.Is(err, errLoading):
		data.State = stateLoading
	case err != nil:
		data.State = stateError
		logger.Warn(c.Request.Context(), "Serving error page", "error", err)
	default:
		groups := emissions.GroupByYear(records)
		data.Options = YearOptions(emissions.Years(groups), year)
		visible := emissions.FilterYear(groups, year)
		if len(visible) == 0 {
			data.State = stateNoData
			break
		}
		var buf bytes.Buffer
		if _, err := chart.Render(&buf, s.chart, records, visible, year); err != nil {
			logger.ErrorWithErr(c.Request.Context(), "Failed to render chart", err)
			data.State = stateError
			break
		}
		data.State = stateChart
		data.Chart = template.HTML(buf.String())
	}

	var out bytes.Buffer
	if err := s.page.Execute(&out, data); err != nil {
		_ = c.Error(err)
		c.String(http.StatusInternalServerError, "template error")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", out.Bytes())
}

// chartSVG GET /api/chart.svg?year=
func (s *Server) chartSVG(c *gin.Context) {
	year, ok := yearParam(c)
	if !ok {
		return
	}
	records, ok := s.apiRecords(c)
	if !ok {
		return
	}
	visible := emissions.FilterYear(emissions.GroupByYear(records), year)
	if year != 0 && len(visible) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("no data for year %d", year)})
		return
	}

	var buf bytes.Buffer
	if _, err := chart.Render(&buf, s.chart, records, visible, year); err != nil {
		logger.ErrorWithErr(c.Request.Context(), "Failed to render chart", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/svg+xml", buf.Bytes())
}

// tooltip GET /api/tooltip?year=&x=
// x is a pixel column of the chart rendered for that year.
func (s *Server) tooltip(c *gin.Context) {
	year, ok := yearParam(c)
	if !ok {
		return
	}
	if year == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "year is required"})
		return
	}
	x, err := strconv.ParseFloat(c.Query("x"), 64)
	if err != nil || math.IsNaN(x) || math.IsInf(x, 0) {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid x '%s'", c.Query("x"))})
		return
	}

	records, ok := s.apiRecords(c)
	if !ok {
		return
	}
	visible := emissions.FilterYear(emissions.GroupByYear(records), year)
	if len(visible) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("no data for year %d", year)})
		return
	}

	layout := chart.NewLayout(s.chart, records, visible, year)
	group := types.YearGroup{Year: year, Data: emissions.Flatten(visible)}
	tip, found := chart.TooltipAt(layout, group, x)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("no data for year %d", year)})
		return
	}
	c.JSON(http.StatusOK, tip)
}

// years GET /api/years
func (s *Server) years(c *gin.Context) {
	records, ok := s.apiRecords(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"years": emissions.Years(emissions.GroupByYear(records))})
}

// records GET /api/records?year=
func (s *Server) records(c *gin.Context) {
	year, ok := yearParam(c)
	if !ok {
		return
	}
	records, ok := s.apiRecords(c)
	if !ok {
		return
	}
	out := emissions.Flatten(emissions.FilterYear(emissions.GroupByYear(records), year))
	c.JSON(http.StatusOK, gin.H{"year": year, "count": len(out), "records": out})
}

// status GET /api/status
func (s *Server) status(c *gin.Context) {
	c.JSON(http.StatusOK, s.queries.State(s.key))
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

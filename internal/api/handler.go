package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mr1hm/go-climate-risk/internal/analytics"
	"github.com/mr1hm/go-climate-risk/internal/ingestion"
	"github.com/mr1hm/go-climate-risk/internal/models"
	"github.com/mr1hm/go-climate-risk/internal/notify"
)

const (
	defaultEventLimit = 100
	maxEventLimit     = 1000
	defaultTopN       = 5

	streamKeepAlive = 30 * time.Second

	// allCountries is the dashboard's label for no country filter.
	allCountries = "All Europe"
)

// DatasetSource serves the current prepared dataset.
type DatasetSource interface {
	Current() (*ingestion.Snapshot, error)
	Reload(ctx context.Context) (*ingestion.Snapshot, error)
}

type Handler struct {
	source      DatasetSource
	broadcaster *notify.Broadcaster
}

func NewHandler(source DatasetSource, broadcaster *notify.Broadcaster) *Handler {
	return &Handler{
		source:      source,
		broadcaster: broadcaster,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.health)

	api := r.Group("/api")
	api.GET("/dataset", h.getDataset)
	api.POST("/reload", h.reload)
	api.GET("/stream", h.stream)

	api.GET("/events", h.getEvents)
	api.GET("/portfolio", h.getPortfolio)
	api.GET("/perils", h.getPerils)
	api.GET("/map", h.getMap)
	api.GET("/countries/:country/deep-dive", h.getDeepDive)

	a := api.Group("/analytics")
	a.GET("/countries", h.getCountries)
	a.GET("/seasonality", h.getSeasonality)
	a.GET("/trend", h.getTrend)
	a.GET("/perils", h.getPerilMatrix)
	a.GET("/perils/yearly", h.getPerilMatrixByYear)
	a.GET("/growth", h.getGrowth)
	a.GET("/summary", h.getSummary)
	a.GET("/correlations", h.getCorrelations)
	a.GET("/top", h.getTop)
	a.GET("/distribution", h.getDistribution)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// snapshot writes an error response and returns false when no dataset is loaded.
func (h *Handler) snapshot(c *gin.Context) (*ingestion.Snapshot, bool) {
	snap, err := h.source.Current()
	if err != nil {
		if errors.Is(err, ingestion.ErrNoDataset) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "dataset not loaded"})
		} else {
			slog.Error("error reading dataset", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read dataset"})
		}
		return nil, false
	}
	return snap, true
}

// selected returns the merged rows matching the query's selection.
func (h *Handler) selected(c *gin.Context) (*ingestion.Snapshot, []models.MergedEvent, bool) {
	sel, err := parseSelection(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, nil, false
	}
	snap, ok := h.snapshot(c)
	if !ok {
		return nil, nil, false
	}
	return snap, analytics.Apply(snap.Dataset.Merged, sel), true
}

func (h *Handler) getDataset(c *gin.Context) {
	snap, ok := h.snapshot(c)
	if !ok {
		return
	}
	ds := snap.Dataset
	minYear, maxYear := analytics.YearBounds(ds.Merged)

	c.JSON(http.StatusOK, gin.H{
		"load_id":          snap.LoadID,
		"input_hash":       snap.InputHash,
		"loaded_at":        snap.LoadedAt,
		"cached":           snap.Cached,
		"events":           len(ds.Events),
		"merged":           len(ds.Merged),
		"portfolio":        len(ds.Portfolio),
		"premium_by_peril": len(ds.PremiumByPeril),
		"min_year":         minYear,
		"max_year":         maxYear,
	})
}

func (h *Handler) reload(c *gin.Context) {
	snap, err := h.source.Reload(c.Request.Context())
	if err != nil {
		slog.Error("manual reload failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reload failed"})
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (h *Handler) stream(c *gin.Context) {
	if h.broadcaster == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "streaming disabled"})
		return
	}

	id, ch := h.broadcaster.Subscribe()
	defer h.broadcaster.Unsubscribe(id)

	slog.Debug("stream subscriber connected", "id", id)
	ctx := c.Request.Context()
	ticker := time.NewTicker(streamKeepAlive)
	defer ticker.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case t := <-ticker.C:
			c.SSEvent("ping", t.UTC().Format(time.RFC3339))
			return true
		case n, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent("reload", n)
			return true
		}
	})
	slog.Debug("stream subscriber disconnected", "id", id)
}

func (h *Handler) getEvents(c *gin.Context) {
	limit, err := queryInt(c, "limit", defaultEventLimit)
	if err != nil || limit < 1 || limit > maxEventLimit {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("limit must be between 1 and %d", maxEventLimit)})
		return
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil || offset < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "offset must be a non-negative integer"})
		return
	}

	_, rows, ok := h.selected(c)
	if !ok {
		return
	}
	if c.Query("sort") == "severity" {
		rows = analytics.SortBySeverity(rows)
	}

	total := len(rows)
	start := min(offset, total)
	end := min(start+limit, total)

	c.JSON(http.StatusOK, gin.H{
		"total":  total,
		"limit":  limit,
		"offset": offset,
		"events": rows[start:end],
	})
}

func (h *Handler) getPortfolio(c *gin.Context) {
	snap, ok := h.snapshot(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, snap.Dataset.Portfolio)
}

func (h *Handler) getPerils(c *gin.Context) {
	snap, ok := h.snapshot(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, snap.Dataset.PremiumByPeril)
}

func (h *Handler) getMap(c *gin.Context) {
	snap, rows, ok := h.selected(c)
	if !ok {
		return
	}
	fc := toGeoJSON(analytics.ByCountry(rows, snap.Dataset.Portfolio))
	c.Header("Content-Type", "application/geo+json")
	c.JSON(http.StatusOK, fc)
}

func (h *Handler) getCountries(c *gin.Context) {
	snap, rows, ok := h.selected(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, analytics.ByCountry(rows, snap.Dataset.Portfolio))
}

func (h *Handler) getSeasonality(c *gin.Context) {
	_, rows, ok := h.selected(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, analytics.SeasonalityOf(rows))
}

func (h *Handler) getTrend(c *gin.Context) {
	_, rows, ok := h.selected(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, analytics.YearlyTrend(rows))
}

func (h *Handler) getPerilMatrix(c *gin.Context) {
	snap, rows, ok := h.selected(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, analytics.PerilMatrixOf(rows, snap.Dataset.PremiumByPeril))
}

func (h *Handler) getPerilMatrixByYear(c *gin.Context) {
	snap, rows, ok := h.selected(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, analytics.PerilMatrixByYear(rows, snap.Dataset.PremiumByPeril))
}

func (h *Handler) getGrowth(c *gin.Context) {
	snap, rows, ok := h.selected(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, analytics.GrowthOf(rows, snap.Dataset.Portfolio))
}

func (h *Handler) getSummary(c *gin.Context) {
	snap, rows, ok := h.selected(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, analytics.Summarize(rows, snap.Dataset.Portfolio))
}

func (h *Handler) getCorrelations(c *gin.Context) {
	_, rows, ok := h.selected(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, analytics.CorrelationsOf(rows))
}

func (h *Handler) getTop(c *gin.Context) {
	n, err := queryInt(c, "n", defaultTopN)
	if err != nil || n < 1 || n > maxEventLimit {
		c.JSON(http.StatusBadRequest, gin.H{"error": "n must be a positive integer"})
		return
	}
	_, rows, ok := h.selected(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, analytics.Top(rows, n))
}

func (h *Handler) getDistribution(c *gin.Context) {
	_, rows, ok := h.selected(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, analytics.Distribution(rows))
}

func (h *Handler) getDeepDive(c *gin.Context) {
	snap, ok := h.snapshot(c)
	if !ok {
		return
	}
	country := c.Param("country")
	if _, found := snap.Dataset.PortfolioFor(country); !found {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("unknown country: %s", country)})
		return
	}
	c.JSON(http.StatusOK, analytics.DeepDive(snap.Dataset.Merged, snap.Dataset.Portfolio, country, c.Query("peril")))
}

// parseSelection reads country, from, to, coverage, peril and month. Absent
// parameters leave the dimension unconstrained.
func parseSelection(c *gin.Context) (models.Selection, error) {
	sel := models.Selection{
		Coverage: models.ParseCoverage(strings.ToLower(c.Query("coverage"))),
		Peril:    strings.TrimSpace(c.Query("peril")),
	}

	if country := strings.TrimSpace(c.Query("country")); country != "" && country != allCountries {
		sel = sel.WithCountry(country)
	}

	from, err := optionalInt(c, "from")
	if err != nil {
		return sel, err
	}
	to, err := optionalInt(c, "to")
	if err != nil {
		return sel, err
	}
	if from != nil && to != nil && *from > *to {
		return sel, fmt.Errorf("from (%d) is after to (%d)", *from, *to)
	}
	sel.FromYear, sel.ToYear = from, to

	month, err := optionalInt(c, "month")
	if err != nil {
		return sel, err
	}
	if month != nil {
		if *month < 1 || *month > 12 {
			return sel, fmt.Errorf("month must be between 1 and 12")
		}
		sel = sel.WithMonth(*month)
	}

	return sel, nil
}

func optionalInt(c *gin.Context, key string) (*int, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return &v, nil
}

func queryInt(c *gin.Context, key string, fallback int) (int, error) {
	v, err := optionalInt(c, key)
	if err != nil {
		return 0, err
	}
	if v == nil {
		return fallback, nil
	}
	return *v, nil
}

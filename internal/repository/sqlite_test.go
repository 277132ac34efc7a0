package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mr1hm/go-climate-risk/internal/models"
)

func setupTestDB(t *testing.T) *SQLiteDB {
	db, err := NewSQLiteDB(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	return db
}

func intp(v int) *int           { return &v }
func floatp(v float64) *float64 { return &v }

func sampleDataset() *models.Dataset {
	start := time.Date(2021, 7, 12, 0, 0, 0, 0, time.UTC)
	end := time.Date(2021, 7, 20, 0, 0, 0, 0, time.UTC)
	event := models.DisasterEvent{
		EventID:                   0,
		Country:                   "Germany",
		DisasterType:              "Flood",
		EventType:                 "Flood",
		StartYear:                 intp(2021),
		StartMonth:                intp(7),
		StartDay:                  intp(12),
		StartDate:                 &start,
		EndDate:                   &end,
		Year:                      intp(2021),
		Month:                     intp(7),
		MonthName:                 "July",
		DurationDays:              intp(8),
		TotalDeaths:               floatp(196),
		TotalDamageAdjusted000USD: floatp(45000000),
		Severity:                  7.25,
		EconomicImpactMillionUSD:  45000,
		ResponseTimeHours:         192,
	}
	portfolio := models.PortfolioEntry{
		Country:                     "Germany",
		PolicyCount:                 1200000,
		TotalInsuredValueEURBillion: 450.5,
		AnnualPremiumEURMillion:     820,
		MarketSharePercent:          4.2,
	}
	return &models.Dataset{
		Events:         []models.DisasterEvent{event},
		Portfolio:      []models.PortfolioEntry{portfolio},
		PremiumByPeril: []models.PremiumByPeril{{EventType: "Flood", AnnualPremiumEURMillion: 300}},
		Merged: []models.MergedEvent{{
			DisasterEvent:               event,
			PolicyCount:                 portfolio.PolicyCount,
			TotalInsuredValueEURBillion: portfolio.TotalInsuredValueEURBillion,
			AnnualPremiumEURMillion:     portfolio.AnnualPremiumEURMillion,
			MarketSharePercent:          portfolio.MarketSharePercent,
		}},
	}
}

func TestSQLiteDB_SaveAndLoadSnapshot(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	ds := sampleDataset()

	require.NoError(t, db.SaveSnapshot(ctx, "hash-1", ds))

	got, err := db.LoadSnapshot(ctx, "hash-1")
	require.NoError(t, err)
	assert.Equal(t, ds, got)
	assert.Equal(t, time.UTC, got.Merged[0].StartDate.Location())
}

func TestSQLiteDB_LoadMissingSnapshot(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	_, err := db.LoadSnapshot(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrSnapshotNotFound)

	_, err = db.LatestSnapshot(context.Background())
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}

func TestSQLiteDB_SaveIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	ds := sampleDataset()

	require.NoError(t, db.SaveSnapshot(ctx, "same", ds))
	require.NoError(t, db.SaveSnapshot(ctx, "same", ds))

	list, err := db.ListSnapshots(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 1, list[0].EventCount)
}

func TestSQLiteDB_LatestAndPrune(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	ds := sampleDataset()

	for _, h := range []string{"a", "b", "c"} {
		require.NoError(t, db.SaveSnapshot(ctx, h, ds))
		time.Sleep(2 * time.Millisecond)
	}

	latest, err := db.LatestSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, "c", latest.Hash)

	removed, err := db.PruneSnapshots(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	list, err := db.ListSnapshots(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "c", list[0].Hash)
}

package repository

import (
	"context"
	"errors"
	"time"

	"github.com/mr1hm/go-climate-risk/internal/models"
)

var ErrSnapshotNotFound = errors.New("snapshot not found")

// SnapshotInfo describes a stored dataset without decoding it.
type SnapshotInfo struct {
	Hash       string
	EventCount int
	CreatedAt  time.Time
}

// SnapshotRepository persists prepared datasets keyed by input hash, so a
// restart with unchanged inputs can skip preparation.
type SnapshotRepository interface {
	SaveSnapshot(ctx context.Context, hash string, ds *models.Dataset) error
	LoadSnapshot(ctx context.Context, hash string) (*models.Dataset, error)
	LatestSnapshot(ctx context.Context) (SnapshotInfo, error)
	ListSnapshots(ctx context.Context) ([]SnapshotInfo, error)
	PruneSnapshots(ctx context.Context, keep int) (int64, error)
}

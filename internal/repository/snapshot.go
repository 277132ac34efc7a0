package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/mr1hm/go-climate-risk/internal/models"
)

func (s *SQLiteDB) SaveSnapshot(ctx context.Context, hash string, ds *models.Dataset) error {
	payload, err := msgpack.Marshal(ds)
	if err != nil {
		return fmt.Errorf("error encoding snapshot: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO snapshots (hash, payload, event_count, merged_count, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(hash) DO UPDATE SET created_at = excluded.created_at
	`, hash, payload, len(ds.Events), len(ds.Merged), time.Now().UnixNano())
	if err != nil {
		return fmt.Errorf("error saving snapshot: %w", err)
	}
	return nil
}

func (s *SQLiteDB) LoadSnapshot(ctx context.Context, hash string) (*models.Dataset, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM snapshots WHERE hash = ?`, hash).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error loading snapshot: %w", err)
	}

	var ds models.Dataset
	if err := msgpack.Unmarshal(payload, &ds); err != nil {
		return nil, fmt.Errorf("error decoding snapshot: %w", err)
	}
	normalizeTimes(&ds)
	return &ds, nil
}

func (s *SQLiteDB) LatestSnapshot(ctx context.Context) (SnapshotInfo, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT hash, event_count, created_at FROM snapshots
		ORDER BY created_at DESC LIMIT 1
	`)
	info, err := scanInfo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return SnapshotInfo{}, ErrSnapshotNotFound
	}
	if err != nil {
		return SnapshotInfo{}, fmt.Errorf("error reading latest snapshot: %w", err)
	}
	return info, nil
}

func (s *SQLiteDB) ListSnapshots(ctx context.Context) ([]SnapshotInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT hash, event_count, created_at FROM snapshots
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("error listing snapshots: %w", err)
	}
	defer rows.Close()

	var out []SnapshotInfo
	for rows.Next() {
		info, err := scanInfo(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning snapshot: %w", err)
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// PruneSnapshots keeps the newest keep snapshots and deletes the rest.
func (s *SQLiteDB) PruneSnapshots(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM snapshots WHERE hash NOT IN (
			SELECT hash FROM snapshots ORDER BY created_at DESC LIMIT ?
		)
	`, keep)
	if err != nil {
		return 0, fmt.Errorf("error pruning snapshots: %w", err)
	}
	return res.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanInfo(sc scanner) (SnapshotInfo, error) {
	var (
		info      SnapshotInfo
		createdAt int64
	)
	if err := sc.Scan(&info.Hash, &info.EventCount, &createdAt); err != nil {
		return SnapshotInfo{}, err
	}
	info.CreatedAt = time.Unix(0, createdAt).UTC()
	return info, nil
}

// normalizeTimes restores the UTC location that msgpack drops on decode.
func normalizeTimes(ds *models.Dataset) {
	fix := func(t *time.Time) *time.Time {
		if t == nil {
			return nil
		}
		u := t.UTC()
		return &u
	}
	for i := range ds.Events {
		ds.Events[i].StartDate = fix(ds.Events[i].StartDate)
		ds.Events[i].EndDate = fix(ds.Events[i].EndDate)
	}
	for i := range ds.Merged {
		ds.Merged[i].StartDate = fix(ds.Merged[i].StartDate)
		ds.Merged[i].EndDate = fix(ds.Merged[i].EndDate)
	}
}

package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/mr1hm/go-climate-risk/internal/config"
	"github.com/mr1hm/go-climate-risk/internal/models"
	"github.com/mr1hm/go-climate-risk/internal/notify"
	"github.com/mr1hm/go-climate-risk/internal/pipeline"
	"github.com/mr1hm/go-climate-risk/internal/repository"
	"github.com/mr1hm/go-climate-risk/internal/table"
	"github.com/mr1hm/go-climate-risk/internal/worker"
)

var ErrNoDataset = errors.New("no dataset loaded")

// Snapshot is the dataset currently served, with the identity of the load
// that produced it.
type Snapshot struct {
	LoadID    string          `json:"load_id"`
	InputHash string          `json:"input_hash"`
	LoadedAt  time.Time       `json:"loaded_at"`
	Cached    bool            `json:"cached"`
	Dataset   *models.Dataset `json:"-"`
}

type source int

const (
	sourceEvents source = iota
	sourcePortfolio
	sourcePremium
)

func (s source) String() string {
	switch s {
	case sourceEvents:
		return "events"
	case sourcePortfolio:
		return "portfolio"
	default:
		return "premium"
	}
}

type loadJob struct {
	source source
	path   string
	out    *table.Table
}

type Manager struct {
	cfg         *config.Config
	cache       *pipeline.Cache
	repo        repository.SnapshotRepository
	broadcaster *notify.Broadcaster
	scheduler   *cron.Cron

	reloadMu sync.Mutex

	mu      sync.RWMutex
	current *Snapshot
}

// NewManager wires the loader. repo and broadcaster may be nil, which disables
// the snapshot store and reload notices respectively.
func NewManager(cfg *config.Config, cache *pipeline.Cache, repo repository.SnapshotRepository, broadcaster *notify.Broadcaster) *Manager {
	if cache == nil {
		cache = pipeline.NewCache()
	}
	return &Manager{
		cfg:         cfg,
		cache:       cache,
		repo:        repo,
		broadcaster: broadcaster,
	}
}

// Start performs the initial load and, when enabled, schedules periodic reloads.
// A failed initial load is returned; scheduled failures are only logged.
func (m *Manager) Start(ctx context.Context) error {
	if _, err := m.Reload(ctx); err != nil {
		return err
	}

	if !m.cfg.Reload.Enabled {
		return nil
	}

	m.scheduler = cron.New()
	_, err := m.scheduler.AddFunc(m.cfg.Reload.Schedule, func() {
		if _, err := m.Reload(ctx); err != nil {
			slog.Error("scheduled reload failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("error scheduling reload: %w", err)
	}
	m.scheduler.Start()
	slog.Info("reload scheduled", "schedule", m.cfg.Reload.Schedule)

	return nil
}

// Stop halts the scheduler and waits for a running reload to finish.
func (m *Manager) Stop() {
	if m.scheduler != nil {
		<-m.scheduler.Stop().Done()
	}
	slog.Info("ingestion manager stopped")
}

// Current returns the snapshot being served.
func (m *Manager) Current() (*Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return nil, ErrNoDataset
	}
	return m.current, nil
}

// Reload re-reads the three inputs and swaps in the resulting dataset. On
// failure the previous snapshot keeps being served.
func (m *Manager) Reload(ctx context.Context) (*Snapshot, error) {
	m.reloadMu.Lock()
	defer m.reloadMu.Unlock()

	started := time.Now()

	events, portfolio, premium, err := m.readInputs(ctx)
	if err != nil {
		return nil, err
	}

	hash := pipeline.Hash(events, portfolio, premium)
	ds, cached := m.resolve(ctx, hash, events, portfolio, premium)

	snap := &Snapshot{
		LoadID:    uuid.NewString(),
		InputHash: hash,
		LoadedAt:  time.Now().UTC(),
		Cached:    cached,
		Dataset:   ds,
	}

	m.mu.Lock()
	changed := m.current == nil || m.current.InputHash != hash
	m.current = snap
	m.mu.Unlock()

	slog.Info("dataset loaded",
		"load_id", snap.LoadID,
		"hash", hash[:12],
		"events", len(ds.Events),
		"merged", len(ds.Merged),
		"cached", cached,
		"duration", time.Since(started),
	)

	if changed && m.broadcaster != nil {
		m.broadcaster.Broadcast(models.ReloadNotice{
			LoadID:     snap.LoadID,
			InputHash:  hash,
			EventCount: len(ds.Events),
			Cached:     cached,
			LoadedAt:   snap.LoadedAt,
		})
	}

	return snap, nil
}

// resolve finds the dataset for hash in memory, then on disk, and prepares it
// only when neither has it. The bool reports whether preparation was skipped.
func (m *Manager) resolve(ctx context.Context, hash string, events, portfolio, premium table.Table) (*models.Dataset, bool) {
	if ds, ok := m.cache.Get(hash); ok {
		return ds, true
	}

	if m.repo != nil {
		ds, err := m.repo.LoadSnapshot(ctx, hash)
		switch {
		case err == nil:
			m.cache.Put(hash, ds)
			slog.Debug("restored snapshot", "hash", hash[:12])
			return ds, true
		case !errors.Is(err, repository.ErrSnapshotNotFound):
			slog.Warn("error loading snapshot", "hash", hash[:12], "error", err)
		}
	}

	ds, _, hit := m.cache.Prepare(events, portfolio, premium)
	if hit {
		return ds, true
	}

	if m.repo != nil {
		if err := m.repo.SaveSnapshot(ctx, hash, ds); err != nil {
			slog.Warn("error saving snapshot", "hash", hash[:12], "error", err)
		} else if n, err := m.repo.PruneSnapshots(ctx, m.cfg.DB.KeepSnapshots); err != nil {
			slog.Warn("error pruning snapshots", "error", err)
		} else if n > 0 {
			slog.Debug("pruned snapshots", "count", n)
		}
	}

	return ds, false
}

// readInputs reads the three source files concurrently.
func (m *Manager) readInputs(ctx context.Context) (events, portfolio, premium table.Table, err error) {
	jobs := []loadJob{
		{source: sourceEvents, path: m.cfg.Data.EventsPath, out: &events},
		{source: sourcePortfolio, path: m.cfg.Data.PortfolioPath, out: &portfolio},
		{source: sourcePremium, path: m.cfg.Data.PremiumPath, out: &premium},
	}

	processor := func(ctx context.Context, job loadJob) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		t, err := ReadFile(job.path, m.cfg.Data.Encoding)
		if err != nil {
			return fmt.Errorf("error loading %s: %w", job.source, err)
		}
		*job.out = t
		slog.Debug("read input", "source", job.source.String(), "path", job.path, "rows", t.Len())
		return nil
	}

	pool := worker.NewWorkerPool(m.cfg.Loader.Workers, len(jobs), processor)
	pool.Start(ctx)
	for _, j := range jobs {
		pool.Submit(j)
	}
	if err := pool.Stop(); err != nil {
		return table.Table{}, table.Table{}, table.Table{}, err
	}
	if err := ctx.Err(); err != nil {
		return table.Table{}, table.Table{}, table.Table{}, err
	}

	return events, portfolio, premium, nil
}

package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/lyonms2/avatar-arena/internal/constants"
	"github.com/lyonms2/avatar-arena/internal/dedupe"
	"github.com/lyonms2/avatar-arena/internal/logging"
	"github.com/lyonms2/avatar-arena/internal/storage"
)

// SweepResult reports one retention sweep.
type SweepResult struct {
	TotalFinished int `json:"totalFinished"`
	Eligible      int `json:"eligible"`
	Deleted       int `json:"deleted"`
}

// Sweeper deletes finished rooms once they are older than the retention.
type Sweeper struct {
	repo      storage.Repository
	retention time.Duration
	now       func() time.Time
}

func NewSweeper(repo storage.Repository, retention time.Duration, now func() time.Time) *Sweeper {
	if retention <= 0 {
		retention = constants.RoomRetention
	}
	if now == nil {
		now = time.Now
	}
	return &Sweeper{repo: repo, retention: retention, now: now}
}

// Sweep runs one pass. Concurrent callers share a single pass, which runs
// detached from the cancellation of whichever caller started it.
func (s *Sweeper) Sweep(ctx context.Context) (SweepResult, error) {
	passCtx := context.WithoutCancel(ctx)
	v, err, shared := dedupe.SweepGroup.Do(constants.CleanupLockKey, func() (interface{}, error) {
		return s.sweep(passCtx)
	})
	if err != nil {
		return SweepResult{}, err
	}
	if shared {
		logging.Debug("joined running room sweep", nil)
	}
	return v.(SweepResult), nil
}

func (s *Sweeper) sweep(ctx context.Context) (res SweepResult, err error) {
	ctx, span := startSpan(ctx, "Sweeper.Sweep")
	defer func() {
		span.SetAttributes(
			attribute.Int("rooms.finished", res.TotalFinished),
			attribute.Int("rooms.eligible", res.Eligible),
			attribute.Int("rooms.deleted", res.Deleted),
		)
		endSpan(span, err)
	}()

	rooms, err := s.repo.ListFinishedRooms(ctx)
	if err != nil {
		return SweepResult{}, err
	}
	cutoff := s.now().UTC().Add(-s.retention)
	res.TotalFinished = len(rooms)
	var ids []string
	for _, r := range rooms {
		// rooms without a finish time are kept
		if r.FinishedAt.IsZero() || !r.FinishedAt.Before(cutoff) {
			continue
		}
		ids = append(ids, r.ID)
	}
	res.Eligible = len(ids)
	if len(ids) == 0 {
		return res, nil
	}
	deleted, err := s.repo.DeleteRooms(ctx, ids)
	if err != nil {
		return res, err
	}
	res.Deleted = deleted
	logging.Info("finished rooms swept", logging.Fields{
		constants.LogFieldCount: deleted,
		"eligible":              res.Eligible,
		"total_finished":        res.TotalFinished,
	})
	return res, nil
}

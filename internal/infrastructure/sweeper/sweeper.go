package sweeper

import (
	"context"
	"time"

	"github.com/mileusna/crontab"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"advisorhub/advisor-api/internal/domain/idempotency"
	"advisorhub/advisor-api/internal/domain/ratelimit"
	"advisorhub/advisor-api/internal/infrastructure/metrics"
)

const jobTimeout = time.Minute

// Sweeper periodically removes expired idempotency records and stale rate
// windows. Expiry is otherwise only enforced lazily on lookup, so without the
// sweep the tables grow with keys that are never queried again.
type Sweeper struct {
	ctab        *crontab.Crontab
	idempotency idempotency.Store
	ratelimit   ratelimit.Store
	retention   time.Duration
	log         zerolog.Logger
}

// New wires the sweeper. retention controls how long elapsed rate windows are
// kept before deletion.
func New(idempotencyStore idempotency.Store, ratelimitStore ratelimit.Store, retention time.Duration, log zerolog.Logger) *Sweeper {
	return &Sweeper{
		ctab:        crontab.New(),
		idempotency: idempotencyStore,
		ratelimit:   ratelimitStore,
		retention:   retention,
		log:         log.With().Str("component", "sweeper").Logger(),
	}
}

// Start schedules the sweep on the given crontab expression. The first sweep
// runs immediately.
func (s *Sweeper) Start(cronExpr string) error {
	s.sweep()
	return s.ctab.AddJob(cronExpr, s.sweep)
}

// Stop clears all scheduled jobs.
func (s *Sweeper) Stop() {
	s.ctab.Clear()
}

func (s *Sweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	now := time.Now().UTC()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		deleted, err := s.idempotency.DeleteExpired(ctx, now)
		if err != nil {
			return err
		}
		if deleted > 0 {
			metrics.SweepDeletedTotal.WithLabelValues("idempotency_records").Add(float64(deleted))
			s.log.Debug().Int64("deleted", deleted).Msg("expired idempotency records removed")
		}
		return nil
	})

	g.Go(func() error {
		deleted, err := s.ratelimit.DeleteStale(ctx, now.Add(-s.retention))
		if err != nil {
			return err
		}
		if deleted > 0 {
			metrics.SweepDeletedTotal.WithLabelValues("rate_limits").Add(float64(deleted))
			s.log.Debug().Int64("deleted", deleted).Msg("stale rate windows removed")
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		s.log.Error().Err(err).Msg("sweep failed")
	}
}

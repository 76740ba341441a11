// Package scheduler runs saved discovery searches on a cron schedule.
package scheduler

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/lead-scout/internal/model"
)

// defaultParallelism is the number of saved searches run at once in a cycle.
const defaultParallelism = 2

// Runner executes one discovery search to completion.
type Runner interface {
	Execute(ctx context.Context, search model.SearchConfig) (*model.DiscoveryJob, error)
}

// CycleResult summarizes one pass over the saved searches.
type CycleResult struct {
	Jobs      int
	Failed    int
	Qualified int
}

// Scheduler triggers every saved search on each tick of a cron spec. A tick
// that arrives while the previous cycle is still running is skipped.
type Scheduler struct {
	cron        *cron.Cron
	runner      Runner
	spec        string
	searches    []model.SearchConfig
	parallelism int

	mu   sync.Mutex
	last CycleResult
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithParallelism sets how many searches run concurrently within a cycle.
func WithParallelism(n int) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.parallelism = n
		}
	}
}

// New creates a Scheduler. The spec accepts standard five-field cron
// expressions and descriptors such as "@every 6h".
func New(runner Runner, spec string, searches []model.SearchConfig, opts ...Option) (*Scheduler, error) {
	if runner == nil {
		return nil, eris.New("scheduler: runner is required")
	}
	if len(searches) == 0 {
		return nil, eris.New("scheduler: no saved searches configured")
	}
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, eris.Wrapf(err, "scheduler: invalid spec %q", spec)
	}

	logger := cronLogger{zap.L().Sugar().Named("cron")}
	s := &Scheduler{
		cron: cron.New(
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		runner:      runner,
		spec:        spec,
		searches:    searches,
		parallelism: defaultParallelism,
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Start registers the cycle and starts the cron loop. When runNow is set a
// cycle also starts immediately in the background.
func (s *Scheduler) Start(ctx context.Context, runNow bool) error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.RunOnce(ctx) }); err != nil {
		return eris.Wrap(err, "scheduler: add func")
	}
	s.cron.Start()
	zap.L().Info("scheduler started",
		zap.String("spec", s.spec),
		zap.Int("searches", len(s.searches)),
	)

	if runNow {
		go s.RunOnce(ctx)
	}
	return nil
}

// Stop stops scheduling new cycles and waits for a running cycle to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	zap.L().Info("scheduler stopped")
}

// RunOnce runs every saved search once. Individual failures are logged and
// counted; they do not stop the remaining searches.
func (s *Scheduler) RunOnce(ctx context.Context) CycleResult {
	log := zap.L().With(zap.Int("searches", len(s.searches)))
	log.Info("scheduled cycle started")

	var (
		mu  sync.Mutex
		res CycleResult
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallelism)

	for _, search := range s.searches {
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			job, err := s.runner.Execute(gctx, search)

			mu.Lock()
			defer mu.Unlock()
			res.Jobs++
			if err != nil {
				res.Failed++
				log.Warn("scheduled search failed",
					zap.String("location", search.Location),
					zap.String("business_type", search.BusinessType),
					zap.Error(err),
				)
				return nil
			}
			res.Qualified += job.QualifiedLeads
			return nil
		})
	}
	_ = g.Wait()

	s.mu.Lock()
	s.last = res
	s.mu.Unlock()

	log.Info("scheduled cycle complete",
		zap.Int("jobs", res.Jobs),
		zap.Int("failed", res.Failed),
		zap.Int("qualified", res.Qualified),
	)
	return res
}

// Last returns the result of the most recent completed cycle.
func (s *Scheduler) Last() CycleResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}

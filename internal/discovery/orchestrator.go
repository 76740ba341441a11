package discovery

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/lead-scout/internal/model"
	"github.com/sells-group/lead-scout/internal/outreach"
	"github.com/sells-group/lead-scout/internal/scorer"
	"github.com/sells-group/lead-scout/internal/store"
)

// finalizeTimeout bounds the terminal job write after the run context ends.
const finalizeTimeout = 5 * time.Second

// Deps are the collaborators of an Orchestrator. Store, Source and
// Classifier are required; the enrichment collaborators fall back to their
// offline implementations when nil.
type Deps struct {
	Store      store.Store
	Source     Source
	Classifier WebsiteClassifier
	Owners     OwnerResolver
	Activity   ActivityResolver
	Hooks      HookGenerator
	Demos      DemoGenerator
	Composer   *outreach.Composer
}

// Orchestrator runs discovery jobs, one goroutine per job.
type Orchestrator struct {
	store      store.Store
	source     Source
	classifier WebsiteClassifier
	owners     OwnerResolver
	activity   ActivityResolver
	hooks      HookGenerator
	fallback   *TemplateHookGenerator
	demos      DemoGenerator
	composer   *outreach.Composer
	opts       Options

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// New creates an Orchestrator.
func New(deps Deps, opts Options) (*Orchestrator, error) {
	if deps.Store == nil {
		return nil, eris.New("discovery: store is required")
	}
	if deps.Source == nil {
		return nil, eris.New("discovery: source is required")
	}
	if deps.Classifier == nil {
		return nil, eris.New("discovery: classifier is required")
	}
	if deps.Owners == nil {
		deps.Owners = StaticOwnerResolver{}
	}
	if deps.Activity == nil {
		deps.Activity = StaticActivityResolver{}
	}
	if deps.Hooks == nil {
		deps.Hooks = NewTemplateHookGenerator()
	}
	if deps.Demos == nil {
		deps.Demos = NewPlaceholderDemoGenerator("")
	}
	if deps.Composer == nil {
		deps.Composer = outreach.NewComposer("")
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Orchestrator{
		store:      deps.Store,
		source:     deps.Source,
		classifier: deps.Classifier,
		owners:     deps.Owners,
		activity:   deps.Activity,
		hooks:      deps.Hooks,
		fallback:   NewTemplateHookGenerator(),
		demos:      deps.Demos,
		composer:   deps.Composer,
		opts:       opts.withDefaults(),
		ctx:        ctx,
		cancel:     cancel,
	}, nil
}

// Submit validates search, creates a pending job and starts it in the
// background. The job outlives ctx; it stops only on Shutdown. After
// Shutdown it returns ErrShutdown and creates nothing.
func (o *Orchestrator) Submit(ctx context.Context, search model.SearchConfig) (*model.DiscoveryJob, error) {
	if err := o.acquire(); err != nil {
		return nil, err
	}

	job, err := o.create(ctx, search)
	if err != nil {
		o.wg.Done()
		return nil, err
	}

	go func() {
		defer o.wg.Done()
		// The outcome is recorded on the job.
		_ = o.Run(o.ctx, job.ID, search)
	}()
	return job, nil
}

// Execute validates search, creates a job and runs it to completion on the
// calling goroutine. The run stops when ctx ends or on Shutdown. The
// returned job is the final stored state; the error is the run failure, if
// any.
func (o *Orchestrator) Execute(ctx context.Context, search model.SearchConfig) (*model.DiscoveryJob, error) {
	if err := o.acquire(); err != nil {
		return nil, err
	}
	defer o.wg.Done()

	job, err := o.create(ctx, search)
	if err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(o.ctx, cancel)
	defer stop()

	runErr := o.Run(runCtx, job.ID, search)

	final, err := o.store.GetJob(context.WithoutCancel(ctx), job.ID)
	if err != nil {
		return job, eris.Wrap(err, "discovery: reload job")
	}
	return final, runErr
}

// Wait blocks until every job started by Submit or Execute has finished.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// Shutdown cancels running jobs and waits for them to record their final
// state.
func (o *Orchestrator) Shutdown() {
	o.mu.Lock()
	o.closed = true
	o.mu.Unlock()

	o.cancel()
	o.wg.Wait()
}

// acquire registers a job with the WaitGroup unless Shutdown has begun.
func (o *Orchestrator) acquire() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return ErrShutdown
	}
	o.wg.Add(1)
	return nil
}

// Active returns pending and running jobs.
func (o *Orchestrator) Active(ctx context.Context) ([]model.DiscoveryJob, error) {
	return o.store.ListActiveJobs(ctx)
}

func (o *Orchestrator) create(ctx context.Context, search model.SearchConfig) (*model.DiscoveryJob, error) {
	search.Location = strings.TrimSpace(search.Location)
	search.BusinessType = strings.TrimSpace(search.BusinessType)
	if missing := search.Missing(); len(missing) > 0 {
		return nil, eris.Wrapf(ErrInvalidSearch, "missing %s", strings.Join(missing, ", "))
	}

	job, err := o.store.CreateJob(ctx, search)
	if err != nil {
		return nil, eris.Wrap(err, "discovery: create job")
	}
	return job, nil
}

// Run executes the job identified by jobID. It owns the job lifecycle: the
// job ends completed, or failed with its counters preserved.
func (o *Orchestrator) Run(ctx context.Context, jobID string, search model.SearchConfig) error {
	log := zap.L().With(zap.String("job_id", jobID))
	start := time.Now()
	jobsStarted.Inc()
	defer func() { jobDuration.Observe(time.Since(start).Seconds()) }()

	tr := newProgressTracker(o.store, jobID)

	running := model.JobStatusRunning
	if _, err := o.store.UpdateJob(ctx, jobID, model.JobPatch{Status: &running}); err != nil {
		return o.fail(ctx, tr, log, eris.Wrap(err, "discovery: mark running"))
	}
	if err := tr.advance(ctx, model.Progress{GooglePlaces: 25}); err != nil {
		return o.fail(ctx, tr, log, eris.Wrap(err, "discovery: update progress"))
	}

	log.Info("discovery started",
		zap.String("location", search.Location),
		zap.String("business_type", search.BusinessType),
	)

	acquireCtx, cancel := context.WithTimeout(ctx, o.opts.AcquireTimeout)
	candidates, err := o.source.Search(acquireCtx, search.Location, search.BusinessType)
	cancel()
	if err != nil {
		return o.fail(ctx, tr, log, eris.Wrap(err, "discovery: acquire candidates"))
	}

	n := len(candidates)
	tr.counters.TotalFound = n
	if err := tr.advance(ctx, model.Progress{GooglePlaces: 100}); err != nil {
		return o.fail(ctx, tr, log, eris.Wrap(err, "discovery: update progress"))
	}
	log.Info("candidates acquired", zap.Int("count", n))

	for i, c := range candidates {
		if err := ctx.Err(); err != nil {
			return o.fail(ctx, tr, log, eris.Wrap(err, "discovery: canceled"))
		}
		if err := o.processCandidate(ctx, tr, jobID, search.Filters, c, percent(i, n)); err != nil {
			return o.fail(ctx, tr, log, err)
		}
	}

	completed := model.JobStatusCompleted
	now := time.Now().UTC()
	tr.progress = tr.progress.Max(model.Progress{GooglePlaces: 100, SocialMedia: 100, OwnerVerification: 100})
	if err := tr.flush(ctx, model.JobPatch{Status: &completed, CompletedAt: &now}); err != nil {
		return o.fail(ctx, tr, log, eris.Wrap(err, "discovery: complete job"))
	}

	jobsFinished.WithLabelValues(string(completed)).Inc()
	log.Info("discovery completed",
		zap.Int("total_found", tr.counters.TotalFound),
		zap.Int("qualified", tr.counters.QualifiedLeads),
		zap.Int("high_score", tr.counters.HighScoreLeads),
		zap.Int("verified_owners", tr.counters.VerifiedOwners),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// fail records the job as failed. The write survives cancellation of ctx.
func (o *Orchestrator) fail(ctx context.Context, tr *progressTracker, log *zap.Logger, cause error) error {
	log.Error("discovery failed", zap.Error(cause))
	jobsFinished.WithLabelValues(string(model.JobStatusFailed)).Inc()

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finalizeTimeout)
	defer cancel()

	failed := model.JobStatusFailed
	now := time.Now().UTC()
	msg := cause.Error()
	if err := tr.flush(writeCtx, model.JobPatch{Status: &failed, Error: &msg, CompletedAt: &now}); err != nil {
		log.Error("record job failure", zap.Error(err))
	}
	return cause
}

// processCandidate classifies, filters, enriches, scores and (when it
// qualifies) persists one candidate. Only store failures are returned.
func (o *Orchestrator) processCandidate(ctx context.Context, tr *progressTracker, jobID string, filters model.Filters, c model.RawCandidate, pct int) error {
	log := zap.L().With(zap.String("job_id", jobID), zap.String("business", c.Name))

	if err := tr.advance(ctx, model.Progress{GooglePlaces: 100, SocialMedia: pct}); err != nil {
		return eris.Wrap(err, "discovery: update progress")
	}

	status, fetchErr := o.classifier.Assess(ctx, c.WebsiteURL)
	if !Include(status, filters) {
		candidatesProcessed.WithLabelValues(string(status), outcomeFiltered).Inc()
		log.Debug("candidate filtered", zap.String("website_status", string(status)))
		return nil
	}

	lead := leadFromCandidate(c, status)
	lead.JobID = jobID
	lead.IndependentBusiness = isIndependent(c.Name, o.opts.ChainNames)
	if fetchErr != nil {
		lead.Flags = append(lead.Flags, FlagWebsiteUnreachable)
	}

	owner, err := o.resolveOwner(ctx, c.Name)
	if err != nil {
		log.Warn("owner lookup failed", zap.Error(err))
		lead.Flags = append(lead.Flags, FlagOwnerLookupFailed)
	}
	lead.OwnerName = owner.Name
	lead.OwnerVerified = owner.Verified
	lead.OwnerSources = owner.Sources
	lead.OwnerContact = owner.Contact
	if lead.OwnerSources == nil {
		lead.OwnerSources = []string{}
	}

	if lead.RecentPosts == "" {
		posts, err := o.recentActivity(ctx, c)
		if err != nil {
			log.Warn("social activity lookup failed", zap.Error(err))
			lead.Flags = append(lead.Flags, FlagSocialLookupFailed)
		}
		lead.RecentPosts = posts
	}

	if err := tr.advance(ctx, model.Progress{GooglePlaces: 100, SocialMedia: pct, OwnerVerification: pct}); err != nil {
		return eris.Wrap(err, "discovery: update progress")
	}

	lead.PersonalHook = o.personalHook(ctx, log, c, lead)

	if assets, err := o.demoAssets(ctx, c); err != nil {
		log.Warn("demo generation failed", zap.Error(err))
		lead.Flags = append(lead.Flags, FlagDemoFailed)
	} else {
		lead.DemoDesktopScreenshotURL = assets.DesktopScreenshotURL
		lead.DemoMobileScreenshotURL = assets.MobileScreenshotURL
		lead.DemoVideoURL = assets.VideoURL
	}

	if lead.PhonePrimary == "" && lead.ContactEmail() == "" {
		lead.Flags = append(lead.Flags, FlagNoContactChannel)
	}

	scorer.Apply(lead)

	if ok, reason := IncludeEnriched(lead, filters); !ok {
		if o.opts.EnforceExtendedFilters {
			candidatesProcessed.WithLabelValues(string(status), outcomeExcluded).Inc()
			log.Debug("candidate excluded", zap.String("reason", reason))
			return nil
		}
		lead.Flags = append(lead.Flags, "filter_unmet:"+reason)
	}

	if lead.LeadScore < o.opts.QualifyThreshold {
		candidatesProcessed.WithLabelValues(string(status), outcomeBelowScore).Inc()
		log.Debug("candidate below threshold", zap.Int("score", lead.LeadScore))
		return nil
	}

	msgs := o.composer.Compose(lead)
	lead.OutreachEmail = msgs.Email
	lead.OutreachDM = msgs.DM
	lead.OutreachSMS = msgs.SMS

	if _, err := o.store.CreateLead(ctx, lead); err != nil {
		return eris.Wrap(err, "discovery: create lead")
	}

	tr.counters.QualifiedLeads++
	if lead.LeadScore >= o.opts.HighScoreThreshold {
		tr.counters.HighScoreLeads++
	}
	if lead.OwnerVerified {
		tr.counters.VerifiedOwners++
	}
	if err := tr.flush(ctx, model.JobPatch{}); err != nil {
		return eris.Wrap(err, "discovery: update counters")
	}

	candidatesProcessed.WithLabelValues(string(status), outcomeQualified).Inc()
	leadsQualified.Inc()
	log.Debug("lead qualified",
		zap.Int("score", lead.LeadScore),
		zap.Int("confidence", lead.Confidence),
	)
	return nil
}

func (o *Orchestrator) resolveOwner(ctx context.Context, name string) (model.OwnerInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, o.opts.EnrichTimeout)
	defer cancel()

	owner, err := o.owners.Resolve(ctx, name)
	if err != nil {
		return model.OwnerInfo{}, err
	}
	return owner, nil
}

func (o *Orchestrator) recentActivity(ctx context.Context, c model.RawCandidate) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.opts.EnrichTimeout)
	defer cancel()

	posts, err := o.activity.RecentActivity(ctx, c.Name, c.SocialURLs())
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(posts), nil
}

// personalHook returns the generated hook, or a generic one when generation
// fails or returns nothing.
func (o *Orchestrator) personalHook(ctx context.Context, log *zap.Logger, c model.RawCandidate, lead *model.BusinessLead) string {
	hookCtx, cancel := context.WithTimeout(ctx, o.opts.EnrichTimeout)
	defer cancel()

	hook, err := o.hooks.Generate(hookCtx, c.Name, c.SocialURLs())
	hook = strings.TrimSpace(hook)
	if err == nil && hook != "" {
		return hook
	}
	if err != nil {
		log.Warn("hook generation failed", zap.Error(err))
	}
	lead.Flags = append(lead.Flags, FlagHookFallback)
	generic, _ := o.fallback.Generate(ctx, c.Name, nil)
	return generic
}

func (o *Orchestrator) demoAssets(ctx context.Context, c model.RawCandidate) (model.DemoAssets, error) {
	ctx, cancel := context.WithTimeout(ctx, o.opts.EnrichTimeout)
	defer cancel()
	return o.demos.Generate(ctx, c)
}

func leadFromCandidate(c model.RawCandidate, status model.WebsiteStatus) *model.BusinessLead {
	lead := &model.BusinessLead{
		BusinessName:  c.Name,
		Address:       c.Address,
		City:          c.City,
		State:         c.State,
		PostalCode:    c.PostalCode,
		PhonePrimary:  c.Phone,
		EmailBusiness: c.Email,
		WebsiteURL:    c.WebsiteURL,
		GoogleMapsURL: c.GoogleMapsURL,
		YelpURL:       c.YelpURL,
		FacebookURL:   c.FacebookURL,
		InstagramURL:  c.InstagramURL,
		WebsiteStatus: status,
		RecentPosts:   c.RecentPosts,
		Flags:         []string{},
	}
	if c.Rating != nil {
		lead.AvgRating = model.Float64Ptr(*c.Rating)
	}
	if c.ReviewCount != nil {
		lead.NumReviews = model.IntPtr(*c.ReviewCount)
	}
	return lead
}

// Package discovery runs discovery jobs: it acquires candidate businesses,
// classifies and filters them, enriches and scores the survivors, and
// persists qualified leads.
package discovery

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-scout/internal/model"
)

// ErrInvalidSearch is returned by Submit when the search is missing a
// required field. No job is created.
var ErrInvalidSearch = eris.New("discovery: invalid search configuration")

// ErrShutdown is returned by Submit and Execute after Shutdown.
var ErrShutdown = eris.New("discovery: orchestrator is shut down")

// Source acquires raw candidates for a location and business type.
type Source interface {
	Search(ctx context.Context, location, businessType string) ([]model.RawCandidate, error)
}

// OwnerResolver looks up the owner of a business. A business whose owner
// cannot be found yields an empty, unverified OwnerInfo and no error.
type OwnerResolver interface {
	Resolve(ctx context.Context, businessName string) (model.OwnerInfo, error)
}

// ActivityResolver reports how recently a business posted on social media,
// as text like "3 days ago". Unknown activity is "" with no error.
type ActivityResolver interface {
	RecentActivity(ctx context.Context, businessName string, socialURLs []string) (string, error)
}

// HookGenerator produces a one-sentence personalization for outreach.
type HookGenerator interface {
	Generate(ctx context.Context, businessName string, socialURLs []string) (string, error)
}

// DemoGenerator produces demo assets for a candidate.
type DemoGenerator interface {
	Generate(ctx context.Context, c model.RawCandidate) (model.DemoAssets, error)
}

// WebsiteClassifier assigns a WebsiteStatus to a website URL. A non-nil
// error accompanies a status derived from an unreachable site.
type WebsiteClassifier interface {
	Assess(ctx context.Context, websiteURL string) (model.WebsiteStatus, error)
}

// Lead flags recorded when enrichment degrades.
const (
	FlagOwnerLookupFailed  = "owner_lookup_failed"
	FlagSocialLookupFailed = "social_lookup_failed"
	FlagHookFallback       = "hook_fallback"
	FlagDemoFailed         = "demo_failed"
	FlagNoContactChannel   = "no_contact_channel"
	FlagWebsiteUnreachable = "website_unreachable"
)

// Options tunes an Orchestrator. Non-positive thresholds and timeouts take
// the DefaultOptions value.
type Options struct {
	QualifyThreshold       int
	HighScoreThreshold     int
	AcquireTimeout         time.Duration
	EnrichTimeout          time.Duration
	EnforceExtendedFilters bool
	ChainNames             []string
}

// DefaultOptions returns the standard thresholds and timeouts.
func DefaultOptions() Options {
	return Options{
		QualifyThreshold:       40,
		HighScoreThreshold:     80,
		AcquireTimeout:         15 * time.Second,
		EnrichTimeout:          10 * time.Second,
		EnforceExtendedFilters: true,
		ChainNames:             DefaultChainNames,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.QualifyThreshold <= 0 {
		o.QualifyThreshold = def.QualifyThreshold
	}
	if o.AcquireTimeout <= 0 {
		o.AcquireTimeout = def.AcquireTimeout
	}
	if o.EnrichTimeout <= 0 {
		o.EnrichTimeout = def.EnrichTimeout
	}
	if o.HighScoreThreshold <= 0 {
		o.HighScoreThreshold = def.HighScoreThreshold
	}
	return o
}

package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/lead-scout/internal/classify"
	"github.com/sells-group/lead-scout/internal/config"
	"github.com/sells-group/lead-scout/internal/discovery"
	"github.com/sells-group/lead-scout/internal/outreach"
	"github.com/sells-group/lead-scout/internal/resilience"
	"github.com/sells-group/lead-scout/internal/store"
	"github.com/sells-group/lead-scout/pkg/anthropic"
	"github.com/sells-group/lead-scout/pkg/google"
	"github.com/sells-group/lead-scout/pkg/jina"
)

// app holds the wired components shared by commands.
type app struct {
	Store        store.Store
	Orchestrator *discovery.Orchestrator
	Composer     *outreach.Composer
}

// Close stops running jobs and releases the store.
func (a *app) Close() {
	if a.Orchestrator != nil {
		a.Orchestrator.Shutdown()
	}
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			zap.L().Warn("close store", zap.Error(err))
		}
	}
}

// initApp opens the store and builds the orchestrator from cfg.
func initApp(ctx context.Context, c *config.Config) (*app, error) {
	st, err := initStore(ctx, c.Store)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	composer := outreach.NewComposer(c.Outreach.Sender)
	orch, err := discovery.New(discoveryDeps(c, st, composer), discoveryOptions(c.Discovery))
	if err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "init orchestrator")
	}

	return &app{Store: st, Orchestrator: orch, Composer: composer}, nil
}

// initLeadStore opens the store for commands that only read or edit leads.
func initLeadStore(ctx context.Context, c *config.Config) (store.Store, error) {
	st, err := initStore(ctx, c.Store)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

func initStore(ctx context.Context, sc config.StoreConfig) (store.Store, error) {
	switch sc.Driver {
	case "", "memory":
		return store.NewMemory(), nil
	case "sqlite":
		return store.NewSQLite(sc.DatabaseURL)
	case "postgres":
		return store.NewPostgres(ctx, sc.DatabaseURL, nil)
	case "redis":
		return store.NewRedis(ctx, sc.RedisURL)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", sc.Driver)
	}
}

func discoveryOptions(dc config.DiscoveryConfig) discovery.Options {
	return discovery.Options{
		QualifyThreshold:       dc.QualifyThreshold,
		HighScoreThreshold:     dc.HighScoreThreshold,
		AcquireTimeout:         dc.AcquireTimeout(),
		EnrichTimeout:          dc.EnrichTimeout(),
		EnforceExtendedFilters: dc.EnforceExtendedFilters,
		ChainNames:             dc.ChainNames,
	}
}

// discoveryDeps picks the live collaborator for each API key that is set and
// the offline one otherwise.
func discoveryDeps(c *config.Config, st store.Store, composer *outreach.Composer) discovery.Deps {
	retry := resilience.FromSettings(c.Retry.MaxAttempts, c.Retry.InitialBackoffMS, c.Retry.MaxBackoffMS)
	classifyTimeout := c.Classify.Timeout()

	deps := discovery.Deps{
		Store: st,
		Classifier: classify.NewClassifier(
			classify.NewHTTPFetcher(
				classify.WithUserAgent(c.Classify.UserAgent),
				classify.WithTimeout(classifyTimeout),
			),
			classifyTimeout,
		),
		Demos:    discovery.NewPlaceholderDemoGenerator(c.Demo.BaseURL),
		Composer: composer,
	}

	if c.Places.Key != "" {
		client := google.NewClient(c.Places.Key, google.WithBaseURL(c.Places.BaseURL))
		deps.Source = discovery.NewPlacesSource(client, c.Places.RateLimit, c.Places.MaxPages, retry)
	} else {
		zap.L().Info("no places key configured, using sample businesses")
		deps.Source = discovery.SampleSource{}
	}

	if c.Jina.Key != "" {
		client := jina.NewClient(c.Jina.Key,
			jina.WithSearchBaseURL(c.Jina.SearchBaseURL),
			jina.WithRetry(retry.MaxAttempts, retry.InitialBackoff),
		)
		deps.Owners = discovery.NewJinaOwnerResolver(client)
		deps.Activity = discovery.NewJinaActivityResolver(client)
	} else {
		deps.Owners = discovery.StaticOwnerResolver{}
		deps.Activity = discovery.StaticActivityResolver{}
	}

	if c.Anthropic.Key != "" {
		deps.Hooks = discovery.NewClaudeHookGenerator(anthropic.NewClient(c.Anthropic.Key), c.Anthropic.Model)
	} else {
		deps.Hooks = discovery.NewTemplateHookGenerator()
	}

	return deps
}

package discovery

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/lead-scout/internal/model"
	"github.com/sells-group/lead-scout/pkg/jina"
)

// minVerifiedSources is the number of independent sources needed to call an
// owner verified.
const minVerifiedSources = 2

// StaticOwnerResolver never finds an owner.
type StaticOwnerResolver struct{}

// Resolve implements OwnerResolver.
func (StaticOwnerResolver) Resolve(_ context.Context, _ string) (model.OwnerInfo, error) {
	return model.OwnerInfo{Sources: []string{}}, nil
}

// ownerQuery is one web search whose matching result URLs count as owner
// sources.
type ownerQuery struct {
	name   string
	query  string
	site   string
	limit  int
	source func(u string) bool
}

func ownerQueries(business string) []ownerQuery {
	quoted := fmt.Sprintf("%q", business)
	return []ownerQuery{
		{
			name:  "linkedin",
			query: quoted + " owner",
			site:  "linkedin.com",
			limit: 3,
			source: func(u string) bool {
				return strings.Contains(u, "linkedin.com")
			},
		},
		{
			name:  "registry",
			query: quoted + " owner business registration",
			limit: 2,
			source: func(u string) bool {
				return strings.Contains(u, ".gov") || strings.Contains(u, "registry") || strings.Contains(u, "business")
			},
		},
		{
			name:  "news",
			query: quoted + " owner local news interview",
			limit: 2,
			source: func(u string) bool {
				return strings.Contains(u, "news") || strings.Contains(u, "local") || strings.Contains(u, "interview")
			},
		},
	}
}

var (
	// ownerTitleRe matches titles like "Maria Lopez - Owner - Corner Cafe".
	ownerTitleRe = regexp.MustCompile(`^\s*([A-Z][a-z'\-]+(?:\s+[A-Z][a-z'\-]+){1,2})\s*[-–|,:]\s*(?i:co-owner|owner|founder|proprietor)\b`)
	emailRe      = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
)

// JinaOwnerResolver finds owners through Jina web search across LinkedIn,
// business registries and local news.
type JinaOwnerResolver struct {
	client jina.Client
}

// NewJinaOwnerResolver creates a JinaOwnerResolver.
func NewJinaOwnerResolver(client jina.Client) *JinaOwnerResolver {
	return &JinaOwnerResolver{client: client}
}

// Resolve implements OwnerResolver. It fails only when every search fails.
func (r *JinaOwnerResolver) Resolve(ctx context.Context, businessName string) (model.OwnerInfo, error) {
	var (
		owner    string
		contact  string
		sources  = []string{}
		seen     = make(map[string]bool)
		failures int
		lastErr  error
	)

	queries := ownerQueries(businessName)
	for _, q := range queries {
		var opts []jina.SearchOption
		if q.site != "" {
			opts = append(opts, jina.WithSiteFilter(q.site))
		}
		resp, err := r.client.Search(ctx, q.query, opts...)
		if err != nil {
			failures++
			lastErr = err
			zap.L().Debug("owner search failed",
				zap.String("business", businessName),
				zap.String("source", q.name),
				zap.Error(err),
			)
			continue
		}

		taken := 0
		for _, res := range resp.Data {
			u := strings.ToLower(res.URL)
			if taken < q.limit && q.source(u) && !seen[res.URL] {
				seen[res.URL] = true
				sources = append(sources, res.URL)
				taken++
			}
			if owner == "" {
				owner = ownerFromTitle(res.Title)
			}
			if contact == "" {
				contact = emailRe.FindString(res.Content)
			}
		}
	}

	if failures == len(queries) {
		return model.OwnerInfo{}, eris.Wrap(lastErr, "owner: all searches failed")
	}

	info := model.OwnerInfo{Name: owner, Sources: sources}
	info.Verified = owner != "" && len(sources) >= minVerifiedSources
	if info.Verified {
		info.Contact = contact
	}
	return info, nil
}

func ownerFromTitle(title string) string {
	m := ownerTitleRe.FindStringSubmatch(title)
	if m == nil {
		return ""
	}
	return strings.Join(strings.Fields(m[1]), " ")
}

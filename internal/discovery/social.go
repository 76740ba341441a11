package discovery

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/lead-scout/pkg/jina"
)

// StaticActivityResolver never finds social activity.
type StaticActivityResolver struct{}

// RecentActivity implements ActivityResolver.
func (StaticActivityResolver) RecentActivity(_ context.Context, _ string, _ []string) (string, error) {
	return "", nil
}

var socialPlatforms = []string{"facebook.com", "instagram.com"}

var (
	postAgeRe   = regexp.MustCompile(`(\d+)\s*(hour|hr|day|week|wk|month|mo)s?\s+ago`)
	yesterdayRe = regexp.MustCompile(`\byesterday\b`)
)

var postAgeDays = map[string]int{
	"hour":  0,
	"hr":    0,
	"day":   1,
	"week":  7,
	"wk":    7,
	"month": 30,
	"mo":    30,
}

// JinaActivityResolver estimates the age of a business's latest social post
// from Jina search results on Facebook and Instagram.
type JinaActivityResolver struct {
	client jina.Client
}

// NewJinaActivityResolver creates a JinaActivityResolver.
func NewJinaActivityResolver(client jina.Client) *JinaActivityResolver {
	return &JinaActivityResolver{client: client}
}

// RecentActivity implements ActivityResolver. Only the platforms listed in
// socialURLs are searched, or both when none are. It fails only when every
// search fails.
func (r *JinaActivityResolver) RecentActivity(ctx context.Context, businessName string, socialURLs []string) (string, error) {
	platforms := platformsFor(socialURLs)

	var (
		youngest = -1
		failures int
		lastErr  error
	)
	for _, site := range platforms {
		name := strings.TrimSuffix(site, ".com")
		query := fmt.Sprintf("%q %s posts", businessName, name)
		resp, err := r.client.Search(ctx, query, jina.WithSiteFilter(site))
		if err != nil {
			failures++
			lastErr = err
			zap.L().Debug("social activity search failed",
				zap.String("business", businessName),
				zap.String("platform", name),
				zap.Error(err),
			)
			continue
		}
		for _, res := range resp.Data {
			days, ok := postAge(res.Title + "\n" + res.Description + "\n" + res.Content)
			if ok && (youngest < 0 || days < youngest) {
				youngest = days
			}
		}
	}

	if failures == len(platforms) {
		return "", eris.Wrap(lastErr, "social: all searches failed")
	}
	if youngest < 0 {
		return "", nil
	}
	return formatDaysAgo(youngest), nil
}

func platformsFor(socialURLs []string) []string {
	var out []string
	for _, site := range socialPlatforms {
		for _, u := range socialURLs {
			if strings.Contains(strings.ToLower(u), site) {
				out = append(out, site)
				break
			}
		}
	}
	if len(out) == 0 {
		return socialPlatforms
	}
	return out
}

// postAge returns the smallest post age in days mentioned in text.
func postAge(text string) (int, bool) {
	text = strings.ToLower(text)
	best, found := 0, false
	for _, m := range postAgeRe.FindAllStringSubmatch(text, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		days := n * postAgeDays[m[2]]
		if !found || days < best {
			best, found = days, true
		}
	}
	if yesterdayRe.MatchString(text) && (!found || best > 1) {
		best, found = 1, true
	}
	return best, found
}

func formatDaysAgo(days int) string {
	if days <= 1 {
		return "1 day ago"
	}
	return fmt.Sprintf("%d days ago", days)
}

// Package classify assigns a WebsiteStatus to a business from its website
// URL and, when needed, a single fetch of its homepage.
package classify

import (
	"context"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/lead-scout/internal/model"
)

// PageSignals are the homepage properties that decide MODERN_SITE.
type PageSignals struct {
	HasViewport        bool
	HasModernFramework bool
	IsSecureTransport  bool
	Frameworks         []string
}

// Fetcher retrieves a homepage and extracts its signals. An error means the
// site is unreachable.
type Fetcher interface {
	Fetch(ctx context.Context, websiteURL string) (*PageSignals, error)
}

// socialDomains are hosts whose pages count as social presence rather than a
// business website.
var socialDomains = []string{
	"facebook.com",
	"fb.com",
	"fb.me",
	"instagram.com",
	"tiktok.com",
	"twitter.com",
	"x.com",
	"linkedin.com",
}

// IsSocialURL reports whether rawURL points at a social network.
func IsSocialURL(rawURL string) bool {
	host := hostOf(rawURL)
	if host == "" {
		return false
	}
	for _, d := range socialDomains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

func hostOf(rawURL string) string {
	s := strings.TrimSpace(rawURL)
	if s == "" {
		return ""
	}
	if !strings.Contains(s, "://") {
		s = "http://" + s
	}
	u, err := url.Parse(s)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

// Classify applies the classification rules. A nil signals value means the
// site could not be fetched.
func Classify(websiteURL string, signals *PageSignals) model.WebsiteStatus {
	if strings.TrimSpace(websiteURL) == "" {
		return model.WebsiteNone
	}
	if IsSocialURL(websiteURL) {
		return model.WebsiteSocial
	}
	if signals == nil {
		return model.WebsiteOutdated
	}
	if signals.HasViewport && signals.HasModernFramework && signals.IsSecureTransport {
		return model.WebsiteModern
	}
	return model.WebsiteOutdated
}

// Classifier classifies websites, fetching homepages only when the URL alone
// is not enough.
type Classifier struct {
	fetcher Fetcher
	timeout time.Duration
}

// NewClassifier creates a Classifier. A non-positive timeout defaults to 10s.
func NewClassifier(f Fetcher, timeout time.Duration) *Classifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Classifier{fetcher: f, timeout: timeout}
}

// Classify returns the website status for websiteURL. It never fails: an
// unreachable or slow site is OUTDATED_SITE.
func (c *Classifier) Classify(ctx context.Context, websiteURL string) model.WebsiteStatus {
	status, _ := c.Assess(ctx, websiteURL)
	return status
}

// Assess is Classify that also returns the fetch error, if any, behind an
// OUTDATED_SITE result.
func (c *Classifier) Assess(ctx context.Context, websiteURL string) (model.WebsiteStatus, error) {
	if strings.TrimSpace(websiteURL) == "" || IsSocialURL(websiteURL) {
		return Classify(websiteURL, nil), nil
	}

	fetchCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	signals, err := c.fetcher.Fetch(fetchCtx, websiteURL)
	if err != nil {
		zap.L().Debug("classify: site unreachable",
			zap.String("url", websiteURL),
			zap.Error(err),
		)
		return Classify(websiteURL, nil), err
	}
	return Classify(websiteURL, signals), nil
}

package discovery

import (
	"strings"

	"github.com/sells-group/lead-scout/internal/model"
	"github.com/sells-group/lead-scout/internal/scorer"
)

// DefaultChainNames are names that mark a business as part of a chain.
var DefaultChainNames = []string{
	"starbucks", "mcdonald's", "subway", "dunkin", "chipotle",
	"panera", "great clips", "supercuts", "applebee's", "olive garden",
}

// activeSocialDays is the recency window for the activeSocial filter.
const activeSocialDays = 30

// Include reports whether a candidate with the given website status passes
// the website filters. MODERN_SITE never passes.
func Include(status model.WebsiteStatus, f model.Filters) bool {
	switch status {
	case model.WebsiteModern:
		return false
	case model.WebsiteNone:
		return f.NoWebsite
	case model.WebsiteSocial:
		return f.SocialOnly
	case model.WebsiteOutdated:
		return f.OutdatedSite
	default:
		return true
	}
}

// Extended filter exclusion reasons.
const (
	ReasonNotIndependent  = "not_independent"
	ReasonOwnerUnverified = "owner_unverified"
	ReasonInactiveSocial  = "inactive_social"
)

// IncludeEnriched applies the independentOnly, verifiedOwner and
// activeSocial filters to an enriched lead. The reason names the first
// failing filter.
func IncludeEnriched(lead *model.BusinessLead, f model.Filters) (bool, string) {
	if f.IndependentOnly && !lead.IndependentBusiness {
		return false, ReasonNotIndependent
	}
	if f.VerifiedOwner && !lead.OwnerVerified {
		return false, ReasonOwnerUnverified
	}
	if f.ActiveSocial && !socialActive(lead.RecentPosts) {
		return false, ReasonInactiveSocial
	}
	return true, ""
}

func socialActive(recentPosts string) bool {
	return recentPosts != "" && scorer.ParseDaysAgo(recentPosts) <= activeSocialDays
}

// isIndependent reports whether name does not match any chain name.
func isIndependent(name string, chains []string) bool {
	n := strings.ToLower(name)
	for _, c := range chains {
		c = strings.ToLower(strings.TrimSpace(c))
		if c != "" && strings.Contains(n, c) {
			return false
		}
	}
	return true
}

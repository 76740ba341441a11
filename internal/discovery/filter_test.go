package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/lead-scout/internal/model"
)

func TestInclude(t *testing.T) {
	tests := []struct {
		name    string
		status  model.WebsiteStatus
		filters model.Filters
		want    bool
	}{
		{"no website allowed", model.WebsiteNone, model.Filters{NoWebsite: true}, true},
		{"no website disallowed", model.WebsiteNone, model.Filters{SocialOnly: true, OutdatedSite: true}, false},
		{"social allowed", model.WebsiteSocial, model.Filters{SocialOnly: true}, true},
		{"social disallowed", model.WebsiteSocial, model.Filters{NoWebsite: true}, false},
		{"outdated allowed", model.WebsiteOutdated, model.Filters{OutdatedSite: true}, true},
		{"outdated disallowed", model.WebsiteOutdated, model.Filters{}, false},
		{"modern with defaults", model.WebsiteModern, model.DefaultFilters(), false},
		{"unknown status passes", model.WebsiteStatus("UNKNOWN"), model.Filters{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Include(tt.status, tt.filters))
		})
	}
}

func TestInclude_ModernNeverPasses(t *testing.T) {
	for mask := 0; mask < 64; mask++ {
		f := model.Filters{
			NoWebsite:       mask&1 != 0,
			SocialOnly:      mask&2 != 0,
			OutdatedSite:    mask&4 != 0,
			IndependentOnly: mask&8 != 0,
			VerifiedOwner:   mask&16 != 0,
			ActiveSocial:    mask&32 != 0,
		}
		assert.False(t, Include(model.WebsiteModern, f), "filters %+v", f)
	}
}

func TestIncludeEnriched(t *testing.T) {
	good := &model.BusinessLead{IndependentBusiness: true, OwnerVerified: true, RecentPosts: "5 days ago"}
	all := model.Filters{IndependentOnly: true, VerifiedOwner: true, ActiveSocial: true}

	ok, reason := IncludeEnriched(good, all)
	assert.True(t, ok)
	assert.Empty(t, reason)

	tests := []struct {
		name   string
		lead   model.BusinessLead
		reason string
	}{
		{"chain", model.BusinessLead{OwnerVerified: true, RecentPosts: "1 day ago"}, ReasonNotIndependent},
		{"unverified owner", model.BusinessLead{IndependentBusiness: true, RecentPosts: "1 day ago"}, ReasonOwnerUnverified},
		{"no posts", model.BusinessLead{IndependentBusiness: true, OwnerVerified: true}, ReasonInactiveSocial},
		{"stale posts", model.BusinessLead{IndependentBusiness: true, OwnerVerified: true, RecentPosts: "2 months ago"}, ReasonInactiveSocial},
		{"first failure wins", model.BusinessLead{}, ReasonNotIndependent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, reason := IncludeEnriched(&tt.lead, all)
			assert.False(t, ok)
			assert.Equal(t, tt.reason, reason)
		})
	}

	ok, _ = IncludeEnriched(&model.BusinessLead{}, model.DefaultFilters())
	assert.True(t, ok, "default filters impose no extended checks")
}

func TestIsIndependent(t *testing.T) {
	assert.True(t, isIndependent("Corner Cafe", DefaultChainNames))
	assert.False(t, isIndependent("Starbucks Reserve", DefaultChainNames))
	assert.False(t, isIndependent("SUBWAY #4412", DefaultChainNames))
	assert.True(t, isIndependent("Starbucks", nil))
	assert.True(t, isIndependent("Starbucks", []string{"  "}))
	assert.False(t, isIndependent("Joe's Tacos", []string{" Joe's "}))
}

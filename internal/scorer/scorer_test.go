package scorer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/lead-scout/internal/model"
)

func idealLead() *model.BusinessLead {
	return &model.BusinessLead{
		BusinessName:        "Corner Cafe",
		WebsiteStatus:       model.WebsiteNone,
		OwnerVerified:       true,
		OwnerSources:        []string{"linkedin", "state registry"},
		RecentPosts:         "3 days ago",
		AvgRating:           model.Float64Ptr(4.2),
		NumReviews:          model.IntPtr(120),
		IndependentBusiness: true,
	}
}

func TestFactorsValid(t *testing.T) {
	require.NoError(t, ValidateFactors(Factors))
	assert.Equal(t, 100, WeightSum(Factors))
}

func TestValidateFactors_Invalid(t *testing.T) {
	bad := []Factor{
		{Name: "a", Weight: -5, Value: websiteValue},
		{Name: "a", Weight: 50},
	}
	err := ValidateFactors(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a weight must be >= 0")
	assert.Contains(t, err.Error(), "a has no value function")
	assert.Contains(t, err.Error(), "a is listed twice")
	assert.Contains(t, err.Error(), "weights sum to 45")
}

func TestScore_AllFactorsMaxed(t *testing.T) {
	score, breakdown := Score(idealLead())

	assert.Equal(t, 100, score)
	for _, name := range []string{FactorWebsite, FactorDecisionMaker, FactorSocial, FactorReputation, FactorSizeMatch} {
		f, ok := breakdown[name]
		require.True(t, ok, name)
		assert.InDelta(t, 1.0, f.Value, 0.0001, name)
		assert.InDelta(t, float64(f.Weight), f.Score, 0.0001, name)
	}
}

func TestScore_MinimalLead(t *testing.T) {
	lead := &model.BusinessLead{WebsiteStatus: model.WebsiteOutdated}
	score, breakdown := Score(lead)

	// 0.8*35 + 0.3*25 + 0.2*15 + 0.4*15 + 0 = 28 + 7.5 + 3 + 6 = 44.5
	assert.Equal(t, 45, score)
	assert.InDelta(t, 28.0, breakdown[FactorWebsite].Score, 0.0001)
	assert.InDelta(t, 7.5, breakdown[FactorDecisionMaker].Score, 0.0001)
	assert.InDelta(t, 3.0, breakdown[FactorSocial].Score, 0.0001)
	assert.InDelta(t, 6.0, breakdown[FactorReputation].Score, 0.0001)
	assert.InDelta(t, 0.0, breakdown[FactorSizeMatch].Score, 0.0001)
}

func TestScore_EqualsRoundedSum(t *testing.T) {
	statuses := []model.WebsiteStatus{model.WebsiteNone, model.WebsiteSocial, model.WebsiteOutdated, model.WebsiteModern, "UNKNOWN"}
	posts := []string{"", "1 day ago", "2 weeks ago", "2 months ago", "a while back"}
	ratings := []*float64{nil, model.Float64Ptr(2.5), model.Float64Ptr(3.2), model.Float64Ptr(3.7), model.Float64Ptr(4.9)}

	for _, st := range statuses {
		for _, p := range posts {
			for _, r := range ratings {
				lead := &model.BusinessLead{
					WebsiteStatus: st,
					RecentPosts:   p,
					AvgRating:     r,
					NumReviews:    model.IntPtr(30),
					OwnerVerified: true,
					OwnerSources:  []string{"x"},
				}
				score, breakdown := Score(lead)

				var sum float64
				for _, f := range breakdown {
					sum += f.Score
				}
				assert.Equal(t, int(math.Round(sum)), score)
				assert.GreaterOrEqual(t, score, 0)
				assert.LessOrEqual(t, score, 100)
			}
		}
	}
}

func TestScore_Idempotent(t *testing.T) {
	lead := idealLead()
	lead.WebsiteStatus = model.WebsiteSocial
	s1, b1 := Score(lead)
	s2, b2 := Score(lead)
	assert.Equal(t, s1, s2)
	assert.Equal(t, b1, b2)
}

func TestWebsiteValue(t *testing.T) {
	tests := []struct {
		status model.WebsiteStatus
		want   float64
	}{
		{model.WebsiteNone, 1.0},
		{model.WebsiteSocial, 0.9},
		{model.WebsiteOutdated, 0.8},
		{model.WebsiteModern, 0.0},
		{"", 0.5},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.InDelta(t, tt.want, websiteValue(&model.BusinessLead{WebsiteStatus: tt.status}), 0.0001)
		})
	}
}

func TestDecisionMakerValue(t *testing.T) {
	tests := []struct {
		name     string
		verified bool
		sources  []string
		want     float64
	}{
		{"unverified with sources", false, []string{"a", "b"}, 0.3},
		{"verified two sources", true, []string{"a", "b"}, 1.0},
		{"verified three sources", true, []string{"a", "b", "c"}, 1.0},
		{"verified one source", true, []string{"a"}, 0.6},
		{"verified no sources", true, nil, 0.3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lead := &model.BusinessLead{OwnerVerified: tt.verified, OwnerSources: tt.sources}
			assert.InDelta(t, tt.want, decisionMakerValue(lead), 0.0001)
		})
	}
}

func TestSocialValue(t *testing.T) {
	tests := []struct {
		posts string
		want  float64
	}{
		{"", 0.2},
		{"3 days ago", 1.0},
		{"7 days ago", 1.0},
		{"1 week ago", 1.0},
		{"2 weeks ago", 0.8},
		{"30 days ago", 0.8},
		{"1 month ago", 0.8},
		{"2 months ago", 0.6},
		{"4 months ago", 0.3},
		{"recently", 0.3},
	}
	for _, tt := range tests {
		t.Run(tt.posts, func(t *testing.T) {
			assert.InDelta(t, tt.want, socialValue(&model.BusinessLead{RecentPosts: tt.posts}), 0.0001)
		})
	}
}

func TestReputationValue(t *testing.T) {
	tests := []struct {
		name    string
		rating  *float64
		reviews *int
		want    float64
	}{
		{"missing rating", nil, model.IntPtr(50), 0.4},
		{"missing reviews", model.Float64Ptr(4.5), nil, 0.4},
		{"zero rating", model.Float64Ptr(0), model.IntPtr(50), 0.4},
		{"zero reviews", model.Float64Ptr(4.5), model.IntPtr(0), 0.4},
		{"top", model.Float64Ptr(4.0), model.IntPtr(100), 1.0},
		{"good rating few reviews", model.Float64Ptr(4.1), model.IntPtr(4), 0.6},
		{"3.5 with 50", model.Float64Ptr(3.5), model.IntPtr(50), 0.7},
		{"3.0 with 20", model.Float64Ptr(3.0), model.IntPtr(20), 0.4},
		{"low rating 5 reviews", model.Float64Ptr(2.0), model.IntPtr(5), 0.1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lead := &model.BusinessLead{AvgRating: tt.rating, NumReviews: tt.reviews}
			assert.InDelta(t, tt.want, reputationValue(lead), 0.0001)
		})
	}
}

func TestSizeMatchValue(t *testing.T) {
	assert.InDelta(t, 1.0, sizeMatchValue(&model.BusinessLead{IndependentBusiness: true}), 0.0001)
	assert.InDelta(t, 0.0, sizeMatchValue(&model.BusinessLead{}), 0.0001)
}

func TestParseDaysAgo(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"3 days ago", 3},
		{"1 day ago", 1},
		{"2 weeks ago", 14},
		{"1 month ago", 30},
		{"Posted 5 Days Ago", 5},
		{"yesterday", 999},
		{"", 999},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseDaysAgo(tt.in))
		})
	}
}

func TestConfidence(t *testing.T) {
	tests := []struct {
		name string
		lead *model.BusinessLead
		want int
	}{
		{"baseline", &model.BusinessLead{}, 50},
		{"verified owner", &model.BusinessLead{OwnerVerified: true}, 70},
		{"owner contact only", &model.BusinessLead{OwnerContact: "o@x.com"}, 65},
		{"stale social", &model.BusinessLead{RecentPosts: "3 months ago"}, 50},
		{"fresh social", &model.BusinessLead{RecentPosts: "2 weeks ago"}, 60},
		{"low rating", &model.BusinessLead{AvgRating: model.Float64Ptr(3.0)}, 50},
		{"verified fresh rated", idealLead(), 85},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Confidence(tt.lead))
		})
	}

	full := idealLead()
	full.EmailBusiness = "hi@cornercafe.com"
	assert.Equal(t, 100, Confidence(full))
}

func TestApply(t *testing.T) {
	lead := idealLead()
	Apply(lead)
	assert.Equal(t, 100, lead.LeadScore)
	assert.Equal(t, lead.LeadScore, lead.ScoreBreakdown.Total())
	assert.Equal(t, 85, lead.Confidence)
}

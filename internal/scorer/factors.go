package scorer

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/sells-group/lead-scout/internal/model"
)

// unknownDaysAgo is the age assigned to activity text that cannot be parsed.
const unknownDaysAgo = 999

var daysAgoRe = regexp.MustCompile(`(\d+)\s+(day|week|month)s?\s+ago`)

var unitDays = map[string]int{
	"day":   1,
	"week":  7,
	"month": 30,
}

// ParseDaysAgo converts text like "3 days ago" or "2 weeks ago" into a day
// count. Unparsable text yields 999.
func ParseDaysAgo(s string) int {
	m := daysAgoRe.FindStringSubmatch(strings.ToLower(s))
	if m == nil {
		return unknownDaysAgo
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return unknownDaysAgo
	}
	return n * unitDays[m[2]]
}

func websiteValue(lead *model.BusinessLead) float64 {
	switch lead.WebsiteStatus {
	case model.WebsiteNone:
		return 1.0
	case model.WebsiteSocial:
		return 0.9
	case model.WebsiteOutdated:
		return 0.8
	case model.WebsiteModern:
		return 0.0
	default:
		return 0.5
	}
}

func decisionMakerValue(lead *model.BusinessLead) float64 {
	if !lead.OwnerVerified {
		return 0.3
	}
	switch n := len(lead.OwnerSources); {
	case n >= 2:
		return 1.0
	case n == 1:
		return 0.6
	default:
		return 0.3
	}
}

func socialValue(lead *model.BusinessLead) float64 {
	if lead.RecentPosts == "" {
		return 0.2
	}
	switch days := ParseDaysAgo(lead.RecentPosts); {
	case days <= 7:
		return 1.0
	case days <= 30:
		return 0.8
	case days <= 90:
		return 0.6
	default:
		return 0.3
	}
}

// reputationValue rewards established businesses. Missing or zero rating or
// review data is treated as neutral.
func reputationValue(lead *model.BusinessLead) float64 {
	if lead.AvgRating == nil || lead.NumReviews == nil || *lead.AvgRating == 0 || *lead.NumReviews == 0 {
		return 0.4
	}
	rating, reviews := *lead.AvgRating, *lead.NumReviews

	var v float64
	switch {
	case rating >= 4.0:
		v += 0.6
	case rating >= 3.5:
		v += 0.4
	case rating >= 3.0:
		v += 0.2
	}

	switch {
	case reviews >= 100:
		v += 0.4
	case reviews >= 50:
		v += 0.3
	case reviews >= 20:
		v += 0.2
	case reviews >= 5:
		v += 0.1
	}

	return min(v, 1.0)
}

func sizeMatchValue(lead *model.BusinessLead) float64 {
	if lead.IndependentBusiness {
		return 1.0
	}
	return 0.0
}

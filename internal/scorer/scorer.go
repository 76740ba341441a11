// Package scorer computes lead scores and confidence for enriched
// business candidates.
package scorer

import (
	"fmt"
	"math"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-scout/internal/model"
)

// Factor names as they appear in a score breakdown.
const (
	FactorWebsite       = "website"
	FactorDecisionMaker = "decisionMaker"
	FactorSocial        = "social"
	FactorReputation    = "reputation"
	FactorSizeMatch     = "sizeMatch"
)

// Factor is one weighted component of the lead score. Value must return a
// number in [0,1].
type Factor struct {
	Name   string
	Weight int
	Value  func(lead *model.BusinessLead) float64
}

// Factors is the scoring table. Weights sum to 100.
var Factors = []Factor{
	{Name: FactorWebsite, Weight: 35, Value: websiteValue},
	{Name: FactorDecisionMaker, Weight: 25, Value: decisionMakerValue},
	{Name: FactorSocial, Weight: 15, Value: socialValue},
	{Name: FactorReputation, Weight: 15, Value: reputationValue},
	{Name: FactorSizeMatch, Weight: 10, Value: sizeMatchValue},
}

// WeightSum returns the sum of all factor weights.
func WeightSum(factors []Factor) int {
	sum := 0
	for _, f := range factors {
		sum += f.Weight
	}
	return sum
}

// ValidateFactors checks that a factor table is internally consistent.
func ValidateFactors(factors []Factor) error {
	var errs []string
	seen := make(map[string]bool, len(factors))

	for _, f := range factors {
		if f.Weight < 0 {
			errs = append(errs, fmt.Sprintf("%s weight must be >= 0", f.Name))
		}
		if f.Value == nil {
			errs = append(errs, fmt.Sprintf("%s has no value function", f.Name))
		}
		if seen[f.Name] {
			errs = append(errs, fmt.Sprintf("%s is listed twice", f.Name))
		}
		seen[f.Name] = true
	}

	if sum := WeightSum(factors); sum != 100 {
		errs = append(errs, fmt.Sprintf("weights sum to %d, want 100", sum))
	}

	if len(errs) > 0 {
		return eris.Errorf("scorer: invalid factors: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Score evaluates every factor against lead and returns the rounded total
// together with the per-factor breakdown. It does not modify lead.
func Score(lead *model.BusinessLead) (int, model.ScoreBreakdown) {
	breakdown := make(model.ScoreBreakdown, len(Factors))
	for _, f := range Factors {
		v := clamp01(f.Value(lead))
		breakdown[f.Name] = model.Factor{
			Value:  v,
			Weight: f.Weight,
			Score:  v * float64(f.Weight),
		}
	}

	total := breakdown.Total()
	if total < 0 {
		total = 0
	}
	if total > 100 {
		total = 100
	}
	return total, breakdown
}

// Apply scores lead and stores the score, breakdown and confidence on it.
func Apply(lead *model.BusinessLead) {
	lead.LeadScore, lead.ScoreBreakdown = Score(lead)
	lead.Confidence = Confidence(lead)
}

// Confidence estimates how trustworthy the lead's data is (0-100).
func Confidence(lead *model.BusinessLead) int {
	c := 50
	if lead.OwnerVerified {
		c += 20
	}
	if lead.EmailBusiness != "" || lead.OwnerContact != "" {
		c += 15
	}
	if lead.RecentPosts != "" && ParseDaysAgo(lead.RecentPosts) <= 30 {
		c += 10
	}
	if lead.AvgRating != nil && *lead.AvgRating >= 3.5 {
		c += 5
	}
	return min(c, 100)
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

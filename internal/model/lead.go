package model

import (
	"math"
	"time"
)

// WebsiteStatus classifies a business's web presence.
type WebsiteStatus string

const (
	WebsiteNone     WebsiteStatus = "NO_WEBSITE"
	WebsiteSocial   WebsiteStatus = "SOCIAL_ONLY"
	WebsiteOutdated WebsiteStatus = "OUTDATED_SITE"
	WebsiteModern   WebsiteStatus = "MODERN_SITE"
)

// Factor is one entry of a score breakdown.
type Factor struct {
	Value  float64 `json:"value"`
	Weight int     `json:"weight"`
	Score  float64 `json:"score"`
}

// ScoreBreakdown records per-factor contributions keyed by factor name.
type ScoreBreakdown map[string]Factor

// Total returns the rounded sum of factor scores.
func (b ScoreBreakdown) Total() int {
	var sum float64
	for _, f := range b {
		sum += f.Score
	}
	return int(math.Round(sum))
}

// RawCandidate is one unenriched business as returned by acquisition.
type RawCandidate struct {
	SourceID      string   `json:"sourceId,omitempty"`
	Name          string   `json:"name"`
	Address       string   `json:"address"`
	City          string   `json:"city"`
	State         string   `json:"state"`
	PostalCode    string   `json:"postalCode"`
	Phone         string   `json:"phone"`
	Email         string   `json:"email"`
	WebsiteURL    string   `json:"websiteUrl"`
	GoogleMapsURL string   `json:"googleMapsUrl"`
	YelpURL       string   `json:"yelpUrl"`
	FacebookURL   string   `json:"facebookUrl"`
	InstagramURL  string   `json:"instagramUrl"`
	Rating        *float64 `json:"rating"`
	ReviewCount   *int     `json:"reviewCount"`
	RecentPosts   string   `json:"recentPosts"`
}

// SocialURLs returns the non-empty social profile URLs.
func (c RawCandidate) SocialURLs() []string {
	var urls []string
	for _, u := range []string{c.FacebookURL, c.InstagramURL} {
		if u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

// OwnerInfo is the result of an owner lookup.
type OwnerInfo struct {
	Name     string   `json:"name"`
	Verified bool     `json:"verified"`
	Sources  []string `json:"sources"`
	Contact  string   `json:"contact"`
}

// DemoAssets holds generated demo links.
type DemoAssets struct {
	DesktopScreenshotURL string `json:"desktopScreenshotUrl"`
	MobileScreenshotURL  string `json:"mobileScreenshotUrl"`
	VideoURL             string `json:"videoUrl"`
}

// OutreachMessages holds drafted outreach copy per channel.
type OutreachMessages struct {
	Email string `json:"email"`
	DM    string `json:"dm"`
	SMS   string `json:"sms"`
}

// BusinessLead is a qualified, scored business.
type BusinessLead struct {
	ID                       string         `json:"id"`
	JobID                    string         `json:"jobId,omitempty"`
	BusinessName             string         `json:"businessName"`
	Address                  string         `json:"address"`
	City                     string         `json:"city"`
	State                    string         `json:"state"`
	PostalCode               string         `json:"postalCode"`
	PhonePrimary             string         `json:"phonePrimary"`
	EmailBusiness            string         `json:"emailBusiness"`
	WebsiteURL               string         `json:"websiteUrl"`
	GoogleMapsURL            string         `json:"googleMapsUrl"`
	YelpURL                  string         `json:"yelpUrl"`
	FacebookURL              string         `json:"facebookUrl"`
	InstagramURL             string         `json:"instagramUrl"`
	WebsiteStatus            WebsiteStatus  `json:"websiteStatus"`
	OwnerName                string         `json:"ownerName"`
	OwnerVerified            bool           `json:"ownerVerified"`
	OwnerSources             []string       `json:"ownerSources"`
	OwnerContact             string         `json:"ownerContact"`
	RecentPosts              string         `json:"recentPosts"`
	AvgRating                *float64       `json:"avgRating"`
	NumReviews               *int           `json:"numReviews"`
	IndependentBusiness      bool           `json:"independentBusiness"`
	PersonalHook             string         `json:"personalHook"`
	DemoDesktopScreenshotURL string         `json:"demoDesktopScreenshotUrl"`
	DemoMobileScreenshotURL  string         `json:"demoMobileScreenshotUrl"`
	DemoVideoURL             string         `json:"demoVideoUrl"`
	LeadScore                int            `json:"leadScore"`
	ScoreBreakdown           ScoreBreakdown `json:"scoreBreakdown"`
	Confidence               int            `json:"confidence"`
	Flags                    []string       `json:"flags"`
	OutreachEmail            string         `json:"outreachEmail"`
	OutreachDM               string         `json:"outreachDm"`
	OutreachSMS              string         `json:"outreachSms"`
	CreatedAt                time.Time      `json:"createdAt"`
}

// ContactEmail returns the business email, falling back to the owner contact.
func (l *BusinessLead) ContactEmail() string {
	if l.EmailBusiness != "" {
		return l.EmailBusiness
	}
	return l.OwnerContact
}

// Clone returns a deep copy of the lead.
func (l *BusinessLead) Clone() *BusinessLead {
	if l == nil {
		return nil
	}
	c := *l
	if l.OwnerSources != nil {
		c.OwnerSources = append([]string(nil), l.OwnerSources...)
	}
	if l.Flags != nil {
		c.Flags = append([]string(nil), l.Flags...)
	}
	if l.AvgRating != nil {
		v := *l.AvgRating
		c.AvgRating = &v
	}
	if l.NumReviews != nil {
		v := *l.NumReviews
		c.NumReviews = &v
	}
	if l.ScoreBreakdown != nil {
		c.ScoreBreakdown = make(ScoreBreakdown, len(l.ScoreBreakdown))
		for k, v := range l.ScoreBreakdown {
			c.ScoreBreakdown[k] = v
		}
	}
	return &c
}

// LeadPatch is a partial update to a BusinessLead. Nil fields are left
// unchanged.
type LeadPatch struct {
	OwnerName     *string
	OwnerVerified *bool
	OwnerContact  *string
	PersonalHook  *string
	Outreach      *OutreachMessages
	Flags         []string
}

// Apply merges the patch into lead in place.
func (p LeadPatch) Apply(lead *BusinessLead) {
	if p.OwnerName != nil {
		lead.OwnerName = *p.OwnerName
	}
	if p.OwnerVerified != nil {
		lead.OwnerVerified = *p.OwnerVerified
	}
	if p.OwnerContact != nil {
		lead.OwnerContact = *p.OwnerContact
	}
	if p.PersonalHook != nil {
		lead.PersonalHook = *p.PersonalHook
	}
	if p.Outreach != nil {
		lead.OutreachEmail = p.Outreach.Email
		lead.OutreachDM = p.Outreach.DM
		lead.OutreachSMS = p.Outreach.SMS
	}
	if p.Flags != nil {
		lead.Flags = append([]string(nil), p.Flags...)
	}
}

// Float64Ptr returns a pointer to v.
func Float64Ptr(v float64) *float64 { return &v }

// IntPtr returns a pointer to v.
func IntPtr(v int) *int { return &v }

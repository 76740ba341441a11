package model

import (
	"encoding/json"
	"strings"
)

// Filters selects which candidates a job keeps.
type Filters struct {
	NoWebsite       bool `json:"noWebsite" yaml:"no_website"`
	SocialOnly      bool `json:"socialOnly" yaml:"social_only"`
	OutdatedSite    bool `json:"outdatedSite" yaml:"outdated_site"`
	IndependentOnly bool `json:"independentOnly" yaml:"independent_only"`
	VerifiedOwner   bool `json:"verifiedOwner" yaml:"verified_owner"`
	ActiveSocial    bool `json:"activeSocial" yaml:"active_social"`
}

// DefaultFilters returns the filters applied when a search omits them.
func DefaultFilters() Filters {
	return Filters{
		NoWebsite:    true,
		SocialOnly:   true,
		OutdatedSite: true,
	}
}

// rawFilters mirrors Filters with optional flags so absent keys can take
// their defaults.
type rawFilters struct {
	NoWebsite       *bool `json:"noWebsite" yaml:"no_website"`
	SocialOnly      *bool `json:"socialOnly" yaml:"social_only"`
	OutdatedSite    *bool `json:"outdatedSite" yaml:"outdated_site"`
	IndependentOnly *bool `json:"independentOnly" yaml:"independent_only"`
	VerifiedOwner   *bool `json:"verifiedOwner" yaml:"verified_owner"`
	ActiveSocial    *bool `json:"activeSocial" yaml:"active_social"`
}

func (r rawFilters) resolve() Filters {
	f := DefaultFilters()
	pick := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	pick(&f.NoWebsite, r.NoWebsite)
	pick(&f.SocialOnly, r.SocialOnly)
	pick(&f.OutdatedSite, r.OutdatedSite)
	pick(&f.IndependentOnly, r.IndependentOnly)
	pick(&f.VerifiedOwner, r.VerifiedOwner)
	pick(&f.ActiveSocial, r.ActiveSocial)
	return f
}

// UnmarshalJSON applies defaults for absent flags.
func (f *Filters) UnmarshalJSON(data []byte) error {
	var r rawFilters
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	*f = r.resolve()
	return nil
}

// UnmarshalYAML applies defaults for absent flags.
func (f *Filters) UnmarshalYAML(unmarshal func(any) error) error {
	var r rawFilters
	if err := unmarshal(&r); err != nil {
		return err
	}
	*f = r.resolve()
	return nil
}

// SearchConfig is the input to a discovery job.
type SearchConfig struct {
	Location     string  `json:"location" yaml:"location"`
	BusinessType string  `json:"businessType" yaml:"business_type"`
	Filters      Filters `json:"filters" yaml:"filters"`
}

// NewSearchConfig returns a search with default filters.
func NewSearchConfig(location, businessType string) SearchConfig {
	return SearchConfig{
		Location:     location,
		BusinessType: businessType,
		Filters:      DefaultFilters(),
	}
}

// UnmarshalJSON defaults Filters when the key is absent.
func (s *SearchConfig) UnmarshalJSON(data []byte) error {
	type alias SearchConfig
	a := alias{Filters: DefaultFilters()}
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*s = SearchConfig(a)
	return nil
}

// UnmarshalYAML defaults Filters when the key is absent.
func (s *SearchConfig) UnmarshalYAML(unmarshal func(any) error) error {
	type alias SearchConfig
	a := alias{Filters: DefaultFilters()}
	if err := unmarshal(&a); err != nil {
		return err
	}
	*s = SearchConfig(a)
	return nil
}

// Missing returns the names of required fields that are blank.
func (s SearchConfig) Missing() []string {
	var missing []string
	if strings.TrimSpace(s.Location) == "" {
		missing = append(missing, "location")
	}
	if strings.TrimSpace(s.BusinessType) == "" {
		missing = append(missing, "businessType")
	}
	return missing
}

package discovery

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/lead-scout/internal/classify"
	"github.com/sells-group/lead-scout/internal/model"
	"github.com/sells-group/lead-scout/internal/resilience"
	"github.com/sells-group/lead-scout/pkg/google"
)

const (
	defaultMaxPages = 3
	placesPageSize  = 20
)

// PlacesSource acquires candidates from Google Places Text Search.
type PlacesSource struct {
	client   google.Client
	limiter  *rate.Limiter
	retry    resilience.RetryConfig
	maxPages int
}

// NewPlacesSource creates a PlacesSource. rateLimit is requests per second.
func NewPlacesSource(client google.Client, rateLimit float64, maxPages int, retry resilience.RetryConfig) *PlacesSource {
	if rateLimit <= 0 {
		rateLimit = 5
	}
	if maxPages <= 0 {
		maxPages = defaultMaxPages
	}
	retry.OnRetry = resilience.RetryLogger("google_places", "search_text")
	retry.ShouldRetry = isRetryablePlacesError
	return &PlacesSource{
		client:   client,
		limiter:  rate.NewLimiter(rate.Limit(rateLimit), 1),
		retry:    retry,
		maxPages: maxPages,
	}
}

// Search returns the places matching "<businessType> in <location>". A
// failure after the first page returns the places gathered so far.
func (s *PlacesSource) Search(ctx context.Context, location, businessType string) ([]model.RawCandidate, error) {
	query := fmt.Sprintf("%s in %s", businessType, location)
	log := zap.L().With(zap.String("query", query))

	var (
		candidates []model.RawCandidate
		seen       = make(map[string]bool)
		pageToken  string
	)

	for page := 0; page < s.maxPages; page++ {
		if err := s.limiter.Wait(ctx); err != nil {
			if page == 0 {
				return nil, eris.Wrap(err, "places: rate limit wait")
			}
			log.Warn("places: rate limit wait failed, keeping partial results", zap.Int("page", page), zap.Error(err))
			break
		}

		req := google.DiscoverySearchRequest{
			TextQuery: query,
			PageSize:  placesPageSize,
			PageToken: pageToken,
		}
		resp, err := resilience.DoVal(ctx, s.retry, func(ctx context.Context) (*google.DiscoverySearchResponse, error) {
			return s.client.DiscoverySearch(ctx, req)
		})
		if err != nil {
			if page == 0 {
				return nil, eris.Wrap(err, "places: search")
			}
			log.Warn("places: later page failed, keeping partial results", zap.Int("page", page), zap.Error(err))
			break
		}

		for _, p := range resp.Places {
			if p.BusinessStatus == "CLOSED_PERMANENTLY" || seen[p.ID] {
				continue
			}
			seen[p.ID] = true
			candidates = append(candidates, candidateFromPlace(p))
		}

		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}

	log.Debug("places search complete", zap.Int("candidates", len(candidates)))
	return candidates, nil
}

func isRetryablePlacesError(err error) bool {
	var apiErr *google.APIError
	if errors.As(err, &apiErr) {
		return resilience.IsTransientHTTPStatus(apiErr.StatusCode)
	}
	return resilience.IsTransient(err)
}

func candidateFromPlace(p google.DiscoveryPlace) model.RawCandidate {
	street, city, state, zip := parseAddress(p.FormattedAddress)
	c := model.RawCandidate{
		SourceID:      p.ID,
		Name:          p.DisplayName.Text,
		Address:       street,
		City:          city,
		State:         state,
		PostalCode:    zip,
		Phone:         p.NationalPhoneNumber,
		WebsiteURL:    p.WebsiteURI,
		GoogleMapsURL: p.GoogleMapsURI,
		YelpURL:       yelpSearchURL(p.DisplayName.Text, city, state),
	}
	if c.Address == "" {
		c.Address = p.FormattedAddress
	}

	if classify.IsSocialURL(p.WebsiteURI) {
		host := strings.ToLower(p.WebsiteURI)
		switch {
		case strings.Contains(host, "instagram.com"):
			c.InstagramURL = p.WebsiteURI
		case strings.Contains(host, "facebook.com"), strings.Contains(host, "fb.com"), strings.Contains(host, "fb.me"):
			c.FacebookURL = p.WebsiteURI
		}
	}

	if p.UserRatingCount > 0 {
		c.Rating = model.Float64Ptr(p.Rating)
		c.ReviewCount = model.IntPtr(p.UserRatingCount)
	}
	return c
}

func yelpSearchURL(name, city, state string) string {
	q := url.Values{}
	q.Set("find_desc", name)
	loc := strings.Trim(city+", "+state, ", ")
	if loc != "" {
		q.Set("find_loc", loc)
	}
	return "https://www.yelp.com/search?" + q.Encode()
}

package discovery

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/lead-scout/internal/resilience"
	"github.com/sells-group/lead-scout/pkg/google"
	"github.com/sells-group/lead-scout/pkg/google/mocks"
)

func fastRetry() resilience.RetryConfig {
	return resilience.RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
		Multiplier:     2,
	}
}

func pageToken(token string) interface{} {
	return mock.MatchedBy(func(req google.DiscoverySearchRequest) bool {
		return req.PageToken == token
	})
}

func place(id, name string) google.DiscoveryPlace {
	return google.DiscoveryPlace{
		ID:               id,
		DisplayName:      google.DisplayName{Text: name},
		FormattedAddress: "1 Main St, Austin, TX 78701, USA",
		BusinessStatus:   "OPERATIONAL",
	}
}

func TestPlacesSource_Paginates(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("DiscoverySearch", mock.Anything, mock.MatchedBy(func(req google.DiscoverySearchRequest) bool {
		return req.PageToken == "" && req.TextQuery == "cafe in Austin, TX" && req.PageSize == 20
	})).Return(&google.DiscoverySearchResponse{
		Places:        []google.DiscoveryPlace{place("a", "Alpha"), place("b", "Bravo")},
		NextPageToken: "page2",
	}, nil).Once()

	closed := place("c", "Closed Co")
	closed.BusinessStatus = "CLOSED_PERMANENTLY"
	client.On("DiscoverySearch", mock.Anything, pageToken("page2")).Return(&google.DiscoverySearchResponse{
		Places: []google.DiscoveryPlace{place("b", "Bravo"), closed, place("d", "Delta")},
	}, nil).Once()

	src := NewPlacesSource(client, 1000, 5, fastRetry())
	got, err := src.Search(context.Background(), "Austin, TX", "cafe")
	require.NoError(t, err)

	var names []string
	for _, c := range got {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"Alpha", "Bravo", "Delta"}, names)
}

func TestPlacesSource_StopsAtMaxPages(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("DiscoverySearch", mock.Anything, mock.Anything).Return(&google.DiscoverySearchResponse{
		Places:        []google.DiscoveryPlace{place("a", "Alpha")},
		NextPageToken: "more",
	}, nil).Twice()

	src := NewPlacesSource(client, 1000, 2, fastRetry())
	got, err := src.Search(context.Background(), "Austin, TX", "cafe")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestPlacesSource_RetriesTransientStatus(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("DiscoverySearch", mock.Anything, mock.Anything).
		Return(nil, &google.APIError{StatusCode: 503, Body: "unavailable"}).Once()
	client.On("DiscoverySearch", mock.Anything, mock.Anything).
		Return(&google.DiscoverySearchResponse{Places: []google.DiscoveryPlace{place("a", "Alpha")}}, nil).Once()

	src := NewPlacesSource(client, 1000, 1, fastRetry())
	got, err := src.Search(context.Background(), "Austin, TX", "cafe")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestPlacesSource_FirstPageErrorFails(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("DiscoverySearch", mock.Anything, mock.Anything).
		Return(nil, &google.APIError{StatusCode: 403, Body: "denied"}).Once()

	src := NewPlacesSource(client, 1000, 3, fastRetry())
	got, err := src.Search(context.Background(), "Austin, TX", "cafe")
	require.Error(t, err)
	assert.Nil(t, got)

	var apiErr *google.APIError
	assert.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 403, apiErr.StatusCode)
}

func TestPlacesSource_LaterPageErrorKeepsPartial(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("DiscoverySearch", mock.Anything, pageToken("")).Return(&google.DiscoverySearchResponse{
		Places:        []google.DiscoveryPlace{place("a", "Alpha")},
		NextPageToken: "page2",
	}, nil).Once()
	client.On("DiscoverySearch", mock.Anything, pageToken("page2")).
		Return(nil, &google.APIError{StatusCode: 400, Body: "bad token"}).Once()

	src := NewPlacesSource(client, 1000, 3, fastRetry())
	got, err := src.Search(context.Background(), "Austin, TX", "cafe")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Alpha", got[0].Name)
}

func TestPlacesSource_DeadlineOnLaterPageKeepsPartial(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("DiscoverySearch", mock.Anything, pageToken("")).Return(&google.DiscoverySearchResponse{
		Places:        []google.DiscoveryPlace{place("a", "Alpha"), place("b", "Bravo")},
		NextPageToken: "page2",
	}, nil).Once()

	// One request per 100s: the second page cannot fit in the deadline.
	src := NewPlacesSource(client, 0.01, 3, fastRetry())
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	got, err := src.Search(ctx, "Austin, TX", "cafe")
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestPlacesSource_DeadlineBeforeFirstPageFails(t *testing.T) {
	client := mocks.NewMockClient(t)

	src := NewPlacesSource(client, 1000, 3, fastRetry())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got, err := src.Search(ctx, "Austin, TX", "cafe")
	require.Error(t, err)
	assert.Nil(t, got)
}

func TestCandidateFromPlace(t *testing.T) {
	p := google.DiscoveryPlace{
		ID:                  "abc",
		DisplayName:         google.DisplayName{Text: "Corner Cafe"},
		FormattedAddress:    "12 Oak St, Austin, TX 78704, USA",
		WebsiteURI:          "https://www.instagram.com/cornercafe",
		NationalPhoneNumber: "(512) 555-0199",
		Rating:              4.6,
		UserRatingCount:     88,
		GoogleMapsURI:       "https://maps.google.com/?cid=1",
	}
	c := candidateFromPlace(p)

	assert.Equal(t, "abc", c.SourceID)
	assert.Equal(t, "12 Oak St", c.Address)
	assert.Equal(t, "Austin", c.City)
	assert.Equal(t, "TX", c.State)
	assert.Equal(t, "78704", c.PostalCode)
	assert.Equal(t, "(512) 555-0199", c.Phone)
	assert.Equal(t, p.WebsiteURI, c.InstagramURL)
	assert.Empty(t, c.FacebookURL)
	require.NotNil(t, c.Rating)
	assert.InDelta(t, 4.6, *c.Rating, 0.001)
	assert.Equal(t, 88, *c.ReviewCount)
	assert.Equal(t, "https://www.yelp.com/search?find_desc=Corner+Cafe&find_loc=Austin%2C+TX", c.YelpURL)
}

func TestCandidateFromPlace_NoReviews(t *testing.T) {
	c := candidateFromPlace(google.DiscoveryPlace{
		DisplayName:      google.DisplayName{Text: "New Spot"},
		FormattedAddress: "Main Plaza",
		WebsiteURI:       "https://facebook.com/newspot",
		Rating:           0,
	})
	assert.Nil(t, c.Rating)
	assert.Nil(t, c.ReviewCount)
	assert.Equal(t, "Main Plaza", c.Address)
	assert.Equal(t, "https://facebook.com/newspot", c.FacebookURL)
	assert.Equal(t, "https://www.yelp.com/search?find_desc=New+Spot", c.YelpURL)
}

func TestIsRetryablePlacesError(t *testing.T) {
	assert.True(t, isRetryablePlacesError(&google.APIError{StatusCode: 429}))
	assert.True(t, isRetryablePlacesError(&google.APIError{StatusCode: 502}))
	assert.False(t, isRetryablePlacesError(&google.APIError{StatusCode: 404}))
	assert.True(t, isRetryablePlacesError(resilience.NewTransientError(errors.New("reset"), 0)))
	assert.False(t, isRetryablePlacesError(errors.New("boom")))
}

package discovery

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/lead-scout/internal/scorer"
	"github.com/sells-group/lead-scout/pkg/jina"
)

const (
	facebookPostsQuery  = `"Corner Cafe" facebook posts`
	instagramPostsQuery = `"Corner Cafe" instagram posts`
)

func TestJinaActivityResolver_YoungestPost(t *testing.T) {
	client := &fakeJina{
		results: map[string][]jina.SearchResult{
			facebookPostsQuery: {
				{Title: "Corner Cafe | Facebook", URL: "https://facebook.com/cornercafe", Content: "Corner Cafe. 2 weeks ago: New pastries!"},
			},
			instagramPostsQuery: {
				{Title: "Corner Cafe (@cornercafe)", URL: "https://instagram.com/cornercafe", Description: "Posted 3 days ago"},
			},
		},
	}

	got, err := NewJinaActivityResolver(client).RecentActivity(context.Background(), "Corner Cafe", nil)
	require.NoError(t, err)
	assert.Equal(t, "3 days ago", got)
	assert.Equal(t, 3, scorer.ParseDaysAgo(got))
	assert.Equal(t, []string{facebookPostsQuery, instagramPostsQuery}, client.queries)
}

func TestJinaActivityResolver_OnlyKnownPlatforms(t *testing.T) {
	client := &fakeJina{
		results: map[string][]jina.SearchResult{
			facebookPostsQuery: {{URL: "https://facebook.com/cornercafe", Content: "Updated yesterday"}},
		},
	}

	got, err := NewJinaActivityResolver(client).RecentActivity(context.Background(), "Corner Cafe", []string{"https://www.facebook.com/cornercafe"})
	require.NoError(t, err)
	assert.Equal(t, "1 day ago", got)
	assert.Equal(t, []string{facebookPostsQuery}, client.queries)
}

func TestJinaActivityResolver_NoActivity(t *testing.T) {
	client := &fakeJina{
		results: map[string][]jina.SearchResult{
			facebookPostsQuery: {{URL: "https://facebook.com/cornercafe", Content: "Open daily 7am-3pm"}},
		},
		errs: map[string]error{instagramPostsQuery: errors.New("timeout")},
	}

	got, err := NewJinaActivityResolver(client).RecentActivity(context.Background(), "Corner Cafe", nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestJinaActivityResolver_AllSearchesFail(t *testing.T) {
	client := &fakeJina{
		errs: map[string]error{
			facebookPostsQuery:  errors.New("rate limited"),
			instagramPostsQuery: errors.New("rate limited"),
		},
	}

	_, err := NewJinaActivityResolver(client).RecentActivity(context.Background(), "Corner Cafe", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all searches failed")
}

func TestPostAge(t *testing.T) {
	tests := []struct {
		text string
		days int
		ok   bool
	}{
		{"posted 5 hours ago", 0, true},
		{"2 weeks ago and 4 days ago", 4, true},
		{"3 mos ago", 90, true},
		{"yesterday", 1, true},
		{"Open daily", 0, false},
	}
	for _, tt := range tests {
		days, ok := postAge(tt.text)
		assert.Equal(t, tt.ok, ok, tt.text)
		assert.Equal(t, tt.days, days, tt.text)
	}
	assert.Equal(t, "1 day ago", formatDaysAgo(0))
	assert.Equal(t, "12 days ago", formatDaysAgo(12))
}

func TestStaticActivityResolver(t *testing.T) {
	got, err := StaticActivityResolver{}.RecentActivity(context.Background(), "Corner Cafe", nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

package classify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/lead-scout/internal/model"
)

type stubFetcher struct {
	signals *PageSignals
	err     error
	calls   int
}

func (s *stubFetcher) Fetch(ctx context.Context, _ string) (*PageSignals, error) {
	s.calls++
	return s.signals, s.err
}

func TestClassifyRules(t *testing.T) {
	modern := &PageSignals{HasViewport: true, HasModernFramework: true, IsSecureTransport: true}

	tests := []struct {
		name    string
		url     string
		signals *PageSignals
		want    model.WebsiteStatus
	}{
		{"empty url", "", modern, model.WebsiteNone},
		{"blank url", "   ", nil, model.WebsiteNone},
		{"facebook", "https://www.facebook.com/cornercafe", nil, model.WebsiteSocial},
		{"instagram", "https://instagram.com/cornercafe", modern, model.WebsiteSocial},
		{"facebook subdomain", "https://m.facebook.com/cornercafe", nil, model.WebsiteSocial},
		{"no scheme social", "facebook.com/cornercafe", nil, model.WebsiteSocial},
		{"lookalike host", "https://notfacebook.com", modern, model.WebsiteModern},
		{"unreachable", "https://cornercafe.com", nil, model.WebsiteOutdated},
		{"all signals", "https://cornercafe.com", modern, model.WebsiteModern},
		{"no viewport", "https://cornercafe.com", &PageSignals{HasModernFramework: true, IsSecureTransport: true}, model.WebsiteOutdated},
		{"no framework", "https://cornercafe.com", &PageSignals{HasViewport: true, IsSecureTransport: true}, model.WebsiteOutdated},
		{"plain http", "http://cornercafe.com", &PageSignals{HasViewport: true, HasModernFramework: true}, model.WebsiteOutdated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.url, tt.signals)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, Classify(tt.url, tt.signals), "classification is stable")
		})
	}
}

func TestClassifierSkipsFetchForNoWebsiteAndSocial(t *testing.T) {
	f := &stubFetcher{}
	c := NewClassifier(f, time.Second)

	assert.Equal(t, model.WebsiteNone, c.Classify(context.Background(), ""))
	assert.Equal(t, model.WebsiteSocial, c.Classify(context.Background(), "https://facebook.com/x"))
	assert.Equal(t, 0, f.calls)
}

func TestClassifierFetchError(t *testing.T) {
	f := &stubFetcher{err: errors.New("dial tcp: connection refused")}
	c := NewClassifier(f, time.Second)

	assert.Equal(t, model.WebsiteOutdated, c.Classify(context.Background(), "https://down.example"))
	assert.Equal(t, 1, f.calls)

	status, err := c.Assess(context.Background(), "https://down.example")
	assert.Equal(t, model.WebsiteOutdated, status)
	assert.Error(t, err)
	assert.Equal(t, 2, f.calls)
}

func TestClassifierModern(t *testing.T) {
	f := &stubFetcher{signals: &PageSignals{HasViewport: true, HasModernFramework: true, IsSecureTransport: true}}
	c := NewClassifier(f, 0)

	assert.Equal(t, model.WebsiteModern, c.Classify(context.Background(), "https://modern.example"))
	assert.Equal(t, 10*time.Second, c.timeout)
}

func TestIsSocialURL(t *testing.T) {
	assert.True(t, IsSocialURL("https://x.com/handle"))
	assert.True(t, IsSocialURL("https://www.linkedin.com/company/acme"))
	assert.False(t, IsSocialURL("https://acme.com"))
	assert.False(t, IsSocialURL(""))
	assert.False(t, IsSocialURL("://bad url"))
}

package discovery

import (
	"context"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-scout/internal/model"
)

// DefaultDemoBaseURL hosts placeholder demo assets.
const DefaultDemoBaseURL = "https://example.com/demo"

// PlaceholderDemoGenerator derives demo asset URLs from the business name.
// Nothing is rendered.
type PlaceholderDemoGenerator struct {
	baseURL string
}

// NewPlaceholderDemoGenerator creates a PlaceholderDemoGenerator rooted at
// baseURL, or DefaultDemoBaseURL when empty.
func NewPlaceholderDemoGenerator(baseURL string) *PlaceholderDemoGenerator {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultDemoBaseURL
	}
	return &PlaceholderDemoGenerator{baseURL: baseURL}
}

// Generate implements DemoGenerator.
func (g *PlaceholderDemoGenerator) Generate(_ context.Context, c model.RawCandidate) (model.DemoAssets, error) {
	slug := slugify(c.Name)
	if slug == "" {
		return model.DemoAssets{}, eris.New("demo: business name is empty")
	}
	prefix := g.baseURL + "/" + url.PathEscape(slug)
	return model.DemoAssets{
		DesktopScreenshotURL: prefix + "-desktop.png",
		MobileScreenshotURL:  prefix + "-mobile.png",
		VideoURL:             prefix + "-video.mp4",
	}, nil
}

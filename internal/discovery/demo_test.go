package discovery

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/lead-scout/internal/model"
)

func TestPlaceholderDemoGenerator(t *testing.T) {
	g := NewPlaceholderDemoGenerator("https://demos.example/assets/")

	got, err := g.Generate(context.Background(), model.RawCandidate{Name: "The Daily Grind"})
	require.NoError(t, err)
	assert.Equal(t, model.DemoAssets{
		DesktopScreenshotURL: "https://demos.example/assets/the-daily-grind-desktop.png",
		MobileScreenshotURL:  "https://demos.example/assets/the-daily-grind-mobile.png",
		VideoURL:             "https://demos.example/assets/the-daily-grind-video.mp4",
	}, got)
}

func TestPlaceholderDemoGenerator_Defaults(t *testing.T) {
	got, err := NewPlaceholderDemoGenerator("").Generate(context.Background(), model.RawCandidate{Name: "Cafe"})
	require.NoError(t, err)
	assert.Equal(t, DefaultDemoBaseURL+"/cafe-desktop.png", got.DesktopScreenshotURL)

	_, err = NewPlaceholderDemoGenerator("").Generate(context.Background(), model.RawCandidate{Name: "  "})
	assert.Error(t, err)
}

package discovery

import (
	"context"
	"fmt"
	"hash/fnv"
	"net/url"
	"strings"

	"github.com/sells-group/lead-scout/internal/model"
)

var sampleStreets = []string{
	"123 Main Street", "456 Oak Avenue", "789 Pine Road", "321 Elm Drive",
	"654 Maple Lane", "987 Cedar Court", "147 Birch Way", "258 Walnut Street",
}

var sampleRecentPosts = []string{"2 days ago", "1 week ago", "3 weeks ago", "2 months ago", ""}

// SampleSource returns deterministic sample businesses for offline runs.
// The same location and business type always yield the same candidates.
type SampleSource struct{}

// Search implements Source.
func (SampleSource) Search(ctx context.Context, location, businessType string) ([]model.RawCandidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	city, state := splitLocation(location)
	names := sampleNames(city, businessType)

	out := make([]model.RawCandidate, 0, len(names))
	for i, name := range names {
		h := hash32(name + "|" + city)
		handle := strings.ReplaceAll(strings.ToLower(name), " ", "")
		c := model.RawCandidate{
			SourceID:      fmt.Sprintf("sample-%08x", h),
			Name:          name,
			Address:       sampleStreets[i%len(sampleStreets)],
			City:          city,
			State:         state,
			PostalCode:    fmt.Sprintf("%05d", 10000+h%90000),
			Phone:         fmt.Sprintf("(%d) %d-%04d", 200+h%800, 200+(h>>8)%800, 1000+(h>>16)%9000),
			GoogleMapsURL: "https://maps.google.com/search/" + url.PathEscape(name+" "+city),
			YelpURL:       fmt.Sprintf("https://www.yelp.com/biz/%s-%s", slugify(name), slugify(city)),
			Rating:        model.Float64Ptr(3.0 + float64(h%21)/10),
			ReviewCount:   model.IntPtr(15 + int((h>>4)%200)),
			RecentPosts:   sampleRecentPosts[(h>>12)%uint32(len(sampleRecentPosts))],
		}
		if (h>>20)%10 >= 3 {
			c.FacebookURL = "https://facebook.com/" + handle
		}
		if (h>>24)%10 >= 4 {
			c.InstagramURL = "https://instagram.com/" + handle
		}
		if (h>>28)%2 == 0 {
			c.Email = "info@" + handle + ".com"
		}
		out = append(out, c)
	}
	return out, nil
}

func splitLocation(location string) (city, state string) {
	parts := strings.SplitN(location, ",", 2)
	city = strings.TrimSpace(parts[0])
	if len(parts) > 1 {
		state = strings.TrimSpace(parts[1])
	}
	if city == "" {
		city = "Downtown"
	}
	if state == "" {
		state = "CA"
	}
	return city, state
}

func sampleNames(city, businessType string) []string {
	t := strings.ToLower(businessType)
	word := strings.Fields(businessType + " Business")[0]
	switch {
	case strings.Contains(t, "cafe"), strings.Contains(t, "coffee"):
		return []string{city + " Coffee Roasters", "The Daily Grind", "Sunrise Cafe", "Bean There Done That", "Local Grounds"}
	case strings.Contains(t, "restaurant"):
		return []string{city + " Bistro", "Home Kitchen", "The Local Table", "Family Diner", "Garden Restaurant"}
	case strings.Contains(t, "bar"), strings.Contains(t, "pub"):
		return []string{city + " Taphouse", "The Corner Pub", "Local Brewery", "Craft Beer Co."}
	case strings.Contains(t, "salon"), strings.Contains(t, "beauty"):
		return []string{city + " Hair Studio", "Bella Beauty Salon", "Style & Grace", "The Hair Lounge"}
	default:
		return []string{city + " " + word + " Co.", "Local " + word + " Shop", "Family " + word, word + " Express"}
	}
}

func hash32(s string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return h.Sum32()
}

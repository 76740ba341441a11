package classify

import (
	"context"
	"errors"
	"io"
	"mime"
	"net"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"
)

const maxBodyBytes = 512 * 1024

// HTTPFetcher fetches homepages over net/http.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	timeout   time.Duration
}

// FetcherOption configures an HTTPFetcher.
type FetcherOption func(*HTTPFetcher)

// WithHTTPClient sets the HTTP client used for fetches.
func WithHTTPClient(c *http.Client) FetcherOption {
	return func(f *HTTPFetcher) { f.client = c }
}

// WithTimeout sets the overall request timeout without replacing the
// client's redirect policy or transport.
func WithTimeout(d time.Duration) FetcherOption {
	return func(f *HTTPFetcher) { f.timeout = d }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) FetcherOption {
	return func(f *HTTPFetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// NewHTTPFetcher creates an HTTPFetcher with sensible defaults.
func NewHTTPFetcher(opts ...FetcherOption) *HTTPFetcher {
	f := &HTTPFetcher{
		client: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 5 * time.Second,
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 5 {
					return errors.New("stopped after 5 redirects")
				}
				return nil
			},
		},
		userAgent: "Mozilla/5.0 (compatible; LeadScout/1.0)",
	}
	for _, o := range opts {
		o(f)
	}
	if f.timeout > 0 {
		c := *f.client
		c.Timeout = f.timeout
		f.client = &c
	}
	return f
}

// Fetch retrieves websiteURL and extracts its page signals.
func (f *HTTPFetcher) Fetch(ctx context.Context, websiteURL string) (*PageSignals, error) {
	target := strings.TrimSpace(websiteURL)
	if !strings.Contains(target, "://") {
		target = "http://" + target
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, eris.Wrap(err, "classify: create request")
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "classify: fetch")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, eris.Wrap(err, "classify: read body")
	}

	if blocked, kind := detectBlock(resp, body); blocked {
		return nil, eris.Errorf("classify: blocked (%s)", kind)
	}
	if resp.StatusCode >= 400 {
		return nil, eris.Errorf("classify: status %d", resp.StatusCode)
	}

	html := decodeBody(resp.Header.Get("Content-Type"), body)
	signals := Inspect(html)
	signals.IsSecureTransport = resp.TLS != nil || (resp.Request != nil && resp.Request.URL.Scheme == "https")
	return signals, nil
}

// decodeBody converts body to UTF-8 using the declared charset. Unknown
// charsets are passed through unchanged.
func decodeBody(contentType string, body []byte) string {
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return string(body)
	}
	charset := params["charset"]
	if charset == "" || strings.EqualFold(charset, "utf-8") {
		return string(body)
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return string(body)
	}
	out, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return string(body)
	}
	return string(out)
}

var (
	viewportRe = regexp.MustCompile(`(?i)<meta[^>]+name\s*=\s*["']?viewport`)
	assetRe    = regexp.MustCompile(`(?i)<(?:link|script)[^>]+(?:href|src)\s*=\s*["']([^"']+)["']`)
)

// frameworkMarkers maps a framework to substrings found in asset references.
var frameworkMarkers = []struct {
	name    string
	markers []string
}{
	{"bootstrap", []string{"bootstrap"}},
	{"tailwind", []string{"tailwind"}},
	{"react", []string{"react"}},
	{"vue", []string{"vue"}},
	{"angular", []string{"angular"}},
	{"next", []string{"/_next/"}},
	{"nuxt", []string{"/_nuxt/"}},
	{"svelte", []string{"svelte"}},
}

// inlineMarkers identify frameworks that leave traces in the markup rather
// than in asset URLs.
var inlineMarkers = map[string]string{
	`id="__next"`:    "next",
	"window.__nuxt__": "nuxt",
	"data-reactroot":  "react",
	"ng-version=":     "angular",
}

// Inspect extracts viewport and framework signals from an HTML document.
// IsSecureTransport is left false; the caller knows the transport.
func Inspect(html string) *PageSignals {
	s := &PageSignals{HasViewport: viewportRe.MatchString(html)}

	found := make(map[string]bool)
	for _, m := range assetRe.FindAllStringSubmatch(html, -1) {
		ref := strings.ToLower(m[1])
		for _, fw := range frameworkMarkers {
			for _, marker := range fw.markers {
				if strings.Contains(ref, marker) {
					found[fw.name] = true
				}
			}
		}
	}

	lower := strings.ToLower(html)
	for marker, name := range inlineMarkers {
		if strings.Contains(lower, strings.ToLower(marker)) {
			found[name] = true
		}
	}

	for _, fw := range frameworkMarkers {
		if found[fw.name] {
			s.Frameworks = append(s.Frameworks, fw.name)
		}
	}
	s.HasModernFramework = len(s.Frameworks) > 0
	return s
}

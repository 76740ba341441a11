package classify

import (
	"net/http"
	"strings"
)

// blockType describes the kind of anti-bot page detected.
type blockType string

const (
	blockNone       blockType = ""
	blockCloudflare blockType = "cloudflare"
	blockCaptcha    blockType = "captcha"
)

// detectBlock checks a response for anti-bot interstitials. A blocked page
// tells us nothing about the real site, so it is treated as unreachable.
func detectBlock(resp *http.Response, body []byte) (bool, blockType) {
	if resp == nil {
		return false, blockNone
	}

	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusServiceUnavailable {
		if resp.Header.Get("cf-ray") != "" || resp.Header.Get("server") == "cloudflare" {
			return true, blockCloudflare
		}
	}

	lower := strings.ToLower(string(body))

	if strings.Contains(lower, "checking your browser") ||
		strings.Contains(lower, "cf-browser-verification") {
		return true, blockCloudflare
	}

	// Captcha widgets also appear on ordinary contact forms; only a small
	// page that is mostly the challenge counts.
	if len(body) < 4000 && (strings.Contains(lower, "captcha") || strings.Contains(lower, "are you a robot")) {
		return true, blockCaptcha
	}

	return false, blockNone
}

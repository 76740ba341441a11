package discovery

import (
	"strings"
	"unicode"
)

// parseAddress performs a best-effort split of a formatted address like
// "123 Main St, Springfield, IL 62701, USA" into street, city, state and zip.
func parseAddress(addr string) (street, city, state, zip string) {
	parts := splitAddress(addr)
	if len(parts) == 0 {
		return "", "", "", ""
	}
	street = parts[0]
	if len(parts) < 2 {
		return street, "", "", ""
	}

	for i := len(parts) - 1; i >= 0; i-- {
		if s, z := parseStateZip(parts[i]); s != "" {
			state, zip = s, z
			if i > 0 {
				city = parts[i-1]
			}
			if i <= 1 {
				street = ""
			}
			return street, city, state, zip
		}
	}

	city = parts[len(parts)-1]
	return street, city, state, zip
}

var countrySuffixes = map[string]bool{"USA": true, "US": true, "UNITED STATES": true}

// splitAddress splits on commas and drops a trailing country.
func splitAddress(addr string) []string {
	var parts []string
	for _, p := range strings.Split(addr, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if n := len(parts); n > 1 && countrySuffixes[strings.ToUpper(parts[n-1])] {
		parts = parts[:n-1]
	}
	return parts
}

// parseStateZip parses "IL 62701" or "IL".
func parseStateZip(s string) (state, zip string) {
	fields := strings.Fields(s)
	if len(fields) == 0 || len(fields) > 2 {
		return "", ""
	}
	candidate := fields[0]
	if len(candidate) != 2 || !unicode.IsUpper(rune(candidate[0])) || !unicode.IsUpper(rune(candidate[1])) {
		return "", ""
	}
	if len(fields) == 2 {
		if !isZipCode(fields[1]) {
			return "", ""
		}
		zip = fields[1]
	}
	return candidate, zip
}

func isZipCode(s string) bool {
	if len(s) < 5 || len(s) > 10 {
		return false
	}
	for _, c := range s {
		if c != '-' && !unicode.IsDigit(c) {
			return false
		}
	}
	return true
}

// slugify lowercases name and joins its words with hyphens.
func slugify(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}

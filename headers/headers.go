// Package headers reconstructs a minimal, safe HTTP header set for fetching a
// captured media resource outside the browser that discovered it.
//
// Origin servers routinely reject bare re-fetches of the URLs a page player
// requested. Replaying the content-negotiation and identity headers the page
// used, with a handful of forced defaults, is what keeps the direct fetch
// authorized.
package headers

import (
	"net/url"
	"strings"

	"github.com/vidsieve-cli/vidsieve/constant"
)

// Canonical header names used by the resolver.
const (
	Accept         = "Accept"
	AcceptEncoding = "Accept-Encoding"
	Range          = "Range"
	Referer        = "Referer"
	Origin         = "Origin"
	UserAgent      = "User-Agent"
)

// FullRange requests the entire byte range of a resource. It is forced
// unconditionally so a single request retrieves the whole file rather than
// the first chunk a page player happened to ask for.
const FullRange = "bytes=0-"

// allowlist holds the lowercase header names that survive reconstruction.
// Everything else the browser sent is dropped.
var allowlist = map[string]struct{}{
	"accept":          {},
	"accept-encoding": {},
	"accept-language": {},
	"range":           {},
	"user-agent":      {},
	"cookie":          {},
	"referer":         {},
	"origin":          {},
	"sec-fetch-site":  {},
	"sec-fetch-mode":  {},
	"sec-fetch-dest":  {},
}

// Resolved is the immutable header set used to fetch one resource.
type Resolved struct {
	// URL of the resource these headers authorize.
	URL string
	// Header maps canonical header names to values.
	Header map[string]string
}

// Resolve builds the download header set for a resource discovered on the
// page at pageURL. It is pure and total: any input, including empty headers
// and empty URLs, yields a usable header set.
//
// Retained captured headers are limited to the allowlist and re-cased
// canonically. Range is forced to the full byte range even when the capture
// carried a partial one. Accept and Accept-Encoding default to permissive
// identity values; identity encoding avoids silent compressed-body mismatches
// with the declared content length. Referer and Origin fall back to the
// discovering page, User-Agent to the supplied fallback.
func Resolve(raw map[string]string, resourceURL, pageURL, fallbackUA string) Resolved {
	header := make(map[string]string, len(raw)+4)

	for name, value := range raw {
		lower := strings.ToLower(name)
		if _, ok := allowlist[lower]; !ok || value == "" {
			continue
		}
		header[Canonical(lower)] = value
	}

	if pageURL != "" {
		if _, ok := header[Referer]; !ok {
			header[Referer] = pageURL
		}
		if _, ok := header[Origin]; !ok {
			if origin := pageOrigin(pageURL); origin != "" {
				header[Origin] = origin
			}
		}
	}

	if header[UserAgent] == "" {
		if fallbackUA == "" {
			fallbackUA = constant.UserAgent
		}
		header[UserAgent] = fallbackUA
	}

	header[Range] = FullRange
	if _, ok := header[Accept]; !ok {
		header[Accept] = "*/*"
	}
	if _, ok := header[AcceptEncoding]; !ok {
		header[AcceptEncoding] = "identity"
	}

	return Resolved{URL: resourceURL, Header: header}
}

// Canonical normalizes a header name to its canonical dash-separated casing,
// e.g. "sec-fetch-mode" becomes "Sec-Fetch-Mode".
func Canonical(name string) string {
	parts := strings.Split(strings.ToLower(name), "-")
	for i, part := range parts {
		if len(part) > 0 {
			parts[i] = strings.ToUpper(part[:1]) + part[1:]
		}
	}
	return strings.Join(parts, "-")
}

func pageOrigin(pageURL string) string {
	parsed, err := url.Parse(pageURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return ""
	}
	return parsed.Scheme + "://" + parsed.Host
}

// Package classify decides how each captured resource URL is handled:
// resolved through its playlist, fetched directly, or dropped because a
// playlist already covers it.
package classify

import (
	"net/url"
	"path"
	"strings"
)

// Class tags the handling strategy for a resource URL.
type Class uint8

const (
	// DirectBinary is fetched with a streamed HTTP request. URLs that match
	// no known extension also default here rather than being rejected.
	DirectBinary Class = iota
	// Playlist is an adaptive-streaming manifest, resolved through the
	// external toolbox into a single container.
	Playlist
	// SubsumedSegment is a fragment that lives under a playlist's directory;
	// it is excluded from downloading because playlist resolution already
	// retrieves its content.
	SubsumedSegment
)

func (c Class) String() string {
	switch c {
	case Playlist:
		return "playlist"
	case SubsumedSegment:
		return "subsumed segment"
	default:
		return "direct binary"
	}
}

// ManifestExt is the manifest extension for adaptive streaming playlists.
const ManifestExt = ".m3u8"

// fragmentExts are extensions denoting time-slice fragments of a stream.
var fragmentExts = map[string]struct{}{
	".ts":  {},
	".m4s": {},
}

// Classified pairs a resource URL with its handling class.
type Classified struct {
	URL   string
	Class Class
}

// Partition classifies the given URLs in discovery order and filters out
// fragments subsumed by a playlist.
//
// A URL is a Playlist iff its path ends in the manifest extension. Every
// playlist contributes its containing directory as a base prefix; a
// fragment-extension URL whose path starts with any base prefix is dropped
// entirely, since downloading hundreds of individual fragments would
// duplicate the content the playlist resolution retrieves as one file.
// Everything else is DirectBinary.
//
// The subsumption rule is a pure path-prefix heuristic with no verification
// against the manifest's actual segment list; a non-fragment resource that
// happens to share a playlist's directory keeps its own class, but a sibling
// playlist's fragments are indistinguishable and are dropped too. Running
// Partition on its own surviving URLs yields the same result.
func Partition(urls []string) []Classified {
	basePrefixes := make([]string, 0, 1)
	for _, raw := range urls {
		p := urlPath(raw)
		if !strings.HasSuffix(strings.ToLower(p), ManifestExt) {
			continue
		}
		if idx := strings.LastIndex(p, "/"); idx >= 0 {
			basePrefixes = append(basePrefixes, p[:idx+1])
		}
	}

	out := make([]Classified, 0, len(urls))
	for _, raw := range urls {
		p := urlPath(raw)
		lower := strings.ToLower(p)

		if strings.HasSuffix(lower, ManifestExt) {
			out = append(out, Classified{URL: raw, Class: Playlist})
			continue
		}

		if _, frag := fragmentExts[strings.ToLower(path.Ext(p))]; frag {
			if subsumed(p, basePrefixes) {
				continue
			}
		}

		out = append(out, Classified{URL: raw, Class: DirectBinary})
	}
	return out
}

func subsumed(p string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}

// urlPath extracts the path component of a URL. Unparseable URLs fall back
// to the raw string with any query stripped, so classification stays total.
func urlPath(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Path == "" {
		if idx := strings.IndexAny(raw, "?#"); idx >= 0 {
			return raw[:idx]
		}
		return raw
	}
	return parsed.Path
}

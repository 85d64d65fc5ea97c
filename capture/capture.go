// Package capture defines the boundary types for the browser capture feed.
//
// The browser-automation collaborator observes page network traffic and emits
// one Resource per media response it sees. The pipeline never drives the
// browser; it consumes the finished feed exactly once per acquisition run.
package capture

import (
	"net/url"
	"sync"
	"time"
)

// Resource is a single captured network resource: the URL of a media response
// together with the request headers the page used to fetch it.
// Read-only to the pipeline.
type Resource struct {
	// URL of the captured media response.
	URL string `json:"url"`
	// RawHeaders holds the request headers exactly as the browser sent them.
	RawHeaders map[string]string `json:"raw_headers"`
	// DiscoveredAt orders resources by observation time.
	DiscoveredAt time.Time `json:"discovered_at"`
}

// Log is an append-only record of captured resources for one page visit.
//
// It replaces a long-lived mutable URL set polled by multiple stages: writers
// only append, and the accumulated feed is handed over exactly once through
// Snapshot. Appends after consumption are rejected.
type Log struct {
	mu        sync.Mutex
	pageURL   string
	resources []Resource
	seen      map[string]struct{}
	consumed  bool
}

// NewLog creates an empty capture log for the page at pageURL.
func NewLog(pageURL string) *Log {
	return &Log{
		pageURL: pageURL,
		seen:    make(map[string]struct{}),
	}
}

// FromURLs builds a pre-populated capture log from bare URLs, as produced by
// the pasted-input intake. The resources carry no raw headers; header
// reconstruction fills in defaults later.
func FromURLs(pageURL string, urls []string) *Log {
	l := NewLog(pageURL)
	now := time.Now()
	for _, u := range urls {
		l.Append(Resource{URL: u, DiscoveredAt: now})
	}
	return l
}

// PageURL returns the URL of the page whose traffic was captured.
func (l *Log) PageURL() string {
	return l.pageURL
}

// PageOrigin returns the scheme+host origin of the captured page, or an empty
// string when the page URL is unparseable.
func (l *Log) PageOrigin() string {
	return Origin(l.pageURL)
}

// Append records a resource observation. Duplicate URLs keep their first
// discovery; appends after the log has been consumed are dropped.
func (l *Log) Append(res Resource) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.consumed {
		return false
	}
	if _, ok := l.seen[res.URL]; ok {
		return false
	}
	if res.DiscoveredAt.IsZero() {
		res.DiscoveredAt = time.Now()
	}

	l.seen[res.URL] = struct{}{}
	l.resources = append(l.resources, res)
	return true
}

// Len returns the number of distinct resources recorded so far.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.resources)
}

// Snapshot hands the accumulated feed over in discovery order and seals the
// log. Subsequent calls return nil.
func (l *Log) Snapshot() []Resource {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.consumed {
		return nil
	}
	l.consumed = true

	out := make([]Resource, len(l.resources))
	copy(out, l.resources)
	return out
}

// Origin derives the scheme+host origin of a URL, or an empty string when the
// URL has no usable scheme and host.
func Origin(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return ""
	}
	return parsed.Scheme + "://" + parsed.Host
}

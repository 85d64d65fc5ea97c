// Package constant defines immutable application-level identifiers and configuration defaults.
package constant

const (
	// Vidsieve is the canonical application identifier used for filesystem paths and CLI branding.
	Vidsieve = "vidsieve"

	// Version is the current application semantic version string.
	Version = "0.1.0"

	// UserAgent is the default browser-grade HTTP User-Agent string used when a captured
	// resource carries no usable identity headers of its own.
	UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 13_6_6) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/129.0.6668.89 Safari/537.36"
)

// Build metadata, overridable at link time via -ldflags.
var (
	Revision = "unknown"
	BuiltAt  = "unknown"
	BuiltBy  = "unknown"
)

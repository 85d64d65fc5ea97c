// Package inline implements the non-interactive intake mode: resource URLs
// pasted or piped in directly, bypassing browser capture.
package inline

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"
)

// payload is the structured intake format, matching what the browser
// collaborator exports.
type payload struct {
	VideoURLs []string `json:"videoUrls"`
}

// ParseURLs extracts resource URLs from pasted input. A JSON object with a
// "videoUrls" array is honored first; anything else is treated as plain text
// with one URL per line. Non-URL lines and duplicates are dropped, order is
// preserved.
func ParseURLs(input string) []string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return nil
	}

	if strings.HasPrefix(trimmed, "{") {
		var p payload
		if err := json.Unmarshal([]byte(trimmed), &p); err == nil {
			return dedupe(p.VideoURLs)
		}
	}

	var urls []string
	scanner := bufio.NewScanner(strings.NewReader(trimmed))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "http://") || strings.HasPrefix(line, "https://") {
			urls = append(urls, line)
		}
	}
	return dedupe(urls)
}

// ReadAll drains a reader and parses its content as pasted input.
func ReadAll(r io.Reader) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return ParseURLs(string(data)), nil
}

func dedupe(urls []string) []string {
	var out []string
	seen := make(map[string]struct{}, len(urls))
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}

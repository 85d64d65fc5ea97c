// Package pipeline orchestrates one acquisition run end to end: it consumes
// the capture feed, classifies and downloads its resources, consolidates
// fragment groups and muxes split audio/video pairs, then reports what is
// left on disk.
package pipeline

import (
	"context"
	"errors"

	"github.com/spf13/viper"
	"github.com/vidsieve-cli/vidsieve/capture"
	"github.com/vidsieve-cli/vidsieve/classify"
	"github.com/vidsieve-cli/vidsieve/download"
	"github.com/vidsieve-cli/vidsieve/headers"
	"github.com/vidsieve-cli/vidsieve/history"
	"github.com/vidsieve-cli/vidsieve/key"
	"github.com/vidsieve-cli/vidsieve/log"
	"github.com/vidsieve-cli/vidsieve/mux"
	"github.com/vidsieve-cli/vidsieve/reassemble"
	"github.com/vidsieve-cli/vidsieve/toolbox"
)

// ErrEmptyFeed is returned when the capture feed contained no resources at
// all, so there is nothing to acquire.
var ErrEmptyFeed = errors.New("capture feed is empty")

// Options parameterizes one acquisition run.
type Options struct {
	// DestDir receives every produced file. Empty falls back to the
	// configured downloads path.
	DestDir string
	// UserAgent overrides the configured fallback user agent when set.
	UserAgent string
}

// Report summarizes a finished run.
type Report struct {
	// Downloaded counts resources fetched successfully.
	Downloaded int
	// Failed counts resources that were attempted and failed.
	Failed int
	// FailedURLs names the resources behind the Failed count.
	FailedURLs []string
	// Consolidated counts merged fragment-group outputs.
	Consolidated int
	// Muxed counts combined audio/video outputs.
	Muxed int
	// Files are the final media files left in DestDir, post-processing
	// outputs included and consumed intermediates excluded.
	Files []string
}

// Run executes the acquisition pipeline over feed, consuming it. Partial
// failure degrades the report; only an empty feed or a fully failed download
// stage aborts the run.
func Run(ctx context.Context, box toolbox.Toolbox, feed *capture.Log, opts Options) (*Report, error) {
	resources := feed.Snapshot()
	if len(resources) == 0 {
		return nil, ErrEmptyFeed
	}

	destDir := opts.DestDir
	if destDir == "" {
		destDir = viper.GetString(key.DownloadsPath)
	}
	fallbackUA := opts.UserAgent
	if fallbackUA == "" {
		fallbackUA = viper.GetString(key.DownloadsUserAgent)
	}

	items := plan(resources, feed.PageURL(), fallbackUA)
	log.Infof("acquiring %d of %d captured resources from %s", len(items), len(resources), feed.PageURL())

	files, failed, err := download.New(box).Batch(ctx, items, destDir)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Downloaded: len(files),
		Failed:     len(failed),
		FailedURLs: failed,
	}

	working := newWorkingSet(files)

	merged, consumed, err := reassemble.Consolidate(ctx, box, working.list(), destDir)
	if err != nil {
		log.Errorf("consolidation stage: %v", err)
	}
	report.Consolidated = len(merged)
	working.replace(consumed, merged)

	muxed, consumed, err := mux.Combine(ctx, box, working.list(), destDir)
	if err != nil {
		log.Errorf("muxing stage: %v", err)
	}
	report.Muxed = len(muxed)
	working.replace(consumed, muxed)

	report.Files = working.list()

	saveHistory(feed.PageURL(), report)
	return report, nil
}

// plan converts the consumed feed into download work: classification filters
// subsumed fragments, header reconstruction authorizes each survivor.
func plan(resources []capture.Resource, pageURL, fallbackUA string) []download.Item {
	rawByURL := make(map[string]map[string]string, len(resources))
	urls := make([]string, 0, len(resources))
	for _, res := range resources {
		urls = append(urls, res.URL)
		rawByURL[res.URL] = res.RawHeaders
	}

	classified := classify.Partition(urls)

	items := make([]download.Item, 0, len(classified))
	for i, c := range classified {
		index := i
		if len(classified) == 1 {
			index = download.NoIndex
		}
		resolved := headers.Resolve(rawByURL[c.URL], c.URL, pageURL, fallbackUA)
		items = append(items, download.Item{
			URL:     c.URL,
			Class:   c.Class,
			Headers: resolved.Header,
			Index:   index,
		})
	}
	return items
}

func saveHistory(pageURL string, report *Report) {
	if !viper.GetBool(key.HistorySaveOnDownload) || pageURL == "" {
		return
	}
	err := history.Save(&history.SavedRun{
		PageURL:   pageURL,
		Outputs:   report.Files,
		Succeeded: report.Downloaded,
		Failed:    report.Failed,
	})
	if err != nil {
		log.Errorf("saving run history: %v", err)
	}
}

// workingSet tracks the files currently on disk as post-processing stages
// consume inputs and produce outputs, preserving insertion order.
type workingSet struct {
	order   []string
	present map[string]bool
}

func newWorkingSet(files []string) *workingSet {
	w := &workingSet{present: make(map[string]bool, len(files))}
	w.replace(nil, files)
	return w
}

func (w *workingSet) replace(consumed, produced []string) {
	for _, f := range consumed {
		w.present[f] = false
	}
	for _, f := range produced {
		if _, known := w.present[f]; !known {
			w.order = append(w.order, f)
		}
		w.present[f] = true
	}
}

func (w *workingSet) list() []string {
	out := make([]string, 0, len(w.order))
	for _, f := range w.order {
		if w.present[f] {
			out = append(out, f)
		}
	}
	return out
}

// Package history persists a record of completed acquisition runs.
package history

import (
	"time"

	"github.com/metafates/gache"
	"github.com/vidsieve-cli/vidsieve/filesystem"
	"github.com/vidsieve-cli/vidsieve/where"
)

// SavedRun is one completed pipeline run, keyed by the page it acquired from.
type SavedRun struct {
	// PageURL of the visit that produced this run.
	PageURL string `json:"page_url"`
	// Outputs are the final media files the run left on disk.
	Outputs []string `json:"outputs"`
	// Succeeded counts resources that downloaded.
	Succeeded int `json:"succeeded"`
	// Failed counts resources that did not.
	Failed int `json:"failed"`
	// CompletedAt is when the run finished.
	CompletedAt time.Time `json:"completed_at"`
}

// cacher provides an abstracted, disk-backed registry for run records.
var cacher = gache.New[map[string]*SavedRun](
	&gache.Options{
		Path:       where.History(),
		FileSystem: &filesystem.GacheFs{},
	},
)

// Get returns the complete collection of saved runs from the persistent store.
func Get() (map[string]*SavedRun, error) {
	cached, expired, err := cacher.Get()
	if err != nil {
		return nil, err
	}
	if expired || cached == nil {
		return make(map[string]*SavedRun), nil
	}
	return cached, nil
}

// Save persists a run record. Re-acquiring the same page overwrites the
// previous record, newest wins.
func Save(run *SavedRun) error {
	saved, err := Get()
	if err != nil {
		return err
	}

	if run.CompletedAt.IsZero() {
		run.CompletedAt = time.Now()
	}
	saved[run.PageURL] = run

	return cacher.Set(saved)
}

// Remove permanently deletes the record of the run for pageURL.
func Remove(pageURL string) error {
	saved, err := Get()
	if err != nil {
		return err
	}

	delete(saved, pageURL)
	return cacher.Set(saved)
}

// Package download fetches classified resources into local media files.
//
// Direct binaries are streamed to disk with the reconstructed headers;
// playlists are delegated to the external toolbox, which resolves the
// manifest into a single container. Failures are isolated per item: one bad
// resource degrades the batch, it never aborts it.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/vidsieve-cli/vidsieve/classify"
	"github.com/vidsieve-cli/vidsieve/filesystem"
	"github.com/vidsieve-cli/vidsieve/key"
	"github.com/vidsieve-cli/vidsieve/log"
	"github.com/vidsieve-cli/vidsieve/network"
	"github.com/vidsieve-cli/vidsieve/toolbox"
	"github.com/vidsieve-cli/vidsieve/util"
)

// ErrNoDownloads is the terminal failure of the download stage: every
// resource in a non-empty batch failed.
var ErrNoDownloads = errors.New("all download attempts failed")

// NoIndex marks a single-item batch where filename disambiguation is not needed.
const NoIndex = -1

// defaultStem names files whose URL yields no usable filename.
const defaultStem = "video"

// Item is one unit of download work.
type Item struct {
	URL     string
	Class   classify.Class
	Headers map[string]string
	// Index disambiguates filenames across a batch; NoIndex for single items.
	Index int
}

// Engine performs resource fetches using the shared HTTP client and the
// external toolbox.
type Engine struct {
	client *http.Client
	box    toolbox.Toolbox
}

// New creates an Engine delegating playlist resolution to box.
func New(box toolbox.Toolbox) *Engine {
	return &Engine{
		client: network.Client,
		box:    box,
	}
}

// Filename derives the on-disk filename for a resource URL. The URL's last
// path segment is used with its query stripped; a missing extension is
// inferred from known manifest/binary markers anywhere in the URL; a batch
// index, when present, is inserted before the extension to guarantee
// uniqueness.
func Filename(rawURL string, index int) string {
	name := ""
	if parsed, err := url.Parse(rawURL); err == nil {
		name = path.Base(parsed.Path)
	}
	if name == "." || name == "/" {
		name = ""
	}

	if name != "" && path.Ext(name) == "" {
		lower := strings.ToLower(rawURL)
		switch {
		case strings.Contains(lower, classify.ManifestExt):
			name += classify.ManifestExt
		case strings.Contains(lower, ".mp4"):
			name += ".mp4"
		}
	}

	if name == "" || !strings.Contains(name, ".") {
		if index != NoIndex {
			return fmt.Sprintf("%s_%d.mp4", defaultStem, index)
		}
		return defaultStem + ".mp4"
	}

	// URL path segments may carry decoded spaces, quotes and other
	// characters unfit for a filename.
	ext := path.Ext(name)
	stem := util.SanitizeFilename(strings.TrimSuffix(name, ext))
	if stem == "" {
		stem = defaultStem
	}

	if index != NoIndex {
		return fmt.Sprintf("%s_%d%s", stem, index, ext)
	}
	return stem + ext
}

// Fetch downloads one item into destDir and returns the produced file path.
func (e *Engine) Fetch(ctx context.Context, item Item, destDir string) (string, error) {
	if err := filesystem.API().MkdirAll(destDir, os.ModePerm); err != nil {
		return "", fmt.Errorf("create destination: %w", err)
	}

	name := Filename(item.URL, item.Index)
	outputPath := filepath.Join(destDir, name)

	if item.Class == classify.Playlist {
		// The toolbox always emits a container, never a manifest.
		if strings.HasSuffix(strings.ToLower(outputPath), classify.ManifestExt) {
			outputPath = strings.TrimSuffix(outputPath, filepath.Ext(outputPath)) + ".mp4"
		}
		if err := e.box.RemuxManifest(ctx, item.URL, outputPath); err != nil {
			return "", err
		}
		return outputPath, nil
	}

	if err := e.fetchDirect(ctx, item, outputPath); err != nil {
		return "", err
	}
	return outputPath, nil
}

// fetchDirect performs a streamed HTTP fetch with the resolved headers,
// writing chunks to disk incrementally. The body is staged to a .part file
// and renamed on completion so partial fetches never masquerade as results.
func (e *Engine) fetchDirect(ctx context.Context, item Item, outputPath string) error {
	if seconds := viper.GetInt(key.DownloadsTimeout); seconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(seconds)*time.Second)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, item.URL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	for name, value := range item.Headers {
		req.Header.Set(name, value)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", item.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("fetch %s: unexpected status %s", item.URL, resp.Status)
	}

	tmp := outputPath + ".part"
	f, err := filesystem.API().Create(tmp)
	if err != nil {
		return fmt.Errorf("create %s: %w", tmp, err)
	}

	if err := copyBody(f, resp, item.URL); err != nil {
		_ = f.Close()
		_ = filesystem.API().Remove(tmp)
		return err
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp, err)
	}
	return filesystem.API().Rename(tmp, outputPath)
}

// copyBody streams the response body in chunks, reporting progress derived
// from the Content-Length header when the server supplied one.
func copyBody(dst io.Writer, resp *http.Response, rawURL string) error {
	var (
		total      = resp.ContentLength
		interval   = util.Max(total/10, 1)
		written    int64
		lastLogged int64
		buf        = make([]byte, 32*1024)
	)

	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return fmt.Errorf("write chunk: %w", werr)
			}
			written += int64(n)

			if total > 0 && written-lastLogged >= interval {
				lastLogged = written
				log.Debugf("downloading %s: %.0f%%", rawURL, float64(written)/float64(total)*100)
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read body of %s: %w", rawURL, err)
		}
	}

	log.Infof("downloaded %s (%d bytes)", rawURL, written)
	return nil
}

// Batch downloads all items with bounded concurrency and returns the paths
// of the files it produced, in item order, along with the URLs of the items
// that failed. Failed items are logged and dropped; the terminal condition
// of zero successes in a non-empty batch is reported as ErrNoDownloads.
func (e *Engine) Batch(ctx context.Context, items []Item, destDir string) (files, failed []string, err error) {
	if len(items) == 0 {
		return nil, nil, nil
	}

	concurrency := viper.GetInt(key.DownloadsConcurrency)
	if concurrency < 1 {
		concurrency = 1
	}

	var (
		results = make([]string, len(items))
		sem     = make(chan struct{}, concurrency)
		done    = make(chan int)
	)

	for i, item := range items {
		go func(i int, item Item) {
			defer func() { done <- i }()

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return
			}
			defer func() { <-sem }()

			if ctx.Err() != nil {
				return
			}

			produced, err := e.Fetch(ctx, item, destDir)
			if err != nil {
				log.Errorf("download failed for %s: %v", item.URL, err)
				return
			}
			results[i] = produced
		}(i, item)
	}

	for range items {
		<-done
	}

	for i, produced := range results {
		if produced == "" {
			failed = append(failed, items[i].URL)
			continue
		}
		files = append(files, produced)
	}

	if len(files) == 0 {
		return nil, failed, ErrNoDownloads
	}
	return files, failed, nil
}

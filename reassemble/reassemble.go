// Package reassemble consolidates downloaded transport-stream fragments
// back into whole files.
//
// Sites that serve one logical video as many numbered .ts slices leave the
// download directory littered with fragments; this stage groups them by
// their shared stem, orders each group by sequence number and concatenates
// it into a single merged file, consuming the fragments on success.
package reassemble

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/vidsieve-cli/vidsieve/filesystem"
	"github.com/vidsieve-cli/vidsieve/log"
	"github.com/vidsieve-cli/vidsieve/toolbox"
	"github.com/vidsieve-cli/vidsieve/util"
)

// fragmentExt is the only extension eligible for consolidation; anything
// else passes through untouched.
const fragmentExt = ".ts"

// mergedSuffix tags consolidated outputs so they are recognizable next to
// their untouched siblings.
const mergedSuffix = "_merged"

// rule extracts a (group key, sequence number) pair from a fragment stem.
// Rules are tried in order; the first match wins.
type rule struct {
	name string
	re   *regexp.Regexp
}

// Stems come in two shapes: `name_3_12` or `name3_12` where the first
// number is the slice sequence and the second a batch index, and `name_3`
// where the single trailing number is the sequence itself. The separator
// before the sequence is optional so that fragments named `seg0`, `seg1`
// still group once a batch index is glued on (`seg0_0`, `seg1_1`).
var rules = []rule{
	{name: "indexed-segment", re: regexp.MustCompile(`^(?P<key>.*?)[_\-.]?(?P<seq>\d+)_(?P<dl>\d+)$`)},
	{name: "trailing-number", re: regexp.MustCompile(`^(?P<key>.*?)[_\-.]?(?P<seq>\d+)$`)},
}

// fragment is one .ts file placed inside its group.
type fragment struct {
	path string
	stem string
	seq  int
}

// Split derives the group key and sequence number of a fragment stem. Stems
// with no trailing number form a single-member group keyed by the whole stem.
func Split(stem string) (key string, seq int) {
	for _, r := range rules {
		groups := util.ReGroups(r.re, stem)
		if len(groups) == 0 {
			continue
		}
		seq, err := strconv.Atoi(groups["seq"])
		if err != nil {
			continue
		}
		key = strings.TrimRight(groups["key"], "-_.")
		if key == "" {
			key = groups["key"]
		}
		return key, seq
	}
	return stem, 0
}

// Group buckets fragment paths by their shared stem key and orders each
// bucket by sequence number, breaking ties by stem. Grouping depends only on
// the set of paths, not their order.
func Group(paths []string) map[string][]string {
	buckets := make(map[string][]fragment)
	for _, p := range paths {
		stem := util.FileStem(p)
		key, seq := Split(stem)
		buckets[key] = append(buckets[key], fragment{path: p, stem: stem, seq: seq})
	}

	out := make(map[string][]string, len(buckets))
	for key, members := range buckets {
		sort.Slice(members, func(i, j int) bool {
			if members[i].seq != members[j].seq {
				return members[i].seq < members[j].seq
			}
			return members[i].stem < members[j].stem
		})
		ordered := make([]string, len(members))
		for i, m := range members {
			ordered[i] = m.path
		}
		out[key] = ordered
	}
	return out
}

// Consolidate merges every group of two or more .ts fragments among files
// into one output per group inside destDir, deleting the fragments whose
// merge succeeded. It returns the merged outputs and the consumed fragment
// paths. A failed group leaves all of its fragments on disk.
func Consolidate(ctx context.Context, box toolbox.Toolbox, files []string, destDir string) (merged, consumed []string, err error) {
	var fragments []string
	for _, f := range files {
		if strings.EqualFold(filepath.Ext(f), fragmentExt) {
			fragments = append(fragments, f)
		}
	}
	if len(fragments) < 2 {
		return nil, nil, nil
	}

	if !box.Available() {
		log.Warn("toolbox unavailable, leaving fragments as-is")
		return nil, nil, nil
	}

	groups := Group(fragments)

	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		members := groups[key]
		if len(members) < 2 {
			continue
		}

		output := availablePath(destDir, key+mergedSuffix, ".mp4")
		if err := box.Combine(ctx, members, output, toolbox.ConcatSegments); err != nil {
			log.Errorf("consolidating %s: %v", key, err)
			continue
		}

		merged = append(merged, output)
		for _, m := range members {
			if err := filesystem.API().Remove(m); err != nil {
				log.Errorf("removing consumed fragment %s: %v", m, err)
				continue
			}
			consumed = append(consumed, m)
		}
	}
	return merged, consumed, nil
}

// availablePath returns destDir/<stem><ext>, appending a numeric suffix when
// the name is already taken.
func availablePath(destDir, stem, ext string) string {
	candidate := filepath.Join(destDir, stem+ext)
	for i := 1; ; i++ {
		exists, err := filesystem.API().Exists(candidate)
		if err != nil || !exists {
			return candidate
		}
		candidate = filepath.Join(destDir, fmt.Sprintf("%s_%d%s", stem, i, ext))
	}
}

// Package mux pairs separately-delivered video-only and audio-only files
// and combines each pair into a single playable container.
//
// Adaptive-streaming sites commonly ship picture and sound as independent
// downloads; this stage probes each candidate, matches tracks by their
// normalized stem, and stream-copies every matched pair into one output,
// consuming both sides on success.
package mux

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/vidsieve-cli/vidsieve/filesystem"
	"github.com/vidsieve-cli/vidsieve/log"
	"github.com/vidsieve-cli/vidsieve/toolbox"
	"github.com/vidsieve-cli/vidsieve/util"
)

// fallbackStem names an output whose paired inputs share no common prefix.
const fallbackStem = "merged"

// track is a probed single-stream file awaiting its counterpart.
type track struct {
	path string
	stem string
}

// NormalizeStem strips a trailing numeric batch index (`_<n>`) from a file
// stem so that counterparts downloaded under different indices still match.
func NormalizeStem(stem string) string {
	idx := strings.LastIndex(stem, "_")
	if idx < 0 {
		return stem
	}
	if _, err := strconv.Atoi(stem[idx+1:]); err != nil {
		return stem
	}
	return stem[:idx]
}

// Combine probes files, pairs video-only tracks with audio-only tracks and
// muxes each pair into destDir. It returns the produced outputs and the
// consumed input paths. Files with both streams, with neither, or that fail
// probing are left alone.
//
// Pairing prefers an exact normalized-stem match; a video with no exact
// match falls back to the first remaining audio in sorted stem order. Each
// audio is consumed by at most one video.
func Combine(ctx context.Context, box toolbox.Toolbox, files []string, destDir string) (outputs, consumed []string, err error) {
	if len(files) < 2 || !box.Available() {
		return nil, nil, nil
	}

	var videos []track
	audios := make(map[string][]track)

	for _, f := range files {
		profile, err := box.Probe(ctx, f)
		if err != nil {
			log.Warnf("probing %s: %v", f, err)
			continue
		}

		t := track{path: f, stem: NormalizeStem(util.FileStem(f))}
		switch {
		case profile.VideoOnly():
			videos = append(videos, t)
		case profile.AudioOnly():
			audios[t.stem] = append(audios[t.stem], t)
		}
	}
	if len(videos) == 0 {
		return nil, nil, nil
	}

	sort.Slice(videos, func(i, j int) bool { return videos[i].stem < videos[j].stem })

	for _, video := range videos {
		audio, ok := takeAudio(audios, video.stem)
		if !ok {
			log.Debugf("no audio counterpart for %s", video.path)
			continue
		}

		output := outputPath(destDir, video.stem, audio.stem)
		if err := box.Combine(ctx, []string{video.path, audio.path}, output, toolbox.MergeTracks); err != nil {
			log.Errorf("muxing %s + %s: %v", video.path, audio.path, err)
			continue
		}

		outputs = append(outputs, output)
		for _, consumedPath := range []string{video.path, audio.path} {
			if err := filesystem.API().Remove(consumedPath); err != nil {
				log.Errorf("removing muxed input %s: %v", consumedPath, err)
				continue
			}
			consumed = append(consumed, consumedPath)
		}
	}
	return outputs, consumed, nil
}

// takeAudio removes and returns the audio track for stem, falling back to
// the first remaining audio in sorted stem order.
func takeAudio(audios map[string][]track, stem string) (track, bool) {
	if candidates := audios[stem]; len(candidates) > 0 {
		t := candidates[0]
		pop(audios, stem)
		return t, true
	}

	keys := make([]string, 0, len(audios))
	for key := range audios {
		if len(audios[key]) > 0 {
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		return track{}, false
	}
	sort.Strings(keys)

	t := audios[keys[0]][0]
	pop(audios, keys[0])
	return t, true
}

func pop(audios map[string][]track, key string) {
	rest := audios[key][1:]
	if len(rest) == 0 {
		delete(audios, key)
		return
	}
	audios[key] = rest
}

// outputPath derives the output filename from the longest common prefix of
// the two input stems, trimmed of dangling separators, with a numeric
// suffix on collision.
func outputPath(destDir, videoStem, audioStem string) string {
	stem := strings.TrimRight(commonPrefix(videoStem, audioStem), "-_.")
	if stem == "" {
		stem = fallbackStem
	}

	candidate := filepath.Join(destDir, stem+".mp4")
	for i := 1; ; i++ {
		exists, err := filesystem.API().Exists(candidate)
		if err != nil || !exists {
			return candidate
		}
		candidate = filepath.Join(destDir, fmt.Sprintf("%s_%d.mp4", stem, i))
	}
}

func commonPrefix(a, b string) string {
	max := util.Min(len(a), len(b))
	i := 0
	for i < max && a[i] == b[i] {
		i++
	}
	return a[:i]
}

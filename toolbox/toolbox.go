// Package toolbox defines the capability interface to the external media
// toolbox and its ffmpeg/ffprobe implementation.
//
// The pipeline never manipulates container internals itself; probing,
// manifest remuxing, segment concatenation and track muxing are delegated to
// separate OS processes behind this interface so the stages can be tested
// against a fake without invoking real binaries.
package toolbox

import "context"

// StreamProfile describes the elementary stream composition of a media file.
type StreamProfile struct {
	// Video is the count of video-coded elementary streams.
	Video int
	// Audio is the count of audio-coded elementary streams.
	Audio int
}

// VideoOnly reports whether the file carries video streams and no audio.
func (p StreamProfile) VideoOnly() bool {
	return p.Video > 0 && p.Audio == 0
}

// AudioOnly reports whether the file carries audio streams and no video.
func (p StreamProfile) AudioOnly() bool {
	return p.Audio > 0 && p.Video == 0
}

// CombineMode selects the argument contract for Combine.
type CombineMode uint8

const (
	// ConcatSegments losslessly concatenates an ordered list of same-codec
	// segment files into one output.
	ConcatSegments CombineMode = iota
	// MergeTracks muxes exactly two elementary-stream files (video + audio)
	// into one container, stream-copying both tracks.
	MergeTracks
)

// Toolbox is the delegated media capability surface.
//
// Every operation is bounded: a non-zero exit or timeout fails only the
// single invocation, never the run. Implementations must terminate the child
// process when the context is cancelled.
type Toolbox interface {
	// Available reports whether the toolbox binaries can be invoked at all.
	// Reassembly and muxing degrade to no-ops when it returns false.
	Available() bool

	// Probe returns the stream composition of the file at path.
	Probe(ctx context.Context, path string) (StreamProfile, error)

	// RemuxManifest resolves an adaptive-streaming manifest URL into a
	// stream-copied container at outputPath, with no re-encoding.
	RemuxManifest(ctx context.Context, manifestURL, outputPath string) error

	// Combine produces one stream-copied output from the given inputs
	// according to mode.
	Combine(ctx context.Context, inputs []string, outputPath string, mode CombineMode) error
}

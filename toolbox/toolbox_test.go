package toolbox

import (
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestStreamProfile(t *testing.T) {
	Convey("StreamProfile", t, func() {
		So(StreamProfile{Video: 1}.VideoOnly(), ShouldBeTrue)
		So(StreamProfile{Audio: 2}.AudioOnly(), ShouldBeTrue)

		Convey("Mixed and empty profiles are neither", func() {
			mixed := StreamProfile{Video: 1, Audio: 1}
			So(mixed.VideoOnly(), ShouldBeFalse)
			So(mixed.AudioOnly(), ShouldBeFalse)

			empty := StreamProfile{}
			So(empty.VideoOnly(), ShouldBeFalse)
			So(empty.AudioOnly(), ShouldBeFalse)
		})
	})
}

func TestCombineValidation(t *testing.T) {
	Convey("FFmpeg Combine input contracts", t, func() {
		box := NewFFmpeg()

		Convey("Concatenation requires at least two inputs", func() {
			err := box.Combine(context.Background(), []string{"only.ts"}, "out.mp4", ConcatSegments)
			So(err, ShouldNotBeNil)
		})

		Convey("Track merging requires exactly two inputs", func() {
			err := box.Combine(context.Background(), []string{"v.mp4", "a.mp4", "x.mp4"}, "out.mp4", MergeTracks)
			So(err, ShouldNotBeNil)
		})

		Convey("Unknown modes are rejected", func() {
			err := box.Combine(context.Background(), []string{"v.mp4", "a.mp4"}, "out.mp4", CombineMode(99))
			So(err, ShouldNotBeNil)
		})
	})
}

package history

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/vidsieve-cli/vidsieve/filesystem"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestHistory(t *testing.T) {
	Convey("Given a completed acquisition run", t, func() {
		run := &SavedRun{
			PageURL:   "https://example.com/watch/42",
			Outputs:   []string{"/downloads/movie.mp4"},
			Succeeded: 3,
			Failed:    1,
		}

		Convey("When saving the run", func() {
			err := Save(run)

			Convey("Then the error should be nil", func() {
				So(err, ShouldBeNil)

				Convey("And the run should be saved with a completion time", func() {
					runs, err := Get()
					So(err, ShouldBeNil)
					So(len(runs), ShouldBeGreaterThan, 0)

					saved := runs[run.PageURL]
					So(saved, ShouldNotBeNil)
					So(saved.Outputs, ShouldResemble, run.Outputs)
					So(saved.Succeeded, ShouldEqual, 3)
					So(saved.CompletedAt.IsZero(), ShouldBeFalse)
				})
			})

			Convey("And re-acquiring the same page overwrites the record", func() {
				newer := &SavedRun{
					PageURL:     run.PageURL,
					Outputs:     []string{"/downloads/movie_1.mp4"},
					Succeeded:   1,
					CompletedAt: time.Now(),
				}
				So(Save(newer), ShouldBeNil)

				runs, err := Get()
				So(err, ShouldBeNil)
				So(runs[run.PageURL].Outputs, ShouldResemble, newer.Outputs)
			})

			Convey("And removing the record deletes it", func() {
				So(Remove(run.PageURL), ShouldBeNil)

				runs, err := Get()
				So(err, ShouldBeNil)
				So(runs[run.PageURL], ShouldBeNil)
			})
		})
	})
}

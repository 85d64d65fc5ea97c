package classify

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func classesOf(classified []Classified) map[string]Class {
	out := make(map[string]Class, len(classified))
	for _, c := range classified {
		out[c.URL] = c.Class
	}
	return out
}

func TestPartition(t *testing.T) {
	Convey("Given a playlist and its sibling fragments", t, func() {
		urls := []string{
			"https://cdn.example.com/a/index.m3u8",
			"https://cdn.example.com/a/seg0.ts",
			"https://cdn.example.com/a/seg1.ts",
			"https://cdn.example.com/other/video.mp4",
		}

		Convey("When partitioning", func() {
			classified := Partition(urls)

			Convey("The fragments are subsumed by the playlist", func() {
				classes := classesOf(classified)
				So(classified, ShouldHaveLength, 2)
				So(classes["https://cdn.example.com/a/index.m3u8"], ShouldEqual, Playlist)
				So(classes["https://cdn.example.com/other/video.mp4"], ShouldEqual, DirectBinary)
			})

			Convey("Discovery order is preserved", func() {
				So(classified[0].URL, ShouldEqual, "https://cdn.example.com/a/index.m3u8")
				So(classified[1].URL, ShouldEqual, "https://cdn.example.com/other/video.mp4")
			})

			Convey("Re-partitioning the survivors changes nothing", func() {
				var survivors []string
				for _, c := range classified {
					survivors = append(survivors, c.URL)
				}
				So(Partition(survivors), ShouldResemble, classified)
			})
		})

		Convey("The fragment order relative to the playlist does not matter", func() {
			reversed := []string{urls[2], urls[1], urls[3], urls[0]}
			So(classesOf(Partition(reversed)), ShouldResemble, classesOf(Partition(urls)))
		})
	})

	Convey("Fragments outside any playlist directory stay direct", t, func() {
		classified := Partition([]string{
			"https://cdn.example.com/a/index.m3u8",
			"https://cdn.example.com/b/seg0.ts",
		})
		classes := classesOf(classified)
		So(classes["https://cdn.example.com/b/seg0.ts"], ShouldEqual, DirectBinary)
	})

	Convey("Without a playlist, fragments download directly", t, func() {
		classified := Partition([]string{
			"https://cdn.example.com/a/seg0.ts",
			"https://cdn.example.com/a/seg1.ts",
		})
		So(classified, ShouldHaveLength, 2)
		for _, c := range classified {
			So(c.Class, ShouldEqual, DirectBinary)
		}
	})

	Convey("Non-fragment files under a playlist directory keep their own class", t, func() {
		classified := Partition([]string{
			"https://cdn.example.com/a/index.m3u8",
			"https://cdn.example.com/a/poster.mp4",
		})
		So(classified, ShouldHaveLength, 2)
		So(classesOf(classified)["https://cdn.example.com/a/poster.mp4"], ShouldEqual, DirectBinary)
	})

	Convey("Query strings do not affect classification", t, func() {
		classes := classesOf(Partition([]string{
			"https://cdn.example.com/a/index.m3u8?token=abc",
			"https://cdn.example.com/a/seg0.ts?token=abc",
		}))
		So(classes["https://cdn.example.com/a/index.m3u8?token=abc"], ShouldEqual, Playlist)
		So(classes, ShouldNotContainKey, "https://cdn.example.com/a/seg0.ts?token=abc")
	})

	Convey("Unparseable URLs still classify", t, func() {
		classified := Partition([]string{"http://%zz/broken.m3u8"})
		So(classified, ShouldHaveLength, 1)
		So(classified[0].Class, ShouldEqual, Playlist)
	})
}

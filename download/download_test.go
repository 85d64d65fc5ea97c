package download

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
	"github.com/vidsieve-cli/vidsieve/classify"
	"github.com/vidsieve-cli/vidsieve/filesystem"
	"github.com/vidsieve-cli/vidsieve/key"
	"github.com/vidsieve-cli/vidsieve/toolbox"
)

func init() {
	filesystem.SetMemMapFs()
	viper.Set(key.DownloadsConcurrency, 2)
}

func TestFilename(t *testing.T) {
	Convey("Filename", t, func() {
		Convey("Uses the URL's last path segment without its query", func() {
			So(Filename("https://cdn.example.com/path/video.mp4?token=abc", NoIndex), ShouldEqual, "video.mp4")
			So(Filename("https://cdn.example.com/seg0.ts", NoIndex), ShouldEqual, "seg0.ts")
		})

		Convey("Infers a missing extension from markers in the URL", func() {
			So(Filename("https://cdn.example.com/master?type=.m3u8", NoIndex), ShouldEqual, "master.m3u8")
			So(Filename("https://cdn.example.com/clip?src=video.mp4", NoIndex), ShouldEqual, "clip.mp4")
		})

		Convey("Sanitizes hostile path segments", func() {
			So(Filename("https://cdn.example.com/my%20shady%22clip.mp4", NoIndex), ShouldEqual, "my_shady_clip.mp4")
			So(Filename("https://cdn.example.com/a%20b.mp4", 1), ShouldEqual, "a_b_1.mp4")
		})

		Convey("Falls back to a default stem when the URL yields nothing", func() {
			So(Filename("https://cdn.example.com/", NoIndex), ShouldEqual, "video.mp4")
			So(Filename("https://cdn.example.com/stream", NoIndex), ShouldEqual, "video.mp4")
		})

		Convey("Inserts the batch index before the extension", func() {
			So(Filename("https://cdn.example.com/video.mp4", 3), ShouldEqual, "video_3.mp4")
			So(Filename("https://cdn.example.com/stream", 0), ShouldEqual, "video_0.mp4")
		})
	})
}

func TestFetch(t *testing.T) {
	Convey("Given a server holding a direct binary", t, func() {
		var gotHeaders http.Header
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotHeaders = r.Header.Clone()
			_, _ = w.Write([]byte("binary payload"))
		}))
		defer server.Close()

		engine := New(&toolbox.Fake{})

		Convey("When fetching it", func() {
			item := Item{
				URL:     server.URL + "/clip.mp4",
				Class:   classify.DirectBinary,
				Headers: map[string]string{"Range": "bytes=0-", "User-Agent": "Test/1.0"},
				Index:   NoIndex,
			}
			path, err := engine.Fetch(context.Background(), item, "/downloads")

			Convey("The body lands on disk under the derived name", func() {
				So(err, ShouldBeNil)
				So(path, ShouldEqual, "/downloads/clip.mp4")

				data, err := filesystem.API().ReadFile(path)
				So(err, ShouldBeNil)
				So(string(data), ShouldEqual, "binary payload")
			})

			Convey("No staging file is left behind", func() {
				exists, _ := filesystem.API().Exists(path + ".part")
				So(exists, ShouldBeFalse)
			})

			Convey("The resolved headers went out on the wire", func() {
				So(gotHeaders.Get("Range"), ShouldEqual, "bytes=0-")
				So(gotHeaders.Get("User-Agent"), ShouldEqual, "Test/1.0")
			})
		})
	})

	Convey("Given a server answering with an error status", t, func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", http.StatusForbidden)
		}))
		defer server.Close()

		engine := New(&toolbox.Fake{})

		Convey("The fetch fails and leaves no file", func() {
			item := Item{URL: server.URL + "/denied.mp4", Class: classify.DirectBinary, Index: NoIndex}
			_, err := engine.Fetch(context.Background(), item, "/downloads")
			So(err, ShouldNotBeNil)

			exists, _ := filesystem.API().Exists("/downloads/denied.mp4")
			So(exists, ShouldBeFalse)
		})
	})

	Convey("Given a playlist item", t, func() {
		var remuxed []string
		box := &toolbox.Fake{
			RemuxFunc: func(ctx context.Context, manifestURL, outputPath string) error {
				remuxed = append(remuxed, manifestURL, outputPath)
				return filesystem.API().WriteFile(outputPath, []byte("container"), 0644)
			},
		}
		engine := New(box)

		Convey("It is delegated to the toolbox and emits a container", func() {
			item := Item{URL: "https://cdn.example.com/a/index.m3u8", Class: classify.Playlist, Index: NoIndex}
			path, err := engine.Fetch(context.Background(), item, "/downloads")

			So(err, ShouldBeNil)
			So(path, ShouldEqual, "/downloads/index.mp4")
			So(remuxed, ShouldResemble, []string{"https://cdn.example.com/a/index.m3u8", "/downloads/index.mp4"})
		})
	})
}

func TestBatch(t *testing.T) {
	Convey("Given a batch with a failing item", t, func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/bad.mp4" {
				http.Error(w, "nope", http.StatusNotFound)
				return
			}
			fmt.Fprint(w, "ok")
		}))
		defer server.Close()

		engine := New(&toolbox.Fake{})
		items := []Item{
			{URL: server.URL + "/first.mp4", Class: classify.DirectBinary, Index: 0},
			{URL: server.URL + "/bad.mp4", Class: classify.DirectBinary, Index: 1},
			{URL: server.URL + "/third.mp4", Class: classify.DirectBinary, Index: 2},
		}

		Convey("The failure degrades the batch without aborting it", func() {
			files, failed, err := engine.Batch(context.Background(), items, "/batch")
			So(err, ShouldBeNil)
			So(files, ShouldResemble, []string{"/batch/first_0.mp4", "/batch/third_2.mp4"})
			So(failed, ShouldResemble, []string{server.URL + "/bad.mp4"})
		})
	})

	Convey("Given a batch where everything fails", t, func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", http.StatusForbidden)
		}))
		defer server.Close()

		engine := New(&toolbox.Fake{})
		items := []Item{{URL: server.URL + "/only.mp4", Class: classify.DirectBinary, Index: NoIndex}}

		Convey("The terminal condition is reported", func() {
			_, failed, err := engine.Batch(context.Background(), items, "/batch")
			So(err, ShouldEqual, ErrNoDownloads)
			So(failed, ShouldHaveLength, 1)
		})
	})

	Convey("An empty batch is a no-op", t, func() {
		files, failed, err := New(&toolbox.Fake{}).Batch(context.Background(), nil, "/batch")
		So(err, ShouldBeNil)
		So(files, ShouldBeNil)
		So(failed, ShouldBeNil)
	})
}

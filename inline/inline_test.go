package inline

import (
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestParseURLs(t *testing.T) {
	Convey("ParseURLs", t, func() {
		Convey("Should honor the structured videoUrls payload", func() {
			input := `{"videoUrls": ["https://cdn.example.com/a.mp4", "https://cdn.example.com/b.m3u8"]}`
			So(ParseURLs(input), ShouldResemble, []string{
				"https://cdn.example.com/a.mp4",
				"https://cdn.example.com/b.m3u8",
			})
		})

		Convey("Should fall back to line-splitting on malformed JSON", func() {
			input := "{not json\nhttps://cdn.example.com/a.mp4"
			So(ParseURLs(input), ShouldResemble, []string{"https://cdn.example.com/a.mp4"})
		})

		Convey("Should keep only http(s) lines from plain text", func() {
			input := "https://cdn.example.com/a.mp4\nsome note\nftp://nope\nhttp://cdn.example.com/b.ts\n"
			So(ParseURLs(input), ShouldResemble, []string{
				"https://cdn.example.com/a.mp4",
				"http://cdn.example.com/b.ts",
			})
		})

		Convey("Should drop duplicates while preserving order", func() {
			input := "https://a.example.com/1.mp4\nhttps://b.example.com/2.mp4\nhttps://a.example.com/1.mp4"
			So(ParseURLs(input), ShouldResemble, []string{
				"https://a.example.com/1.mp4",
				"https://b.example.com/2.mp4",
			})
		})

		Convey("Should return nil for empty input", func() {
			So(ParseURLs("   \n  "), ShouldBeNil)
		})
	})
}

func TestReadAll(t *testing.T) {
	Convey("ReadAll", t, func() {
		Convey("Should parse the drained reader content", func() {
			urls, err := ReadAll(strings.NewReader("https://cdn.example.com/a.mp4\n"))
			So(err, ShouldBeNil)
			So(urls, ShouldResemble, []string{"https://cdn.example.com/a.mp4"})
		})
	})
}

package reassemble

import (
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/vidsieve-cli/vidsieve/filesystem"
	"github.com/vidsieve-cli/vidsieve/toolbox"
)

func init() {
	filesystem.SetMemMapFs()
}

func touch(paths ...string) {
	for _, p := range paths {
		if err := filesystem.API().WriteFile(p, []byte("ts"), 0644); err != nil {
			panic(err)
		}
	}
}

func TestSplit(t *testing.T) {
	Convey("Split", t, func() {
		Convey("A sequence plus batch index keeps the sequence", func() {
			key, seq := Split("clipA_0_3")
			So(key, ShouldEqual, "clipA")
			So(seq, ShouldEqual, 0)

			key, seq = Split("clipA_1_7")
			So(key, ShouldEqual, "clipA")
			So(seq, ShouldEqual, 1)
		})

		Convey("A glued sequence digit splits off before the batch index", func() {
			key, seq := Split("seg0_0")
			So(key, ShouldEqual, "seg")
			So(seq, ShouldEqual, 0)

			key, seq = Split("seg1_1")
			So(key, ShouldEqual, "seg")
			So(seq, ShouldEqual, 1)
		})

		Convey("A single trailing number is the sequence", func() {
			key, seq := Split("clipB-12")
			So(key, ShouldEqual, "clipB")
			So(seq, ShouldEqual, 12)
		})

		Convey("A stem without numbers forms its own group", func() {
			key, seq := Split("standalone")
			So(key, ShouldEqual, "standalone")
			So(seq, ShouldEqual, 0)
		})
	})
}

func TestGroup(t *testing.T) {
	Convey("Group", t, func() {
		paths := []string{
			"/dl/clipA_1_4.ts",
			"/dl/clipB_0_2.ts",
			"/dl/clipA_0_3.ts",
			"/dl/clipB_1_5.ts",
		}

		Convey("Fragments bucket by stem and order by sequence", func() {
			groups := Group(paths)
			So(groups, ShouldHaveLength, 2)
			So(groups["clipA"], ShouldResemble, []string{"/dl/clipA_0_3.ts", "/dl/clipA_1_4.ts"})
			So(groups["clipB"], ShouldResemble, []string{"/dl/clipB_0_2.ts", "/dl/clipB_1_5.ts"})
		})

		Convey("Grouping is independent of input order", func() {
			shuffled := []string{paths[3], paths[0], paths[2], paths[1]}
			So(Group(shuffled), ShouldResemble, Group(paths))
		})
	})
}

func TestConsolidate(t *testing.T) {
	Convey("Given two fragment groups on disk", t, func() {
		files := []string{
			"/dl/clipA_0_0.ts",
			"/dl/clipA_1_1.ts",
			"/dl/clipB_0_2.ts",
			"/dl/clipB_1_3.ts",
			"/dl/poster.mp4",
		}
		touch(files...)

		box := &toolbox.Fake{
			CombineFunc: func(ctx context.Context, inputs []string, outputPath string, mode toolbox.CombineMode) error {
				return filesystem.API().WriteFile(outputPath, []byte("merged"), 0644)
			},
		}

		Convey("When consolidating", func() {
			merged, consumed, err := Consolidate(context.Background(), box, files, "/dl")

			Convey("Each group merges into one output", func() {
				So(err, ShouldBeNil)
				So(merged, ShouldResemble, []string{"/dl/clipA_merged.mp4", "/dl/clipB_merged.mp4"})
			})

			Convey("The concatenation order follows the sequence numbers", func() {
				So(box.Calls, ShouldHaveLength, 2)
				So(box.Calls[0].Inputs, ShouldResemble, []string{"/dl/clipA_0_0.ts", "/dl/clipA_1_1.ts"})
				So(box.Calls[0].Mode, ShouldEqual, toolbox.ConcatSegments)
			})

			Convey("The fragments are consumed, other files untouched", func() {
				So(consumed, ShouldHaveLength, 4)
				for _, f := range files[:4] {
					exists, _ := filesystem.API().Exists(f)
					So(exists, ShouldBeFalse)
				}
				exists, _ := filesystem.API().Exists("/dl/poster.mp4")
				So(exists, ShouldBeTrue)
			})
		})
	})

	Convey("Fragments named seg0, seg1 merge after batch indexing", t, func() {
		files := []string{"/hls/seg0_0.ts", "/hls/seg1_1.ts", "/hls/seg2_2.ts"}
		touch(files...)

		box := &toolbox.Fake{
			CombineFunc: func(ctx context.Context, inputs []string, outputPath string, mode toolbox.CombineMode) error {
				return filesystem.API().WriteFile(outputPath, []byte("merged"), 0644)
			},
		}
		merged, consumed, err := Consolidate(context.Background(), box, files, "/hls")

		So(err, ShouldBeNil)
		So(merged, ShouldResemble, []string{"/hls/seg_merged.mp4"})
		So(consumed, ShouldHaveLength, 3)
		So(box.Calls, ShouldHaveLength, 1)
		So(box.Calls[0].Inputs, ShouldResemble, []string{"/hls/seg0_0.ts", "/hls/seg1_1.ts", "/hls/seg2_2.ts"})
	})

	Convey("A member that cannot be removed stays out of the consumed list", t, func() {
		files := []string{"/stuck/clipG_0_0.ts", "/stuck/clipG_1_1.ts", "/stuck/clipG_2_2.ts"}
		touch(files[0], files[2]) // the middle member never made it to disk

		box := &toolbox.Fake{
			CombineFunc: func(ctx context.Context, inputs []string, outputPath string, mode toolbox.CombineMode) error {
				return filesystem.API().WriteFile(outputPath, []byte("merged"), 0644)
			},
		}
		merged, consumed, err := Consolidate(context.Background(), box, files, "/stuck")

		So(err, ShouldBeNil)
		So(merged, ShouldResemble, []string{"/stuck/clipG_merged.mp4"})
		So(consumed, ShouldResemble, []string{"/stuck/clipG_0_0.ts", "/stuck/clipG_2_2.ts"})
	})

	Convey("A failing group leaves its fragments on disk", t, func() {
		files := []string{"/fail/clipC_0_0.ts", "/fail/clipC_1_1.ts"}
		touch(files...)

		box := &toolbox.Fake{} // Combine is unscripted and fails
		merged, consumed, err := Consolidate(context.Background(), box, files, "/fail")

		So(err, ShouldBeNil)
		So(merged, ShouldBeEmpty)
		So(consumed, ShouldBeEmpty)
		for _, f := range files {
			exists, _ := filesystem.API().Exists(f)
			So(exists, ShouldBeTrue)
		}
	})

	Convey("Fewer than two fragments is a no-op", t, func() {
		touch("/single/clipD_0_0.ts")
		merged, consumed, err := Consolidate(context.Background(), &toolbox.Fake{}, []string{"/single/clipD_0_0.ts"}, "/single")

		So(err, ShouldBeNil)
		So(merged, ShouldBeEmpty)
		So(consumed, ShouldBeEmpty)
	})

	Convey("An unavailable toolbox degrades to a no-op", t, func() {
		files := []string{"/na/clipE_0_0.ts", "/na/clipE_1_1.ts"}
		touch(files...)

		box := &toolbox.Fake{Unavailable: true}
		merged, _, err := Consolidate(context.Background(), box, files, "/na")

		So(err, ShouldBeNil)
		So(merged, ShouldBeEmpty)
		So(box.Calls, ShouldBeEmpty)
	})

	Convey("A colliding output name gets a numeric suffix", t, func() {
		files := []string{"/coll/clipF_0_0.ts", "/coll/clipF_1_1.ts"}
		touch(files...)
		touch("/coll/clipF_merged.mp4")

		box := &toolbox.Fake{
			CombineFunc: func(ctx context.Context, inputs []string, outputPath string, mode toolbox.CombineMode) error {
				return filesystem.API().WriteFile(outputPath, []byte("merged"), 0644)
			},
		}
		merged, _, err := Consolidate(context.Background(), box, files, "/coll")

		So(err, ShouldBeNil)
		So(merged, ShouldResemble, []string{"/coll/clipF_merged_1.mp4"})
	})
}

package utils

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestWordFilter(t *testing.T) {
	Convey("Given a filter with a small blocked list", t, func() {
		filter := NewWordFilter([]string{"stupid", "Dummkopf", ""})

		Convey("Clean text passes", func() {
			So(filter.Allowed("the water cycle has three stages"), ShouldBeTrue)
			So(filter.Match("counting to one hundred"), ShouldEqual, "")
		})

		Convey("A blocked word is caught regardless of case", func() {
			So(filter.Allowed("that is STUPID"), ShouldBeFalse)
			So(filter.Match("that is STUPID"), ShouldEqual, "stupid")
		})

		Convey("The scan is substring-based", func() {
			So(filter.Allowed("stupidest answer ever"), ShouldBeFalse)
		})

		Convey("Accented lookalikes are transliterated before scanning", func() {
			So(filter.Allowed("stüpid"), ShouldBeFalse)
			So(filter.Allowed("DÜMMKOPF"), ShouldBeFalse)
		})

		Convey("Replace swaps the list in place", func() {
			filter.Replace([]string{"banana"})
			So(filter.Allowed("that is stupid"), ShouldBeTrue)
			So(filter.Allowed("banana phone"), ShouldBeFalse)
		})

		Convey("Close drops the list", func() {
			filter.Close()
			So(filter.Allowed("that is stupid"), ShouldBeTrue)
		})
	})
}

func TestWordFilterFromFile(t *testing.T) {
	Convey("Given a word list file with comments and blanks", t, func() {
		path := filepath.Join(t.TempDir(), "blocked.txt")
		content := "# household rules\nstupid\n\nidiot\n"
		So(os.WriteFile(path, []byte(content), 0o644), ShouldBeNil)

		filter, err := NewWordFilterFromFile(path)
		So(err, ShouldBeNil)

		Convey("Only real entries are loaded", func() {
			So(filter.Allowed("household rules"), ShouldBeTrue)
			So(filter.Allowed("what an idiot"), ShouldBeFalse)
			So(filter.Allowed("so stupid"), ShouldBeFalse)
		})
	})

	Convey("A missing file is an error", t, func() {
		_, err := NewWordFilterFromFile("/nonexistent/words.txt")
		So(err, ShouldNotBeNil)
	})
}

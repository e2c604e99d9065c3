package history

import (
	"testing"

	"github.com/duocast-cli/duocast/filesystem"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestHistory(t *testing.T) {
	Convey("History", t, func() {
		record := &SavedAsset{
			URI:      "https://example.com/a.mpd",
			Title:    "Example",
			Position: 120,
			Duration: 600,
			LastMode: "local",
		}

		Convey("Save and Get", func() {
			So(Save(record), ShouldBeNil)

			saved, err := Get()
			So(err, ShouldBeNil)
			So(saved, ShouldContainKey, record.URI)
			So(saved[record.URI].WatchedPercentage, ShouldEqual, 20)
		})

		Convey("Watched percentage never regresses", func() {
			So(Save(&SavedAsset{URI: "https://example.com/b.mpd", Position: 300, Duration: 600}), ShouldBeNil)
			So(Save(&SavedAsset{URI: "https://example.com/b.mpd", Position: 60, Duration: 600}), ShouldBeNil)

			found, err := Find("https://example.com/b.mpd")
			So(err, ShouldBeNil)
			So(found, ShouldNotBeNil)
			So(found.WatchedPercentage, ShouldEqual, 50)
			// Position itself still reflects the latest observation.
			So(found.Position, ShouldEqual, 60)
		})

		Convey("Remove", func() {
			So(Save(record), ShouldBeNil)
			So(Remove(record), ShouldBeNil)

			found, err := Find(record.URI)
			So(err, ShouldBeNil)
			So(found, ShouldBeNil)
		})

		Convey("Find on unknown uri", func() {
			found, err := Find("https://example.com/unknown.mpd")
			So(err, ShouldBeNil)
			So(found, ShouldBeNil)
		})
	})
}

package filesystem

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestBackendSwap(t *testing.T) {
	Convey("Filesystem backend", t, func() {
		Convey("Defaults to the OS filesystem", func() {
			SetOsFs()
			So(API().Name(), ShouldEqual, "OsFs")
		})

		Convey("Can be swapped to an in-memory filesystem", func() {
			SetMemMapFs()
			defer SetOsFs()

			So(API().Name(), ShouldEqual, "MemMapFS")
			So(API().WriteFile("probe", []byte("x"), 0o644), ShouldBeNil)

			data, err := API().ReadFile("probe")
			So(err, ShouldBeNil)
			So(string(data), ShouldEqual, "x")
		})
	})
}

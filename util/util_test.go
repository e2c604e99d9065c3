package util

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestQuantify(t *testing.T) {
	Convey("Quantify", t, func() {
		So(Quantify(1, "device", "devices"), ShouldEqual, "1 device")
		So(Quantify(2, "device", "devices"), ShouldEqual, "2 devices")
	})
}

func TestCapitalize(t *testing.T) {
	Convey("Capitalize", t, func() {
		So(Capitalize("hello"), ShouldEqual, "Hello")
		So(Capitalize(""), ShouldEqual, "")
	})
}

func TestFormatClock(t *testing.T) {
	Convey("FormatClock", t, func() {
		So(FormatClock(0), ShouldEqual, "0:00")
		So(FormatClock(61.4), ShouldEqual, "1:01")
		So(FormatClock(3723), ShouldEqual, "1:02:03")
		So(FormatClock(-5), ShouldEqual, "0:00")
	})
}

func TestMaxMin(t *testing.T) {
	Convey("Max/Min", t, func() {
		So(Max(1, 5, 2), ShouldEqual, 5)
		So(Min(1, 5, 2), ShouldEqual, 1)
	})
}

func TestClamp(t *testing.T) {
	Convey("Clamp", t, func() {
		So(Clamp(5.0, 0.0, 10.0), ShouldEqual, 5.0)
		So(Clamp(-1.0, 0.0, 10.0), ShouldEqual, 0.0)
		So(Clamp(11.0, 0.0, 10.0), ShouldEqual, 10.0)
	})
}

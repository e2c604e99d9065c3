package lifecycle

import (
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestState(t *testing.T) {
	Convey("State", t, func() {
		Convey("String", func() {
			So(Foreground.String(), ShouldEqual, "foreground")
			So(Background.String(), ShouldEqual, "background")
			So(InTransitionToBackground.String(), ShouldEqual, "inTransitionToBackground")
		})

		Convey("IsBackgroundish", func() {
			So(Foreground.IsBackgroundish(), ShouldBeFalse)
			So(InTransitionToForeground.IsBackgroundish(), ShouldBeFalse)
			So(Background.IsBackgroundish(), ShouldBeTrue)
			So(InTransitionToBackground.IsBackgroundish(), ShouldBeTrue)
		})
	})
}

func TestSwitcher(t *testing.T) {
	Convey("Switcher", t, func() {
		ctx := context.Background()
		s := NewSwitcher(Foreground)

		Convey("Initial state", func() {
			So(s.State(), ShouldEqual, Foreground)
		})

		Convey("Transitions pass through the in-transition state", func() {
			var seen []State
			unsubscribe := s.OnStateChange(func(state State) {
				seen = append(seen, state)
			})
			defer unsubscribe()

			So(s.MoveToBackground(ctx), ShouldBeNil)
			So(s.State(), ShouldEqual, Background)
			So(seen, ShouldResemble, []State{InTransitionToBackground, Background})

			seen = nil
			So(s.MoveToForeground(ctx), ShouldBeNil)
			So(seen, ShouldResemble, []State{InTransitionToForeground, Foreground})
		})

		Convey("Moving to the current state is a no-op", func() {
			var count int
			defer s.OnStateChange(func(State) { count++ })()

			So(s.MoveToForeground(ctx), ShouldBeNil)
			So(count, ShouldEqual, 0)
		})

		Convey("Unsubscribed listeners are not notified", func() {
			var count int
			unsubscribe := s.OnStateChange(func(State) { count++ })
			unsubscribe()

			So(s.MoveToBackground(ctx), ShouldBeNil)
			So(count, ShouldEqual, 0)
		})

		Convey("Canceled context aborts the request", func() {
			canceled, cancel := context.WithCancel(context.Background())
			cancel()
			So(s.MoveToBackground(canceled), ShouldNotBeNil)
		})
	})
}

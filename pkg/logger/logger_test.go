package logger_test

import (
	"context"
	"testing"

	"github.com/venuelab/stagecraft/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLogger(t *testing.T) {
	Convey("Given an initialized global logger", t, func() {
		err := logger.Init()
		So(err, ShouldBeNil)

		Convey("When fetching the global instance", func() {
			l := logger.Get()
			So(l, ShouldNotBeNil)

			Convey("Then logging at every level should not panic", func() {
				ctx := context.Background()
				So(func() {
					l.Debug(ctx, "debug message", logger.String("k", "v"))
					l.Info(ctx, "info message", logger.Int("n", 1))
					l.Warn(ctx, "warn message", logger.Float64("f", 1.5))
					l.Error(ctx, "error message", logger.Any("x", struct{}{}))
				}, ShouldNotPanic)
			})

			Convey("And Named should return a child logger", func() {
				named := l.Named("engine")
				So(named, ShouldNotBeNil)
				So(func() { named.Info(context.Background(), "from child") }, ShouldNotPanic)
			})
		})

		Convey("When setting levels from strings", func() {
			So(logger.SetLevelString("debug"), ShouldBeNil)
			So(logger.SetLevelString("WARN"), ShouldBeNil)
			So(logger.SetLevelString("warning"), ShouldBeNil)
			So(logger.SetLevelString(""), ShouldBeNil)
			So(logger.SetLevelString("verbose"), ShouldNotBeNil)
		})
	})
}

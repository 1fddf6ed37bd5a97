package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given the global logger", t, func() {
		Convey("When initialized with defaults", func() {
			So(Init(), ShouldBeNil)

			Convey("Then Get returns a usable logger", func() {
				So(Get(), ShouldNotBeNil)
				So(func() { Get().Info(context.Background(), "test message", String("k", "v")) }, ShouldNotPanic)
				So(Sync(), ShouldBeNil)
			})
		})

		Convey("When initialized with an unknown format", func() {
			err := InitWith(Options{Format: "xml"})

			Convey("Then it fails", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "unknown log format")
			})
		})
	})
}

func TestLoggerJSON(t *testing.T) {
	Convey("Given a JSON logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		So(InitWith(Options{Format: "json", Output: &buf}), ShouldBeNil)

		Convey("When a named logger writes an entry", func() {
			Named("bridge").Named("load").Warn(context.Background(), "slow", Int("ms", 12), Bool("retry", false))

			Convey("Then the entry carries the name, fields and source", func() {
				var entry map[string]any
				So(json.Unmarshal(buf.Bytes(), &entry), ShouldBeNil)
				So(entry["msg"], ShouldEqual, "slow")
				So(entry["logger"], ShouldEqual, "bridge.load")
				So(entry["ms"], ShouldEqual, 12.0)
				So(entry["retry"], ShouldEqual, false)
				So(entry["source"], ShouldContainSubstring, "logger_test.go")
			})
		})

		Convey("When the level is raised to error", func() {
			So(SetLevelString("error"), ShouldBeNil)
			Get().Info(context.Background(), "hidden")

			Convey("Then info entries are dropped", func() {
				So(buf.Len(), ShouldEqual, 0)
			})
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given level strings", t, func() {
		for _, lvl := range []string{"debug", "INFO", "", "warn", "warning", "error"} {
			So(SetLevelString(lvl), ShouldBeNil)
		}
		So(SetLevelString("verbose"), ShouldNotBeNil)
	})
}

func TestNop(t *testing.T) {
	Convey("Given a nop logger", t, func() {
		l := Nop()
		So(func() { l.Error(context.Background(), "ignored", Error(nil)) }, ShouldNotPanic)
		So(l.Named("x"), ShouldNotBeNil)
	})
}

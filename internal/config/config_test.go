package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/tally/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.ReadTimeout(), convey.ShouldEqual, 15*time.Second)
			convey.So(cfg.WriteTimeout(), convey.ShouldEqual, 10*time.Second)
			convey.So(cfg.TestTimeout(), convey.ShouldEqual, 30*time.Second)
			convey.So(cfg.PerPersonLimit, convey.ShouldEqual, 25)
			convey.So(cfg.RefreshInterval(), convey.ShouldEqual, time.Duration(0))
			convey.So(cfg.DedupeWindow(), convey.ShouldEqual, time.Minute)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Then the default timezone resolves", func() {
			loc, err := cfg.Location()
			convey.So(err, convey.ShouldBeNil)
			convey.So(loc.String(), convey.ShouldEqual, "Asia/Bangkok")
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with invalid fields", t, func() {
		cases := map[string]func(c *config.Config){
			"empty addr":        func(c *config.Config) { c.Addr = " " },
			"relative url":      func(c *config.Config) { c.ScriptURL = "/macros/exec" },
			"zero read timeout": func(c *config.Config) { c.ReadTimeoutMS = 0 },
			"zero test timeout": func(c *config.Config) { c.TestTimeoutMS = 0 },
			"negative limit":    func(c *config.Config) { c.PerPersonLimit = -1 },
			"zero max summary":  func(c *config.Config) { c.MaxSummaryLimit = 0 },
			"unknown timezone":  func(c *config.Config) { c.Timezone = "Mars/Olympus" },
		}

		for name, mutate := range cases {
			cfg := config.New()
			mutate(cfg)
			err := cfg.Validate()

			convey.Convey("Then "+name+" is rejected", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}

		convey.Convey("Then an empty timezone means UTC", func() {
			cfg := config.New()
			cfg.Timezone = ""
			loc, err := cfg.Location()
			convey.So(err, convey.ShouldBeNil)
			convey.So(loc, convey.ShouldEqual, time.UTC)
		})
	})
}

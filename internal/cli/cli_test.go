package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/tally/internal/adapters/sheets"
	"github.com/okian/tally/internal/config"
	"github.com/okian/tally/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

// scriptServer answers every action by wrapping a canned payload in the
// requested callback.
func scriptServer() *httptest.Server {
	payload := map[string]any{
		sheets.ActionGetEvents: map[string]any{"success": true, "data": []any{
			map[string]any{"ID": 1, "Name": "Kickoff", "Catagory": "Meeting", "Point": 2, "Date": "2024-01-10", "Status": "completed"},
			map[string]any{"ID": 2, "Name": "Go Clinic", "Catagory": "Training", "Point": 4, "Date": "2024-01-20", "Status": "upcoming"},
		}},
		sheets.ActionGetUsers: []any{
			map[string]any{"PS Code": "P100", "ชื่อ-นามสกุล": "Nok", "ระดับ": "Senior", "หน่วยงาน": "Ops"},
		},
		sheets.ActionGetRecords: map[string]any{"data": []any{
			map[string]any{"Name": "Nok", "Department": "Ops", "Event": "Kickoff", "Timestamp": "2024-01-10T08:00:00Z"},
		}},
		sheets.ActionTest: map[string]any{"success": true, "message": "pong"},
	}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		raw, _ := json.Marshal(payload[q.Get("action")])
		w.Header().Set("Content-Type", "application/javascript")
		_, _ = fmt.Fprintf(w, "%s(%s);", q.Get("callback"), raw)
	}))
}

func run(args ...string) (string, error) {
	var out bytes.Buffer
	err := newCommand("test", &out).Run(context.Background(), append([]string{"tally"}, args...))
	return out.String(), err
}

func TestCommands(t *testing.T) {
	srv := scriptServer()
	defer srv.Close()

	t.Setenv("TALLY_SCRIPT_URL", srv.URL+"/exec")
	t.Setenv("TALLY_CACHE_PATH", filepath.Join(t.TempDir(), "tally.db"))
	t.Setenv("TALLY_TIMEZONE", "UTC")
	t.Setenv("TALLY_LOG_LEVEL", "error")

	Convey("Given the tally command line against a script endpoint", t, func() {
		Convey("When summary is printed as CSV", func() {
			out, err := run("summary", "--format", "csv")

			Convey("Then the ranked rows follow the header", func() {
				So(err, ShouldBeNil)
				So(out, ShouldStartWith, "\ufeff")
				So(out, ShouldContainSubstring, "Nok")
				So(out, ShouldContainSubstring, ",Ops,1,2,")
			})
		})

		Convey("When summary is printed as a table", func() {
			out, err := run("summary", "--format", "table")
			So(err, ShouldBeNil)
			So(out, ShouldContainSubstring, "RANK")
			So(out, ShouldContainSubstring, "Nok")
		})

		Convey("When summary is printed as JSON", func() {
			out, err := run("summary", "--format", "json", "--department", "Ops")
			So(err, ShouldBeNil)
			So(out, ShouldContainSubstring, `"name": "Nok"`)
		})

		Convey("When summary filters exclude everyone", func() {
			out, err := run("summary", "--format", "json", "--department", "Finance")
			So(err, ShouldBeNil)
			So(out, ShouldEqual, "[]\n")
		})

		Convey("When the format is unknown", func() {
			_, err := run("summary", "--format", "xml")
			So(errors.Is(err, ErrUnknownFormat), ShouldBeTrue)
		})

		Convey("When events are listed", func() {
			out, err := run("events")
			So(err, ShouldBeNil)
			So(out, ShouldContainSubstring, "Kickoff")
			So(out, ShouldContainSubstring, "Go Clinic")
		})

		Convey("When only available events are listed", func() {
			out, err := run("events", "--available")
			So(err, ShouldBeNil)
			So(out, ShouldContainSubstring, "Go Clinic")
			So(out, ShouldNotContainSubstring, "Kickoff")
		})

		Convey("When a refresh is reported", func() {
			out, err := run("refresh")
			So(err, ShouldBeNil)
			So(out, ShouldContainSubstring, "COLLECTION")
			So(out, ShouldContainSubstring, "CACHED")
			So(out, ShouldContainSubstring, "remote")
		})

		Convey("When the backend is pinged", func() {
			out, err := run("ping")
			So(err, ShouldBeNil)
			So(out, ShouldContainSubstring, "pong")
		})
	})
}

func TestDefaultFormat(t *testing.T) {
	Convey("Given a non-terminal writer", t, func() {
		So(defaultFormat(&bytes.Buffer{}), ShouldEqual, formatCSV)
	})
}

func TestNewRouter(t *testing.T) {
	Convey("Given a router over a cache-only service", t, func() {
		ctx := context.Background()
		cfg := config.New()
		cfg.CachePath = ""
		cfg.Timezone = "UTC"
		e := &env{cfg: cfg, log: logger.Nop(), out: &bytes.Buffer{}}

		svc, err := e.openService(ctx)
		So(err, ShouldBeNil)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		r := newRouter(ctx, svc, e.log)

		Convey("Then the API and its document are both mounted", func() {
			for _, path := range []string{"/healthz", "/openapi.yaml", "/api-docs", "/events", "/summary"} {
				w := httptest.NewRecorder()
				r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
				So(w.Code, ShouldEqual, http.StatusOK)
			}
		})

		Convey("Then a submission for an unknown code is not found", func() {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/records", strings.NewReader(`{"psCode":"P1","event":"X"}`)))
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

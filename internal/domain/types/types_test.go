package types_test

import (
	"encoding/json"
	"testing"

	"github.com/okian/tally/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDefaultQuery(t *testing.T) {
	Convey("Given the default summary query", t, func() {
		q := types.DefaultQuery()

		Convey("Then it asks for the service default limit and no filters", func() {
			So(q.Limit, ShouldBeLessThan, 0)
			So(q.From, ShouldBeEmpty)
			So(q.Search, ShouldBeEmpty)
		})
	})
}

func TestLoadResultJSON(t *testing.T) {
	Convey("Given a load result that kept the current copy", t, func() {
		raw, err := json.Marshal(types.LoadResult{Collection: "records", Error: "timeout"})

		Convey("Then the empty source is omitted", func() {
			So(err, ShouldBeNil)
			So(string(raw), ShouldEqual, `{"collection":"records","count":0,"accepted":false,"error":"timeout"}`)
		})
	})
}

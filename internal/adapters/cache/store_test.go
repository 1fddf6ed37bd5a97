package cache_test

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/tally/internal/adapters/cache"
	"github.com/okian/tally/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func storeContract(ctx context.Context, s cache.Store) {
	Convey("When a key was never written", func() {
		_, err := s.Get(ctx, cache.KeyEvents)

		Convey("Then ErrNotFound is returned", func() {
			So(errors.Is(err, cache.ErrNotFound), ShouldBeTrue)
			_, err = s.UpdatedAt(ctx, cache.KeyEvents)
			So(errors.Is(err, cache.ErrNotFound), ShouldBeTrue)
		})
	})

	Convey("When the key is blank", func() {
		err := s.Put(ctx, "  ", json.RawMessage(`[]`))

		Convey("Then ErrInvalidKey is returned", func() {
			So(errors.Is(err, cache.ErrInvalidKey), ShouldBeTrue)
		})
	})

	Convey("When events are saved and loaded", func() {
		events := []model.Event{
			{ID: "1", Name: "Workshop", Points: 5, Status: model.StatusActive},
			{ID: "2", Name: "Seminar", Points: 3, Status: model.StatusCompleted},
		}
		So(cache.Save(ctx, s, cache.KeyEvents, events), ShouldBeNil)
		got, err := cache.Load[model.Event](ctx, s, cache.KeyEvents)

		Convey("Then the same events come back", func() {
			So(err, ShouldBeNil)
			So(got, ShouldResemble, events)
		})

		Convey("Then a second save replaces the first", func() {
			So(cache.Save(ctx, s, cache.KeyEvents, events[:1]), ShouldBeNil)
			got, err := cache.Load[model.Event](ctx, s, cache.KeyEvents)
			So(err, ShouldBeNil)
			So(got, ShouldHaveLength, 1)
		})

		Convey("Then the write time is recorded", func() {
			at, err := s.UpdatedAt(ctx, cache.KeyEvents)
			So(err, ShouldBeNil)
			So(at.IsZero(), ShouldBeFalse)
		})
	})

	Convey("When a nil slice is saved", func() {
		So(cache.Save[model.User](ctx, s, cache.KeyUsers, nil), ShouldBeNil)
		raw, err := s.Get(ctx, cache.KeyUsers)

		Convey("Then an empty array is stored", func() {
			So(err, ShouldBeNil)
			So(string(raw), ShouldEqual, "[]")
		})
	})
}

func TestMemoryStore(t *testing.T) {
	Convey("Given a memory store", t, func() {
		s := cache.NewMemoryStore()
		defer s.Close()
		storeContract(context.Background(), s)
	})
}

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()

	Convey("Given an in-memory SQLite store", t, func() {
		s, err := cache.OpenSQLite(ctx, ":memory:")
		So(err, ShouldBeNil)
		defer s.Close()
		storeContract(ctx, s)

		Convey("When a write is stamped", func() {
			stamp := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
			stamped, err := cache.OpenSQLite(ctx, ":memory:", cache.WithClock(func() time.Time { return stamp }))
			So(err, ShouldBeNil)
			defer stamped.Close()
			So(stamped.Put(ctx, cache.KeyUsers, json.RawMessage(`[]`)), ShouldBeNil)

			Convey("Then UpdatedAt reports the clock", func() {
				at, err := stamped.UpdatedAt(ctx, cache.KeyUsers)
				So(err, ShouldBeNil)
				So(at.Equal(stamp), ShouldBeTrue)
			})
		})

		Convey("When the value is not JSON", func() {
			err := s.Put(ctx, cache.KeyUsers, json.RawMessage(`{broken`))

			Convey("Then the write is refused", func() {
				So(errors.Is(err, cache.ErrStore), ShouldBeTrue)
			})
		})
	})

	Convey("Given a file-backed SQLite store", t, func() {
		path := filepath.Join(t.TempDir(), "tally.db")
		s, err := cache.OpenSQLite(ctx, path)
		So(err, ShouldBeNil)
		So(s.Put(ctx, cache.KeyEvents, json.RawMessage(`[{"id":"1"}]`)), ShouldBeNil)
		So(s.Close(), ShouldBeNil)

		Convey("Then documents survive reopening", func() {
			reopened, err := cache.OpenSQLite(ctx, path)
			So(err, ShouldBeNil)
			defer reopened.Close()
			raw, err := reopened.Get(ctx, cache.KeyEvents)
			So(err, ShouldBeNil)
			So(string(raw), ShouldEqual, `[{"id":"1"}]`)
		})
	})
}

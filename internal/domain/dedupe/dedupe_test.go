package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/okian/gatecompass/internal/domain/dedupe"
	"github.com/okian/gatecompass/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	Convey("Given a new InMemoryDeduper", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemoryDeduper()

		Convey("A new ID is recorded, a repeated one is reported", func() {
			So(d.SeenAndRecord(ctx, "q-1"), ShouldBeFalse)
			So(d.SeenAndRecord(ctx, "q-1"), ShouldBeTrue)
			So(d.Size(), ShouldEqual, 1)
		})

		Convey("Concurrent recording keeps exactly one winner per ID", func() {
			var wg sync.WaitGroup
			var mu sync.Mutex
			fresh := 0
			for i := 0; i < 50; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					if !d.SeenAndRecord(ctx, fmt.Sprintf("q-%d", i%10)) {
						mu.Lock()
						fresh++
						mu.Unlock()
					}
				}(i)
			}
			wg.Wait()
			So(fresh, ShouldEqual, 10)
			So(d.Size(), ShouldEqual, 10)
		})
	})
}

func TestRecords(t *testing.T) {
	Convey("Given records from two overlapping corpora", t, func() {
		records := []model.Record{
			{ID: "a", Topic: "first"},
			{ID: "", Topic: "anonymous"},
			{ID: "a", Topic: "second"},
			{ID: "", Topic: "anonymous"},
			{ID: "b", Topic: "third"},
		}

		kept, dropped := dedupe.Records(context.Background(), dedupe.NewInMemoryDeduper(), records)

		So(dropped, ShouldEqual, 1)
		So(len(kept), ShouldEqual, 4)
		So(kept[0].Topic, ShouldEqual, "first")
		So(kept[3].Topic, ShouldEqual, "third")
	})
}

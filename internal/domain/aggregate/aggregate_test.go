package aggregate

import (
	"math/rand"
	"testing"

	"github.com/okian/gatecompass/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func sample() []model.Record {
	return []model.Record{
		{Subject: "Algorithms", Topic: "Sorting", Year: 2020, Marks: 1, Difficulty: model.DifficultyEasy},
		{Subject: "Algorithms", Topic: "Sorting", Year: 2021, Marks: 2, Difficulty: model.DifficultyHard},
		{Subject: "Algorithms", Topic: "Graphs", Year: 2021, Marks: 0.1, Difficulty: model.DifficultyMedium},
		{Subject: "Algorithms", Topic: "Graphs", Year: 2021, Marks: 0.2, Difficulty: model.DifficultyMedium},
		{Subject: "DBMS", Topic: "SQL", Year: 2019, Marks: 2, Difficulty: model.DifficultyMedium},
	}
}

func TestAggregate(t *testing.T) {
	Convey("Given a record set", t, func() {
		records := sample()

		Convey("Topic buckets sum counts, marks and difficulty", func() {
			b := Aggregate(records, BySubject|ByTopic)
			So(len(b), ShouldEqual, 3)

			sorting := b[Key{Subject: "Algorithms", Topic: "Sorting"}]
			So(sorting.Count, ShouldEqual, 2)
			So(sorting.TotalMarks(), ShouldEqual, 3.0)
			So(sorting.Difficulty.Count(model.DifficultyEasy), ShouldEqual, 1)
			So(sorting.Difficulty.Count(model.DifficultyHard), ShouldEqual, 1)
			So(sorting.MeanDifficulty(), ShouldEqual, 2.5)
			So(sorting.DominantDifficulty(), ShouldEqual, model.DifficultyMedium)

			So(b[Key{Subject: "Algorithms", Topic: "Graphs"}].TotalMarks(), ShouldEqual, 0.3)
		})

		Convey("Year buckets keep the year in the key", func() {
			b := Aggregate(records, ByYear)
			So(b[Key{Year: 2021}].Count, ShouldEqual, 3)
			So(b[Key{Year: 2019}].Count, ShouldEqual, 1)
		})

		Convey("Permuting the input yields identical buckets", func() {
			want := Aggregate(records, BySubject|ByTopic|ByYear)
			rng := rand.New(rand.NewSource(7))
			for i := 0; i < 20; i++ {
				shuffled := append([]model.Record(nil), records...)
				rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
				So(Aggregate(shuffled, BySubject|ByTopic|ByYear), ShouldResemble, want)
			}
		})

		Convey("Sorted orders by count, marks, then key", func() {
			got := Sorted(Aggregate(records, BySubject|ByTopic))
			So(got[0].Topic, ShouldEqual, "Sorting")
			So(got[1].Topic, ShouldEqual, "Graphs")
			So(got[2].Topic, ShouldEqual, "SQL")
		})

		Convey("ByGroup returns year-ordered series per topic", func() {
			groups := ByGroup(Aggregate(records, BySubject|ByTopic|ByYear), BySubject|ByTopic)
			series := groups[Key{Subject: "Algorithms", Topic: "Sorting"}]
			So(len(series), ShouldEqual, 2)
			So(series[0].Year, ShouldEqual, 2020)
			So(series[1].Year, ShouldEqual, 2021)
		})

		Convey("Empty input gives no buckets", func() {
			So(Aggregate(nil, BySubject), ShouldBeEmpty)
			So(Sorted(nil), ShouldBeEmpty)
		})
	})
}

package types_test

import (
	"encoding/json"
	"testing"

	"github.com/okian/gatecompass/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestReportJSONShape(t *testing.T) {
	Convey("Given a report", t, func() {
		r := types.Report{
			Status:       types.StatusSuccess,
			AnalysisDate: "2026-10-15",
			Topics:       map[string]types.TopicDetail{},
			Recommendations: types.Recommendations{
				StudyTimeAllocation: types.StudyTimeAllocation{VeryHighPriority: 40, HighPriority: 35, MediumPriority: 25},
			},
		}

		Convey("When encoded, field names follow the camelCase contract", func() {
			raw, err := json.Marshal(r)
			So(err, ShouldBeNil)

			var m map[string]any
			So(json.Unmarshal(raw, &m), ShouldBeNil)
			for _, key := range []string{"status", "analysisDate", "totalTopics", "totalMarks", "topics", "rankings", "statistics", "recommendations"} {
				So(m, ShouldContainKey, key)
			}
			rec := m["recommendations"].(map[string]any)
			alloc := rec["studyTimeAllocation"].(map[string]any)
			So(alloc["veryHighPriority"], ShouldEqual, float64(40))
			rankings := m["rankings"].(map[string]any)
			for _, key := range []string{"allTopics", "veryHighPriority", "highPriority", "mediumPriority", "trending"} {
				So(rankings, ShouldContainKey, key)
			}
		})
	})
}

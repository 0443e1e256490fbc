// Package types contains the JSON contract shared by the API, cache and export layers.
package types

// Report statuses.
const (
	StatusSuccess  = "success"
	StatusDegraded = "degraded"
)

// Report is the topic-wise analysis document.
type Report struct {
	Status          string                 `json:"status"`
	AnalysisDate    string                 `json:"analysisDate"`
	Window          Window                 `json:"window"`
	TotalRecords    int                    `json:"totalRecords"`
	TotalTopics     int                    `json:"totalTopics"`
	TotalMarks      float64                `json:"totalMarks"`
	Topics          map[string]TopicDetail `json:"topics"`
	Rankings        Rankings               `json:"rankings"`
	Statistics      Statistics             `json:"statistics"`
	Recommendations Recommendations        `json:"recommendations"`
}

// Window is the inclusive year range a report covers.
type Window struct {
	StartYear int `json:"startYear"`
	EndYear   int `json:"endYear"`
}

// SeriesPoint is one year of a topic's marks.
type SeriesPoint struct {
	Year  int     `json:"year"`
	Marks float64 `json:"marks"`
}

// TopicDetail describes one topic.
type TopicDetail struct {
	Subject          string        `json:"subject"`
	Marks            float64       `json:"marks"`
	QuestionCount    int           `json:"questionCount"`
	Difficulty       string        `json:"difficulty"`
	Priority         string        `json:"priority"`
	Trend            string        `json:"trend"`
	YearsObserved    int           `json:"yearsObserved"`
	ImportanceScore  float64       `json:"importanceScore"`
	Confidence       float64       `json:"confidence"`
	PriorityScore    float64       `json:"priorityScore"`
	GrowthRate       float64       `json:"growthRate"`
	ConsistencyScore float64       `json:"consistencyScore"`
	ProjectedMarks   float64       `json:"projectedMarks"`
	PreparationHours int           `json:"preparationHours"`
	Series           []SeriesPoint `json:"series"`
}

// RankingEntry is a topic as it appears in a ranked list.
type RankingEntry struct {
	Name            string  `json:"name"`
	Subject         string  `json:"subject"`
	Marks           float64 `json:"marks"`
	Difficulty      string  `json:"difficulty"`
	Priority        string  `json:"priority"`
	Trend           string  `json:"trend"`
	ImportanceScore float64 `json:"importanceScore"`
}

// Rankings groups topics by tier and direction. Every list is sorted by
// importance descending except Trending and Declining, which are by marks.
type Rankings struct {
	AllTopics        []RankingEntry `json:"allTopics"`
	VeryHighPriority []RankingEntry `json:"veryHighPriority"`
	HighPriority     []RankingEntry `json:"highPriority"`
	MediumPriority   []RankingEntry `json:"mediumPriority"`
	LowPriority      []RankingEntry `json:"lowPriority"`
	Trending         []RankingEntry `json:"trending"`
	Declining        []RankingEntry `json:"declining"`
}

// Statistics are per-tier counts and marks.
type Statistics struct {
	VeryHighCount  int     `json:"veryHighCount"`
	HighCount      int     `json:"highCount"`
	MediumCount    int     `json:"mediumCount"`
	LowCount       int     `json:"lowCount"`
	TrendingCount  int     `json:"trendingCount"`
	DecliningCount int     `json:"decliningCount"`
	VeryHighMarks  float64 `json:"veryHighMarks"`
	HighMarks      float64 `json:"highMarks"`
	MediumMarks    float64 `json:"mediumMarks"`
	LowMarks       float64 `json:"lowMarks"`
}

// StudyTimeAllocation holds whole-percent shares that always sum to 100.
type StudyTimeAllocation struct {
	VeryHighPriority int `json:"veryHighPriority"`
	HighPriority     int `json:"highPriority"`
	MediumPriority   int `json:"mediumPriority"`
}

// PlanBlock is a two-week slice of the study plan.
type PlanBlock struct {
	Period string   `json:"period"`
	Topics []string `json:"topics"`
}

// Recommendations is the study guidance section of a report.
type Recommendations struct {
	FocusOrder          []string            `json:"focusOrder"`
	StudyTimeAllocation StudyTimeAllocation `json:"studyTimeAllocation"`
	ImmediateAction     []string            `json:"immediateAction"`
	TrendingWatch       []string            `json:"trendingWatch"`
	DecliningReview     []string            `json:"decliningReview"`
	WeeklyPlan          []PlanBlock         `json:"weeklyPlan"`
}

// SubjectSummary aggregates one subject across the window.
type SubjectSummary struct {
	Subject             string         `json:"subject"`
	QuestionCount       int            `json:"questionCount"`
	TotalMarks          float64        `json:"totalMarks"`
	UniqueTopics        int            `json:"uniqueTopics"`
	Topics              []string       `json:"topics"`
	YearsActive         []int          `json:"yearsActive"`
	QuestionDensity     float64        `json:"questionDensity"`
	AverageDifficulty   float64        `json:"averageDifficulty"`
	DifficultyBreakdown map[string]int `json:"difficultyBreakdown"`
	Trend               string         `json:"trend"`
	GrowthRate          float64        `json:"growthRate"`
}

// YearStatistics describes a single exam year.
type YearStatistics struct {
	Year                   int                `json:"year"`
	QuestionCount          int                `json:"questionCount"`
	TotalMarks             float64            `json:"totalMarks"`
	SubjectDistribution    map[string]int     `json:"subjectDistribution"`
	TopicDistribution      map[string]int     `json:"topicDistribution"`
	DifficultyDistribution map[string]int     `json:"difficultyDistribution"`
	MarksDistribution      map[string]int     `json:"marksDistribution"`
	SubjectMarks           map[string]float64 `json:"subjectMarks"`
	MostFrequentSubject    string             `json:"mostFrequentSubject"`
	MostFrequentTopic      string             `json:"mostFrequentTopic"`
	AverageDifficulty      float64            `json:"averageDifficulty"`
}

// ErrorResponse is the single structured error body returned by the API.
type ErrorResponse struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

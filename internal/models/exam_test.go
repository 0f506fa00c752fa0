package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDurationUnmarshalStringOrNumber(t *testing.T) {
	var rec ExamRecord
	require.NoError(t, json.Unmarshal([]byte(`{"course_code":"CS101","duration":"120 minutes"}`), &rec))
	assert.Equal(t, Duration("120 minutes"), rec.Duration)

	require.NoError(t, json.Unmarshal([]byte(`{"course_code":"CS101","duration":90}`), &rec))
	assert.Equal(t, Duration("90"), rec.Duration)

	assert.Error(t, json.Unmarshal([]byte(`{"duration":[1]}`), &rec))
}

func TestDurationMinutes(t *testing.T) {
	cases := []struct {
		raw  string
		want int
	}{
		{"120", 120},
		{"90 minutes", 90},
		{" 45 min ", 45},
		{"", 120},
		{"abc", 120},
		{"0", 120},
		{"-30", 120},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Duration(tc.raw).Minutes(DefaultDurationMinutes), "raw=%q", tc.raw)
	}
}

func TestStartAt(t *testing.T) {
	rec := ExamRecord{ExamDate: "2024-05-10", StartTime: "14:30"}
	start, ok := rec.StartAt()
	require.True(t, ok)
	assert.Equal(t, "2024-05-10T14:30:00Z", start.Format("2006-01-02T15:04:05Z07:00"))

	rec.StartTime = ""
	start, ok = rec.StartAt()
	require.True(t, ok)
	assert.Equal(t, "2024-05-10T00:00:00Z", start.Format("2006-01-02T15:04:05Z07:00"))

	rec.StartTime = "half past two"
	start, ok = rec.StartAt()
	require.True(t, ok)
	assert.Equal(t, "2024-05-10T00:00:00Z", start.Format("2006-01-02T15:04:05Z07:00"))

	rec.ExamDate = "sometime in May"
	_, ok = rec.StartAt()
	assert.False(t, ok)
}

func TestParseSortColumn(t *testing.T) {
	col, ok := ParseSortColumn(" Exam_Date ")
	require.True(t, ok)
	assert.Equal(t, SortByExamDate, col)

	_, ok = ParseSortColumn("score")
	assert.False(t, ok)
}

func TestParseSortDirection(t *testing.T) {
	assert.Equal(t, SortAscending, ParseSortDirection("ASC"))
	assert.Equal(t, SortDescending, ParseSortDirection("descending"))
	assert.Equal(t, SortNone, ParseSortDirection("sideways"))
}

func TestCacheKeyDistinguishesFilters(t *testing.T) {
	a := ScheduleFilter{Query: "cs", Room: "HLT1"}
	b := ScheduleFilter{Query: "cs", Room: "HLT2"}
	assert.NotEqual(t, a.CacheKey(), b.CacheKey())
	assert.Equal(t, a.CacheKey(), ScheduleFilter{Query: "CS", Room: "HLT1"}.CacheKey())
}

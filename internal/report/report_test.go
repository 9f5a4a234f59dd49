package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"alcyxob/gym-manager/internal/apperr"
)

func TestPercentChange(t *testing.T) {
	cases := []struct {
		current, previous, want float64
	}{
		{0, 0, 0},
		{5, 0, 100},
		{50, 100, -50},
		{150, 100, 50},
		{1, 3, -66.67},
		{0, 10, -100},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, PercentChange(c.current, c.previous), "calc(%v, %v)", c.current, c.previous)
	}
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, 0, Percentage(5, 0))
	assert.Equal(t, 33, Percentage(1, 3))
	assert.Equal(t, 67, Percentage(2, 3))
	assert.Equal(t, 100, Percentage(4, 4))
}

func TestWithPercentages(t *testing.T) {
	groups := WithCountPercentages([]Group{{Key: "basic", Count: 3}, {Key: "vip", Count: 1}})
	assert.Equal(t, 75, groups[0].Percentage)
	assert.Equal(t, 25, groups[1].Percentage)

	byTotal := WithTotalPercentages([]Group{{Key: "cash", Total: 20}, {Key: "card", Total: 80}})
	assert.Equal(t, 20, byTotal[0].Percentage)
	assert.Equal(t, 80, byTotal[1].Percentage)

	assert.Empty(t, WithCountPercentages(nil))
}

func TestCumulative_SortsBeforeAccumulating(t *testing.T) {
	groups := []Group{
		{Key: "2026-03", Count: 4},
		{Key: "2026-01", Count: 2},
		{Key: "2026-02", Count: 1},
	}
	points := Cumulative(10, groups)

	require.Len(t, points, 3)
	assert.Equal(t, GrowthPoint{Period: "2026-01", New: 2, Total: 12}, points[0])
	assert.Equal(t, GrowthPoint{Period: "2026-02", New: 1, Total: 13}, points[1])
	assert.Equal(t, GrowthPoint{Period: "2026-03", New: 4, Total: 17}, points[2])
	// input untouched
	assert.Equal(t, "2026-03", groups[0].Key)
}

func TestWindows(t *testing.T) {
	now := time.Date(2026, 3, 15, 13, 30, 0, 0, time.UTC)

	w := Last7Days(now)
	assert.Equal(t, time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), w.From)
	assert.Equal(t, now, w.To)

	m := MonthToDate(now)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), m.From)

	six := LastNMonths(now, 6)
	assert.Equal(t, time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC), six.From)
	assert.Equal(t, m, LastNMonths(now, 0))

	prev := m.Previous()
	assert.True(t, prev.To.Before(m.From))
	assert.Equal(t, m.To.Sub(m.From), prev.To.Sub(prev.From))
}

func TestResolveWindow(t *testing.T) {
	fallback := Window{From: time.Unix(0, 0).UTC(), To: time.Unix(100, 0).UTC()}

	w, err := ResolveWindow("", "", fallback)
	require.NoError(t, err)
	assert.Equal(t, fallback, w)

	w, err = ResolveWindow("2026-01-01", "2026-01-31", fallback)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), w.From)
	assert.Equal(t, time.Date(2026, 1, 31, 23, 59, 59, int(999*time.Millisecond), time.UTC), w.To)

	_, err = ResolveWindow("yesterday", "", fallback)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = ResolveWindow("2026-02-01", "2026-01-01", fallback)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestSummarize(t *testing.T) {
	w := Window{}
	s := Summarize(w, []Group{{Key: "2026-01-01", Total: 100, Count: 2}, {Key: "2026-01-02", Total: 50, Count: 1}}, 100)
	assert.Equal(t, 150.0, s.Total)
	assert.EqualValues(t, 3, s.Count)
	assert.Equal(t, 50.0, s.Change)

	empty := Summarize(w, nil, 0)
	assert.NotNil(t, empty.Series)
	assert.Equal(t, 0.0, empty.Change)
}

func TestParseGranularity(t *testing.T) {
	assert.Equal(t, Monthly, ParseGranularity("month"))
	assert.Equal(t, Daily, ParseGranularity(""))
	assert.Equal(t, Daily, ParseGranularity("week"))
	assert.Equal(t, "%Y-%m", Monthly.DateFormat())
}

func TestRevenueByPeriodPipeline(t *testing.T) {
	w := Window{From: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), To: time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)}
	p := RevenueByPeriodPipeline(w, Monthly)
	require.Len(t, p, 3)

	match := p[0][0].Value.(bson.D)
	assert.Equal(t, "status", match[0].Key)
	assert.EqualValues(t, "completed", match[0].Value)
	assert.Equal(t, bson.M{"$gte": w.From, "$lte": w.To}, match[1].Value)

	group := p[1][0].Value.(bson.D)
	id := group[0].Value.(bson.D)[0].Value.(bson.D)
	assert.Equal(t, "%Y-%m", id[0].Value)
	assert.Equal(t, "$paidAt", id[1].Value)
}

func TestTrainerPerformancePipeline_Stages(t *testing.T) {
	p := TrainerPerformancePipeline(Last7Days(time.Now()))
	var stages []string
	for _, s := range p {
		stages = append(stages, s[0].Key)
	}
	assert.Equal(t, []string{"$match", "$lookup", "$lookup", "$project", "$sort"}, stages)
}

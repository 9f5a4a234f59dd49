// Package report holds the read-only dashboard and analytics aggregations:
// date windows, grouping pipelines and the arithmetic applied to their output.
package report

import (
	"math"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"alcyxob/gym-manager/internal/apperr"
)

// Granularity is the size of one reporting period.
type Granularity string

const (
	Daily   Granularity = "day"
	Monthly Granularity = "month"
)

// DateFormat is the $dateToString format that produces period keys.
func (g Granularity) DateFormat() string {
	if g == Monthly {
		return "%Y-%m"
	}
	return "%Y-%m-%d"
}

// ParseGranularity defaults to daily for anything other than "month".
func ParseGranularity(s string) Granularity {
	if s == string(Monthly) {
		return Monthly
	}
	return Daily
}

// Window is an inclusive date range.
type Window struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Last7Days covers today and the six days before it.
func Last7Days(now time.Time) Window {
	return Window{From: startOfDay(now).AddDate(0, 0, -6), To: now}
}

// MonthToDate starts at the first of the current month.
func MonthToDate(now time.Time) Window {
	y, m, _ := now.Date()
	return Window{From: time.Date(y, m, 1, 0, 0, 0, 0, now.Location()), To: now}
}

// LastNMonths starts at the first of the month n-1 months ago, so n=1 is MonthToDate.
func LastNMonths(now time.Time, n int) Window {
	if n < 1 {
		n = 1
	}
	w := MonthToDate(now)
	w.From = w.From.AddDate(0, -(n - 1), 0)
	return w
}

// Previous is the window of equal length ending right before w starts.
func (w Window) Previous() Window {
	length := w.To.Sub(w.From)
	return Window{From: w.From.Add(-length - time.Millisecond), To: w.From.Add(-time.Millisecond)}
}

// ResolveWindow uses explicit dateFrom/dateTo (YYYY-MM-DD or RFC3339) when
// given and fallback otherwise. A plain dateTo covers the whole day.
func ResolveWindow(dateFrom, dateTo string, fallback Window) (Window, error) {
	w := fallback
	var fields []apperr.FieldError
	if dateFrom != "" {
		t, err := parseDay(dateFrom, false)
		if err != nil {
			fields = append(fields, apperr.FieldError{Field: "dateFrom", Message: "must be a date (YYYY-MM-DD)"})
		}
		w.From = t
	}
	if dateTo != "" {
		t, err := parseDay(dateTo, true)
		if err != nil {
			fields = append(fields, apperr.FieldError{Field: "dateTo", Message: "must be a date (YYYY-MM-DD)"})
		}
		w.To = t
	}
	if len(fields) > 0 {
		return fallback, apperr.Validation("", fields...)
	}
	if w.To.Before(w.From) {
		return fallback, apperr.Validation("dateFrom must not be after dateTo")
	}
	return w, nil
}

func parseDay(s string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Millisecond)
	}
	return t, nil
}

// PercentChange is (current-previous)/previous*100 rounded to two decimals.
// With no previous value the change is 0, or 100 when current is positive.
func PercentChange(current, previous float64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return Round2((current - previous) / previous * 100)
}

// Percentage is part's rounded share of total, 0 when total is 0.
func Percentage(part, total float64) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(part / total * 100))
}

// Round2 rounds v to two decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Group is one bucket of a grouping pipeline.
type Group struct {
	Key        string  `bson:"_id" json:"key"`
	Count      int64   `bson:"count" json:"count"`
	Total      float64 `bson:"total" json:"total"`
	Percentage int     `bson:"-" json:"percentage"`
}

// WithCountPercentages sets each group's share of the summed counts.
func WithCountPercentages(groups []Group) []Group {
	var sum int64
	for _, g := range groups {
		sum += g.Count
	}
	for i := range groups {
		groups[i].Percentage = Percentage(float64(groups[i].Count), float64(sum))
	}
	return groups
}

// WithTotalPercentages sets each group's share of the summed totals.
func WithTotalPercentages(groups []Group) []Group {
	var sum float64
	for _, g := range groups {
		sum += g.Total
	}
	for i := range groups {
		groups[i].Percentage = Percentage(groups[i].Total, sum)
	}
	return groups
}

// GrowthPoint is one period of the client growth series.
type GrowthPoint struct {
	Period string `json:"period"`
	New    int64  `json:"new"`
	Total  int64  `json:"total"`
}

// Cumulative turns per-period counts into a running total seeded with
// baseline. Groups are sorted by period first; the running sum depends on it.
func Cumulative(baseline int64, groups []Group) []GrowthPoint {
	sorted := make([]Group, len(groups))
	copy(sorted, groups)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Key < sorted[j].Key })

	out := make([]GrowthPoint, 0, len(sorted))
	running := baseline
	for _, g := range sorted {
		running += g.Count
		out = append(out, GrowthPoint{Period: g.Key, New: g.Count, Total: running})
	}
	return out
}

// RevenueSummary compares a window's completed revenue with the window before it.
type RevenueSummary struct {
	Window        Window  `json:"window"`
	Total         float64 `json:"total"`
	Count         int64   `json:"count"`
	PreviousTotal float64 `json:"previousTotal"`
	Change        float64 `json:"change"`
	Series        []Group `json:"series"`
}

// Summarize fills totals and change from the current series and the previous total.
func Summarize(w Window, series []Group, previousTotal float64) RevenueSummary {
	s := RevenueSummary{Window: w, PreviousTotal: previousTotal, Series: series}
	if s.Series == nil {
		s.Series = []Group{}
	}
	for _, g := range series {
		s.Total += g.Total
		s.Count += g.Count
	}
	s.Total = Round2(s.Total)
	s.Change = PercentChange(s.Total, previousTotal)
	return s
}

// TrainerPerformance is one row of the trainer performance report.
type TrainerPerformance struct {
	TrainerID primitive.ObjectID `bson:"_id" json:"trainerId"`
	FirstName string             `bson:"firstName" json:"firstName"`
	LastName  string             `bson:"lastName" json:"lastName"`
	Status    string             `bson:"status" json:"status"`
	Rating    float64            `bson:"rating" json:"rating"`
	Clients   int64              `bson:"clients" json:"clients"`
	Sessions  int64              `bson:"sessions" json:"sessions"`
	Revenue   float64            `bson:"revenue" json:"revenue"`
	Specialty []string           `bson:"specialties" json:"specialties"`
}

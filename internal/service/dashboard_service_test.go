package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"alcyxob/gym-manager/internal/apperr"
	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/report"
)

var (
	october   = time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	september = time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
)

func TestDashboardStats(t *testing.T) {
	stats := &fakeStats{counts: map[domain.EntityKind]int64{
		domain.KindClient:  10,
		domain.KindTrainer: 3,
		domain.KindPayment: 2,
	}}
	reports := &fakeReports{revenue: map[time.Time]report.Group{
		october:   {Total: 150, Count: 3},
		september: {Total: 100, Count: 2},
	}}
	svc := NewDashboardService(newFakeClients(), &fakeActivities{}, stats, reports).(*dashboardService)
	svc.now = func() time.Time { return paymentNow }

	st, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 10, st.TotalClients)
	assert.EqualValues(t, 3, st.ActiveTrainers)
	assert.EqualValues(t, 2, st.PendingPayments)
	assert.Equal(t, 150.0, st.MonthRevenue)
	assert.Equal(t, 100.0, st.LastMonthRevenue)
	assert.Equal(t, 50.0, st.RevenueChange)
	assert.Equal(t, 0.0, st.ClientGrowth)
	assert.Len(t, stats.filters, 6)
}

func TestLastMonth(t *testing.T) {
	w := lastMonth(paymentNow)
	assert.Equal(t, september, w.From)
	assert.Equal(t, october.Add(-time.Millisecond), w.To)

	jan := lastMonth(time.Date(2027, 1, 15, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC), jan.From)
}

func TestDashboardRevenueChart_Period(t *testing.T) {
	svc := NewDashboardService(newFakeClients(), &fakeActivities{}, &fakeStats{}, &fakeReports{})
	for _, p := range []string{"", ChartWeek, ChartMonth, ChartYear} {
		groups, err := svc.RevenueChart(context.Background(), p)
		require.NoError(t, err, p)
		assert.NotNil(t, groups)
	}
	_, err := svc.RevenueChart(context.Background(), "5y")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestDashboardUpcomingExpirations(t *testing.T) {
	soon := paymentNow.Add(3*24*time.Hour + time.Hour)
	later := paymentNow.AddDate(0, 2, 0)
	clients := newFakeClients(
		&domain.Client{FirstName: "Ann", Status: domain.ClientActive, MembershipEndDate: &soon},
		&domain.Client{FirstName: "Bo", Status: domain.ClientActive, MembershipEndDate: &later},
		&domain.Client{FirstName: "Cy", Status: domain.ClientSuspended, MembershipEndDate: &soon},
	)
	svc := NewDashboardService(clients, &fakeActivities{}, &fakeStats{}, &fakeReports{}).(*dashboardService)
	svc.now = func() time.Time { return paymentNow }

	out, err := svc.UpcomingExpirations(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Ann", out[0].Client.FirstName)
	assert.Equal(t, 4, out[0].DaysRemaining)
}

func TestDashboardRecentActivities(t *testing.T) {
	acts := &fakeActivities{}
	for i := 0; i < 15; i++ {
		_, _ = acts.Create(context.Background(), &domain.Activity{Actor: primitive.NewObjectID(), Action: domain.ActionUpdate})
	}
	svc := NewDashboardService(newFakeClients(), acts, &fakeStats{}, &fakeReports{})

	items, err := svc.RecentActivities(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, items, 10)
}

func TestAnalyticsOverview(t *testing.T) {
	stats := &fakeStats{counts: map[domain.EntityKind]int64{domain.KindClient: 4, domain.KindTrainer: 2}}
	w := report.Window{From: october, To: october.AddDate(0, 1, 0).Add(-time.Millisecond)}
	reports := &fakeReports{revenue: map[time.Time]report.Group{
		w.From:            {Total: 400, Count: 8},
		w.Previous().From: {Total: 500, Count: 10},
	}}
	svc := NewAnalyticsService(reports, stats)

	ov, err := svc.Overview(context.Background(), w)
	require.NoError(t, err)
	assert.Equal(t, 400.0, ov.Revenue)
	assert.EqualValues(t, 8, ov.Payments)
	assert.Equal(t, -20.0, ov.RevenueChange)
	assert.Equal(t, 100.0, ov.RevenuePerClient)
	assert.Equal(t, 0.0, ov.NewClientsChange)
}

func TestAnalyticsClientGrowth(t *testing.T) {
	reports := &fakeReports{
		baseline: 10,
		growth:   []report.Group{{Key: "2026-10", Count: 3}, {Key: "2026-09", Count: 2}},
	}
	svc := NewAnalyticsService(reports, &fakeStats{})

	g, err := svc.ClientGrowth(context.Background(), AnalyticsRequest{Window: svc.DefaultWindow(), Granularity: report.Monthly})
	require.NoError(t, err)
	require.Len(t, g.Points, 2)
	assert.Equal(t, "2026-09", g.Points[0].Period)
	assert.EqualValues(t, 12, g.Points[0].Total)
	assert.EqualValues(t, 15, g.Points[1].Total)
}

func TestAnalyticsRevenue(t *testing.T) {
	w := report.Window{From: october, To: october.AddDate(0, 0, 7)}
	reports := &fakeReports{
		series:  []report.Group{{Key: "2026-10-01", Total: 20, Count: 1}, {Key: "2026-10-02", Total: 30, Count: 2}},
		revenue: map[time.Time]report.Group{w.Previous().From: {Total: 25}},
	}
	svc := NewAnalyticsService(reports, &fakeStats{})

	sum, err := svc.Revenue(context.Background(), AnalyticsRequest{Window: w, Granularity: report.Daily})
	require.NoError(t, err)
	assert.Equal(t, 50.0, sum.Total)
	assert.Equal(t, 100.0, sum.Change)

	rows, err := svc.Trainers(context.Background(), w)
	require.NoError(t, err)
	assert.NotNil(t, rows)
}

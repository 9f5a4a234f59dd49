package service

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/sync/errgroup"

	"alcyxob/gym-manager/internal/apperr"
	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/query"
	"alcyxob/gym-manager/internal/report"
	"alcyxob/gym-manager/internal/repository"
)

// DashboardStats is the headline block of the staff dashboard.
type DashboardStats struct {
	TotalClients        int64   `json:"totalClients"`
	ActiveClients       int64   `json:"activeClients"`
	NewClientsThisMonth int64   `json:"newClientsThisMonth"`
	NewClientsLastMonth int64   `json:"newClientsLastMonth"`
	ClientGrowth        float64 `json:"clientGrowth"`
	ActiveTrainers      int64   `json:"activeTrainers"`
	MonthRevenue        float64 `json:"monthRevenue"`
	LastMonthRevenue    float64 `json:"lastMonthRevenue"`
	RevenueChange       float64 `json:"revenueChange"`
	PendingPayments     int64   `json:"pendingPayments"`
}

// ExpiringMembership is a client whose membership ends soon.
type ExpiringMembership struct {
	Client        domain.Client `json:"client"`
	DaysRemaining int           `json:"daysRemaining"`
}

// Chart periods accepted by RevenueChart.
const (
	ChartWeek  = "7d"
	ChartMonth = "30d"
	ChartYear  = "12m"
)

type DashboardService interface {
	Stats(ctx context.Context) (*DashboardStats, error)
	RecentActivities(ctx context.Context, limit int) ([]domain.ActivityRecord, error)
	RevenueChart(ctx context.Context, period string) ([]report.Group, error)
	MembershipChart(ctx context.Context) ([]report.Group, error)
	UpcomingExpirations(ctx context.Context, days int) ([]ExpiringMembership, error)
}

type dashboardService struct {
	clients    repository.ClientRepository
	activities repository.ActivityRepository
	stats      repository.StatsRepository
	reports    repository.ReportRepository
	now        func() time.Time
}

func NewDashboardService(
	clients repository.ClientRepository,
	activities repository.ActivityRepository,
	stats repository.StatsRepository,
	reports repository.ReportRepository,
) DashboardService {
	return &dashboardService{clients: clients, activities: activities, stats: stats, reports: reports, now: time.Now}
}

// lastMonth is the whole calendar month before the one containing now.
func lastMonth(now time.Time) report.Window {
	this := report.MonthToDate(now).From
	return report.Window{From: this.AddDate(0, -1, 0), To: this.Add(-time.Millisecond)}
}

// Stats issues its counts and sums together and waits for all of them.
func (s *dashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	now := s.now().UTC()
	month := report.MonthToDate(now)
	prev := lastMonth(now)

	var st DashboardStats
	g, gctx := errgroup.WithContext(ctx)
	count := func(dst *int64, kind domain.EntityKind, filter bson.M) {
		g.Go(func() error {
			n, err := s.stats.Count(gctx, kind, filter)
			*dst = n
			return err
		})
	}
	revenue := func(dst *float64, w report.Window) {
		g.Go(func() error {
			total, err := s.reports.RevenueTotal(gctx, w)
			*dst = total.Total
			return err
		})
	}

	count(&st.TotalClients, domain.KindClient, bson.M{})
	count(&st.ActiveClients, domain.KindClient, bson.M{"status": domain.ClientActive, "$or": bson.A{
		bson.M{"membershipEndDate": bson.M{"$exists": false}},
		bson.M{"membershipEndDate": bson.M{"$gte": now}},
	}})
	count(&st.NewClientsThisMonth, domain.KindClient, bson.M{"createdAt": bson.M{"$gte": month.From, "$lte": month.To}})
	count(&st.NewClientsLastMonth, domain.KindClient, bson.M{"createdAt": bson.M{"$gte": prev.From, "$lte": prev.To}})
	count(&st.ActiveTrainers, domain.KindTrainer, bson.M{"status": bson.M{"$in": bson.A{domain.TrainerAvailable, domain.TrainerInSession}}})
	count(&st.PendingPayments, domain.KindPayment, bson.M{"status": domain.PaymentPending})
	revenue(&st.MonthRevenue, month)
	revenue(&st.LastMonthRevenue, prev)

	if err := g.Wait(); err != nil {
		return nil, apperr.Internal("Failed to load dashboard statistics", err)
	}
	st.ClientGrowth = report.PercentChange(float64(st.NewClientsThisMonth), float64(st.NewClientsLastMonth))
	st.RevenueChange = report.PercentChange(st.MonthRevenue, st.LastMonthRevenue)
	return &st, nil
}

func (s *dashboardService) RecentActivities(ctx context.Context, limit int) ([]domain.ActivityRecord, error) {
	if limit < 1 || limit > 50 {
		limit = 10
	}
	page, err := s.activities.List(ctx, bson.M{}, query.PageRequest{Page: 1, Limit: limit, Sort: "-createdAt"})
	if err != nil {
		return nil, repoErr(err, "Activities")
	}
	return page.Data, nil
}

// RevenueChart returns completed revenue per day for 7d/30d and per month for 12m.
func (s *dashboardService) RevenueChart(ctx context.Context, period string) ([]report.Group, error) {
	now := s.now().UTC()
	var (
		w report.Window
		g report.Granularity
	)
	switch period {
	case "", ChartWeek:
		w, g = report.Last7Days(now), report.Daily
	case ChartMonth:
		w, g = report.Window{From: startOfDay(now).AddDate(0, 0, -29), To: now}, report.Daily
	case ChartYear:
		w, g = report.LastNMonths(now, 12), report.Monthly
	default:
		return nil, apperr.Validation("", apperr.FieldError{Field: "period", Message: "must be one of 7d, 30d, 12m"})
	}
	groups, err := s.reports.RevenueByPeriod(ctx, w, g)
	if err != nil {
		return nil, apperr.Internal("Failed to load revenue", err)
	}
	if groups == nil {
		groups = []report.Group{}
	}
	return groups, nil
}

func (s *dashboardService) MembershipChart(ctx context.Context) ([]report.Group, error) {
	groups, err := s.reports.MembershipDistribution(ctx)
	if err != nil {
		return nil, apperr.Internal("Failed to load memberships", err)
	}
	if groups == nil {
		groups = []report.Group{}
	}
	return groups, nil
}

// UpcomingExpirations lists active members whose membership ends within days.
func (s *dashboardService) UpcomingExpirations(ctx context.Context, days int) ([]ExpiringMembership, error) {
	if days < 1 || days > 90 {
		days = 7
	}
	now := s.now().UTC()
	clients, err := s.clients.ExpiringBetween(ctx, now, now.AddDate(0, 0, days), 20)
	if err != nil {
		return nil, repoErr(err, "Clients")
	}
	out := make([]ExpiringMembership, 0, len(clients))
	for i := range clients {
		out = append(out, ExpiringMembership{Client: clients[i], DaysRemaining: clients[i].DaysRemaining(now)})
	}
	return out, nil
}

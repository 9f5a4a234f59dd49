package service

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/sync/errgroup"

	"alcyxob/gym-manager/internal/apperr"
	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/report"
	"alcyxob/gym-manager/internal/repository"
)

// Overview condenses one reporting window into a handful of figures.
type Overview struct {
	Window             report.Window `json:"window"`
	Revenue            float64       `json:"revenue"`
	PreviousRevenue    float64       `json:"previousRevenue"`
	RevenueChange      float64       `json:"revenueChange"`
	Payments           int64         `json:"payments"`
	NewClients         int64         `json:"newClients"`
	PreviousNewClients int64         `json:"previousNewClients"`
	NewClientsChange   float64       `json:"newClientsChange"`
	TotalClients       int64         `json:"totalClients"`
	ActiveTrainers     int64         `json:"activeTrainers"`
	RevenuePerClient   float64       `json:"revenuePerClient"`
}

// ClientGrowth is the new-client series with running totals.
type ClientGrowth struct {
	Window      report.Window        `json:"window"`
	Granularity report.Granularity   `json:"granularity"`
	Baseline    int64                `json:"baseline"`
	Points      []report.GrowthPoint `json:"points"`
}

// AnalyticsRequest selects the window and bucket size of a report.
type AnalyticsRequest struct {
	Window      report.Window
	Granularity report.Granularity
}

type AnalyticsService interface {
	Overview(ctx context.Context, w report.Window) (*Overview, error)
	Revenue(ctx context.Context, req AnalyticsRequest) (*report.RevenueSummary, error)
	Memberships(ctx context.Context) ([]report.Group, error)
	Trainers(ctx context.Context, w report.Window) ([]report.TrainerPerformance, error)
	ClientGrowth(ctx context.Context, req AnalyticsRequest) (*ClientGrowth, error)
	PaymentMethods(ctx context.Context, w report.Window) ([]report.Group, error)
	// DefaultWindow is the window used when a request names none.
	DefaultWindow() report.Window
}

type analyticsService struct {
	reports repository.ReportRepository
	stats   repository.StatsRepository
	now     func() time.Time
}

func NewAnalyticsService(reports repository.ReportRepository, stats repository.StatsRepository) AnalyticsService {
	return &analyticsService{reports: reports, stats: stats, now: time.Now}
}

func (s *analyticsService) DefaultWindow() report.Window {
	return report.LastNMonths(s.now().UTC(), 6)
}

func (s *analyticsService) Overview(ctx context.Context, w report.Window) (*Overview, error) {
	prev := w.Previous()
	var (
		ov             = Overview{Window: w}
		current, older report.Group
	)

	g, gctx := errgroup.WithContext(ctx)
	count := func(dst *int64, kind domain.EntityKind, filter bson.M) {
		g.Go(func() error {
			n, err := s.stats.Count(gctx, kind, filter)
			*dst = n
			return err
		})
	}
	g.Go(func() (err error) {
		current, err = s.reports.RevenueTotal(gctx, w)
		return err
	})
	g.Go(func() (err error) {
		older, err = s.reports.RevenueTotal(gctx, prev)
		return err
	})
	count(&ov.NewClients, domain.KindClient, bson.M{"createdAt": bson.M{"$gte": w.From, "$lte": w.To}})
	count(&ov.PreviousNewClients, domain.KindClient, bson.M{"createdAt": bson.M{"$gte": prev.From, "$lte": prev.To}})
	count(&ov.TotalClients, domain.KindClient, bson.M{"createdAt": bson.M{"$lte": w.To}})
	count(&ov.ActiveTrainers, domain.KindTrainer, bson.M{"status": bson.M{"$ne": domain.TrainerTerminated}})
	if err := g.Wait(); err != nil {
		return nil, apperr.Internal("Failed to load overview", err)
	}

	ov.Revenue = current.Total
	ov.Payments = current.Count
	ov.PreviousRevenue = older.Total
	ov.RevenueChange = report.PercentChange(current.Total, older.Total)
	ov.NewClientsChange = report.PercentChange(float64(ov.NewClients), float64(ov.PreviousNewClients))
	if ov.TotalClients > 0 {
		ov.RevenuePerClient = report.Round2(current.Total / float64(ov.TotalClients))
	}
	return &ov, nil
}

func (s *analyticsService) Revenue(ctx context.Context, req AnalyticsRequest) (*report.RevenueSummary, error) {
	series, err := s.reports.RevenueByPeriod(ctx, req.Window, req.Granularity)
	if err != nil {
		return nil, apperr.Internal("Failed to load revenue", err)
	}
	previous, err := s.reports.RevenueTotal(ctx, req.Window.Previous())
	if err != nil {
		return nil, apperr.Internal("Failed to load revenue", err)
	}
	summary := report.Summarize(req.Window, series, previous.Total)
	return &summary, nil
}

func (s *analyticsService) Memberships(ctx context.Context) ([]report.Group, error) {
	groups, err := s.reports.MembershipDistribution(ctx)
	if err != nil {
		return nil, apperr.Internal("Failed to load memberships", err)
	}
	if groups == nil {
		groups = []report.Group{}
	}
	return groups, nil
}

func (s *analyticsService) Trainers(ctx context.Context, w report.Window) ([]report.TrainerPerformance, error) {
	rows, err := s.reports.TrainerPerformance(ctx, w)
	if err != nil {
		return nil, apperr.Internal("Failed to load trainer performance", err)
	}
	if rows == nil {
		rows = []report.TrainerPerformance{}
	}
	return rows, nil
}

func (s *analyticsService) ClientGrowth(ctx context.Context, req AnalyticsRequest) (*ClientGrowth, error) {
	groups, baseline, err := s.reports.ClientGrowth(ctx, req.Window, req.Granularity)
	if err != nil {
		return nil, apperr.Internal("Failed to load client growth", err)
	}
	return &ClientGrowth{
		Window:      req.Window,
		Granularity: req.Granularity,
		Baseline:    baseline,
		Points:      report.Cumulative(baseline, groups),
	}, nil
}

func (s *analyticsService) PaymentMethods(ctx context.Context, w report.Window) ([]report.Group, error) {
	groups, err := s.reports.PaymentMethods(ctx, w)
	if err != nil {
		return nil, apperr.Internal("Failed to load payment methods", err)
	}
	if groups == nil {
		groups = []report.Group{}
	}
	return groups, nil
}

package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/report"
	"alcyxob/gym-manager/internal/repository"
)

// mongoReportRepository runs report pipelines. It only reads.
type mongoReportRepository struct {
	db *mongo.Database
}

func NewMongoReportRepository(db *mongo.Database) repository.ReportRepository {
	return &mongoReportRepository{db: db}
}

func aggregate[T any](ctx context.Context, collection *mongo.Collection, pipeline mongo.Pipeline) ([]T, error) {
	cursor, err := collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := make([]T, 0)
	if err = cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *mongoReportRepository) payments() *mongo.Collection {
	return r.db.Collection(report.PaymentsCollection)
}

func (r *mongoReportRepository) RevenueByPeriod(ctx context.Context, w report.Window, g report.Granularity) ([]report.Group, error) {
	return aggregate[report.Group](ctx, r.payments(), report.RevenueByPeriodPipeline(w, g))
}

func (r *mongoReportRepository) RevenueTotal(ctx context.Context, w report.Window) (report.Group, error) {
	groups, err := aggregate[report.Group](ctx, r.payments(), report.RevenueTotalPipeline(w))
	if err != nil || len(groups) == 0 {
		return report.Group{}, err
	}
	return groups[0], nil
}

func (r *mongoReportRepository) MembershipDistribution(ctx context.Context) ([]report.Group, error) {
	groups, err := aggregate[report.Group](ctx, r.db.Collection(report.ClientsCollection), report.MembershipDistributionPipeline())
	if err != nil {
		return nil, err
	}
	return report.WithCountPercentages(groups), nil
}

func (r *mongoReportRepository) TrainerPerformance(ctx context.Context, w report.Window) ([]report.TrainerPerformance, error) {
	return aggregate[report.TrainerPerformance](ctx, r.db.Collection(report.TrainersCollection), report.TrainerPerformancePipeline(w))
}

func (r *mongoReportRepository) ClientGrowth(ctx context.Context, w report.Window, g report.Granularity) ([]report.Group, int64, error) {
	clients := r.db.Collection(report.ClientsCollection)
	baseline, err := clients.CountDocuments(ctx, bson.M{"createdAt": bson.M{"$lt": w.From}})
	if err != nil {
		return nil, 0, err
	}
	groups, err := aggregate[report.Group](ctx, clients, report.ClientGrowthPipeline(w, g))
	if err != nil {
		return nil, 0, err
	}
	return groups, baseline, nil
}

func (r *mongoReportRepository) PaymentMethods(ctx context.Context, w report.Window) ([]report.Group, error) {
	groups, err := aggregate[report.Group](ctx, r.payments(), report.PaymentMethodPipeline(w))
	if err != nil {
		return nil, err
	}
	return report.WithTotalPercentages(groups), nil
}

// mongoStatsRepository counts documents in the collection of an entity kind.
type mongoStatsRepository struct {
	db *mongo.Database
}

func NewMongoStatsRepository(db *mongo.Database) repository.StatsRepository {
	return &mongoStatsRepository{db: db}
}

func (r *mongoStatsRepository) Count(ctx context.Context, kind domain.EntityKind, filter bson.M) (int64, error) {
	name, err := kind.Collection()
	if err != nil {
		return 0, err
	}
	if filter == nil {
		filter = bson.M{}
	}
	return r.db.Collection(name).CountDocuments(ctx, filter)
}

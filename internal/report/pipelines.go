package report

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"alcyxob/gym-manager/internal/domain"
)

// Collections the pipelines are run against.
const (
	PaymentsCollection = "payments"
	ClientsCollection  = "clients"
	TrainersCollection = "trainers"
)

func between(field string, w Window) bson.E {
	return bson.E{Key: field, Value: bson.M{"$gte": w.From, "$lte": w.To}}
}

// CompletedPaymentsMatch selects completed payments paid inside w.
func CompletedPaymentsMatch(w Window) bson.D {
	return bson.D{
		{Key: "status", Value: domain.PaymentCompleted},
		between("paidAt", w),
	}
}

// RevenueByPeriodPipeline groups completed payments in w by day or month,
// summing amounts. Output decodes into []Group sorted by period.
func RevenueByPeriodPipeline(w Window, g Granularity) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: CompletedPaymentsMatch(w)}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{{Key: "$dateToString", Value: bson.D{
				{Key: "format", Value: g.DateFormat()},
				{Key: "date", Value: "$paidAt"},
			}}}},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: "$amount"}}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}
}

// RevenueTotalPipeline sums completed payments in w into a single group.
func RevenueTotalPipeline(w Window) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: CompletedPaymentsMatch(w)}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: "$amount"}}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
}

// MembershipDistributionPipeline counts non-inactive clients per membership type.
func MembershipDistributionPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "status", Value: bson.D{{Key: "$ne", Value: domain.ClientInactive}}}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$membershipType"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
	}
}

// TrainerPerformancePipeline runs on trainers and joins, per trainer, the
// number of assigned clients and the completed payments attributed to them in w.
func TrainerPerformancePipeline(w Window) mongo.Pipeline {
	first := func(path string) bson.D {
		return bson.D{{Key: "$ifNull", Value: bson.A{
			bson.D{{Key: "$arrayElemAt", Value: bson.A{path, 0}}}, 0,
		}}}
	}
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "status", Value: bson.D{{Key: "$ne", Value: domain.TrainerTerminated}}}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: ClientsCollection},
			{Key: "let", Value: bson.D{{Key: "tid", Value: "$_id"}}},
			{Key: "pipeline", Value: bson.A{
				bson.D{{Key: "$match", Value: bson.D{{Key: "$expr", Value: bson.D{
					{Key: "$eq", Value: bson.A{"$assignedTrainer", "$$tid"}},
				}}}}},
				bson.D{{Key: "$count", Value: "n"}},
			}},
			{Key: "as", Value: "clientCount"},
		}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: PaymentsCollection},
			{Key: "let", Value: bson.D{{Key: "tid", Value: "$_id"}}},
			{Key: "pipeline", Value: bson.A{
				bson.D{{Key: "$match", Value: bson.D{{Key: "$expr", Value: bson.D{{Key: "$and", Value: bson.A{
					bson.D{{Key: "$eq", Value: bson.A{"$trainer", "$$tid"}}},
					bson.D{{Key: "$eq", Value: bson.A{"$status", domain.PaymentCompleted}}},
					bson.D{{Key: "$gte", Value: bson.A{"$paidAt", w.From}}},
					bson.D{{Key: "$lte", Value: bson.A{"$paidAt", w.To}}},
				}}}}}}},
				bson.D{{Key: "$group", Value: bson.D{
					{Key: "_id", Value: nil},
					{Key: "revenue", Value: bson.D{{Key: "$sum", Value: "$amount"}}},
					{Key: "sessions", Value: bson.D{{Key: "$sum", Value: 1}}},
				}}},
			}},
			{Key: "as", Value: "sales"},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "firstName", Value: 1},
			{Key: "lastName", Value: 1},
			{Key: "status", Value: 1},
			{Key: "rating", Value: 1},
			{Key: "specialties", Value: 1},
			{Key: "clients", Value: first("$clientCount.n")},
			{Key: "revenue", Value: first("$sales.revenue")},
			{Key: "sessions", Value: first("$sales.sessions")},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "revenue", Value: -1}, {Key: "_id", Value: 1}}}},
	}
}

// ClientGrowthPipeline counts clients created per period inside w. Combine
// the result with a baseline count through Cumulative.
func ClientGrowthPipeline(w Window, g Granularity) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{between("createdAt", w)}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{{Key: "$dateToString", Value: bson.D{
				{Key: "format", Value: g.DateFormat()},
				{Key: "date", Value: "$createdAt"},
			}}}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}
}

// PaymentMethodPipeline groups completed payments in w by method.
func PaymentMethodPipeline(w Window) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: CompletedPaymentsMatch(w)}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$method"},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: "$amount"}}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "total", Value: -1}, {Key: "_id", Value: 1}}}},
	}
}

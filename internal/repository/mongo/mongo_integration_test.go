package mongo

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/query"
	"alcyxob/gym-manager/internal/report"
	"alcyxob/gym-manager/internal/repository"
)

// testDB connects to TEST_MONGO_URI and hands out a throwaway database.
func testDB(t *testing.T) *mongo.Database {
	t.Helper()
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set")
	}
	client, err := ConnectDB(uri)
	require.NoError(t, err)

	db := client.Database(fmt.Sprintf("gym_test_%d", time.Now().UnixNano()))
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(func() {
		defer cancel()
		_ = db.Drop(ctx)
		_ = DisconnectDB(client)
	})
	EnsureIndexes(ctx, db)
	return db
}

func TestClientRepository_SearchAndExpand(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	clients := NewMongoClientRepository(db)
	trainers := NewMongoTrainerRepository(db)

	trainer := &domain.Trainer{FirstName: "Tom", LastName: "Hardy", Email: "tom@x.com", Phone: "1"}
	trainer.ApplyDefaults(time.Now())
	trainerID, err := trainers.Create(ctx, trainer)
	require.NoError(t, err)

	ann := &domain.Client{FirstName: "Ann", Email: "ann@x.com", Phone: "555", MembershipType: domain.MembershipBasic, AssignedTrainer: &trainerID}
	ann.ApplyDefaults(time.Now())
	_, err = clients.Create(ctx, ann)
	require.NoError(t, err)

	bob := &domain.Client{FirstName: "Bob", Email: "bob@x.com", Phone: "556", MembershipType: domain.MembershipVIP}
	bob.ApplyDefaults(time.Now())
	_, err = clients.Create(ctx, bob)
	require.NoError(t, err)

	dup := &domain.Client{FirstName: "Ann2", Email: "ann@x.com", Phone: "1", MembershipType: domain.MembershipBasic}
	_, err = clients.Create(ctx, dup)
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	filter := query.AddSearch(bson.M{}, "ann", "firstName", "lastName", "email", "phone")
	page, err := clients.List(ctx, filter, query.PageRequest{Page: 1, Limit: 10, Sort: "-createdAt"})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Ann", page.Data[0].FirstName)
	require.NotNil(t, page.Data[0].Trainer)
	assert.Equal(t, "Tom", page.Data[0].Trainer.FirstName)
	assert.EqualValues(t, 1, page.Pagination.Total)

	n, err := clients.CountByTrainer(ctx, trainerID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestPaymentRepository_SequentialInvoicesAndRefund(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	payments := NewMongoPaymentRepository(db)
	counters := NewMongoCounterRepository(db)

	now := time.Date(2026, 10, 5, 12, 0, 0, 0, time.UTC)
	key := "invoice-" + domain.InvoicePeriod(now)
	var ids []primitive.ObjectID
	for i := 1; i <= 3; i++ {
		seq, err := counters.Next(ctx, key)
		require.NoError(t, err)
		p := &domain.Payment{
			InvoiceNumber: domain.FormatInvoiceNumber(now, seq),
			Client:        primitive.NewObjectID(),
			Amount:        float64(10 * i),
			Type:          domain.PaymentMembership,
			Method:        domain.MethodCash,
		}
		p.ApplyDefaults(now)
		id, err := payments.Create(ctx, p)
		require.NoError(t, err)
		ids = append(ids, id)
		assert.Equal(t, fmt.Sprintf("INV-2610-%05d", i), p.InvoiceNumber)
	}

	dup := &domain.Payment{InvoiceNumber: "INV-2610-00001", Client: primitive.NewObjectID(), Amount: 1}
	_, err := payments.Create(ctx, dup)
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	loaded, err := payments.GetByID(ctx, ids[0])
	require.NoError(t, err)
	stale := loaded.Payment

	refund := domain.Refund{Amount: 10, RefundedAt: now, RefundedBy: primitive.NewObjectID()}
	require.NoError(t, payments.MarkRefunded(ctx, ids[0], refund))

	stale.Notes = "edited after the refund"
	assert.ErrorIs(t, payments.Update(ctx, &stale), repository.ErrConflict)
	stale.ID = primitive.NewObjectID()
	assert.ErrorIs(t, payments.Update(ctx, &stale), repository.ErrNotFound)

	assert.ErrorIs(t, payments.MarkRefunded(ctx, ids[0], refund), repository.ErrConflict)
	assert.ErrorIs(t, payments.MarkRefunded(ctx, primitive.NewObjectID(), refund), repository.ErrNotFound)

	got, err := payments.GetByID(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentRefunded, got.Status)
	assert.NotNil(t, got.Refund)
	assert.Empty(t, got.Notes)

	reports := NewMongoReportRepository(db)
	total, err := reports.RevenueTotal(ctx, report.Window{From: now.Add(-time.Hour), To: now.Add(time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, 50.0, total.Total)
	assert.EqualValues(t, 2, total.Count)
}

func TestNotificationRepository_ScopedByRecipient(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewMongoNotificationRepository(db)

	me, other := primitive.NewObjectID(), primitive.NewObjectID()
	id, err := repo.Create(ctx, &domain.Notification{Recipient: me, Type: domain.NotifySystem, Title: "hi", Message: "m"})
	require.NoError(t, err)

	assert.ErrorIs(t, repo.MarkRead(ctx, id, other, time.Now()), repository.ErrNotFound)

	count, err := repo.UnreadCount(ctx, me)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	n, err := repo.MarkAllRead(ctx, me, time.Now())
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestNotificationRepository_ExistsSinceMatchesType(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewMongoNotificationRepository(db)

	me := primitive.NewObjectID()
	ref := domain.ClientRef(primitive.NewObjectID())
	since := time.Now().UTC().Add(-time.Minute)
	_, err := repo.Create(ctx, &domain.Notification{Recipient: me, Type: domain.NotifyClient, Title: "New client", Message: "m", Reference: ref})
	require.NoError(t, err)

	found, err := repo.ExistsSince(ctx, me, domain.NotifyClient, *ref, since)
	require.NoError(t, err)
	assert.True(t, found)

	found, err = repo.ExistsSince(ctx, me, domain.NotifyMembership, *ref, since)
	require.NoError(t, err)
	assert.False(t, found)
}

package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"alcyxob/gym-manager/internal/apperr"
	"alcyxob/gym-manager/internal/domain"
)

var paymentNow = time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)

type paymentFixture struct {
	svc      *paymentService
	payments *fakePayments
	clients  *fakeClients
	counters *fakeCounters
	mailer   *fakeMailer
	rec      recorderFixture
	client   *domain.Client
	actor    primitive.ObjectID
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()
	client := &domain.Client{
		FirstName:      "Ann",
		LastName:       "Lee",
		Email:          "ann@gym.test",
		Phone:          "555-0100",
		MembershipType: domain.MembershipBasic,
		Status:         domain.ClientActive,
	}
	clients := newFakeClients(client)
	f := &paymentFixture{
		payments: newFakePayments(clients),
		clients:  clients,
		counters: &fakeCounters{},
		mailer:   &fakeMailer{},
		rec:      newRecorderFixture(),
		client:   client,
		actor:    primitive.NewObjectID(),
	}
	f.svc = NewPaymentService(f.payments, clients, newFakeTrainers(), f.counters, &fakeStats{}, &fakeReports{}, f.mailer, f.rec.recorder, "Gym").(*paymentService)
	f.svc.now = func() time.Time { return paymentNow }
	return f
}

func (f *paymentFixture) create(t *testing.T, status domain.PaymentStatus) *domain.Payment {
	t.Helper()
	p, err := f.svc.Create(context.Background(), f.actor, &domain.Payment{
		Client: f.client.ID,
		Amount: 49.5,
		Type:   domain.PaymentPersonalTraining,
		Method: domain.MethodCard,
		Status: status,
	})
	require.NoError(t, err)
	return p
}

func TestPaymentCreate_SequentialInvoiceNumbers(t *testing.T) {
	f := newPaymentFixture(t)

	var numbers []string
	for i := 0; i < 3; i++ {
		numbers = append(numbers, f.create(t, domain.PaymentCompleted).InvoiceNumber)
	}
	assert.Equal(t, []string{"INV-2610-00001", "INV-2610-00002", "INV-2610-00003"}, numbers)

	f.svc.now = func() time.Time { return paymentNow.AddDate(0, 1, 0) }
	assert.Equal(t, "INV-2611-00001", f.create(t, domain.PaymentCompleted).InvoiceNumber)
}

func TestPaymentCreate_Defaults(t *testing.T) {
	f := newPaymentFixture(t)
	p := f.create(t, "")

	assert.Equal(t, domain.PaymentCompleted, p.Status)
	assert.Equal(t, "USD", p.Currency)
	require.NotNil(t, p.PaidAt)
	assert.Equal(t, paymentNow, *p.PaidAt)
	assert.Equal(t, f.actor, p.ProcessedBy)
	assert.Contains(t, f.rec.activities.actions(), domain.ActionCreate)
}

func TestPaymentCreate_Validation(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.actor, &domain.Payment{Client: primitive.NewObjectID(), Amount: 10, Type: domain.PaymentOther, Method: domain.MethodCash})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindValidation), "unknown client")

	_, err = f.svc.Create(ctx, f.actor, &domain.Payment{Client: f.client.ID, Amount: 0, Type: domain.PaymentOther, Method: domain.MethodCash})
	assert.True(t, apperr.Is(err, apperr.KindValidation), "zero amount")

	_, err = f.svc.Create(ctx, f.actor, &domain.Payment{Client: f.client.ID, Amount: 10, Type: domain.PaymentMembership, Method: domain.MethodCash})
	assert.True(t, apperr.Is(err, apperr.KindValidation), "membership without plan")

	assert.Empty(t, f.counters.values, "no invoice number is used up by rejected payments")
}

func TestPaymentCreate_MembershipExtendsClient(t *testing.T) {
	f := newPaymentFixture(t)
	current := paymentNow.AddDate(0, 0, 10)
	f.clients.byID[f.client.ID].MembershipEndDate = &current

	p, err := f.svc.Create(context.Background(), f.actor, &domain.Payment{
		Client: f.client.ID,
		Amount: 120,
		Type:   domain.PaymentMembership,
		Method: domain.MethodCash,
		Plan:   &domain.PlanDetails{MembershipType: domain.MembershipPremium, DurationMonths: 3},
	})
	require.NoError(t, err)

	want := current.AddDate(0, 3, 0)
	require.NotNil(t, p.Plan.EndDate)
	assert.Equal(t, want, *p.Plan.EndDate)
	assert.Equal(t, want, f.clients.memberships[f.client.ID])
	assert.Equal(t, domain.MembershipPremium, f.clients.byID[f.client.ID].MembershipType)
}

func membershipPayment(f *paymentFixture, status domain.PaymentStatus) *domain.Payment {
	return &domain.Payment{
		Client: f.client.ID,
		Amount: 120,
		Type:   domain.PaymentMembership,
		Method: domain.MethodCash,
		Status: status,
		Plan:   &domain.PlanDetails{MembershipType: domain.MembershipPremium, DurationMonths: 1},
	}
}

func TestPaymentCreate_MembershipFailureIsReported(t *testing.T) {
	f := newPaymentFixture(t)
	f.clients.membershipErr = errors.New("clients unavailable")

	_, err := f.svc.Create(context.Background(), f.actor, membershipPayment(f, domain.PaymentCompleted))
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindInternal))

	assert.Empty(t, f.payments.order, "the payment is not kept without its membership")
	assert.Empty(t, f.clients.memberships)
	assert.Equal(t, domain.MembershipBasic, f.clients.byID[f.client.ID].MembershipType)
	assert.NotContains(t, f.rec.activities.actions(), domain.ActionCreate)
}

func TestPaymentUpdate_CompletingMembershipExtendsClient(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()
	p, err := f.svc.Create(ctx, f.actor, membershipPayment(f, domain.PaymentPending))
	require.NoError(t, err)
	assert.Empty(t, f.clients.memberships, "pending payments do not extend")

	updated, err := f.svc.Update(ctx, f.actor, p.ID, func(p *domain.Payment) error {
		p.Status = domain.PaymentCompleted
		return nil
	})
	require.NoError(t, err)
	want := paymentNow.AddDate(0, 1, 0)
	assert.Equal(t, want, f.clients.memberships[f.client.ID])
	require.NotNil(t, updated.Plan.EndDate)
	assert.Equal(t, want, *updated.Plan.EndDate)
}

func TestPaymentUpdate_MembershipFailureRevertsStatus(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()
	p, err := f.svc.Create(ctx, f.actor, membershipPayment(f, domain.PaymentPending))
	require.NoError(t, err)
	f.clients.membershipErr = errors.New("clients unavailable")

	_, err = f.svc.Update(ctx, f.actor, p.ID, func(p *domain.Payment) error {
		p.Status = domain.PaymentCompleted
		return nil
	})
	assert.True(t, apperr.Is(err, apperr.KindInternal))

	stored, err := f.payments.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPending, stored.Status)
	assert.Nil(t, stored.Plan.EndDate)
}

func TestPaymentUpdate_RefundedMeanwhile(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()
	p := f.create(t, domain.PaymentCompleted)

	_, err := f.svc.Update(ctx, f.actor, p.ID, func(edit *domain.Payment) error {
		// a refund commits after the edit loaded the payment
		require.NoError(t, f.payments.MarkRefunded(ctx, p.ID, domain.Refund{Amount: p.Amount, RefundedAt: paymentNow}))
		edit.Notes = "late edit"
		return nil
	})
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	stored, err := f.payments.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentRefunded, stored.Status)
	assert.NotNil(t, stored.Refund)
	assert.Empty(t, stored.Notes)
}

func TestPaymentRefund_OnlyFromCompleted(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()

	for _, status := range []domain.PaymentStatus{domain.PaymentPending, domain.PaymentFailed, domain.PaymentCancelled} {
		p := f.create(t, status)
		_, err := f.svc.Refund(ctx, f.actor, p.ID, RefundInput{Reason: "changed mind"})
		require.Error(t, err, status)
		assert.Equal(t, 400, apperr.HTTPStatus(err))

		stored, err := f.svc.Get(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, status, stored.Status, "record unchanged")
		assert.Nil(t, stored.Refund)
	}
}

func TestPaymentRefund_Completed(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()
	p := f.create(t, domain.PaymentCompleted)

	_, err := f.svc.Refund(ctx, f.actor, p.ID, RefundInput{Amount: 100})
	assert.True(t, apperr.Is(err, apperr.KindValidation), "more than paid")

	rec, err := f.svc.Refund(ctx, f.actor, p.ID, RefundInput{Reason: "injury"})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentRefunded, rec.Status)
	require.NotNil(t, rec.Refund)
	assert.Equal(t, 49.5, rec.Refund.Amount)
	assert.Equal(t, f.actor, rec.Refund.RefundedBy)

	_, err = f.svc.Refund(ctx, f.actor, p.ID, RefundInput{})
	assert.ErrorIs(t, err, ErrNotRefundable, "second refund")

	_, err = f.svc.Update(ctx, f.actor, p.ID, func(p *domain.Payment) error { p.Notes = "x"; return nil })
	assert.True(t, apperr.Is(err, apperr.KindConflict), "refunded payments are frozen")

	_, err = f.svc.Refund(ctx, f.actor, primitive.NewObjectID(), RefundInput{})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestPaymentUpdate_KeepsInvoiceAndClient(t *testing.T) {
	f := newPaymentFixture(t)
	p := f.create(t, domain.PaymentPending)

	updated, err := f.svc.Update(context.Background(), f.actor, p.ID, func(p *domain.Payment) error {
		p.InvoiceNumber = "INV-0000-99999"
		p.Client = primitive.NewObjectID()
		p.Status = domain.PaymentCompleted
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, p.InvoiceNumber, updated.InvoiceNumber)
	assert.Equal(t, f.client.ID, updated.Client)
	assert.NotNil(t, updated.PaidAt)

	_, err = f.svc.Update(context.Background(), f.actor, p.ID, func(p *domain.Payment) error {
		p.Status = domain.PaymentRefunded
		return nil
	})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestPaymentExport_CSV(t *testing.T) {
	f := newPaymentFixture(t)
	f.create(t, domain.PaymentCompleted)
	f.create(t, domain.PaymentPending)

	var buf bytes.Buffer
	require.NoError(t, f.svc.Export(context.Background(), ListQuery{Params: map[string]string{"status": "all"}}, "-createdAt", &buf))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, exportHeader, rows[0])
	assert.Equal(t, "INV-2610-00001", rows[1][0])
	assert.Equal(t, "2026-10-17", rows[1][1])
	assert.Equal(t, "Ann Lee", rows[1][2])
	assert.Equal(t, "49.50", rows[1][8])
	assert.Equal(t, "pending", rows[2][7])
}

func TestPaymentEmailReceipt(t *testing.T) {
	f := newPaymentFixture(t)
	p := f.create(t, domain.PaymentCompleted)

	require.NoError(t, f.svc.EmailReceipt(context.Background(), f.actor, p.ID))
	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, "ann@gym.test", f.mailer.sent[0].To)
	assert.Contains(t, f.mailer.sent[0].Subject, p.InvoiceNumber)

	receipt, err := f.svc.Receipt(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.PaymentPersonalTraining), receipt.Description)
	assert.Equal(t, "Ann Lee", receipt.Client.FullName())
}

func TestPaymentFilter_DateAliases(t *testing.T) {
	filter, err := paymentFilter(ListQuery{Params: map[string]string{"dateFrom": "2026-10-01", "method": "all"}})
	require.NoError(t, err)
	assert.Contains(t, filter, "paidAt")
	assert.NotContains(t, filter, "method")
}

package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"alcyxob/gym-manager/internal/apperr"
	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/email"
	"alcyxob/gym-manager/internal/logger"
	"alcyxob/gym-manager/internal/query"
	"alcyxob/gym-manager/internal/report"
	"alcyxob/gym-manager/internal/repository"
)

// PaymentFilterKeys are the query parameters a payment list can be filtered
// by. dateFrom/dateTo are aliases for paidAtFrom/paidAtTo.
var PaymentFilterKeys = []string{"status", "type", "method", "client", "trainer", "currency", "paidAtFrom", "paidAtTo", "dueDateFrom", "dueDateTo", "dateFrom", "dateTo"}

var paymentSearchFields = []string{"invoiceNumber", "description", "notes"}

var ErrNotRefundable = apperr.Conflict("Only completed payments can be refunded")

// RefundInput describes a refund. A zero Amount refunds the full payment.
type RefundInput struct {
	Amount float64
	Reason string
}

// Receipt is the printable view of a payment.
type Receipt struct {
	InvoiceNumber string                `json:"invoiceNumber"`
	IssuedAt      time.Time             `json:"issuedAt"`
	Client        *domain.PersonSummary `json:"client,omitempty"`
	Trainer       *domain.PersonSummary `json:"trainer,omitempty"`
	Description   string                `json:"description"`
	Type          domain.PaymentType    `json:"type"`
	Method        domain.PaymentMethod  `json:"method"`
	Status        domain.PaymentStatus  `json:"status"`
	Amount        float64               `json:"amount"`
	Currency      string                `json:"currency"`
	PaidAt        *time.Time            `json:"paidAt,omitempty"`
	Plan          *domain.PlanDetails   `json:"plan,omitempty"`
	Refund        *domain.Refund        `json:"refund,omitempty"`
}

// PaymentStats summarises payments for a window.
type PaymentStats struct {
	Revenue       report.RevenueSummary `json:"revenue"`
	Pending       int64                 `json:"pending"`
	Overdue       int64                 `json:"overdue"`
	Refunded      int64                 `json:"refunded"`
	Failed        int64                 `json:"failed"`
	ByMethod      []report.Group        `json:"byMethod"`
	AverageAmount float64               `json:"averageAmount"`
}

type PaymentService interface {
	List(ctx context.Context, q ListQuery, page query.PageRequest) (*query.Page[domain.PaymentRecord], error)
	Get(ctx context.Context, id primitive.ObjectID) (*domain.PaymentRecord, error)
	Create(ctx context.Context, actor primitive.ObjectID, payment *domain.Payment) (*domain.Payment, error)
	Update(ctx context.Context, actor, id primitive.ObjectID, patch Patch[domain.Payment]) (*domain.Payment, error)
	Refund(ctx context.Context, actor, id primitive.ObjectID, in RefundInput) (*domain.PaymentRecord, error)
	Receipt(ctx context.Context, id primitive.ObjectID) (*Receipt, error)
	EmailReceipt(ctx context.Context, actor, id primitive.ObjectID) error
	Export(ctx context.Context, q ListQuery, sort string, w io.Writer) error
	Stats(ctx context.Context, w report.Window) (*PaymentStats, error)
}

// paymentService implements the PaymentService interface.
type paymentService struct {
	payments repository.PaymentRepository
	clients  repository.ClientRepository
	trainers repository.TrainerRepository
	counters repository.CounterRepository
	stats    repository.StatsRepository
	reports  repository.ReportRepository
	mailer   email.Mailer
	recorder *Recorder
	appName  string
	now      func() time.Time
}

func NewPaymentService(
	payments repository.PaymentRepository,
	clients repository.ClientRepository,
	trainers repository.TrainerRepository,
	counters repository.CounterRepository,
	stats repository.StatsRepository,
	reports repository.ReportRepository,
	mailer email.Mailer,
	recorder *Recorder,
	appName string,
) PaymentService {
	return &paymentService{
		payments: payments,
		clients:  clients,
		trainers: trainers,
		counters: counters,
		stats:    stats,
		reports:  reports,
		mailer:   mailer,
		recorder: recorder,
		appName:  appName,
		now:      time.Now,
	}
}

func paymentFilter(q ListQuery) (bson.M, error) {
	params := make(map[string]string, len(q.Params))
	for k, v := range q.Params {
		switch k {
		case "dateFrom":
			k = "paidAtFrom"
		case "dateTo":
			k = "paidAtTo"
		}
		params[k] = v
	}
	return listFilter(ListQuery{Params: params, Search: q.Search}, paymentSearchFields, "client", "trainer")
}

func (s *paymentService) List(ctx context.Context, q ListQuery, page query.PageRequest) (*query.Page[domain.PaymentRecord], error) {
	filter, err := paymentFilter(q)
	if err != nil {
		return nil, err
	}
	result, err := s.payments.List(ctx, filter, page)
	if err != nil {
		return nil, repoErr(err, "Payments")
	}
	return result, nil
}

func (s *paymentService) Get(ctx context.Context, id primitive.ObjectID) (*domain.PaymentRecord, error) {
	record, err := s.payments.GetByID(ctx, id)
	if err != nil {
		return nil, repoErr(err, "Payment")
	}
	return record, nil
}

// Create records a payment. The invoice number comes from a per-month
// counter, so numbers are unique and increase within a month.
func (s *paymentService) Create(ctx context.Context, actor primitive.ObjectID, payment *domain.Payment) (*domain.Payment, error) {
	now := s.now().UTC()
	payment.ProcessedBy = actor
	payment.Refund = nil
	if payment.Status == domain.PaymentRefunded {
		return nil, apperr.Validation("", apperr.FieldError{Field: "status", Message: "cannot create a refunded payment"})
	}
	payment.ApplyDefaults(now)
	if err := domain.Validate(payment); err != nil {
		return nil, err
	}
	if payment.Type == domain.PaymentMembership && payment.Plan == nil {
		return nil, apperr.Validation("", apperr.FieldError{Field: "plan", Message: "is required for membership payments"})
	}

	client, err := s.clients.GetByID(ctx, payment.Client)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Validation("", apperr.FieldError{Field: "client", Message: "client does not exist"})
	} else if err != nil {
		return nil, repoErr(err, "Client")
	}
	if err := checkTrainer(ctx, s.trainers, payment.Trainer, "trainer"); err != nil {
		return nil, err
	}

	seq, err := s.counters.Next(ctx, "invoice-"+domain.InvoicePeriod(now))
	if err != nil {
		return nil, apperr.Internal("Failed to assign invoice number", err)
	}
	payment.InvoiceNumber = domain.FormatInvoiceNumber(now, seq)

	extend := payment.Type == domain.PaymentMembership && payment.Status == domain.PaymentCompleted
	if extend {
		planMembership(client, payment, now)
	}

	if _, err := s.payments.Create(ctx, payment); err != nil {
		return nil, repoErr(err, "Payment")
	}
	if extend {
		err := s.applyMembership(ctx, client.ID, payment.Plan, func(ctx context.Context) error {
			return s.payments.Delete(ctx, payment.ID)
		})
		if err != nil {
			return nil, err
		}
	}

	effects := []effect{
		s.recorder.Activity(actor, domain.ActionCreate,
			fmt.Sprintf("Recorded payment %s of %.2f %s from %s", payment.InvoiceNumber, payment.Amount, payment.Currency, client.FullName()),
			domain.PaymentRef(payment.ID), map[string]any{"amount": payment.Amount, "clientId": client.ID.Hex()}),
		s.recorder.NotifyManagers(actor, domain.Notification{
			Type:      domain.NotifyPayment,
			Title:     "Payment " + string(payment.Status),
			Message:   fmt.Sprintf("%s: %.2f %s from %s", payment.InvoiceNumber, payment.Amount, payment.Currency, client.FullName()),
			Priority:  domain.PriorityMedium,
			Reference: domain.PaymentRef(payment.ID),
		}),
	}
	afterCommit(ctx, effects...)
	return payment, nil
}

// planMembership sets the period a completed membership payment covers. It
// starts at the client's current end when that is still in the future.
func planMembership(client *domain.Client, payment *domain.Payment, now time.Time) {
	start := now
	if client.MembershipEndDate != nil && client.MembershipEndDate.After(now) {
		start = *client.MembershipEndDate
	}
	end := start.AddDate(0, payment.Plan.DurationMonths, 0)
	payment.Plan.StartDate = &start
	payment.Plan.EndDate = &end
}

// applyMembership moves the client's membership to the plan of a payment that
// has just been stored. When that fails undo reverts the payment write, so the
// request can be retried.
func (s *paymentService) applyMembership(ctx context.Context, clientID primitive.ObjectID, plan *domain.PlanDetails, undo func(context.Context) error) error {
	err := s.clients.SetMembership(ctx, clientID, plan.MembershipType, *plan.EndDate)
	if err == nil {
		return nil
	}
	if uerr := undo(ctx); uerr != nil {
		logger.FromContext(ctx).Error("failed to revert payment after membership update failed",
			"client_id", clientID.Hex(), "error", uerr)
	}
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.Validation("", apperr.FieldError{Field: "client", Message: "client does not exist"})
	}
	return apperr.Internal("Failed to extend membership", err)
}

// Update merges patch into a payment. Refunded payments are frozen, and the
// invoice number, client and refund record never change here.
func (s *paymentService) Update(ctx context.Context, actor, id primitive.ObjectID, patch Patch[domain.Payment]) (*domain.Payment, error) {
	record, err := s.payments.GetByID(ctx, id)
	if err != nil {
		return nil, repoErr(err, "Payment")
	}
	payment := record.Payment
	if payment.Status == domain.PaymentRefunded {
		return nil, apperr.Conflict("Refunded payments cannot be modified")
	}
	before := payment
	if payment.Plan != nil {
		plan := *payment.Plan
		payment.Plan = &plan
	}
	if err := patch(&payment); err != nil {
		return nil, err
	}
	payment.ID = before.ID
	payment.InvoiceNumber = before.InvoiceNumber
	payment.Client = before.Client
	payment.Refund = before.Refund
	payment.ProcessedBy = before.ProcessedBy
	payment.CreatedAt = before.CreatedAt
	if payment.Status == domain.PaymentRefunded {
		return nil, apperr.Validation("", apperr.FieldError{Field: "status", Message: "use the refund operation"})
	}
	if payment.Status == domain.PaymentCompleted && payment.PaidAt == nil {
		paid := s.now().UTC()
		payment.PaidAt = &paid
	}
	if err := domain.Validate(&payment); err != nil {
		return nil, err
	}
	if payment.Trainer != nil && (before.Trainer == nil || *before.Trainer != *payment.Trainer) {
		if err := checkTrainer(ctx, s.trainers, payment.Trainer, "trainer"); err != nil {
			return nil, err
		}
	}
	completes := payment.Type == domain.PaymentMembership && payment.Plan != nil &&
		before.Status != domain.PaymentCompleted && payment.Status == domain.PaymentCompleted
	if completes {
		client, err := s.clients.GetByID(ctx, payment.Client)
		if err != nil {
			return nil, repoErr(err, "Client")
		}
		planMembership(client, &payment, s.now().UTC())
	}

	if err := s.payments.Update(ctx, &payment); errors.Is(err, repository.ErrConflict) {
		return nil, apperr.Conflict("Refunded payments cannot be modified")
	} else if err != nil {
		return nil, repoErr(err, "Payment")
	}
	if completes {
		err := s.applyMembership(ctx, payment.Client, payment.Plan, func(ctx context.Context) error {
			return s.payments.Update(ctx, &before)
		})
		if err != nil {
			return nil, err
		}
	}
	afterCommit(ctx, s.recorder.Activity(actor, domain.ActionUpdate, "Updated payment "+payment.InvoiceNumber, domain.PaymentRef(id), nil))
	return &payment, nil
}

// Refund moves a completed payment to refunded. Any other status is rejected
// and the payment is left as it was.
func (s *paymentService) Refund(ctx context.Context, actor, id primitive.ObjectID, in RefundInput) (*domain.PaymentRecord, error) {
	record, err := s.payments.GetByID(ctx, id)
	if err != nil {
		return nil, repoErr(err, "Payment")
	}
	if !record.CanRefund() {
		return nil, ErrNotRefundable
	}
	amount := in.Amount
	if amount == 0 {
		amount = record.Amount
	}
	if amount < 0 || amount > record.Amount {
		return nil, apperr.Validation("", apperr.FieldError{Field: "amount", Message: fmt.Sprintf("must be between 0 and %.2f", record.Amount)})
	}
	if len(in.Reason) > 500 {
		return nil, apperr.Validation("", apperr.FieldError{Field: "reason", Message: "must be at most 500 characters"})
	}

	refund := domain.Refund{Amount: amount, Reason: in.Reason, RefundedAt: s.now().UTC(), RefundedBy: actor}
	if err := s.payments.MarkRefunded(ctx, id, refund); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrNotRefundable
		}
		return nil, repoErr(err, "Payment")
	}
	record.Status = domain.PaymentRefunded
	record.Refund = &refund

	afterCommit(ctx,
		s.recorder.Activity(actor, domain.ActionRefund,
			fmt.Sprintf("Refunded %.2f %s on %s", amount, record.Currency, record.InvoiceNumber),
			domain.PaymentRef(id), map[string]any{"amount": amount, "reason": in.Reason}),
		s.recorder.NotifyManagers(actor, domain.Notification{
			Type:      domain.NotifyPayment,
			Title:     "Payment refunded",
			Message:   fmt.Sprintf("%s refunded %.2f %s", record.InvoiceNumber, amount, record.Currency),
			Priority:  domain.PriorityHigh,
			Reference: domain.PaymentRef(id),
		}),
	)
	return record, nil
}

func (s *paymentService) Receipt(ctx context.Context, id primitive.ObjectID) (*Receipt, error) {
	record, err := s.payments.GetByID(ctx, id)
	if err != nil {
		return nil, repoErr(err, "Payment")
	}
	return newReceipt(record), nil
}

func newReceipt(r *domain.PaymentRecord) *Receipt {
	description := r.Description
	if description == "" {
		description = string(r.Type)
	}
	return &Receipt{
		InvoiceNumber: r.InvoiceNumber,
		IssuedAt:      r.CreatedAt,
		Client:        r.ClientInfo,
		Trainer:       r.TrainerInfo,
		Description:   description,
		Type:          r.Type,
		Method:        r.Method,
		Status:        r.Status,
		Amount:        r.Amount,
		Currency:      r.Currency,
		PaidAt:        r.PaidAt,
		Plan:          r.Plan,
		Refund:        r.Refund,
	}
}

// EmailReceipt mails the receipt to the client's address on file.
func (s *paymentService) EmailReceipt(ctx context.Context, actor, id primitive.ObjectID) error {
	record, err := s.payments.GetByID(ctx, id)
	if err != nil {
		return repoErr(err, "Payment")
	}
	if record.ClientInfo == nil || record.ClientInfo.Email == "" {
		return apperr.Conflict("Client has no email address on file")
	}
	data := email.ReceiptData{
		AppName:       s.appName,
		ClientName:    record.ClientInfo.FullName(),
		InvoiceNumber: record.InvoiceNumber,
		Description:   record.Description,
		Type:          string(record.Type),
		Method:        string(record.Method),
		Status:        string(record.Status),
		Amount:        record.Amount,
		Currency:      record.Currency,
	}
	if record.PaidAt != nil {
		data.PaidAt = *record.PaidAt
	}
	if record.Refund != nil {
		data.Refunded = true
		data.RefundAmount = record.Refund.Amount
	}
	msg, err := email.ReceiptMessage(record.ClientInfo.Email, data)
	if err != nil {
		return apperr.Internal("Failed to render receipt", err)
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		return apperr.Internal("Email could not be sent", err)
	}
	afterCommit(ctx, s.recorder.Activity(actor, domain.ActionUpdate, "Emailed receipt "+record.InvoiceNumber, domain.PaymentRef(id), nil))
	return nil
}

var exportHeader = []string{"Invoice", "Date", "Client", "Client Email", "Trainer", "Type", "Method", "Status", "Amount", "Currency", "Refunded", "Description"}

// Export writes every payment matching q as CSV.
func (s *paymentService) Export(ctx context.Context, q ListQuery, sort string, w io.Writer) error {
	filter, err := paymentFilter(q)
	if err != nil {
		return err
	}
	records, err := s.payments.FindAll(ctx, filter, sort)
	if err != nil {
		return repoErr(err, "Payments")
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write(exportRow(&r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func exportRow(r *domain.PaymentRecord) []string {
	date := r.CreatedAt
	if r.PaidAt != nil {
		date = *r.PaidAt
	}
	var clientName, clientEmail, trainerName, refunded string
	if r.ClientInfo != nil {
		clientName = r.ClientInfo.FullName()
		clientEmail = r.ClientInfo.Email
	}
	if r.TrainerInfo != nil {
		trainerName = r.TrainerInfo.FullName()
	}
	if r.Refund != nil {
		refunded = strconv.FormatFloat(r.Refund.Amount, 'f', 2, 64)
	}
	return []string{
		r.InvoiceNumber,
		date.Format("2006-01-02"),
		clientName,
		clientEmail,
		trainerName,
		string(r.Type),
		string(r.Method),
		string(r.Status),
		strconv.FormatFloat(r.Amount, 'f', 2, 64),
		r.Currency,
		refunded,
		r.Description,
	}
}

func (s *paymentService) Stats(ctx context.Context, w report.Window) (*PaymentStats, error) {
	series, err := s.reports.RevenueByPeriod(ctx, w, report.Daily)
	if err != nil {
		return nil, apperr.Internal("Failed to load revenue", err)
	}
	previous, err := s.reports.RevenueTotal(ctx, w.Previous())
	if err != nil {
		return nil, apperr.Internal("Failed to load revenue", err)
	}
	methods, err := s.reports.PaymentMethods(ctx, w)
	if err != nil {
		return nil, apperr.Internal("Failed to load payment methods", err)
	}

	st := &PaymentStats{Revenue: report.Summarize(w, series, previous.Total), ByMethod: methods}
	if st.Revenue.Count > 0 {
		st.AverageAmount = report.Round2(st.Revenue.Total / float64(st.Revenue.Count))
	}
	counts := []struct {
		dst    *int64
		filter bson.M
	}{
		{&st.Pending, bson.M{"status": domain.PaymentPending}},
		{&st.Overdue, bson.M{"status": domain.PaymentPending, "dueDate": bson.M{"$lt": s.now().UTC()}}},
		{&st.Refunded, bson.M{"status": domain.PaymentRefunded, "refund.refundedAt": bson.M{"$gte": w.From, "$lte": w.To}}},
		{&st.Failed, bson.M{"status": domain.PaymentFailed, "createdAt": bson.M{"$gte": w.From, "$lte": w.To}}},
	}
	for _, c := range counts {
		n, err := s.stats.Count(ctx, domain.KindPayment, c.filter)
		if err != nil {
			return nil, apperr.Internal("Failed to count payments", err)
		}
		*c.dst = n
	}
	return st, nil
}

package api

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/report"
	"alcyxob/gym-manager/internal/service"
)

// PaymentHandler serves invoices, refunds, receipts and the CSV export.
type PaymentHandler struct {
	paymentService service.PaymentService
	now            func() time.Time
}

func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService, now: time.Now}
}

// RefundRequest refunds a completed payment. A zero amount refunds it in full.
type RefundRequest struct {
	Amount float64 `json:"amount" binding:"gte=0"`
	Reason string  `json:"reason" binding:"max=500"`
}

// ListPayments godoc
// @Summary List payments
// @Description Filters: status, type, method, client, trainer, currency, dateFrom, dateTo (on paidAt), dueDateFrom, dueDateTo. search matches invoice number, description and notes.
// @Tags Payments
// @Security BearerAuth
// @Router /payments [get]
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	page, err := pageRequest(c, "-createdAt")
	if err != nil {
		respondError(c, err)
		return
	}
	result, err := h.paymentService.List(c.Request.Context(), listQuery(c, service.PaymentFilterKeys), page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{
		Success:    true,
		Data:       MapPaymentsToResponse(result.Data, h.now()),
		Pagination: &result.Pagination,
	})
}

// GetPayment godoc
// @Summary Get a payment
// @Tags Payments
// @Security BearerAuth
// @Param id path string true "Payment ID"
// @Success 200 {object} PaymentResponse
// @Router /payments/{id} [get]
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	record, err := h.paymentService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, MapPaymentToResponse(record, h.now()))
}

// CreatePayment godoc
// @Summary Record a payment
// @Description The invoice number is assigned by the server. Completed membership payments extend the client's membership.
// @Tags Payments
// @Security BearerAuth
// @Param payment body domain.Payment true "Payment"
// @Success 201 {object} PaymentResponse
// @Router /payments [post]
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	var payment domain.Payment
	if err := bindJSON(c, &payment); err != nil {
		respondError(c, err)
		return
	}
	created, err := h.paymentService.Create(c.Request.Context(), actorID(c), &payment)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, MapPaymentToResponse(&domain.PaymentRecord{Payment: *created}, h.now()))
}

// UpdatePayment godoc
// @Summary Edit a payment
// @Description Refunded payments cannot be edited.
// @Tags Payments
// @Security BearerAuth
// @Param id path string true "Payment ID"
// @Router /payments/{id} [put]
func (h *PaymentHandler) UpdatePayment(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	patch, err := jsonPatch[domain.Payment](c)
	if err != nil {
		respondError(c, err)
		return
	}
	updated, err := h.paymentService.Update(c.Request.Context(), actorID(c), id, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, MapPaymentToResponse(&domain.PaymentRecord{Payment: *updated}, h.now()))
}

// RefundPayment godoc
// @Summary Refund a completed payment
// @Tags Payments
// @Security BearerAuth
// @Param id path string true "Payment ID"
// @Param body body RefundRequest false "Amount and reason"
// @Failure 400 {object} ErrorResponse "Payment is not completed"
// @Router /payments/{id}/refund [post]
func (h *PaymentHandler) RefundPayment(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	var req RefundRequest
	if c.Request.ContentLength != 0 {
		if err := bindJSON(c, &req); err != nil {
			respondError(c, err)
			return
		}
	}
	record, err := h.paymentService.Refund(c.Request.Context(), actorID(c), id, service.RefundInput{Amount: req.Amount, Reason: req.Reason})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Data:    MapPaymentToResponse(record, h.now()),
		Message: "Payment refunded",
	})
}

// GetReceipt godoc
// @Summary Printable receipt of a payment
// @Tags Payments
// @Security BearerAuth
// @Param id path string true "Payment ID"
// @Success 200 {object} service.Receipt
// @Router /payments/{id}/receipt [get]
func (h *PaymentHandler) GetReceipt(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	receipt, err := h.paymentService.Receipt(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, receipt)
}

// EmailReceipt godoc
// @Summary Mail the receipt to the client
// @Tags Payments
// @Security BearerAuth
// @Param id path string true "Payment ID"
// @Router /payments/{id}/receipt [post]
func (h *PaymentHandler) EmailReceipt(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.paymentService.EmailReceipt(c.Request.Context(), actorID(c), id); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "Receipt sent", nil)
}

// ExportPayments godoc
// @Summary Download the filtered payments as CSV
// @Tags Payments
// @Security BearerAuth
// @Produce text/csv
// @Router /payments/export [get]
func (h *PaymentHandler) ExportPayments(c *gin.Context) {
	sort := c.DefaultQuery("sort", "-createdAt")
	var buf bytes.Buffer
	if err := h.paymentService.Export(c.Request.Context(), listQuery(c, service.PaymentFilterKeys), sort, &buf); err != nil {
		respondError(c, err)
		return
	}
	filename := "payments-" + h.now().Format("20060102") + ".csv"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// PaymentStats godoc
// @Summary Payment summary for a window
// @Description Defaults to the current month.
// @Tags Payments
// @Security BearerAuth
// @Param dateFrom query string false "YYYY-MM-DD"
// @Param dateTo query string false "YYYY-MM-DD"
// @Success 200 {object} service.PaymentStats
// @Router /payments/stats [get]
func (h *PaymentHandler) PaymentStats(c *gin.Context) {
	w, err := reportWindow(c, report.MonthToDate(h.now().UTC()))
	if err != nil {
		respondError(c, err)
		return
	}
	stats, err := h.paymentService.Stats(c.Request.Context(), w)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, stats)
}

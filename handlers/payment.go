package handlers

import (
	"context"
	"net/http"

	userRepo "brandconnect/database/repository/user"
	"brandconnect/middleware"
	"brandconnect/models"
	"brandconnect/services/payment"
	"brandconnect/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ReceiptSender is the part of the notification service used after a charge.
type ReceiptSender interface {
	SendPaymentReceipt(ctx context.Context, p models.Payment, client models.User) bool
}

type PaymentHandler struct {
	Payments payment.PaymentService
	Receipts ReceiptSender
	Users    userRepo.UserRepository
}

// CreateIntentHandler handles POST /api/payments/intents. The caller is the
// payer unless an admin names one.
func (h *PaymentHandler) CreateIntentHandler(c *gin.Context) {
	var input struct {
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
		PayerID  string `json:"payerId"`
	}
	if !bindJSON(c, &input) {
		return
	}
	if !isAdmin(c) || input.PayerID == "" {
		input.PayerID = middleware.UserID(c)
	}
	intent, err := h.Payments.CreatePaymentIntent(c.Request.Context(), input.PayerID, input.Amount, input.Currency)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, intent)
}

// ConfirmPaymentHandler handles POST /api/payments/intents/:id/confirm. A
// receipt is emailed in the background once the charge completes.
func (h *PaymentHandler) ConfirmPaymentHandler(c *gin.Context) {
	var method models.PaymentMethod
	if !bindJSON(c, &method) {
		return
	}
	intentID := c.Param("id")

	p, err := h.Payments.ConfirmPayment(c.Request.Context(), intentID, method)
	if err != nil {
		getLogger(c).Warn("payment confirmation failed", zap.String("intentId", intentID), zap.Error(err))
		utils.RespondError(c, err)
		return
	}

	h.sendReceipt(c, *p)
	c.JSON(http.StatusOK, p)
}

func (h *PaymentHandler) sendReceipt(c *gin.Context, p models.Payment) {
	if h.Receipts == nil || h.Users == nil || p.Status != models.PaymentCompleted {
		return
	}
	logger := getLogger(c)
	userID := p.PayerID
	ctx := context.WithoutCancel(c.Request.Context())
	go func() {
		client, err := h.Users.GetByIDWithProjection(ctx, userID, userRepo.ContactProjection)
		if err != nil {
			logger.Warn("receipt skipped: payer lookup failed", zap.String("userId", userID), zap.Error(err))
			return
		}
		if !h.Receipts.SendPaymentReceipt(ctx, p, *client) {
			logger.Warn("payment receipt not delivered", zap.String("paymentId", p.ID))
		}
	}()
}

// RefundHandler handles POST /api/payments/:id/refund (admin only). Without
// an amount the remaining balance is refunded.
func (h *PaymentHandler) RefundHandler(c *gin.Context) {
	var input struct {
		Amount *int64 `json:"amount"`
	}
	if c.Request.ContentLength != 0 && !bindJSON(c, &input) {
		return
	}
	refund, err := h.Payments.ProcessRefund(c.Request.Context(), c.Param("id"), input.Amount)
	if err != nil {
		getLogger(c).Warn("refund failed", zap.String("paymentId", c.Param("id")), zap.Error(err))
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, refund)
}

// ListPaymentsHandler handles GET /api/payments?bookingId=.
func (h *PaymentHandler) ListPaymentsHandler(c *gin.Context) {
	list, err := h.Payments.ListPayments(c.Request.Context(), c.Query("bookingId"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": list})
}

package payment

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/santiagoavs/expo2025-sub004/internal/module/order"
	"github.com/santiagoavs/expo2025-sub004/internal/module/payment/domain"
	"github.com/santiagoavs/expo2025-sub004/internal/module/payment/provider"
	"github.com/santiagoavs/expo2025-sub004/internal/shared/middleware"
	"github.com/santiagoavs/expo2025-sub004/internal/shared/response"
)

// paymentErrorMappings maps settlement errors to HTTP statuses.
var paymentErrorMappings = []response.ErrorMapping{
	{Err: ErrPaymentNotFound, Status: http.StatusNotFound},
	{Err: order.ErrOrderNotFound, Status: http.StatusNotFound},
	{Err: order.ErrOrderNotPayable, Status: http.StatusConflict, Code: "ORDER_NOT_PAYABLE"},
	{Err: ErrConcurrentUpdate, Status: http.StatusConflict, Code: "CONCURRENT_UPDATE"},
	{Err: ErrValidation, Status: http.StatusBadRequest},
	{Err: domain.ErrInvalidTransition, Status: http.StatusConflict, Code: "INVALID_TRANSITION"},
	{Err: domain.ErrInvalidAmount, Status: http.StatusBadRequest},
	{Err: domain.ErrInvalidPercentage, Status: http.StatusBadRequest},
	{Err: provider.ErrUnsupportedMethod, Status: http.StatusBadRequest, Code: "UNSUPPORTED_METHOD"},
	{Err: provider.ErrInvalidState, Status: http.StatusConflict, Code: "INVALID_STATE"},
	{Err: provider.ErrInsufficientAmount, Status: http.StatusUnprocessableEntity, Code: "INSUFFICIENT_AMOUNT"},
	{Err: provider.ErrImplausibleAmount, Status: http.StatusUnprocessableEntity, Code: "IMPLAUSIBLE_AMOUNT"},
	{Err: provider.ErrProofAlreadySubmitted, Status: http.StatusConflict, Code: "PROOF_EXISTS"},
	{Err: provider.ErrProofRequired, Status: http.StatusConflict, Code: "PROOF_REQUIRED"},
	{Err: provider.ErrNotPayer, Status: http.StatusForbidden},
	{Err: provider.ErrStaffOnly, Status: http.StatusForbidden},
	{Err: provider.ErrUnavailable, Status: http.StatusBadGateway},
}

// Handler handles HTTP requests for payments.
type Handler struct {
	processor *Processor
}

// NewHandler creates a new payment handler.
func NewHandler(processor *Processor) *Handler {
	return &Handler{processor: processor}
}

// RegisterRoutes registers the payment routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	payments := r.Group("/payments")
	{
		payments.POST("", h.CreatePayment)
		payments.GET("/:id", h.GetPayment)
		payments.POST("/:id/confirm", h.ConfirmPayment)
		payments.POST("/:id/cancel", h.CancelPayment)
		payments.POST("/:id/refund", h.RefundPayment)
		payments.POST("/:id/proof", h.SubmitProof)
	}
	r.GET("/orders/:id/payments", h.GetOrderSettlement)
}

// CreatePayment creates a payment against an order and initiates it on
// the selected channel.
func (h *Handler) CreatePayment(c *gin.Context) {
	by, ok := middleware.ActorFromContext(c)
	if !ok {
		response.Unauthorized(c, "")
		return
	}

	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		response.BadRequest(c, "invalid order ID")
		return
	}

	out, err := h.processor.ProcessPayment(c.Request.Context(), CreatePaymentInput{
		OrderID:     orderID,
		Method:      domain.Method(req.Method),
		Amount:      toCents(req.Amount),
		Timing:      domain.Timing(req.Timing),
		PaymentType: domain.Type(req.PaymentType),
		Percentage:  req.Percentage,
		Location:    req.Location,
		PayerEmail:  req.PayerEmail,
	}, by)
	if err != nil {
		response.HandleErrorWithDefault(c, err, paymentErrorMappings)
		return
	}

	response.Created(c, gin.H{
		"payment":      ToPaymentResponse(out.Payment),
		"instructions": out.Instructions,
	})
}

// GetPayment returns a payment by ID.
func (h *Handler) GetPayment(c *gin.Context) {
	by, ok := middleware.ActorFromContext(c)
	if !ok {
		response.Unauthorized(c, "")
		return
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid payment ID")
		return
	}

	p, err := h.processor.GetPayment(c.Request.Context(), paymentID, by)
	if err != nil {
		response.HandleErrorWithDefault(c, err, paymentErrorMappings)
		return
	}

	response.OK(c, gin.H{"payment": ToPaymentResponse(p)})
}

// ConfirmPayment applies a channel confirmation to the payment.
func (h *Handler) ConfirmPayment(c *gin.Context) {
	by, ok := middleware.ActorFromContext(c)
	if !ok {
		response.Unauthorized(c, "")
		return
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid payment ID")
		return
	}

	var req ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	approved := true
	if req.Approved != nil {
		approved = *req.Approved
	}

	out, err := h.processor.ConfirmPayment(c.Request.Context(), paymentID, provider.ConfirmData{
		ReceivedAmount:  toCents(req.ReceivedAmount),
		CollectedBy:     req.CollectedBy,
		Approved:        approved,
		RejectionReason: req.RejectionReason,
		ExternalStatus:  req.ExternalStatus,
		TransactionID:   req.TransactionID,
		CardSummary:     req.CardSummary,
		ProcessingFee:   toCents(req.ProcessingFee),
	}, by)
	if err != nil {
		response.HandleErrorWithDefault(c, err, paymentErrorMappings)
		return
	}

	body := gin.H{"payment": ToPaymentResponse(out.Payment)}
	if len(out.Notice) > 0 {
		body["notice"] = out.Notice
	}
	response.OK(c, body)
}

// CancelPayment aborts a non-terminal payment.
func (h *Handler) CancelPayment(c *gin.Context) {
	by, ok := middleware.ActorFromContext(c)
	if !ok {
		response.Unauthorized(c, "")
		return
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid payment ID")
		return
	}

	var req CancelPaymentRequest
	// Body is optional for cancellation.
	_ = c.ShouldBindJSON(&req)

	p, err := h.processor.CancelPayment(c.Request.Context(), paymentID, req.Reason, by)
	if err != nil {
		response.HandleErrorWithDefault(c, err, paymentErrorMappings)
		return
	}

	response.OK(c, gin.H{"payment": ToPaymentResponse(p)})
}

// RefundPayment marks a completed payment refunded.
func (h *Handler) RefundPayment(c *gin.Context) {
	by, ok := middleware.ActorFromContext(c)
	if !ok {
		response.Unauthorized(c, "")
		return
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid payment ID")
		return
	}

	p, err := h.processor.RefundPayment(c.Request.Context(), paymentID, by)
	if err != nil {
		response.HandleErrorWithDefault(c, err, paymentErrorMappings)
		return
	}

	response.OK(c, gin.H{"payment": ToPaymentResponse(p)})
}

// SubmitProof receives a bank-transfer proof document as multipart
// form data.
func (h *Handler) SubmitProof(c *gin.Context) {
	by, ok := middleware.ActorFromContext(c)
	if !ok {
		response.Unauthorized(c, "")
		return
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid payment ID")
		return
	}

	file, header, err := c.Request.FormFile("proof")
	if err != nil {
		response.BadRequest(c, "proof file is required")
		return
	}
	defer file.Close()

	p, err := h.processor.SubmitTransferProof(c.Request.Context(), paymentID, provider.ProofUpload{
		Body:          file,
		Filename:      header.Filename,
		ContentType:   header.Header.Get("Content-Type"),
		BankName:      c.PostForm("bank_name"),
		AccountNumber: c.PostForm("account_number"),
	}, by)
	if err != nil {
		response.HandleErrorWithDefault(c, err, paymentErrorMappings)
		return
	}

	response.OK(c, gin.H{"payment": ToPaymentResponse(p)})
}

// GetOrderSettlement returns the order's payments and its freshly
// derived settlement summary.
func (h *Handler) GetOrderSettlement(c *gin.Context) {
	by, ok := middleware.ActorFromContext(c)
	if !ok {
		response.Unauthorized(c, "")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid order ID")
		return
	}

	settlement, err := h.processor.GetOrderSettlement(c.Request.Context(), orderID, by)
	if err != nil {
		response.HandleErrorWithDefault(c, err, paymentErrorMappings)
		return
	}

	response.OK(c, gin.H{"settlement": ToSettlementResponse(settlement)})
}

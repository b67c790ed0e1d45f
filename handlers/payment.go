package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"urbane-subscription-api/database"
	"urbane-subscription-api/models"
	"urbane-subscription-api/queue"
	"urbane-subscription-api/services/auth"
	"urbane-subscription-api/services/payment"
	"urbane-subscription-api/utils"
)

// orderWindow is how long an unpaid order stays open before the worker
// sweeps it to expired.
const orderWindow = 30 * time.Minute

type PaymentHandler struct {
	db             *database.Connection
	paymentService *payment.Service
	jwtService     *auth.JWTService
	queue          *queue.Queue
	validate       *validator.Validate
}

func NewPaymentHandler(db *database.Connection, ps *payment.Service, js *auth.JWTService, q *queue.Queue) (*PaymentHandler, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	if ps == nil {
		return nil, fmt.Errorf("payment service is required")
	}
	if js == nil {
		return nil, fmt.Errorf("jwt service is required")
	}
	if q == nil {
		return nil, fmt.Errorf("queue is required")
	}

	return &PaymentHandler{
		db:             db,
		paymentService: ps,
		jwtService:     js,
		queue:          q,
		validate:       validator.New(),
	}, nil
}

// CreateOrder mints a fresh gateway order for one checkout attempt.
// Retried checkouts hit this endpoint again and always get a new
// order_id; nothing is reused from a failed attempt.
func (h *PaymentHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.New().String()

	var req models.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("[RequestID: %s] Invalid request body: %v", requestID, err)
		utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		log.Printf("[RequestID: %s] Validation failed: %v", requestID, err)
		utils.SendErrorResponse(w, http.StatusBadRequest, "package_id is required")
		return
	}

	plan, err := h.db.GetPlanByID(req.PackageID)
	if err != nil {
		log.Printf("[RequestID: %s] Unknown package %s: %v", requestID, req.PackageID, err)
		utils.SendErrorResponse(w, http.StatusBadRequest, "Unknown subscription package")
		return
	}

	log.Printf("[RequestID: %s] Creating order for package %s (%d INR)",
		requestID, plan.ID, plan.Price)

	order, err := h.paymentService.CreateOrder(r.Context(), plan, req.UserEmail)
	if err != nil {
		log.Printf("[RequestID: %s] Gateway order creation failed: %v", requestID, err)
		utils.SendErrorResponse(w, http.StatusBadGateway, "Could not create payment order. Please try again.")
		return
	}

	if err := h.db.SaveOrder(&models.OrderRecord{
		GatewayOrderID: order.OrderID,
		Gateway:        order.Gateway,
		PackageID:      plan.ID,
		Email:          req.UserEmail,
		Amount:         order.Amount,
		Currency:       order.Currency,
	}); err != nil {
		log.Printf("[RequestID: %s] Failed to persist order %s: %v", requestID, order.OrderID, err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Could not create payment order. Please try again.")
		return
	}

	// Abandoned orders expire server-side; the client never has to
	// issue a cleanup call.
	if err := h.queue.EnqueueDelayed(r.Context(), queue.JobTypeExpireOrders, map[string]interface{}{
		"older_than_seconds": orderWindow.Seconds(),
	}, orderWindow); err != nil {
		log.Printf("[RequestID: %s] Warning: failed to schedule expiry sweep: %v", requestID, err)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(order)
}

// VerifyPayment proves a widget callback is genuine and activates the
// subscription. The response distinguishes a declined payment from a
// verification problem: the latter may mean funds were captured.
func (h *PaymentHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.New().String()

	var req models.VerifyPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("[RequestID: %s] Invalid request body: %v", requestID, err)
		utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		log.Printf("[RequestID: %s] Validation failed: %v", requestID, err)
		utils.SendErrorResponse(w, http.StatusBadRequest, "Missing payment identifiers")
		return
	}

	log.Printf("[RequestID: %s] Verifying payment %s for order %s",
		requestID, req.RazorpayPaymentID, req.RazorpayOrderID)

	// Serialize concurrent verifications of the same order; a replayed
	// callback must not double-activate.
	acquired, err := h.db.LockOrder(req.RazorpayOrderID)
	if err != nil {
		log.Printf("[RequestID: %s] Error acquiring lock: %v", requestID, err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if !acquired {
		log.Printf("[RequestID: %s] Order %s is already being verified", requestID, req.RazorpayOrderID)
		utils.SendErrorResponse(w, http.StatusConflict, "This payment is already being verified")
		return
	}
	defer h.db.ReleaseLock(req.RazorpayOrderID)

	record, err := h.db.GetOrder(req.RazorpayOrderID)
	if err != nil {
		log.Printf("[RequestID: %s] Unknown order %s: %v", requestID, req.RazorpayOrderID, err)
		h.sendResult(w, &models.PaymentResult{
			Status:  "session_expired",
			Message: "This payment session is no longer valid. Please start over.",
		})
		return
	}

	if record.Status == models.OrderStatusPaid {
		// Callback replay after successful activation: return the same
		// terminal result instead of re-verifying.
		log.Printf("[RequestID: %s] Order %s already paid, replaying result", requestID, req.RazorpayOrderID)
		h.respondActivated(w, requestID, record, &req)
		return
	}

	if record.Status == models.OrderStatusExpired {
		h.sendResult(w, &models.PaymentResult{
			Status:  "session_expired",
			Message: "This payment session has expired. Please start over.",
		})
		return
	}

	ok, err := h.paymentService.VerifyPayment(r.Context(), &req)
	if err != nil {
		log.Printf("[RequestID: %s] Verification error: %v", requestID, err)
		h.sendResult(w, &models.PaymentResult{
			Status:  "verification_error",
			Message: "We could not confirm your payment. You may have been charged; please contact support.",
		})
		return
	}

	if !ok {
		log.Printf("[RequestID: %s] Signature mismatch for order %s", requestID, req.RazorpayOrderID)
		if err := h.db.SetOrderStatus(req.RazorpayOrderID, models.OrderStatusFailed); err != nil {
			log.Printf("[RequestID: %s] Warning: failed to mark order failed: %v", requestID, err)
		}
		h.sendResult(w, &models.PaymentResult{
			Status:  "payment_failed",
			Message: "Payment verification failed. You have not been charged.",
		})
		return
	}

	if err := h.db.SetOrderStatus(req.RazorpayOrderID, models.OrderStatusPaid); err != nil {
		log.Printf("[RequestID: %s] Failed to mark order paid: %v", requestID, err)
		h.sendResult(w, &models.PaymentResult{
			Status:  "verification_error",
			Message: "We could not confirm your payment. You may have been charged; please contact support.",
		})
		return
	}

	h.respondActivated(w, requestID, record, &req)
}

// respondActivated grants entitlements, issues the fresh token and
// queues the receipt. Activation is idempotent so a replayed callback
// lands on the same state.
func (h *PaymentHandler) respondActivated(w http.ResponseWriter, requestID string, record *models.OrderRecord, req *models.VerifyPaymentRequest) {
	plan, err := h.db.GetPlanByID(record.PackageID)
	if err != nil {
		log.Printf("[RequestID: %s] Unknown package %s on paid order: %v", requestID, record.PackageID, err)
		h.sendResult(w, &models.PaymentResult{
			Status:  "verification_error",
			Message: "We could not confirm your payment. You may have been charged; please contact support.",
		})
		return
	}

	if err := h.db.ActivateSubscription(req.UserEmail, plan.ID, plan.HasDigital, record.GatewayOrderID); err != nil {
		log.Printf("[RequestID: %s] Failed to activate subscription: %v", requestID, err)
		h.sendResult(w, &models.PaymentResult{
			Status:  "verification_error",
			Message: "Payment received but activation failed. Please contact support.",
		})
		return
	}

	user, err := h.db.GetUserAccess(req.UserEmail)
	if err != nil {
		// Payment is captured and the subscription row exists; the
		// client will ask the user to log in again for a fresh token.
		log.Printf("[RequestID: %s] Activated but could not load user %s: %v", requestID, req.UserEmail, err)
		h.sendResult(w, &models.PaymentResult{
			Status:           "success",
			HasDigitalAccess: plan.HasDigital,
			PackageID:        plan.ID,
			Message:          "Payment verified. Please log in again to refresh your session.",
		})
		return
	}

	authResp, err := h.jwtService.IssueToken(user)
	if err != nil {
		log.Printf("[RequestID: %s] Failed to issue token: %v", requestID, err)
		h.sendResult(w, &models.PaymentResult{
			Status:           "success",
			HasDigitalAccess: user.HasDigitalAccess,
			PackageID:        plan.ID,
			Message:          "Payment verified. Please log in again to refresh your session.",
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.queue.Enqueue(ctx, queue.JobTypeSendReceipt, map[string]interface{}{
		"email":     req.UserEmail,
		"name":      user.Name,
		"plan_name": plan.Name,
		"amount":    record.Amount,
		"currency":  record.Currency,
	}); err != nil {
		log.Printf("[RequestID: %s] Warning: failed to enqueue receipt: %v", requestID, err)
	}

	log.Printf("[RequestID: %s] Payment verified and subscription activated for %s", requestID, req.UserEmail)

	h.sendResult(w, &models.PaymentResult{
		Status:           "success",
		AccessToken:      authResp.Token,
		HasDigitalAccess: user.HasDigitalAccess,
		PackageID:        plan.ID,
	})
}

func (h *PaymentHandler) sendResult(w http.ResponseWriter, result *models.PaymentResult) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"urbane-subscription-api/database"
	"urbane-subscription-api/models"
	"urbane-subscription-api/services/auth"
	"urbane-subscription-api/services/payment"
	"urbane-subscription-api/utils"
)

// SubscriptionHandler drives the redirect-protocol flow: a hosted
// checkout session going out, status polling coming back.
type SubscriptionHandler struct {
	db             *database.Connection
	paymentService *payment.Service
	jwtService     *auth.JWTService
	validate       *validator.Validate
}

func NewSubscriptionHandler(db *database.Connection, ps *payment.Service, js *auth.JWTService) *SubscriptionHandler {
	return &SubscriptionHandler{
		db:             db,
		paymentService: ps,
		jwtService:     js,
		validate:       validator.New(),
	}
}

// SmartSubscription bundles account creation with checkout session
// creation. Details are validated server-side with the same rules the
// client form applies, so a bypassed client cannot create a half
// filled account.
func (h *SubscriptionHandler) SmartSubscription(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.New().String()

	var req models.SmartSubscriptionRequest
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

	if result := req.UserDetails.Validate(plan.RequiresAddress); !result.Valid {
		log.Printf("[RequestID: %s] Customer details invalid: %d field errors",
			requestID, len(result.FieldErrors))
		utils.SendSuccessResponse(w, models.APIResponse{
			Status:  "error",
			Message: "Please correct the highlighted fields",
			Data:    result.FieldErrors,
		})
		return
	}

	details := req.UserDetails.Normalized()

	if req.CreateAccount {
		if err := h.db.UpsertUser(&details); err != nil {
			log.Printf("[RequestID: %s] Failed to create account: %v", requestID, err)
			utils.SendErrorResponse(w, http.StatusInternalServerError, "Could not create your account. Please try again.")
			return
		}
	}

	order, err := h.paymentService.CreateCheckoutSession(r.Context(), plan, details.Email)
	if err != nil {
		log.Printf("[RequestID: %s] Checkout session creation failed: %v", requestID, err)
		utils.SendErrorResponse(w, http.StatusBadGateway, "Could not start checkout. Please try again.")
		return
	}

	if err := h.db.SaveOrder(&models.OrderRecord{
		GatewayOrderID: order.OrderID,
		Gateway:        order.Gateway,
		PackageID:      plan.ID,
		Email:          details.Email,
		Amount:         order.Amount,
		Currency:       order.Currency,
	}); err != nil {
		log.Printf("[RequestID: %s] Failed to persist session %s: %v", requestID, order.OrderID, err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Could not start checkout. Please try again.")
		return
	}

	log.Printf("[RequestID: %s] Created checkout session %s for %s", requestID, order.OrderID, details.Email)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"checkout_url": order.CheckoutURL,
		"session_id":   order.OrderID,
	})
}

// PaymentStatus is the polling endpoint for the redirect protocol.
// On the first poll that sees "paid" the subscription is activated;
// activation is idempotent so repeat polls are harmless.
func (h *SubscriptionHandler) PaymentStatus(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["session_id"]
	if sessionID == "" {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Missing session_id parameter")
		return
	}

	status, err := h.paymentService.SessionStatus(r.Context(), sessionID)
	if err != nil {
		log.Printf("Error fetching session %s status: %v", sessionID, err)
		utils.SendErrorResponse(w, http.StatusBadGateway, "Could not check payment status")
		return
	}

	if status.PaymentStatus == "paid" {
		result, err := h.activateFromSession(sessionID, status)
		if err != nil {
			log.Printf("Error activating session %s: %v", sessionID, err)
		} else {
			status.Result = result
		}
	} else if status.Status == "expired" {
		if err := h.db.SetOrderStatus(sessionID, models.OrderStatusExpired); err != nil {
			log.Printf("Warning: failed to mark session %s expired: %v", sessionID, err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(status)
}

func (h *SubscriptionHandler) activateFromSession(sessionID string, status *models.SessionStatus) (*models.PaymentResult, error) {
	record, err := h.db.GetOrder(sessionID)
	if err != nil {
		return nil, err
	}

	plan, err := h.db.GetPlanByID(record.PackageID)
	if err != nil {
		return nil, err
	}

	email := record.Email
	if email == "" {
		email = status.Metadata["email"]
	}
	if email == "" {
		return nil, fmt.Errorf("no email associated with session %s", sessionID)
	}

	if err := h.db.SetOrderStatus(sessionID, models.OrderStatusPaid); err != nil {
		log.Printf("Warning: failed to mark session %s paid: %v", sessionID, err)
	}

	if err := h.db.ActivateSubscription(email, plan.ID, plan.HasDigital, sessionID); err != nil {
		return nil, err
	}

	user, err := h.db.GetUserAccess(email)
	if err != nil {
		return &models.PaymentResult{
			Status:           "success",
			HasDigitalAccess: plan.HasDigital,
			PackageID:        plan.ID,
			Message:          "Payment verified. Please log in again to refresh your session.",
		}, nil
	}

	authResp, err := h.jwtService.IssueToken(user)
	if err != nil {
		return &models.PaymentResult{
			Status:           "success",
			HasDigitalAccess: user.HasDigitalAccess,
			PackageID:        plan.ID,
			Message:          "Payment verified. Please log in again to refresh your session.",
		}, nil
	}

	return &models.PaymentResult{
		Status:           "success",
		AccessToken:      authResp.Token,
		HasDigitalAccess: user.HasDigitalAccess,
		PackageID:        plan.ID,
	}, nil
}

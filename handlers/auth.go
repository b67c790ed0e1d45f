package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-playground/validator/v10"

	"urbane-subscription-api/middleware"
	"urbane-subscription-api/models"
	"urbane-subscription-api/services/auth"
	"urbane-subscription-api/utils"
)

type AuthHandler struct {
	jwtService *auth.JWTService
	validate   *validator.Validate
}

func NewAuthHandler(js *auth.JWTService) *AuthHandler {
	return &AuthHandler{
		jwtService: js,
		validate:   validator.New(),
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.AuthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	resp, err := h.jwtService.Authenticate(req.Email, req.Password)
	if err != nil {
		if err == auth.ErrInvalidCredentials {
			utils.SendErrorResponse(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		log.Printf("Login error for %s: %v", req.Email, err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Login failed")
		return
	}

	utils.SendSuccessResponse(w, models.APIResponse{
		Status:  "success",
		Message: "Login successful",
		Data:    resp,
	})
}

// Me returns the profile encoded in the bearer token. Clients call it
// after activation to refresh their cached user record.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		utils.SendErrorResponse(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	utils.SendSuccessResponse(w, models.APIResponse{
		Status:  "success",
		Message: "Profile retrieved",
		Data:    user,
	})
}

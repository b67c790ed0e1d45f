package handlers

import (
	"encoding/gob"
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/sessions"

	"urbane-subscription-api/config"
	"urbane-subscription-api/models"
	"urbane-subscription-api/utils"
)

func init() {
	gob.Register(models.CustomerDetails{})
}

// DraftHandler keeps an in-progress checkout form in a cookie session
// so a crashed or reloaded client can resume the pre-payment step.
// Only the draft is stored; nothing here survives past order creation.
type DraftHandler struct {
	store *sessions.CookieStore
}

func NewDraftHandler(cfg *config.Config) *DraftHandler {
	store := sessions.NewCookieStore([]byte(cfg.Session.Secret))
	store.Options = &sessions.Options{
		Path:     "/",
		Domain:   cfg.Session.Domain,
		MaxAge:   cfg.Session.MaxAge,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &DraftHandler{store: store}
}

func (h *DraftHandler) SaveDraft(w http.ResponseWriter, r *http.Request) {
	session, err := h.store.Get(r, "checkout-draft")
	if err != nil {
		log.Printf("Error getting draft session: %v", err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Could not save draft")
		return
	}

	var details models.CustomerDetails
	if err := json.NewDecoder(r.Body).Decode(&details); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// The password never goes into the cookie.
	details.Password = ""
	details.ConfirmPassword = ""

	session.Values["details"] = details
	if err := session.Save(r, w); err != nil {
		log.Printf("Error saving draft session: %v", err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Could not save draft")
		return
	}

	utils.SendSuccessResponse(w, models.APIResponse{
		Status:  "success",
		Message: "Draft saved",
	})
}

func (h *DraftHandler) GetDraft(w http.ResponseWriter, r *http.Request) {
	session, err := h.store.Get(r, "checkout-draft")
	if err != nil {
		log.Printf("Error getting draft session: %v", err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Could not load draft")
		return
	}

	details, ok := session.Values["details"].(models.CustomerDetails)
	if !ok {
		utils.SendErrorResponse(w, http.StatusNotFound, "No draft found")
		return
	}

	utils.SendSuccessResponse(w, models.APIResponse{
		Status:  "success",
		Message: "Draft retrieved",
		Data:    details,
	})
}

func (h *DraftHandler) ClearDraft(w http.ResponseWriter, r *http.Request) {
	session, err := h.store.Get(r, "checkout-draft")
	if err != nil {
		log.Printf("Error getting draft session: %v", err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Could not clear draft")
		return
	}

	delete(session.Values, "details")
	session.Options.MaxAge = -1
	if err := session.Save(r, w); err != nil {
		log.Printf("Error clearing draft session: %v", err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Could not clear draft")
		return
	}

	utils.SendSuccessResponse(w, models.APIResponse{
		Status:  "success",
		Message: "Draft cleared",
	})
}

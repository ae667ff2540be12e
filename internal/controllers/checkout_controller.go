package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/rafaelalberola/lamiradacreativa/internal/dtos"
	"github.com/rafaelalberola/lamiradacreativa/internal/services"
	"github.com/rafaelalberola/lamiradacreativa/internal/utils"
)

var validate = validator.New()

type CheckoutController struct {
	svc services.CheckoutService
}

func NewCheckoutController(s services.CheckoutService) *CheckoutController {
	return &CheckoutController{svc: s}
}

// -----------------------------------------------------------------------------
// POST /api/v1/checkout/session
// -----------------------------------------------------------------------------
func (c *CheckoutController) CreateSessionHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.CreateCheckoutSessionRequest
	// The landing page may post nothing at all when there is no attribution.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", err,
		)
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeValidation, "Invalid checkout request", err,
		)
		return
	}

	secret, err := c.svc.CreateSession(r.Context(), requestOrigin(r), req.UTM, req.AmplitudeDeviceID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.CreateCheckoutSessionResponse{ClientSecret: secret})
}

// -----------------------------------------------------------------------------
// GET /api/v1/checkout/session?session_id=...
// -----------------------------------------------------------------------------
func (c *CheckoutController) GetSessionHandler(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.URL.Query().Get("session_id"))
	if id == "" {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeValidation, "session_id is required", nil,
		)
		return
	}

	cust, err := c.svc.GetSession(r.Context(), id)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.SessionCustomerResponse{Email: cust.Email, Name: cust.Name})
}

// requestOrigin prefers the Origin header, then the scheme and host of the
// Referer. An empty result means "use APP_URL".
func requestOrigin(r *http.Request) string {
	if o := strings.TrimSpace(r.Header.Get("Origin")); o != "" && o != "null" {
		return strings.TrimRight(o, "/")
	}
	if ref := strings.TrimSpace(r.Header.Get("Referer")); ref != "" {
		if u, err := url.Parse(ref); err == nil && u.Scheme != "" && u.Host != "" {
			return u.Scheme + "://" + u.Host
		}
	}
	return ""
}

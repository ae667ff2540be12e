package controllers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rafaelalberola/lamiradacreativa/internal/dtos"
	"github.com/rafaelalberola/lamiradacreativa/internal/services"
	"github.com/rafaelalberola/lamiradacreativa/internal/utils"
)

type UserController struct {
	svc services.IdentityService
}

func NewUserController(s services.IdentityService) *UserController {
	return &UserController{svc: s}
}

// -----------------------------------------------------------------------------
// POST /api/v1/users/check
// -----------------------------------------------------------------------------
func (c *UserController) CheckUserHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.CheckUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", err,
		)
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := validate.Struct(req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeValidation, "Email required / malformed", err,
		)
		return
	}

	st, err := c.svc.CheckUser(r.Context(), req.Email)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	resp := dtos.CheckUserResponse{Exists: st.Exists}
	if st.Exists {
		resp.Purchased = utils.Ptr(st.Purchased)
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

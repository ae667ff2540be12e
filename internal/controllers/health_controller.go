package controllers

import (
	"net/http"

	"github.com/rafaelalberola/lamiradacreativa/internal/dtos"
	"github.com/rafaelalberola/lamiradacreativa/internal/utils"
)

type HealthController struct{}

func NewHealthController() *HealthController {
	return &HealthController{}
}

// HealthCheckHandler only reports liveness; the service has no stateful
// dependency worth probing.
func (c *HealthController) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, dtos.HealthCheckResponse{Status: "OK"})
}

package controllers

import (
	"net/http"

	"github.com/saydalia/saydalia/app/services"
	"github.com/saydalia/saydalia/pkg/response"
)

type DashboardController struct {
	service *services.DashboardService
}

func NewDashboardController(service *services.DashboardService) *DashboardController {
	return &DashboardController{service: service}
}

// Show aggregates the admin's pharmacy, order counts by status, catalog
// stats and recent orders into one payload.
func (c *DashboardController) Show(w http.ResponseWriter, r *http.Request) {
	admin, ok := actor(r)
	if !ok {
		response.Message(w, http.StatusUnauthorized, msgLoginRequired)
		return
	}

	dashboard, err := c.service.For(r.Context(), admin.ID)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, dashboard)
}

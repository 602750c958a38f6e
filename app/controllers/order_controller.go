package controllers

import (
	"net/http"

	"github.com/saydalia/saydalia/app/services"
	"github.com/saydalia/saydalia/pkg/bind"
	"github.com/saydalia/saydalia/pkg/response"
)

type OrderController struct {
	service *services.OrderService
}

func NewOrderController(service *services.OrderService) *OrderController {
	return &OrderController{service: service}
}

func (c *OrderController) Create(w http.ResponseWriter, r *http.Request) {
	current, ok := actor(r)
	if !ok {
		response.Message(w, http.StatusUnauthorized, msgLoginRequired)
		return
	}

	var in services.OrderInput
	if errs, err := bind.JSON(r, &in); err != nil {
		badPayload(w)
		return
	} else if errs != nil {
		response.ValidationErrors(w, msgMissingFields, errs)
		return
	}

	order, err := c.service.Create(r.Context(), current.ID, in)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Created(w, order)
}

// Index lists orders for the caller: customers see their own, pharmacy
// admins see their pharmacy's incoming orders.
func (c *OrderController) Index(w http.ResponseWriter, r *http.Request) {
	current, ok := actor(r)
	if !ok {
		response.Message(w, http.StatusUnauthorized, msgLoginRequired)
		return
	}

	orders, err := c.service.ListForActor(r.Context(), current)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, orders)
}

func (c *OrderController) Show(w http.ResponseWriter, r *http.Request) {
	current, ok := actor(r)
	if !ok {
		response.Message(w, http.StatusUnauthorized, msgLoginRequired)
		return
	}

	id, ok := pathID(r, "id")
	if !ok {
		response.FromError(w, services.ErrOrderNotFound())
		return
	}

	order, err := c.service.Get(r.Context(), id, current)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, order)
}

// UpdateStatus moves an order through its lifecycle. Only the admin of
// the pharmacy the order belongs to may call this; the customer is
// notified about every change.
func (c *OrderController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	current, ok := actor(r)
	if !ok {
		response.Message(w, http.StatusUnauthorized, msgLoginRequired)
		return
	}

	id, ok := pathID(r, "id")
	if !ok {
		response.FromError(w, services.ErrOrderNotFound())
		return
	}

	var in struct {
		Status string `json:"status" validate:"required"`
	}
	if errs, err := bind.JSON(r, &in); err != nil {
		badPayload(w)
		return
	} else if errs != nil {
		response.ValidationErrors(w, msgMissingFields, errs)
		return
	}

	order, err := c.service.UpdateStatus(r.Context(), id, current, in.Status)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, order)
}

// PharmacyOrders lists the orders of one pharmacy, owner only.
func (c *OrderController) PharmacyOrders(w http.ResponseWriter, r *http.Request) {
	current, ok := actor(r)
	if !ok {
		response.Message(w, http.StatusUnauthorized, msgLoginRequired)
		return
	}

	id, ok := pathID(r, "id")
	if !ok {
		response.FromError(w, services.ErrPharmacyNotFound())
		return
	}

	orders, err := c.service.ListForPharmacy(r.Context(), id, current)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, orders)
}

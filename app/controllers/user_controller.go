package controllers

import (
	"net/http"

	"github.com/saydalia/saydalia/app/services"
	"github.com/saydalia/saydalia/pkg/bind"
	"github.com/saydalia/saydalia/pkg/response"
)

type UserController struct {
	service *services.UserService
}

func NewUserController(service *services.UserService) *UserController {
	return &UserController{service: service}
}

func (c *UserController) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		response.FromError(w, services.ErrUserNotFound())
		return
	}

	user, err := c.service.Get(r.Context(), id)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, map[string]interface{}{"user": user})
}

// Update modifies a profile. Users can only touch their own account; the
// service rejects everything else.
func (c *UserController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		response.FromError(w, services.ErrUserNotFound())
		return
	}

	current, ok := actor(r)
	if !ok {
		response.Message(w, http.StatusUnauthorized, msgLoginRequired)
		return
	}

	var in services.ProfileInput
	if errs, err := bind.JSON(r, &in); err != nil {
		badPayload(w)
		return
	} else if errs != nil {
		response.ValidationErrors(w, msgMissingFields, errs)
		return
	}

	user, err := c.service.UpdateProfile(r.Context(), id, current, in)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, map[string]interface{}{"user": user})
}

package controllers

import (
	"net/http"

	"github.com/saydalia/saydalia/app/services"
	"github.com/saydalia/saydalia/pkg/bind"
	"github.com/saydalia/saydalia/pkg/response"
)

type AuthController struct {
	service *services.AuthService
}

func NewAuthController(service *services.AuthService) *AuthController {
	return &AuthController{service: service}
}

// Register creates an account. When the payload carries role "admin" it
// must also carry a pharmacy object; the two are created together.
func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var in services.RegisterInput
	if errs, err := bind.JSON(r, &in); err != nil {
		badPayload(w)
		return
	} else if errs != nil {
		response.ValidationErrors(w, msgMissingFields, errs)
		return
	}

	result, err := c.service.Register(r.Context(), in)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, result)
}

func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var in services.LoginInput
	if errs, err := bind.JSON(r, &in); err != nil {
		badPayload(w)
		return
	} else if errs != nil {
		response.ValidationErrors(w, msgMissingFields, errs)
		return
	}

	result, err := c.service.Login(r.Context(), in)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, result)
}

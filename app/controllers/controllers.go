// Package controllers translates HTTP requests into service calls.
//
// Controllers stay thin: decode and validate the payload, resolve path
// parameters, call the service, and let pkg/response shape the output.
// All business rules, including authorization decisions, live in the
// services.
package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/saydalia/saydalia/app/models"
	"github.com/saydalia/saydalia/pkg/middleware"
	"github.com/saydalia/saydalia/pkg/response"
)

const (
	msgBadPayload    = "صيغة الطلب غير صالحة"
	msgMissingFields = "يرجى تعبئة جميع الحقول المطلوبة"
	msgLoginRequired = "يجب تسجيل الدخول"
)

// pathID parses the named URL parameter as an ObjectID. ok is false when
// the parameter is missing or not valid hex; callers decide which
// not-found message that maps to.
func pathID(r *http.Request, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, name))
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}

// actor returns the authenticated user placed in the context by the auth
// middleware. Routes behind middleware.Auth always have one; the second
// return guards against a misregistered route.
func actor(r *http.Request) (models.User, bool) {
	return middleware.UserFromCtx(r.Context())
}

// badPayload reports a malformed (non-JSON or oversized) request body.
func badPayload(w http.ResponseWriter) {
	response.Message(w, http.StatusBadRequest, msgBadPayload)
}

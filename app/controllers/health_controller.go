package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/saydalia/saydalia/pkg/cache"
	"github.com/saydalia/saydalia/pkg/database"
	"github.com/saydalia/saydalia/pkg/response"
)

type HealthController struct{}

func NewHealthController() *HealthController {
	return &HealthController{}
}

// Check is a liveness endpoint: it always answers 200 with ok true as long
// as the process serves requests. Store reachability is reported alongside
// for operators but never fails the check.
func (c *HealthController) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	body := map[string]interface{}{
		"ok":    true,
		"mongo": "up",
		"redis": "up",
	}

	if err := database.Ping(ctx); err != nil {
		body["mongo"] = "down"
	}

	if cache.RDB == nil {
		body["redis"] = "disabled"
	} else if err := cache.RDB.Ping(ctx).Err(); err != nil {
		body["redis"] = "down"
	}

	response.Success(w, body)
}

package controllers

import (
	"net/http"

	"github.com/saydalia/saydalia/app/services"
	"github.com/saydalia/saydalia/pkg/response"
	"github.com/saydalia/saydalia/pkg/ws"
)

type NotificationController struct {
	service *services.NotificationService
	hub     *ws.Hub
}

func NewNotificationController(service *services.NotificationService, hub *ws.Hub) *NotificationController {
	return &NotificationController{service: service, hub: hub}
}

func (c *NotificationController) Index(w http.ResponseWriter, r *http.Request) {
	current, ok := actor(r)
	if !ok {
		response.Message(w, http.StatusUnauthorized, msgLoginRequired)
		return
	}

	notifications, err := c.service.ListForUser(r.Context(), current.ID)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, notifications)
}

// MarkRead flags one notification as read. Marking an already-read
// notification succeeds; marking someone else's reports not found.
func (c *NotificationController) MarkRead(w http.ResponseWriter, r *http.Request) {
	current, ok := actor(r)
	if !ok {
		response.Message(w, http.StatusUnauthorized, msgLoginRequired)
		return
	}

	id, ok := pathID(r, "id")
	if !ok {
		response.FromError(w, services.ErrNotificationNotFound())
		return
	}

	notification, err := c.service.MarkRead(r.Context(), id, current.ID)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, notification)
}

func (c *NotificationController) UnreadCount(w http.ResponseWriter, r *http.Request) {
	current, ok := actor(r)
	if !ok {
		response.Message(w, http.StatusUnauthorized, msgLoginRequired)
		return
	}

	count, err := c.service.UnreadCount(r.Context(), current.ID)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, map[string]int64{"unread": count})
}

// Stream upgrades to a websocket that pushes the caller's notifications
// as they are created. The connection is write-only from the server side.
func (c *NotificationController) Stream(w http.ResponseWriter, r *http.Request) {
	current, ok := actor(r)
	if !ok {
		response.Message(w, http.StatusUnauthorized, msgLoginRequired)
		return
	}

	ws.Upgrade(w, r, c.hub, current.ID.Hex())
}

// Package notification fans a stored notification out to its delivery
// channels: a websocket push to the recipient's open connections, and
// optionally an email.
//
// Define a Notification:
//
//	type OrderPlaced struct { N models.Notification; Email string }
//	func (n *OrderPlaced) Via() []string { return []string{"websocket", "mail"} }
//	func (n *OrderPlaced) ToWebsocket() notification.WebsocketData { ... }
//	func (n *OrderPlaced) ToMail() notification.MailData { ... }
//
// Send:
//
//	notification.Send("user@example.com", &OrderPlaced{...})
package notification

import (
	"encoding/json"
	"fmt"

	"github.com/saydalia/saydalia/pkg/logger"
	"github.com/saydalia/saydalia/pkg/mail"
	"github.com/saydalia/saydalia/pkg/metrics"
	"github.com/saydalia/saydalia/pkg/ws"
)

// ------------------- Channel data structs -------------------

// MailData carries the data needed to send an email notification.
type MailData struct {
	To      string // overrides the notifiable address if set
	Subject string
	Body    string // HTML
	Text    string // plain-text fallback
}

// WebsocketData carries the payload pushed to one user's connections.
type WebsocketData struct {
	UserID  string // recipient id hex
	Payload interface{}
}

// ------------------- Notification interface -------------------

// Notification is the interface every notification must satisfy.
type Notification interface {
	// Via returns the list of channel names: "websocket", "mail".
	Via() []string
}

// Mailable can be implemented to support the mail channel.
type Mailable interface {
	ToMail() MailData
}

// Websocketable can be implemented to support the websocket channel.
type Websocketable interface {
	ToWebsocket() WebsocketData
}

// ------------------- Global config -------------------

var hub *ws.Hub

// SetHub wires the websocket hub used for push delivery. Call once at boot.
func SetHub(h *ws.Hub) { hub = h }

// ------------------- Send -------------------

// Send dispatches the notification through all channels returned by Via().
// address is typically an email address used for the mail channel.
func Send(address string, n Notification) []error {
	var errs []error
	for _, channel := range n.Via() {
		if err := dispatch(address, channel, n); err != nil {
			logger.Error("notification: channel failed",
				"channel", channel, "error", err)
			errs = append(errs, err)
			continue
		}
		metrics.NotificationDelivered(channel)
	}
	return errs
}

// SendAsync dispatches the notification in a background goroutine.
func SendAsync(address string, n Notification) {
	go func() {
		if errs := Send(address, n); len(errs) > 0 {
			for _, e := range errs {
				logger.Error("notification: async error", "error", e)
			}
		}
	}()
}

func dispatch(address, channel string, n Notification) error {
	switch channel {
	case "mail":
		m, ok := n.(Mailable)
		if !ok {
			return fmt.Errorf("notification: %T does not implement Mailable", n)
		}
		return sendMail(address, m.ToMail())

	case "websocket":
		w, ok := n.(Websocketable)
		if !ok {
			return fmt.Errorf("notification: %T does not implement Websocketable", n)
		}
		return sendWebsocket(w.ToWebsocket())

	default:
		return fmt.Errorf("notification: unknown channel %q", channel)
	}
}

// ------------------- Mail channel -------------------

func sendMail(address string, d MailData) error {
	to := d.To
	if to == "" {
		to = address
	}

	body := d.Body
	if body == "" {
		body = d.Text
	}

	return mail.To(to).Subject(d.Subject).Body(body).Send()
}

// ------------------- Websocket channel -------------------

func sendWebsocket(d WebsocketData) error {
	if hub == nil {
		return fmt.Errorf("notification: websocket hub not configured")
	}
	raw, err := json.Marshal(d.Payload)
	if err != nil {
		return fmt.Errorf("notification: websocket marshal: %w", err)
	}
	hub.SendToUser(d.UserID, raw)
	return nil
}

// Package jobs holds the background jobs dispatched onto the queue and
// the event listeners that enqueue them.
package jobs

import (
	"context"
	"time"

	"github.com/saydalia/saydalia/app/models"
	"github.com/saydalia/saydalia/app/repositories"
	"github.com/saydalia/saydalia/config"
	"github.com/saydalia/saydalia/pkg/event"
	"github.com/saydalia/saydalia/pkg/logger"
	"github.com/saydalia/saydalia/pkg/notification"
	"github.com/saydalia/saydalia/pkg/queue"
)

// PushNotificationJob delivers a stored notification to the recipient's
// open websocket connections, and by email when SMTP is configured and
// the recipient's address is known.
type PushNotificationJob struct {
	Notification models.Notification `json:"notification"`
	Email        string              `json:"email,omitempty"`
}

// Handle implements queue.Job.
func (j *PushNotificationJob) Handle() error {
	if errs := notification.Send(j.Email, j); len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// Via implements notification.Notification.
func (j *PushNotificationJob) Via() []string {
	channels := []string{"websocket"}
	if j.Email != "" && config.Get("MAIL_USERNAME", "") != "" {
		channels = append(channels, "mail")
	}
	return channels
}

// ToWebsocket implements notification.Websocketable.
func (j *PushNotificationJob) ToWebsocket() notification.WebsocketData {
	return notification.WebsocketData{
		UserID:  j.Notification.User.Hex(),
		Payload: j.Notification,
	}
}

// ToMail implements notification.Mailable.
func (j *PushNotificationJob) ToMail() notification.MailData {
	return notification.MailData{
		Subject: j.Notification.Title,
		Text:    j.Notification.Message,
	}
}

// Boot registers the job types and the event listeners that enqueue them.
// Call once at startup, after the queue driver is configured.
func Boot(users repositories.UserRepository) {
	queue.Register("*jobs.PushNotificationJob", func() queue.Job { return &PushNotificationJob{} })

	event.Listen(event.NotificationCreated, func(payload interface{}) {
		n, ok := payload.(models.Notification)
		if !ok {
			logger.Warn("jobs: unexpected notification payload", "payload", payload)
			return
		}

		job := &PushNotificationJob{Notification: n}

		// Email address lookup is best effort; the websocket push and the
		// stored record do not depend on it.
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if user, err := users.FindByID(ctx, n.User); err == nil {
			job.Email = user.Email
		}

		if err := queue.Dispatch(job); err != nil {
			logger.Error("jobs: dispatch push notification", "error", err)
		}
	})
}

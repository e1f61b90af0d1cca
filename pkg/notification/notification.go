// Package notification fans a single event out over several delivery
// channels: mail, Slack, an outbound webhook, and a Mongo-backed
// "database" channel the API can later read back to the user.
//
// A notification names its channels in Via() and implements the
// matching To* method per channel:
//
//	type orderNotification struct{ ... }
//	func (n *orderNotification) Via() []string { return []string{"database", "slack"} }
//	func (n *orderNotification) ToDatabase() notification.DatabaseData { ... }
//	func (n *orderNotification) ToSlack() notification.SlackData { ... }
//
//	notification.SendAsync(userID, &orderNotification{...})
package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/shashiranjanraj/feria/config"
	"github.com/shashiranjanraj/feria/pkg/logger"
	"github.com/shashiranjanraj/feria/pkg/mail"
)

// Notification names the channels an event should go out on. Channel
// names: "mail", "slack", "webhook", "database".
type Notification interface {
	Via() []string
}

// One interface per channel; implement the ones Via returns.
type (
	Mailable     interface{ ToMail() MailData }
	Slackable    interface{ ToSlack() SlackData }
	Webhookable  interface{ ToWebhook() WebhookData }
	Databaseable interface{ ToDatabase() DatabaseData }
)

// MailData is the mail channel payload. To overrides the notifiable
// address when set; Text is the fallback when Body is empty.
type MailData struct {
	To      string
	Subject string
	Body    string
	Text    string
}

// SlackData posts to an incoming webhook. WebhookURL overrides the
// SLACK_WEBHOOK_URL setting when set.
type SlackData struct {
	WebhookURL  string
	Text        string
	Attachments []SlackAttachment
}

// SlackAttachment is one attachment block on a Slack message.
type SlackAttachment struct {
	Color  string `json:"color,omitempty"`
	Title  string `json:"title,omitempty"`
	Text   string `json:"text,omitempty"`
	Footer string `json:"footer,omitempty"`
}

// WebhookData POSTs an arbitrary JSON payload to URL.
type WebhookData struct {
	URL     string
	Payload any
	Headers map[string]string
}

// DatabaseData is persisted to the notifications collection.
type DatabaseData struct {
	Type    string
	Message string
	Data    any
}

var httpClient = &http.Client{Timeout: 10 * time.Second}

var storeCol *mongo.Collection

// UseStore points the database channel at a collection. Without it that
// channel errors. Call once at boot:
//
//	notification.UseStore(mongodb.Collection("notifications"))
func UseStore(col *mongo.Collection) { storeCol = col }

// Send runs the notification through every channel Via names, in
// order, collecting per-channel errors. One failing channel does not
// stop the rest.
func Send(address string, n Notification) []error {
	var errs []error
	for _, name := range n.Via() {
		if err := deliver(address, name, n); err != nil {
			logger.Error("notification: channel failed", "channel", name, "error", err)
			errs = append(errs, err)
		}
	}
	return errs
}

// SendAsync is Send on a goroutine, for callers that must not block —
// event listeners, mostly. Errors end up in the log only.
func SendAsync(address string, n Notification) {
	go Send(address, n) //nolint:errcheck
}

func deliver(address, channel string, n Notification) error {
	switch channel {
	case "mail":
		m, ok := n.(Mailable)
		if !ok {
			return fmt.Errorf("notification: %T does not implement Mailable", n)
		}
		return sendMail(address, m.ToMail())
	case "slack":
		s, ok := n.(Slackable)
		if !ok {
			return fmt.Errorf("notification: %T does not implement Slackable", n)
		}
		return sendSlack(s.ToSlack())
	case "webhook":
		w, ok := n.(Webhookable)
		if !ok {
			return fmt.Errorf("notification: %T does not implement Webhookable", n)
		}
		return postJSON(w.ToWebhook())
	case "database":
		d, ok := n.(Databaseable)
		if !ok {
			return fmt.Errorf("notification: %T does not implement Databaseable", n)
		}
		return store(address, d.ToDatabase())
	default:
		return fmt.Errorf("notification: unknown channel %q", channel)
	}
}

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

func sendSlack(d SlackData) error {
	url := d.WebhookURL
	if url == "" {
		url = config.Get("SLACK_WEBHOOK_URL", "")
	}
	if url == "" {
		return fmt.Errorf("notification: SLACK_WEBHOOK_URL not configured")
	}
	return postJSON(WebhookData{
		URL: url,
		Payload: struct {
			Text        string            `json:"text,omitempty"`
			Attachments []SlackAttachment `json:"attachments,omitempty"`
		}{d.Text, d.Attachments},
	})
}

func postJSON(d WebhookData) error {
	if d.URL == "" {
		return fmt.Errorf("notification: webhook URL is empty")
	}
	raw, err := json.Marshal(d.Payload)
	if err != nil {
		return fmt.Errorf("notification: marshal payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, d.URL, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("notification: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range d.Headers {
		req.Header.Set(k, v)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("notification: post %s: %w", d.URL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("notification: %s returned HTTP %d", d.URL, resp.StatusCode)
	}
	return nil
}

func store(address string, d DatabaseData) error {
	if storeCol == nil {
		return fmt.Errorf("notification: database channel not configured, call UseStore at boot")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := storeCol.InsertOne(ctx, struct {
		Notifiable string    `bson:"notifiable"`
		Type       string    `bson:"type"`
		Message    string    `bson:"message"`
		Data       any       `bson:"data,omitempty"`
		CreatedAt  time.Time `bson:"created_at"`
	}{address, d.Type, d.Message, d.Data, time.Now()})
	if err != nil {
		return fmt.Errorf("notification: store: %w", err)
	}
	return nil
}

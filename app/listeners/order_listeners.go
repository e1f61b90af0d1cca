// Package listeners subscribes the notification side of the order engine to
// its events. Register once at boot, after the ws hub is running.
package listeners

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shashiranjanraj/feria/app/jobs"
	"github.com/shashiranjanraj/feria/app/models"
	"github.com/shashiranjanraj/feria/app/repositories"
	"github.com/shashiranjanraj/feria/app/services"
	"github.com/shashiranjanraj/feria/config"
	"github.com/shashiranjanraj/feria/pkg/event"
	"github.com/shashiranjanraj/feria/pkg/logger"
	"github.com/shashiranjanraj/feria/pkg/notification"
	"github.com/shashiranjanraj/feria/pkg/queue"
	"github.com/shashiranjanraj/feria/pkg/ws"
)

// wsEnvelope is the frame pushed to websocket subscribers.
type wsEnvelope struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

// orderNotification records an order event on the database channel and,
// when configured, forwards it to the fulfillment webhook and the ops
// Slack channel.
type orderNotification struct {
	Event   string
	Payload any
}

func (n *orderNotification) Via() []string {
	channels := []string{"database"}
	if config.Get("ORDER_WEBHOOK_URL", "") != "" {
		channels = append(channels, "webhook")
	}
	if config.Get("SLACK_WEBHOOK_URL", "") != "" {
		channels = append(channels, "slack")
	}
	return channels
}

func (n *orderNotification) ToDatabase() notification.DatabaseData {
	return notification.DatabaseData{
		Type:    n.Event,
		Message: "order event",
		Data:    n.Payload,
	}
}

func (n *orderNotification) ToSlack() notification.SlackData {
	return notification.SlackData{
		Text: fmt.Sprintf(":package: %s", n.Event),
		Attachments: []notification.SlackAttachment{
			{Color: "good", Text: fmt.Sprintf("%+v", n.Payload)},
		},
	}
}

func (n *orderNotification) ToWebhook() notification.WebhookData {
	return notification.WebhookData{
		URL:     config.Get("ORDER_WEBHOOK_URL", ""),
		Payload: wsEnvelope{Event: n.Event, Payload: n.Payload},
	}
}

// Register wires the order event listeners onto the hub.
func Register(hub *ws.Hub) {
	users := repositories.NewUserRepository()

	event.Listen(services.EventOrderCreated, func(payload interface{}) {
		p, ok := payload.(services.OrderCreatedPayload)
		if !ok {
			return
		}
		broadcast(hub, services.EventOrderCreated, p)
		notification.SendAsync(clientAddress(p.Orders), &orderNotification{
			Event:   services.EventOrderCreated,
			Payload: p,
		})
		queueReceipts(users, p.Orders)
	})

	event.Listen(services.EventOrderUpdated, func(payload interface{}) {
		p, ok := payload.(services.OrderUpdatedPayload)
		if !ok {
			return
		}
		broadcast(hub, services.EventOrderUpdated, p)
		notification.SendAsync(p.ClientID, &orderNotification{
			Event:   services.EventOrderUpdated,
			Payload: p,
		})
	})
}

func broadcast(hub *ws.Hub, name string, payload any) {
	raw, err := json.Marshal(wsEnvelope{Event: name, Payload: payload})
	if err != nil {
		logger.Error("listeners: marshal failed", "event", name, "error", err)
		return
	}
	select {
	case hub.Broadcast <- raw:
	default:
		// Hub buffer full — drop rather than block the event bus.
	}
}

// queueReceipts mails one receipt per created order.
func queueReceipts(users *repositories.UserRepository, orders []models.Order) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, order := range orders {
		client, err := users.FindByID(ctx, order.ClientID())
		if err != nil {
			logger.Warn("listeners: receipt client lookup failed",
				"order_id", order.ID.Hex(), "error", err)
			continue
		}
		if err := queue.Dispatch(&jobs.OrderReceiptMailJob{
			Email:       client.Email,
			UserName:    client.Name,
			OrderNumber: order.OrderNumber,
			Total:       order.Total,
		}); err != nil {
			logger.Warn("listeners: receipt dispatch failed",
				"order_id", order.ID.Hex(), "error", err)
		}
	}
}

func clientAddress(orders []models.Order) string {
	if len(orders) == 0 {
		return ""
	}
	return orders[0].ClientID().Hex()
}

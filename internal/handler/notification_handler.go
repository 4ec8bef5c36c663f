package handler

import (
	"context"

	"troubleshoot-agent-be/internal/pkg/logger"
	internalWS "troubleshoot-agent-be/internal/websocket"
	"troubleshoot-agent-be/pkg/events"
	pktNats "troubleshoot-agent-be/pkg/nats"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// NotificationHandler bridges the NATS event bus to connected websocket
// clients so the UI can react to ingest completions and escalations.
type NotificationHandler struct {
	subscriber *pktNats.Subscriber
	hub        *internalWS.Hub
	logger     logger.ILogger
}

func NewNotificationHandler(subscriber *pktNats.Subscriber, hub *internalWS.Hub, log logger.ILogger) *NotificationHandler {
	return &NotificationHandler{
		subscriber: subscriber,
		hub:        hub,
		logger:     log,
	}
}

func (h *NotificationHandler) RegisterRoutes(r fiber.Router) {
	r.Get("/ws/notifications", h.ServeWs)
}

// ServeWs upgrades the connection and ties it to a session id.
func (h *NotificationHandler) ServeWs(c *fiber.Ctx) error {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "session_id query parameter is required")
	}

	return websocket.New(func(conn *websocket.Conn) {
		internalWS.ServeWs(h.hub, conn, sessionID)
	})(c)
}

// StartEventBridge subscribes to the event bus and relays events to the
// hub. Escalation events go to the session they belong to; ingest events
// go to everyone.
func (h *NotificationHandler) StartEventBridge() error {
	if h.subscriber == nil {
		return nil
	}

	err := h.subscriber.Subscribe("events.SESSION_ESCALATED", "ws-escalations", func(ctx context.Context, event events.Event) error {
		payload := event.Payload()
		sessionID, _ := payload["session_id"].(string)
		notification := internalWS.Notification{
			Type:      "session_escalated",
			SessionId: sessionID,
			Data:      payload,
		}
		if sessionID != "" {
			h.hub.Send(sessionID, notification)
		}
		return nil
	})
	if err != nil {
		return err
	}

	return h.subscriber.Subscribe("events.DOCUMENT_INGESTED", "ws-ingests", func(ctx context.Context, event events.Event) error {
		h.hub.Broadcast(internalWS.Notification{
			Type: "document_ingested",
			Data: event.Payload(),
		})
		return nil
	})
}

package http

import (
	"bufio"
	"encoding/json"
	"fmt"

	fdsync "github.com/Maxito7/frontdesk_backend/internal/sync"
	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

type SyncHandler struct {
	hub *fdsync.Hub
}

// NewSyncHandler creates a new instance of the sync handler
func NewSyncHandler(hub *fdsync.Hub) *SyncHandler {
	return &SyncHandler{hub: hub}
}

// Stream pushes change events to the client as server-sent events. Clients
// treat every event as an invalidation signal and refetch their room and
// reservation sets. The subscription is released as soon as the client goes
// away so broadcast channels never leak.
func (h *SyncHandler) Stream(c *fiber.Ctx) error {
	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		id, events := h.hub.Subscribe()
		defer h.hub.Unsubscribe(id)

		for event := range events {
			payload, err := json.Marshal(event)
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
				return
			}
			// A flush error means the client disconnected.
			if err := w.Flush(); err != nil {
				return
			}
		}
	}))

	return nil
}

package api

import (
	"bufio"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
)

const keepAliveInterval = 30 * time.Second

// handleEventStream handles GET /cache/events
// Server-Sent Events endpoint streaming configuration changes
func (s *Server) handleEventStream(c *fiber.Ctx) error {
	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("Transfer-Encoding", "chunked")
	c.Set("X-Accel-Buffering", "no") // Disable nginx buffering

	ctx := c.UserContext()
	watchID, events := s.deps.Events.Watch()

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer s.deps.Events.Unwatch(watchID)

		fmt.Fprintf(w, ": connected\n\n")
		if err := w.Flush(); err != nil {
			return
		}

		keepAlive := time.NewTicker(keepAliveInterval)
		defer keepAlive.Stop()

		for {
			select {
			case event, ok := <-events:
				if !ok {
					return
				}

				data, err := json.Marshal(event)
				if err != nil {
					s.logger.ErrorContext(ctx, "Failed to marshal configuration event", "event_id", event.ID, "err", err)
					continue
				}

				fmt.Fprintf(w, "id: %s\nevent: configuration_changed\ndata: %s\n\n", event.ID, data)
				if err := w.Flush(); err != nil {
					// Client disconnected
					return
				}

			case <-keepAlive.C:
				fmt.Fprintf(w, ": keep-alive\n\n")
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	})

	return nil
}

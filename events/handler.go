package events

import (
	"io"
	"net/http"
	"time"

	"github.com/user/storefront-go/apperror"
	"github.com/user/storefront-go/auth"
)

// DefaultHeartbeat keeps idle connections open through proxies.
const DefaultHeartbeat = 25 * time.Second

// Handlers serves the admin event stream.
type Handlers struct {
	broadcaster *Broadcaster
	heartbeat   time.Duration
}

// NewHandlers creates new Handlers. A heartbeat of zero uses DefaultHeartbeat.
func NewHandlers(b *Broadcaster, heartbeat time.Duration) *Handlers {
	if heartbeat <= 0 {
		heartbeat = DefaultHeartbeat
	}
	return &Handlers{broadcaster: b, heartbeat: heartbeat}
}

// HandleOrderStream godoc
// @Summary Live order feed
// @Description Server-sent events; one "order.created" event per recorded order. Admin only.
// @Tags Admin
// @Produce text/event-stream
// @Success 200 {string} string "event stream"
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 403 {object} apperror.ErrorResponse
// @Security BearerAuth
// @Router /admin/orders/stream [get]
func (h *Handlers) HandleOrderStream() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			auth.WriteError(w, r, apperror.NewInternalError("streaming unsupported", nil))
			return
		}

		// The stream outlives the server's write timeout.
		_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

		id, ch := h.broadcaster.Subscribe()
		defer h.broadcaster.Unsubscribe(id)

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		w.WriteHeader(http.StatusOK)
		if _, err := io.WriteString(w, ": connected\n\n"); err != nil {
			return
		}
		flusher.Flush()

		ticker := time.NewTicker(h.heartbeat)
		defer ticker.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case e, open := <-ch:
				if !open {
					return
				}
				if _, err := e.WriteTo(w); err != nil {
					return
				}
				flusher.Flush()
			case <-ticker.C:
				if _, err := io.WriteString(w, ": ping\n\n"); err != nil {
					return
				}
				flusher.Flush()
			}
		}
	}
}

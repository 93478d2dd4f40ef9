package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/xavierca1/dealer-leads/internal/entity"
	"github.com/xavierca1/dealer-leads/internal/infra/http/middleware"
	"github.com/xavierca1/dealer-leads/internal/usecase"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// LiveSnapshot is what a viewer receives on every change.
type LiveSnapshot struct {
	Viewer string        `json:"viewer"`
	Leads  []entity.Lead `json:"leads"`
	Stats  usecase.Stats `json:"stats"`
}

// SnapshotSource is satisfied by *realtime.Feed.
type SnapshotSource interface {
	Subscribe(ctx context.Context) (<-chan []entity.Lead, error)
}

// LiveHandler streams the viewer's filtered leads and stats over a websocket.
type LiveHandler struct {
	feed     SnapshotSource
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

func NewLiveHandler(feed SnapshotSource, allowedOrigins []string, logger *slog.Logger) *LiveHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &LiveHandler{
		feed:   feed,
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || a == origin {
				return true
			}
		}
		return false
	}
}

// ViewSnapshot applies the view filter for one viewer.
func ViewSnapshot(all []entity.Lead, viewerID string) LiveSnapshot {
	visible := usecase.VisibleLeads(all, viewerID)
	return LiveSnapshot{
		Viewer: viewerID,
		Leads:  visible,
		Stats:  usecase.Aggregate(visible),
	}
}

// Handle serves GET /ws/leads.
func (h *LiveHandler) Handle(w http.ResponseWriter, r *http.Request) {
	viewerID := middleware.ViewerID(r.Context())

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already answered the client
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	snapshots, err := h.feed.Subscribe(ctx)
	if err != nil {
		h.logger.Error("live feed subscribe failed", "viewer", viewerID, "error", err)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "feed unavailable"),
			time.Now().Add(writeWait))
		return
	}

	// the reader only exists to notice the client going away
	go func() {
		defer cancel()
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	h.logger.Debug("viewer connected", "viewer", viewerID)
	defer h.logger.Debug("viewer disconnected", "viewer", viewerID)

	for {
		select {
		case <-ctx.Done():
			return
		case all, ok := <-snapshots:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(ViewSnapshot(all, viewerID)); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sirpyerre/portfolio-api/internal/api/metrics"
	"github.com/sirpyerre/portfolio-api/internal/core/domain"
	"github.com/sirpyerre/portfolio-api/internal/core/service"
	"github.com/sirpyerre/portfolio-api/internal/infrastructure/ws"
)

// liveEvent is the websocket frame for the live comment feed. The first
// frame after connect is a snapshot; each merged insert follows as a comment
// frame.
type liveEvent struct {
	Type     string           `json:"type"` // "snapshot" or "comment"
	Comments []domain.Comment `json:"comments,omitempty"`
	Comment  *domain.Comment  `json:"comment,omitempty"`
}

// LiveCommentPayload encodes a single merged comment for broadcast.
func LiveCommentPayload(comment domain.Comment) []byte {
	payload, _ := json.Marshal(liveEvent{Type: "comment", Comment: &comment})
	return payload
}

// CommentFeedHandler upgrades GET /v1/articles/:id/comments/live to a
// websocket and ties the connection's lifetime to a stream subscription.
type CommentFeedHandler struct {
	streams  *service.StreamManager
	hub      *ws.Hub
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

func NewCommentFeedHandler(streams *service.StreamManager, hub *ws.Hub, log zerolog.Logger) *CommentFeedHandler {
	return &CommentFeedHandler{
		streams: streams,
		hub:     hub,
		upgrader: websocket.Upgrader{
			// The feed is public read-only data; cross-origin reads are fine.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		log: log,
	}
}

// Live handles the websocket feed. The stream (and its store subscription)
// is acquired before the upgrade and released when the connection closes,
// whichever way it closes.
func (h *CommentFeedHandler) Live(c echo.Context) error {
	articleID := c.Param("id")

	stream, release, err := h.streams.Acquire(articleID)
	if err != nil {
		return err
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		release()
		return err
	}

	client := ws.NewClient(conn, h.log)
	h.hub.Register(articleID, client)
	metrics.LiveSubscribers.Inc()

	defer func() {
		h.hub.Unregister(articleID, client)
		client.Close()
		release()
		metrics.LiveSubscribers.Dec()
	}()

	snapshot, _ := json.Marshal(liveEvent{Type: "snapshot", Comments: stream.Comments()})
	if err := client.Send(snapshot); err != nil {
		return nil
	}

	// Block until the peer goes away; the feed is one-directional and any
	// inbound frame is discarded.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return nil
		}
	}
}

package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"iconograph/internal/logging"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true }, // secure via proxy in prod
}

type wsInbound struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

type wsOutbound struct {
	Type    string      `json:"type"`
	Status  string      `json:"status,omitempty"`
	Message string      `json:"message,omitempty"`
	Results interface{} `json:"results,omitempty"`
}

// handleWS serves the push-style variant of the query API. The protocol is
// sequential: per query the client receives a processing status, then either
// results or an error.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.ServerError("websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	reqID := middleware.GetReqID(r.Context())
	logging.Server("websocket connected (request_id=%s)", reqID)

	conn.SetReadLimit(4096)
	if err := conn.WriteJSON(wsOutbound{
		Type:    "welcome",
		Message: "Connected to the narrative art explorer. Send queries to explore historical artwork.",
	}); err != nil {
		return
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logging.ServerDebug("websocket read: %v", err)
			}
			return
		}

		var msg wsInbound
		if err := json.Unmarshal(data, &msg); err != nil || msg.Type != "query" || msg.Content == "" {
			continue
		}

		if err := conn.WriteJSON(wsOutbound{
			Type:    "status",
			Status:  "processing",
			Message: "Searching for artistic depictions...",
		}); err != nil {
			return
		}

		result, err := s.pipeline.ProcessQuery(r.Context(), msg.Content)
		if err != nil {
			s.logger.Error("websocket query failed",
				zap.String("query", msg.Content),
				zap.String("request_id", reqID),
				zap.Error(err))
			if err := conn.WriteJSON(wsOutbound{
				Type:    "error",
				Message: "Failed to process your request",
			}); err != nil {
				return
			}
			continue
		}

		if err := conn.WriteJSON(wsOutbound{Type: "results", Results: result}); err != nil {
			return
		}
	}
}

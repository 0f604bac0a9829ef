package server

import (
	"context"
	"net/http"

	"sdgsearch/tracing"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type socketQuery struct {
	Query string `json:"query"`
	TopN  int    `json:"top_n"`
}

type socketError struct {
	Error string `json:"error"`
}

// handleSearchSocket runs the same traced pipeline as the HTTP handler, once
// per received message, streaming results back over the connection.
func (s *Server) handleSearchSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	for {
		var query socketQuery
		if err := conn.ReadJSON(&query); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Warn("websocket closed unexpectedly", zap.Error(err))
			}
			return
		}

		if query.Query == "" {
			conn.WriteJSON(socketError{Error: "missing query"})
			continue
		}

		err := tracing.WithSpan(r.Context(), "search_socket_message", func(ctx context.Context) error {
			results, err := s.index.Query(ctx, query.Query, query.TopN)
			if err != nil {
				return err
			}
			return conn.WriteJSON(toResponse(query.Query, results))
		})
		if err != nil {
			s.log.Error("websocket search failed", zap.String("query", query.Query), zap.Error(err))
			conn.WriteJSON(socketError{Error: "search failed"})
		}
	}
}

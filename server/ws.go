package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"docsift/internal/types"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Be careful with this in production
	},
}

// Message is one websocket frame in either direction.
type Message struct {
	Type       string `json:"type"`
	Content    string `json:"content"`
	DocumentID string `json:"document_id,omitempty"`
}

// streamAnswerer is implemented by answerers that can deliver an answer in
// pieces.
type streamAnswerer interface {
	AnswerStream(ctx context.Context, query, documentID string) (<-chan string, error)
}

// handleWebSocket runs a chat session scoped to one document. Each incoming
// frame carries a query and a document identifier; the answer streams back as
// a sequence of "stream" frames closed by a "done" frame.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		s.handleChatMessage(r.Context(), conn, msg)
	}
}

func (s *Server) handleChatMessage(ctx context.Context, conn *websocket.Conn, msg Message) {
	streamer, canStream := s.answerer.(streamAnswerer)
	if !canStream {
		answer, err := s.answerer.Answer(ctx, msg.Content, msg.DocumentID)
		if err != nil {
			s.sendMessage(conn, "error", clientMessage(err))
			return
		}
		s.sendMessage(conn, "response", answer)
		return
	}

	stream, err := streamer.AnswerStream(ctx, msg.Content, msg.DocumentID)
	if err != nil {
		s.sendMessage(conn, "error", clientMessage(err))
		return
	}

	for chunk := range stream {
		if strings.HasPrefix(chunk, "Error:") {
			s.sendMessage(conn, "error", "query failed")
			return
		}
		s.sendMessage(conn, "stream", chunk)
	}
	s.sendMessage(conn, "done", "")
}

func (s *Server) sendMessage(conn *websocket.Conn, msgType, content string) {
	msg := Message{Type: msgType, Content: content}
	if err := conn.WriteJSON(msg); err != nil {
		s.logger.Error("error sending message", zap.Error(err))
	}
}

// clientMessage keeps collaborator detail out of client-visible errors.
func clientMessage(err error) string {
	if types.IsInputError(err) {
		return err.Error()
	}
	return "query failed"
}

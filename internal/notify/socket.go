// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/net/websocket"
)

// frame is the wire shape of websocket messages in both directions:
// {"event": "...", "data": {...}}.
type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type outFrame struct {
	Event string  `json:"event"`
	Data  message `json:"data"`
}

type message struct {
	Type   EventType `json:"type"`
	Detail any       `json:"detail"`
}

// logData is the payload of a "log" frame sent by the browser.
type logData struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// Handler serves the progress websocket. Every hub event is written as a
// "message" frame; "log" frames from the browser are written to the hub
// logger at the requested level.
func (h *Hub) Handler() http.Handler {
	return websocket.Handler(h.serveSocket)
}

func (h *Hub) serveSocket(ws *websocket.Conn) {
	defer ws.Close()
	events, cancel := h.Subscribe()
	defer cancel()

	h.logger.Info("socket connected", "remote", ws.Request().RemoteAddr)
	defer h.logger.Info("socket disconnected", "remote", ws.Request().RemoteAddr)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var f frame
			if err := websocket.JSON.Receive(ws, &f); err != nil {
				return
			}
			if f.Event == "log" {
				h.logFrontend(f.Data)
			}
		}
	}()

	ctx := ws.Request().Context()
	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			out := outFrame{Event: "message", Data: message{Type: ev.Type, Detail: ev.Detail}}
			if err := websocket.JSON.Send(ws, out); err != nil {
				h.logger.Debug("socket write failed", "error", err)
				return
			}
		}
	}
}

func (h *Hub) logFrontend(raw json.RawMessage) {
	var d logData
	if err := json.Unmarshal(raw, &d); err != nil {
		h.logger.Warn("malformed log frame", "error", err)
		return
	}
	h.logger.Log(context.Background(), parseLevel(d.Level), d.Message, "source", "frontend")
}

// parseLevel maps browser log level names onto slog levels. Unknown names
// log at info.
func parseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error", "critical", "fatal":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

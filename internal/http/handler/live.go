package handler

import (
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"mythoughts/internal/live"
)

type LiveHandler struct {
	Hub      *live.Hub
	Upgrader websocket.Upgrader
	Log      *zap.Logger
}

func (h *LiveHandler) Thoughts(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil || q.Where != "" {
		http.Error(w, "invalid query", http.StatusBadRequest)
		return
	}

	conn, err := h.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	live.Serve(h.Hub, conn, live.NewSubscriber(q), h.Log)
}

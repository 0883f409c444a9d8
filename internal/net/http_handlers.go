package net

import (
	"encoding/json"
	nethttp "net/http"

	"go.uber.org/zap"

	server "github.com/Ghost-Author/fish-game"
	"github.com/Ghost-Author/fish-game/internal/net/ws"
	"github.com/Ghost-Author/fish-game/internal/persist"
)

// HTTPHandlerConfig carries the plain-endpoint dependencies.
type HTTPHandlerConfig struct {
	Store  persist.Store
	Logger *zap.Logger
}

// NewHTTPHandler wires the websocket endpoint and the two plain endpoints
// onto one mux.
func NewHTTPHandler(hub *server.Hub, cfg HTTPHandlerConfig) nethttp.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	wsHandler := ws.NewHandler(hub, logger)

	mux := nethttp.NewServeMux()
	mux.HandleFunc("/ws", wsHandler.Handle)

	mux.HandleFunc("/leaderboard", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodGet {
			nethttp.Error(w, "method not allowed", nethttp.StatusMethodNotAllowed)
			return
		}
		entries := []persist.Entry{}
		if cfg.Store != nil {
			loaded, err := cfg.Store.TopEntries(r.Context(), persist.MaxEntries)
			if err != nil {
				logger.Warn("leaderboard lookup failed", zap.Error(err))
				nethttp.Error(w, "leaderboard unavailable", nethttp.StatusInternalServerError)
				return
			}
			if loaded != nil {
				entries = loaded
			}
		}
		writeJSON(w, entries)
	})

	mux.HandleFunc("/health", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		writeJSON(w, map[string]bool{"ok": true})
	})

	return mux
}

func writeJSON(w nethttp.ResponseWriter, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		nethttp.Error(w, "failed to encode", nethttp.StatusInternalServerError)
		return
	}
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

package rest

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/rocketscienceinc/tictactoe-server/internal/entity"
)

type snapshotSource interface {
	Snapshot() entity.Snapshot
}

func (that *Server) scoreboardHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, that.logger, that.snapshots.Snapshot())
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, body any) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

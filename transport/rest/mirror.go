package rest

import (
	"context"
	"errors"
	"net/http"

	"github.com/rocketscienceinc/tictactoe-server/internal/entity"
	"github.com/rocketscienceinc/tictactoe-server/internal/repository"
)

type mirrorSource interface {
	Get(ctx context.Context) (*entity.Scoreboard, error)
	Rounds(ctx context.Context) ([]entity.RoundResult, error)
}

// WithMirror serves the redis scoreboard mirror at /scoreboard/mirror and /rounds.
func (that *Server) WithMirror(mirror mirrorSource) *Server {
	that.mirror = mirror
	return that
}

func (that *Server) mirrorHandler(w http.ResponseWriter, r *http.Request) {
	scoreboard, err := that.mirror.Get(r.Context())
	if errors.Is(err, repository.ErrScoreboardNotFound) {
		http.Error(w, "no round finished yet", http.StatusNotFound)
		return
	}
	if err != nil {
		that.logger.Error("failed to load mirrored scoreboard", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, that.logger, scoreboard)
}

func (that *Server) roundsHandler(w http.ResponseWriter, r *http.Request) {
	rounds, err := that.mirror.Rounds(r.Context())
	if err != nil {
		that.logger.Error("failed to load rounds", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, that.logger, rounds)
}

package rest

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rocketscienceinc/tictactoe-agent/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-agent/internal/entity"
	"github.com/rocketscienceinc/tictactoe-agent/internal/tictactoe"
)

type MoveHandler interface {
	Move(c *gin.Context)
}

// Chooser is the part of a player the handler needs.
type Chooser interface {
	ChooseAction(state entity.State, actions []int) (int, error)
}

type moveRequest struct {
	Board string `json:"board" binding:"required"`
}

type moveResponse struct {
	Cell int    `json:"cell"`
	Mark string `json:"mark"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type moveHandler struct {
	logger *slog.Logger
	rules  *tictactoe.Rules
	player Chooser
}

func NewMoveHandler(logger *slog.Logger, rules *tictactoe.Rules, player Chooser) MoveHandler {
	return &moveHandler{
		logger: logger.With("component", "move_handler"),
		rules:  rules,
		player: player,
	}
}

// Move answers with the cell the policy plays on the posted board.
func (that *moveHandler) Move(c *gin.Context) {
	log := that.logger.With("method", "Move")

	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	state, err := entity.ParseState(req.Board)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	diff := state.Count(entity.PlayerX) - state.Count(entity.PlayerO)
	if diff != 0 && diff != 1 {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "board is not reachable: X opens and players alternate"})
		return
	}

	if that.rules.Outcome(state).IsFinished() {
		c.JSON(http.StatusBadRequest, errorResponse{Error: apperror.ErrGameFinished.Error()})
		return
	}

	cell, err := that.player.ChooseAction(state, that.rules.AvailableActions(state))
	if errors.Is(err, apperror.ErrNoAvailableActions) {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	if err != nil {
		log.Error("failed to choose move", "board", req.Board, "error", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "Internal Server Error"})
		return
	}

	log.Debug("move chosen", "board", req.Board, "cell", cell)

	c.JSON(http.StatusOK, moveResponse{Cell: cell, Mark: state.Turn().String()})
}

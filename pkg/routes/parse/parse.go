// Package parse exposes the parse pipeline over HTTP. Uploads run in batch
// mode: ambiguous names are left unresolved with warnings rather than
// waiting on a confirmation prompt.
package parse

import (
	"errors"
	"io"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/mlstools/rosterparse/pkg/release"
)

// maxUploadBytes caps the accepted document size.
const maxUploadBytes = 32 << 20 // 32MB

// Handler serves release-parse requests
type Handler struct {
	log *zap.Logger
	asm *release.Assembler
}

// NewHandler creates a parse handler backed by a batch-mode assembler
func NewHandler(log *zap.Logger, asm *release.Assembler) *Handler {
	return &Handler{log: log, asm: asm}
}

// Register registers parse routes
func (h *Handler) Register(g *echo.Group) {
	g.POST("/releases/parse", h.Parse)
}

// Parse accepts a PDF body and returns the release tree plus the warning
// ledger for the run
func (h *Handler) Parse(c echo.Context) error {
	ctx := c.Request().Context()

	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxUploadBytes+1))
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "failed to read request body")
	}
	if len(body) == 0 {
		return httperror.NewHTTPError(http.StatusBadRequest, "request body must be a PDF document")
	}
	if len(body) > maxUploadBytes {
		return httperror.NewHTTPError(http.StatusRequestEntityTooLarge, "document exceeds the size limit")
	}

	result, err := h.asm.ParseBytes(ctx, body)
	if err != nil {
		if errors.Is(err, release.ErrEmptyDocument) || errors.Is(err, release.ErrNoTeams) {
			return httperror.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		}
		h.log.Error("parse request failed", zap.Error(err))
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to parse document")
	}

	return c.JSON(http.StatusOK, result)
}

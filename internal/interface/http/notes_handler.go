package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/merchant-insights/internal/domain/notes"
)

// NoteHandler exposes merchant notes attached to products.
type NoteHandler struct {
	svc    notes.Service
	logger *slog.Logger
}

// NewNoteHandler constructs the notes HTTP handler.
func NewNoteHandler(svc notes.Service, logger *slog.Logger) *NoteHandler {
	return &NoteHandler{svc: svc, logger: logger.With("component", "http.notes")}
}

// List returns a product's notes, newest first.
func (h *NoteHandler) List(c *gin.Context) {
	items, err := h.svc.ListNotes(c.Request.Context(), shopID(c), c.Query("productId"))
	if err != nil {
		abortWithError(c, fromDomainError(err, "notes_failed"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"notes": items})
}

// Add stores a new note for a product.
func (h *NoteHandler) Add(c *gin.Context) {
	var req notes.AddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	req.ShopID = shopID(c)

	note, err := h.svc.AddNote(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromDomainError(err, "notes_failed"))
		return
	}
	c.JSON(http.StatusCreated, note)
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/readwave/readwave-backend/internal/logger"
	"github.com/readwave/readwave-backend/internal/services"
)

type BookHandler struct {
	log     *logger.Logger
	content services.ContentService
}

func NewBookHandler(log *logger.Logger, content services.ContentService) *BookHandler {
	return &BookHandler{
		log:     log.With("handler", "BookHandler"),
		content: content,
	}
}

// GET /api/books
func (h *BookHandler) ListBooks(c *gin.Context) {
	books, err := h.content.ListBooks(c.Request.Context(), nil)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "books_list_failed", err)
		return
	}
	RespondOK(c, gin.H{"books": books})
}

// GET /api/books/:id
func (h *BookHandler) GetBook(c *gin.Context) {
	bookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_book_id", err)
		return
	}
	book, err := h.content.GetBook(c.Request.Context(), nil, bookID)
	if err != nil {
		RespondError(c, http.StatusNotFound, "book_not_found", err)
		return
	}
	RespondOK(c, book)
}

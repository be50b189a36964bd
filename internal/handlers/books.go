package handlers

import (
	"go.uber.org/zap"

	"github.com/gofiber/fiber/v2"

	"libris/internal/middleware"
	"libris/internal/services"
	"libris/internal/utils"
)

// BookHandler handles catalog routes.
type BookHandler struct {
	Catalog *services.CatalogService
	Library *services.LibraryService
	Logger  *zap.Logger
}

type searchRequest struct {
	ISBN string `json:"isbn"`
}

// Search handles POST /api/books/search. It resolves the ISBN against the
// local catalog first and consults Open Library only on a miss; a found
// edition is normalized and persisted before it is returned.
func (h *BookHandler) Search(c *fiber.Ctx) error {
	var req searchRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, "Invalid request body", fiber.StatusBadRequest, "books.search")
	}
	if req.ISBN == "" {
		return utils.ErrorResponse(c, "isbn is required", fiber.StatusBadRequest, "books.search")
	}

	book, err := h.Catalog.AddBook(c.UserContext(), req.ISBN)
	if err != nil {
		h.Logger.Warn("book search failed", zap.String("isbn", req.ISBN), zap.Error(err))
		return serviceError(c, err, "books.search")
	}

	return c.Status(fiber.StatusOK).JSON(book)
}

// Get handles GET /api/books/:book_id. Alongside the catalog record it
// returns the signed-in user's tags on the book and the rest of their
// vocabulary, ready to apply.
func (h *BookHandler) Get(c *fiber.Ctx) error {
	bookID, ok := paramUint(c, "book_id")
	if !ok {
		return utils.ErrorResponse(c, "Invalid book id", fiber.StatusBadRequest, "books.get")
	}

	book, err := h.Catalog.GetBook(bookID)
	if err != nil {
		return serviceError(c, err, "books.get")
	}

	userID, ok := middleware.SessionUserID(c)
	if !ok {
		return utils.ErrorResponse(c, "Sign in required", fiber.StatusUnauthorized, "books.get")
	}

	bookTags, err := h.Library.TagsOnBook(userID, bookID)
	if err != nil {
		return serviceError(c, err, "books.get")
	}
	availableTags, err := h.Library.AvailableTags(userID, bookID)
	if err != nil {
		return serviceError(c, err, "books.get")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"book":           book,
		"book_tags":      bookTags,
		"available_tags": availableTags,
	})
}

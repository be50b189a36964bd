package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"libris/internal/services"
	"libris/internal/utils"
)

// LibraryHandler handles per-user shelf and tag routes. Every route carries
// :user_id and is checked against the session before any read or write.
type LibraryHandler struct {
	Library *services.LibraryService
	Logger  *zap.Logger
}

type tagRequest struct {
	Name string `json:"name"`
}

// ListBooks handles GET /api/users/:user_id/books
func (h *LibraryHandler) ListBooks(c *fiber.Ctx) error {
	userID, err := ownUserID(c, "library.books.list")
	if err != nil {
		return err
	}

	books, err := h.Library.BooksForUser(userID)
	if err != nil {
		return serviceError(c, err, "library.books.list")
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"books": books})
}

// AddBook handles POST /api/users/:user_id/books/:book_id
func (h *LibraryHandler) AddBook(c *fiber.Ctx) error {
	userID, err := ownUserID(c, "library.books.add")
	if err != nil {
		return err
	}
	bookID, ok := paramUint(c, "book_id")
	if !ok {
		return utils.ErrorResponse(c, "Invalid book id", fiber.StatusBadRequest, "library.books.add")
	}

	if err := h.Library.AddBookToShelf(userID, bookID); err != nil {
		return serviceError(c, err, "library.books.add")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"ok": true})
}

// RemoveBook handles DELETE /api/users/:user_id/books/:book_id
func (h *LibraryHandler) RemoveBook(c *fiber.Ctx) error {
	userID, err := ownUserID(c, "library.books.remove")
	if err != nil {
		return err
	}
	bookID, ok := paramUint(c, "book_id")
	if !ok {
		return utils.ErrorResponse(c, "Invalid book id", fiber.StatusBadRequest, "library.books.remove")
	}

	if err := h.Library.RemoveBookFromShelf(userID, bookID); err != nil {
		return serviceError(c, err, "library.books.remove")
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
}

// ListTags handles GET /api/users/:user_id/tags
func (h *LibraryHandler) ListTags(c *fiber.Ctx) error {
	userID, err := ownUserID(c, "library.tags.list")
	if err != nil {
		return err
	}

	tags, err := h.Library.TagsForUser(userID)
	if err != nil {
		return serviceError(c, err, "library.tags.list")
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"tags": tags})
}

// AddTag handles POST /api/users/:user_id/tags
func (h *LibraryHandler) AddTag(c *fiber.Ctx) error {
	userID, err := ownUserID(c, "library.tags.add")
	if err != nil {
		return err
	}

	var req tagRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, "Invalid request body", fiber.StatusBadRequest, "library.tags.add")
	}
	if req.Name == "" {
		return utils.ErrorResponse(c, "name is required", fiber.StatusBadRequest, "library.tags.add")
	}

	tag, err := h.Library.AddTagToUser(userID, req.Name)
	if err != nil {
		return serviceError(c, err, "library.tags.add")
	}
	return c.Status(fiber.StatusCreated).JSON(tag)
}

// RemoveTag handles DELETE /api/users/:user_id/tags/:tag_id
func (h *LibraryHandler) RemoveTag(c *fiber.Ctx) error {
	userID, err := ownUserID(c, "library.tags.remove")
	if err != nil {
		return err
	}
	tagID, ok := paramUint(c, "tag_id")
	if !ok {
		return utils.ErrorResponse(c, "Invalid tag id", fiber.StatusBadRequest, "library.tags.remove")
	}

	if err := h.Library.RemoveTagFromUser(userID, tagID); err != nil {
		return serviceError(c, err, "library.tags.remove")
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
}

// BooksByTag handles GET /api/users/:user_id/tags/:tag_id/books
func (h *LibraryHandler) BooksByTag(c *fiber.Ctx) error {
	userID, err := ownUserID(c, "library.tags.books")
	if err != nil {
		return err
	}
	tagID, ok := paramUint(c, "tag_id")
	if !ok {
		return utils.ErrorResponse(c, "Invalid tag id", fiber.StatusBadRequest, "library.tags.books")
	}

	tag, books, err := h.Library.BooksForUserByTag(userID, tagID)
	if err != nil {
		return serviceError(c, err, "library.tags.books")
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"tag": tag, "books": books})
}

// TagBook handles POST /api/users/:user_id/books/:book_id/tags/:tag_id
func (h *LibraryHandler) TagBook(c *fiber.Ctx) error {
	userID, err := ownUserID(c, "library.books.tag")
	if err != nil {
		return err
	}
	bookID, ok := paramUint(c, "book_id")
	if !ok {
		return utils.ErrorResponse(c, "Invalid book id", fiber.StatusBadRequest, "library.books.tag")
	}
	tagID, ok := paramUint(c, "tag_id")
	if !ok {
		return utils.ErrorResponse(c, "Invalid tag id", fiber.StatusBadRequest, "library.books.tag")
	}

	if err := h.Library.TagBook(userID, bookID, tagID); err != nil {
		h.Logger.Debug("tag application declined",
			zap.Uint("user_id", userID), zap.Uint("book_id", bookID), zap.Uint("tag_id", tagID),
			zap.Error(err))
		return serviceError(c, err, "library.books.tag")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"ok": true})
}

// UntagBook handles DELETE /api/users/:user_id/books/:book_id/tags/:tag_id
func (h *LibraryHandler) UntagBook(c *fiber.Ctx) error {
	userID, err := ownUserID(c, "library.books.untag")
	if err != nil {
		return err
	}
	bookID, ok := paramUint(c, "book_id")
	if !ok {
		return utils.ErrorResponse(c, "Invalid book id", fiber.StatusBadRequest, "library.books.untag")
	}
	tagID, ok := paramUint(c, "tag_id")
	if !ok {
		return utils.ErrorResponse(c, "Invalid tag id", fiber.StatusBadRequest, "library.books.untag")
	}

	if err := h.Library.UntagBook(userID, bookID, tagID); err != nil {
		return serviceError(c, err, "library.books.untag")
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
}

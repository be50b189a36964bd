package services

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"libris/internal/models"
)

// LibraryService manages per-user shelves and tag vocabularies. Every
// operation takes the acting user id explicitly; there is no ambient user
// state below the HTTP layer.
type LibraryService struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewLibraryService creates a LibraryService.
func NewLibraryService(db *gorm.DB, logger *zap.Logger) *LibraryService {
	return &LibraryService{db: db, logger: logger}
}

// BooksForUser returns the user's shelf in the order books were added.
func (s *LibraryService) BooksForUser(userID uint) ([]models.Book, error) {
	var books []models.Book
	err := s.db.
		Joins("JOIN users_books ON users_books.book_id = books.id").
		Where("users_books.user_id = ?", userID).
		Order("users_books.created_date").
		Preload("Authors").
		Find(&books).Error
	if err != nil {
		return nil, err
	}
	return books, nil
}

// TagsForUser returns the user's tag vocabulary ordered by name.
func (s *LibraryService) TagsForUser(userID uint) ([]models.Tag, error) {
	var tags []models.Tag
	err := s.db.
		Joins("JOIN users_tags ON users_tags.tag_id = tags.id").
		Where("users_tags.user_id = ?", userID).
		Order("tags.name").
		Find(&tags).Error
	if err != nil {
		return nil, err
	}
	return tags, nil
}

// TagsOnBook returns the tags the user has applied to one book.
func (s *LibraryService) TagsOnBook(userID, bookID uint) ([]models.Tag, error) {
	var tags []models.Tag
	err := s.db.
		Joins("JOIN users_books_tags ON users_books_tags.tag_id = tags.id").
		Where("users_books_tags.user_id = ? AND users_books_tags.book_id = ?", userID, bookID).
		Order("tags.name").
		Find(&tags).Error
	if err != nil {
		return nil, err
	}
	return tags, nil
}

// AvailableTags returns the user's tags not yet applied to the given book.
// The book detail view offers these for quick tagging.
func (s *LibraryService) AvailableTags(userID, bookID uint) ([]models.Tag, error) {
	applied := s.db.Model(&models.UserBookTag{}).
		Select("tag_id").
		Where("user_id = ? AND book_id = ?", userID, bookID)

	var tags []models.Tag
	err := s.db.
		Joins("JOIN users_tags ON users_tags.tag_id = tags.id").
		Where("users_tags.user_id = ?", userID).
		Where("tags.id NOT IN (?)", applied).
		Order("tags.name").
		Find(&tags).Error
	if err != nil {
		return nil, err
	}
	return tags, nil
}

// BooksForUserByTag returns the user's shelf filtered to books carrying the
// given tag.
func (s *LibraryService) BooksForUserByTag(userID, tagID uint) (*models.Tag, []models.Book, error) {
	var tag models.Tag
	err := s.db.
		Joins("JOIN users_tags ON users_tags.tag_id = tags.id").
		Where("users_tags.user_id = ? AND tags.id = ?", userID, tagID).
		First(&tag).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("tag %d for user %d: %w", tagID, userID, ErrNotFound)
		}
		return nil, nil, err
	}

	var books []models.Book
	err = s.db.
		Joins("JOIN users_books_tags ON users_books_tags.book_id = books.id").
		Where("users_books_tags.user_id = ? AND users_books_tags.tag_id = ?", userID, tagID).
		Order("books.title").
		Preload("Authors").
		Find(&books).Error
	if err != nil {
		return nil, nil, err
	}
	return &tag, books, nil
}

// AddBookToShelf links a catalog book to the user's shelf. Linking an
// already-shelved book is a no-op.
func (s *LibraryService) AddBookToShelf(userID, bookID uint) error {
	var book models.Book
	if err := s.db.First(&book, bookID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("book %d: %w", bookID, ErrNotFound)
		}
		return err
	}

	link := models.UserBook{UserID: userID, BookID: bookID}
	if err := s.db.Where(&link).FirstOrCreate(&link).Error; err != nil {
		return err
	}

	s.logger.Info("book shelved", zap.Uint("user_id", userID), zap.Uint("book_id", bookID))
	return nil
}

// RemoveBookFromShelf unlinks a book from the user's shelf and removes every
// tag the user had applied to it. The catalog row itself is untouched.
func (s *LibraryService) RemoveBookFromShelf(userID, bookID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND book_id = ?", userID, bookID).
			Delete(&models.UserBook{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("book %d on shelf of user %d: %w", bookID, userID, ErrNotFound)
		}

		// Tag applications are meaningless without the shelf link.
		if err := tx.Where("user_id = ? AND book_id = ?", userID, bookID).
			Delete(&models.UserBookTag{}).Error; err != nil {
			return err
		}

		s.logger.Info("book unshelved", zap.Uint("user_id", userID), zap.Uint("book_id", bookID))
		return nil
	})
}

// AddTagToUser ensures a tag with the given name exists and links it to the
// user's vocabulary. Both steps are idempotent.
func (s *LibraryService) AddTagToUser(userID uint, name string) (*models.Tag, error) {
	if name == "" {
		return nil, fmt.Errorf("tag name is required")
	}

	tag, err := s.FindOrCreateTag(name)
	if err != nil {
		return nil, err
	}

	link := models.UserTag{UserID: userID, TagID: tag.ID}
	if err := s.db.Where(&link).FirstOrCreate(&link).Error; err != nil {
		return nil, err
	}

	return tag, nil
}

// FindOrCreateTag resolves a tag name to its store-wide row, creating it when
// absent. A concurrent creation of the same name is retried as a lookup.
func (s *LibraryService) FindOrCreateTag(name string) (*models.Tag, error) {
	tag := models.Tag{Name: name}
	if err := s.db.Where("name = ?", name).FirstOrCreate(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if err := s.db.Where("name = ?", name).First(&tag).Error; err != nil {
				return nil, err
			}
			return &tag, nil
		}
		return nil, err
	}
	return &tag, nil
}

// RemoveTagFromUser removes a tag from the user's vocabulary along with
// every application of that tag to the user's books. The tag row stays; other
// users may share it.
func (s *LibraryService) RemoveTagFromUser(userID, tagID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND tag_id = ?", userID, tagID).
			Delete(&models.UserTag{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("tag %d for user %d: %w", tagID, userID, ErrNotFound)
		}

		if err := tx.Where("user_id = ? AND tag_id = ?", userID, tagID).
			Delete(&models.UserBookTag{}).Error; err != nil {
			return err
		}

		s.logger.Info("tag removed from user", zap.Uint("user_id", userID), zap.Uint("tag_id", tagID))
		return nil
	})
}

// TagBook applies one of the user's tags to one of the user's shelved books.
// Both preconditions are re-checked here; a stale client request must not
// create a dangling application.
func (s *LibraryService) TagBook(userID, bookID, tagID uint) error {
	onShelf, err := s.userHasBook(userID, bookID)
	if err != nil {
		return err
	}
	inVocabulary, err := s.userHasTag(userID, tagID)
	if err != nil {
		return err
	}
	if !onShelf || !inVocabulary {
		return fmt.Errorf("tag %d on book %d for user %d: %w", tagID, bookID, userID, ErrNotAuthorized)
	}

	link := models.UserBookTag{UserID: userID, BookID: bookID, TagID: tagID}
	return s.db.Where(&link).FirstOrCreate(&link).Error
}

// UntagBook removes one tag application. Removing an absent application
// returns ErrNotFound.
func (s *LibraryService) UntagBook(userID, bookID, tagID uint) error {
	res := s.db.Where("user_id = ? AND book_id = ? AND tag_id = ?", userID, bookID, tagID).
		Delete(&models.UserBookTag{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("tag %d on book %d for user %d: %w", tagID, bookID, userID, ErrNotFound)
	}
	return nil
}

func (s *LibraryService) userHasBook(userID, bookID uint) (bool, error) {
	var count int64
	err := s.db.Model(&models.UserBook{}).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		Count(&count).Error
	return count > 0, err
}

func (s *LibraryService) userHasTag(userID, tagID uint) (bool, error) {
	var count int64
	err := s.db.Model(&models.UserTag{}).
		Where("user_id = ? AND tag_id = ?", userID, tagID).
		Count(&count).Error
	return count > 0, err
}

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"libris/internal/models"
	"libris/internal/openlibrary"
)

var booksAddedTotal = prometheus.NewCounter(prometheus.CounterOpts{
	Name: "new_books_added_total",
	Help: "Number of books added to the catalog from Open Library lookups.",
})

func init() {
	prometheus.MustRegister(booksAddedTotal)
}

// sentinelPublishDate stands in for publish dates that could not be parsed.
// Catalog rows always carry a date so ordering and display never branch on
// nil.
var sentinelPublishDate = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

// publishDateFormats are tried in order. Open Library editions carry free
// text dates; these cover the common shapes.
var publishDateFormats = []string{
	"January 2, 2006",
	"January 2006",
	"2006-01-02",
	"2006-01",
	"2006",
	"Jan 2, 2006",
	"2 January 2006",
	"02 January 2006",
	"January 2, 2006.",
}

// CatalogService owns the book catalog. It resolves ISBNs against the local
// store first and falls back to the Open Library client, normalizing the
// fetched edition into catalog rows.
type CatalogService struct {
	db     *gorm.DB
	client openlibrary.Client
	logger *zap.Logger
}

// NewCatalogService creates a CatalogService.
func NewCatalogService(db *gorm.DB, client openlibrary.Client, logger *zap.Logger) *CatalogService {
	return &CatalogService{db: db, client: client, logger: logger}
}

// bookPreloads are the association loads for a fully hydrated book.
var bookPreloads = []string{
	"Authors", "Publishers", "Subjects", "SubjectPlaces", "SubjectPeople", "SubjectTimes",
}

func withBookPreloads(db *gorm.DB) *gorm.DB {
	for _, p := range bookPreloads {
		db = db.Preload(p)
	}
	return db
}

// FindBookByISBN loads a book and its associations by ISBN. Returns
// ErrNotFound when the catalog has no row for the ISBN.
func (s *CatalogService) FindBookByISBN(isbn string) (*models.Book, error) {
	var book models.Book
	err := withBookPreloads(s.db).Where("isbn = ?", isbn).First(&book).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("book isbn %s: %w", isbn, ErrNotFound)
		}
		return nil, err
	}
	return &book, nil
}

// GetBook loads a book and its associations by id.
func (s *CatalogService) GetBook(bookID uint) (*models.Book, error) {
	var book models.Book
	err := withBookPreloads(s.db).First(&book, bookID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("book %d: %w", bookID, ErrNotFound)
		}
		return nil, err
	}
	return &book, nil
}

// AddBook resolves an ISBN to a catalog book, creating it from Open Library
// when it is not yet known locally. The store is consulted first; a hit
// short-circuits without any outbound call.
func (s *CatalogService) AddBook(ctx context.Context, isbn string) (*models.Book, error) {
	book, err := s.FindBookByISBN(isbn)
	if err == nil {
		return book, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	edition, err := s.client.Lookup(ctx, isbn)
	if err != nil {
		return nil, err
	}

	book = s.BuildBook(edition, isbn)
	if err := s.CreateBook(book); err != nil {
		// Lost a race with a concurrent add of the same ISBN; the row that
		// won is just as good.
		if errors.Is(err, ErrDuplicateISBN) {
			s.logger.Debug("concurrent book insert, reusing existing row", zap.String("isbn", isbn))
			return s.FindBookByISBN(isbn)
		}
		return nil, err
	}

	s.logger.Info("book added to catalog",
		zap.String("isbn", isbn),
		zap.Uint("book_id", book.ID),
		zap.String("title", book.Title))
	return book, nil
}

// CreateBook persists a built book graph: the row itself, any fresh attribute
// rows and the join rows, all in one create. A unique-key conflict on the
// ISBN surfaces as ErrDuplicateISBN.
func (s *CatalogService) CreateBook(book *models.Book) error {
	if err := s.db.Create(book).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("book isbn %s: %w", book.ISBN, ErrDuplicateISBN)
		}
		return err
	}
	booksAddedTotal.Inc()
	return nil
}

// BuildBook normalizes a fetched edition into a Book graph. Attribute names
// that already exist in the store are attached as their existing rows so the
// caller's single Create persists only what is new. BuildBook itself never
// writes.
func (s *CatalogService) BuildBook(edition *openlibrary.Edition, isbn string) *models.Book {
	book := &models.Book{
		ISBN:           isbn,
		OpenLibraryID:  edition.Key,
		OpenLibraryURL: edition.URL,
		Title:          edition.Title,
		PublishDate:    parsePublishDate(edition.PublishDate),
	}

	if edition.NumberOfPages > 0 {
		pages := edition.NumberOfPages
		book.NumberOfPages = &pages
	}

	if edition.Cover != nil {
		book.OpenLibraryImages = datatypes.JSONMap{
			"small":  edition.Cover.Small,
			"medium": edition.Cover.Medium,
			"large":  edition.Cover.Large,
		}
	}

	for _, name := range uniqueNames(edition.Authors) {
		var author models.Author
		if s.findByName(&author, name) {
			book.Authors = append(book.Authors, author)
		} else {
			book.Authors = append(book.Authors, models.Author{Name: name})
		}
	}
	for _, name := range uniqueNames(edition.Publishers) {
		var publisher models.Publisher
		if s.findByName(&publisher, name) {
			book.Publishers = append(book.Publishers, publisher)
		} else {
			book.Publishers = append(book.Publishers, models.Publisher{Name: name})
		}
	}
	for _, name := range uniqueNames(edition.Subjects) {
		var subject models.Subject
		if s.findByName(&subject, name) {
			book.Subjects = append(book.Subjects, subject)
		} else {
			book.Subjects = append(book.Subjects, models.Subject{Name: name})
		}
	}
	for _, name := range uniqueNames(edition.SubjectPlaces) {
		var place models.SubjectPlace
		if s.findByName(&place, name) {
			book.SubjectPlaces = append(book.SubjectPlaces, place)
		} else {
			book.SubjectPlaces = append(book.SubjectPlaces, models.SubjectPlace{Name: name})
		}
	}
	for _, name := range uniqueNames(edition.SubjectPeople) {
		var person models.SubjectPerson
		if s.findByName(&person, name) {
			book.SubjectPeople = append(book.SubjectPeople, person)
		} else {
			book.SubjectPeople = append(book.SubjectPeople, models.SubjectPerson{Name: name})
		}
	}
	for _, name := range uniqueNames(edition.SubjectTimes) {
		var st models.SubjectTime
		if s.findByName(&st, name) {
			book.SubjectTimes = append(book.SubjectTimes, st)
		} else {
			book.SubjectTimes = append(book.SubjectTimes, models.SubjectTime{Name: name})
		}
	}

	return book
}

// uniqueNames collapses repeated names within one list kind, preserving
// order. Open Library payloads occasionally repeat a contributor; two fresh
// rows with the same unique name would make the insert fail.
func uniqueNames(refs []openlibrary.NamedRef) []string {
	seen := make(map[string]struct{}, len(refs))
	names := make([]string, 0, len(refs))
	for _, ref := range refs {
		if _, ok := seen[ref.Name]; ok {
			continue
		}
		seen[ref.Name] = struct{}{}
		names = append(names, ref.Name)
	}
	return names
}

// findByName loads the attribute row with the given name into dest and
// reports whether it exists.
func (s *CatalogService) findByName(dest interface{}, name string) bool {
	err := s.db.Where("name = ?", name).First(dest).Error
	return err == nil
}

// parsePublishDate parses an Open Library publish date string. Unparseable
// input yields the 1900-01-01 sentinel rather than an error.
func parsePublishDate(raw string) time.Time {
	for _, layout := range publishDateFormats {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC()
		}
	}
	return sentinelPublishDate
}

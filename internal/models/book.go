package models

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

// Book represents a physical book cataloged from Open Library.
// Books are shared store-wide: many users can hold the same row in their
// collections, so a book is never mutated after creation.
type Book struct {
	ID                uint              `json:"id" gorm:"primaryKey;autoIncrement"`
	ISBN              string            `json:"isbn" gorm:"uniqueIndex;size:32;not null"`
	OpenLibraryID     string            `json:"open_library_id" gorm:"size:255;not null"`
	OpenLibraryImages datatypes.JSONMap `json:"open_library_images,omitempty"`
	OpenLibraryURL    string            `json:"open_library_url,omitempty"`
	NumberOfPages     *int              `json:"number_of_pages,omitempty"`
	PublishDate       time.Time         `json:"publish_date"`
	Title             string            `json:"title" gorm:"not null"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`

	Authors        []Author        `json:"authors,omitempty" gorm:"many2many:books_authors;"`
	Publishers     []Publisher     `json:"publishers,omitempty" gorm:"many2many:books_publishers;"`
	Subjects       []Subject       `json:"subjects,omitempty" gorm:"many2many:books_subjects;"`
	SubjectPlaces  []SubjectPlace  `json:"subject_places,omitempty" gorm:"many2many:books_subject_places;"`
	SubjectPeople  []SubjectPerson `json:"subject_people,omitempty" gorm:"many2many:books_subject_people;"`
	SubjectTimes   []SubjectTime   `json:"subject_times,omitempty" gorm:"many2many:books_subject_times;"`
}

// CoverImageURL returns the cover URL stored for the given size key
// ("small", "medium", "large"), or "" when no cover of that size exists.
func (b *Book) CoverImageURL(size string) string {
	if b.OpenLibraryImages == nil {
		return ""
	}
	if url, ok := b.OpenLibraryImages[size].(string); ok {
		return url
	}
	return ""
}

// AuthorNames returns the authors as a single comma-separated string.
func (b *Book) AuthorNames() string {
	names := make([]string, 0, len(b.Authors))
	for _, a := range b.Authors {
		names = append(names, a.Name)
	}
	return strings.Join(names, ", ")
}

// PublisherNames returns the publishers as a single comma-separated string.
func (b *Book) PublisherNames() string {
	names := make([]string, 0, len(b.Publishers))
	for _, p := range b.Publishers {
		names = append(names, p.Name)
	}
	return strings.Join(names, ", ")
}

// Author is the author of a book. Name is unique store-wide; the same row is
// shared by every book that references it.
type Author struct {
	ID   uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	Name string `json:"name" gorm:"uniqueIndex;size:255;not null"`
}

// Publisher is the publisher of a book, deduplicated by name.
type Publisher struct {
	ID   uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	Name string `json:"name" gorm:"uniqueIndex;size:255;not null"`
}

// Subject is a topic a book is about, deduplicated by name.
type Subject struct {
	ID   uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	Name string `json:"name" gorm:"uniqueIndex;size:255;not null"`
}

// SubjectPlace is a place a book is about, deduplicated by name.
type SubjectPlace struct {
	ID   uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	Name string `json:"name" gorm:"uniqueIndex;size:255;not null"`
}

// SubjectPerson is a person a book is about, deduplicated by name.
type SubjectPerson struct {
	ID   uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	Name string `json:"name" gorm:"uniqueIndex;size:255;not null"`
}

// SubjectTime is a time period a book is about, deduplicated by name.
type SubjectTime struct {
	ID   uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	Name string `json:"name" gorm:"uniqueIndex;size:255;not null"`
}

// TableName overrides the table name for Book
func (Book) TableName() string {
	return "books"
}

// TableName overrides the table name for Author
func (Author) TableName() string {
	return "authors"
}

// TableName overrides the table name for Publisher
func (Publisher) TableName() string {
	return "publishers"
}

// TableName overrides the table name for Subject
func (Subject) TableName() string {
	return "subjects"
}

// TableName overrides the table name for SubjectPlace
func (SubjectPlace) TableName() string {
	return "subject_places"
}

// TableName overrides the table name for SubjectPerson
func (SubjectPerson) TableName() string {
	return "subject_people"
}

// TableName overrides the table name for SubjectTime
func (SubjectTime) TableName() string {
	return "subject_times"
}

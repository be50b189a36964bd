package models

import (
	"time"
)

// User represents a user of the application. The username doubles as the
// login identity; Password holds a bcrypt hash, never the plaintext.
type User struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Username  string    `json:"username" gorm:"uniqueIndex;size:255;not null"`
	Password  string    `json:"-" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Tag is a user-defined label for books. The name is unique store-wide so
// multiple users can share the row, but a tag only "belongs" to a user
// through a UserTag membership row.
type Tag struct {
	ID   uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	Name string `json:"name" gorm:"uniqueIndex;size:255;not null"`
}

// UserBook relates users to the books in their collection.
type UserBook struct {
	UserID      uint      `json:"user_id" gorm:"primaryKey;autoIncrement:false"`
	BookID      uint      `json:"book_id" gorm:"primaryKey;autoIncrement:false"`
	CreatedDate time.Time `json:"created_date" gorm:"autoCreateTime"`
}

// UserTag relates users to the tags in their vocabulary.
type UserTag struct {
	UserID uint `json:"user_id" gorm:"primaryKey;autoIncrement:false"`
	TagID  uint `json:"tag_id" gorm:"primaryKey;autoIncrement:false"`
}

// UserBookTag relates a user, a book and a tag: the user has applied the tag
// to that book. Rows only exist while the (user, book) and (user, tag)
// memberships both exist; the compound mutations in the library service
// delete them when either membership is removed.
type UserBookTag struct {
	UserID uint `json:"user_id" gorm:"primaryKey;autoIncrement:false"`
	BookID uint `json:"book_id" gorm:"primaryKey;autoIncrement:false"`
	TagID  uint `json:"tag_id" gorm:"primaryKey;autoIncrement:false"`
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}

// TableName overrides the table name for Tag
func (Tag) TableName() string {
	return "tags"
}

// TableName overrides the table name for UserBook
func (UserBook) TableName() string {
	return "users_books"
}

// TableName overrides the table name for UserTag
func (UserTag) TableName() string {
	return "users_tags"
}

// TableName overrides the table name for UserBookTag
func (UserBookTag) TableName() string {
	return "users_books_tags"
}

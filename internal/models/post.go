// Package models defines the domain types for inkwell.
package models

import "time"

// UncategorizedName is the sentinel category for posts that live at the
// root of the posts folder with no front matter category.
const UncategorizedName = "uncategorized"

// ObservedPost is a post derived fresh from a filesystem scan. It exists
// only for the duration of one scan pass and is never stored directly.
type ObservedPost struct {
	Title      string
	Slug       string
	Content    string
	RawContent string
	Summary    string
	CoverImage string
	Category   string
	Tags       []string
	FilePath   string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Post is the persisted article record.
type Post struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Slug       string    `json:"slug"`
	Content    string    `json:"content,omitempty"`
	Summary    string    `json:"summary"`
	CoverImage string    `json:"cover_image"`
	Published  bool      `json:"is_published"`
	FromFile   bool      `json:"is_from_file"`
	FilePath   string    `json:"-"`
	ViewCount  int       `json:"view_count"`
	Tags       []string  `json:"tags,omitempty"`
	AuthorID   *int64    `json:"-"`
	Author     string    `json:"author,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Categories []Category `json:"categories,omitempty"`
}

// Category groups posts and carries display metadata.
type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Color       string    `json:"color"`
	Icon        string    `json:"icon"`
	SortOrder   int       `json:"order"`
	CreatedAt   time.Time `json:"-"`
}

// User is a registered account. PasswordHash never leaves the server.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Avatar       string    `json:"avatar"`
	Bio          string    `json:"bio"`
	IsAdmin      bool      `json:"is_admin"`
	Theme        string    `json:"theme"`
	CreatedAt    time.Time `json:"created_at"`
}

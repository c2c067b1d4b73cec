package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// RegisterRequest is the body for POST /auth/register.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate validates the registration payload.
func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validation.Length(3, 80)),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 128)),
	)
}

// LoginRequest is the body for POST /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate validates the login payload.
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

// ProfileRequest is the body for PUT /profile.
type ProfileRequest struct {
	Avatar string `json:"avatar"`
	Bio    string `json:"bio"`
}

// Validate validates the profile payload.
func (r ProfileRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Avatar, validation.Length(0, 256)),
		validation.Field(&r.Bio, validation.Length(0, 2000)),
	)
}

// ThemeRequest is the body for PUT /theme.
type ThemeRequest struct {
	Theme string `json:"theme"`
}

// PostRequest is the body for creating or updating a post in the editor.
type PostRequest struct {
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	Summary     string   `json:"summary"`
	CoverImage  string   `json:"cover_image"`
	Published   *bool    `json:"is_published"`
	Tags        []string `json:"tags"`
	CategoryIDs []int64  `json:"category_ids"`
}

// Validate validates the post payload.
func (r PostRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Content, validation.Required),
	)
}

// CategoryRequest is the body for creating or updating a category.
type CategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
	Icon        string `json:"icon"`
	SortOrder   int    `json:"order"`
}

// Validate validates the category payload.
func (r CategoryRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 50)),
		validation.Field(&r.Color, validation.Length(0, 7)),
	)
}

// PreviewRequest is the body for POST /markdown/preview.
type PreviewRequest struct {
	Content string `json:"content"`
}

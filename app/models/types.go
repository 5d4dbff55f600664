package models

import (
	"fmt"
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
)

// Status is the publication state of a post.
type Status string

const (
	StatusDraft     Status = "DF"
	StatusPublished Status = "PB"
)

// Post represents a blog post.
type Post struct {
	ID        int       `json:"id"`
	Title     string    `json:"title" validate:"required,max=250"`
	Slug      string    `json:"slug" validate:"required,max=250,slug"`
	Author    string    `json:"author" validate:"required,max=150"`
	Body      string    `json:"body"`
	Publish   time.Time `json:"publish" validate:"required"`
	Status    Status    `json:"status" validate:"oneof=DF PB"`
	CreatedAt time.Time `json:"created"`
	UpdatedAt time.Time `json:"updated"`
}

// Comment represents a reader comment on a post.
type Comment struct {
	ID        int       `json:"id"`
	PostID    int       `json:"post_id" validate:"gt=0"`
	Name      string    `json:"name" validate:"required,max=80"`
	Email     string    `json:"email" validate:"required,email,max=254"`
	Body      string    `json:"body" validate:"required"`
	CreatedAt time.Time `json:"created"`
	UpdatedAt time.Time `json:"updated"`
	Active    bool      `json:"active"`
	Post      *Post     `json:"-" validate:"-"`
}

var slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	err := v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})
	if err != nil {
		panic(fmt.Sprintf("models: register slug validation: %v", err))
	}
	return v
}

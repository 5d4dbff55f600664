package forms

import (
	"net/url"

	"blog/app/models"
)

// CommentForm is the reader-submitted comment payload.
type CommentForm struct {
	Name  string `form:"name" validate:"required,max=80"`
	Email string `form:"email" validate:"required,email,max=254"`
	Body  string `form:"body" validate:"required"`

	Errors Errors `form:"-" validate:"-"`
}

// NewCommentForm binds submitted values.
func NewCommentForm(values url.Values) *CommentForm {
	return &CommentForm{
		Name:   value(values, "name"),
		Email:  value(values, "email"),
		Body:   value(values, "body"),
		Errors: Errors{},
	}
}

// Valid validates the form and records errors on it.
func (f *CommentForm) Valid() bool {
	f.Errors = check(f)
	return !f.Errors.Any()
}

// Comment builds an unsaved, active comment from a valid form.
func (f *CommentForm) Comment() *models.Comment {
	return &models.Comment{
		Name:   f.Name,
		Email:  f.Email,
		Body:   f.Body,
		Active: true,
	}
}

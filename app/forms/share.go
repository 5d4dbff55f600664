package forms

import "net/url"

// EmailPostForm is the payload for recommending a post by email.
type EmailPostForm struct {
	Name     string `form:"name" validate:"required,max=25"`
	Email    string `form:"email" validate:"required,email,max=254"`
	To       string `form:"to" validate:"required,email,max=254"`
	Comments string `form:"comments"`

	Errors Errors `form:"-" validate:"-"`
}

// NewEmailPostForm binds submitted values.
func NewEmailPostForm(values url.Values) *EmailPostForm {
	return &EmailPostForm{
		Name:     value(values, "name"),
		Email:    value(values, "email"),
		To:       value(values, "to"),
		Comments: value(values, "comments"),
		Errors:   Errors{},
	}
}

// Valid validates the form and records errors on it.
func (f *EmailPostForm) Valid() bool {
	f.Errors = check(f)
	return !f.Errors.Any()
}

package models

import (
	"errors"
	"time"
)

// ErrPostReassigned is returned when a comment already bound to a post is moved to another.
var ErrPostReassigned = errors.New("comment already belongs to another post")

// Validate checks if the comment meets all validation requirements
func (c *Comment) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}

	if c.CreatedAt.IsZero() {
		return errors.New("created_at cannot be zero")
	}

	return nil
}

// BeforeCreate sets up any necessary fields before creation
func (c *Comment) BeforeCreate() {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = c.CreatedAt
	}
}

// SetPost sets the parent post and updates the PostID.
// The owning post cannot change once set.
func (c *Comment) SetPost(post *Post) error {
	if post == nil {
		return errors.New("post cannot be nil")
	}
	if c.PostID != 0 && c.PostID != post.ID {
		return ErrPostReassigned
	}

	c.Post = post
	c.PostID = post.ID
	return nil
}

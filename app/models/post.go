package models

import (
	"errors"
	"fmt"
	"time"
)

// Validate checks if the post meets all validation requirements
func (p *Post) Validate() error {
	if err := validate.Struct(p); err != nil {
		return err
	}

	if p.CreatedAt.IsZero() {
		return errors.New("created_at cannot be zero")
	}

	return nil
}

// BeforeCreate sets up any necessary fields before creation
func (p *Post) BeforeCreate() {
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}
	if p.Publish.IsZero() {
		p.Publish = now
	}
	if p.Status == "" {
		p.Status = StatusDraft
	}
}

// IsPublished reports whether readers may see the post at the given instant.
func (p *Post) IsPublished(now time.Time) bool {
	return p.Status == StatusPublished && !p.Publish.After(now)
}

// PublishDate returns the calendar date of the publish timestamp in loc.
func (p *Post) PublishDate(loc *time.Location) (year int, month time.Month, day int) {
	if loc == nil {
		loc = time.UTC
	}
	return p.Publish.In(loc).Date()
}

// OnDate reports whether the post was published on the given calendar date in loc.
func (p *Post) OnDate(year int, month time.Month, day int, loc *time.Location) bool {
	y, m, d := p.PublishDate(loc)
	return y == year && m == month && d == day
}

// AbsoluteURL returns the canonical detail path of the post.
func (p *Post) AbsoluteURL(loc *time.Location) string {
	y, m, d := p.PublishDate(loc)
	return fmt.Sprintf("/%d/%d/%d/%s/", y, int(m), d, p.Slug)
}

// ShareURL returns the path of the share form for the post.
func (p *Post) ShareURL() string {
	return fmt.Sprintf("/%d/share/", p.ID)
}

// CommentURL returns the path comments are submitted to.
func (p *Post) CommentURL() string {
	return fmt.Sprintf("/%d/comment/", p.ID)
}

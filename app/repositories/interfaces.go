package repositories

import (
	"context"
	"errors"
	"sort"
	"time"

	"blog/app/models"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrDuplicateSlug = errors.New("slug already used for this publish date")
)

// Date is a calendar day evaluated in Location (UTC when nil).
type Date struct {
	Year     int
	Month    time.Month
	Day      int
	Location *time.Location
}

// PostFilter narrows the published post set. Zero fields are ignored.
// Only posts with status PUBLISHED and publish <= Now ever match.
type PostFilter struct {
	Now   time.Time
	ID    int
	Slug  string
	Date  *Date
	Limit int
}

// PostOrder selects the ordering of FindPublished results.
type PostOrder int

const (
	// NewestFirst orders by publish descending, then id descending.
	NewestFirst PostOrder = iota
	// OldestFirst orders by publish ascending, then id ascending.
	OldestFirst
)

// PostRepository defines the interface for post data access
type PostRepository interface {
	FindPublished(ctx context.Context, filter PostFilter, order PostOrder) ([]*models.Post, error)
	FindByID(ctx context.Context, id int) (*models.Post, error)
	Insert(ctx context.Context, post *models.Post) error
}

// CommentRepository defines the interface for comment data access
type CommentRepository interface {
	Insert(ctx context.Context, comment *models.Comment) error
	ListByPost(ctx context.Context, postID int, activeOnly bool) ([]*models.Comment, error)
}

// WithDefaults fills Now when unset.
func (f PostFilter) WithDefaults() PostFilter {
	if f.Now.IsZero() {
		f.Now = time.Now()
	}
	return f
}

// Match reports whether post satisfies the filter. Stores that cannot push
// the predicate down to a query use it after scanning.
func (f PostFilter) Match(post *models.Post) bool {
	if !post.IsPublished(f.Now) {
		return false
	}
	if f.ID != 0 && post.ID != f.ID {
		return false
	}
	if f.Slug != "" && post.Slug != f.Slug {
		return false
	}
	if f.Date != nil && !post.OnDate(f.Date.Year, f.Date.Month, f.Date.Day, f.Date.Location) {
		return false
	}
	return true
}

// SortPosts orders posts in place.
func SortPosts(posts []*models.Post, order PostOrder) {
	sort.SliceStable(posts, func(i, j int) bool {
		a, b := posts[i], posts[j]
		if !a.Publish.Equal(b.Publish) {
			if order == OldestFirst {
				return a.Publish.Before(b.Publish)
			}
			return a.Publish.After(b.Publish)
		}
		if order == OldestFirst {
			return a.ID < b.ID
		}
		return a.ID > b.ID
	})
}

// SortComments orders comments by creation, oldest first.
func SortComments(comments []*models.Comment) {
	sort.SliceStable(comments, func(i, j int) bool {
		a, b := comments[i], comments[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

// LimitPosts truncates posts to limit when limit is positive.
func LimitPosts(posts []*models.Post, limit int) []*models.Post {
	if limit > 0 && len(posts) > limit {
		return posts[:limit]
	}
	return posts
}

// SlugDateKey identifies a post for slug uniqueness within a publish date.
func SlugDateKey(post *models.Post, loc *time.Location) string {
	y, m, d := post.PublishDate(loc)
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Format("2006-01-02") + ":" + post.Slug
}

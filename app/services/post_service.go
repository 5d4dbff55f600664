package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"blog/app/models"
	"blog/app/pagination"
	"blog/app/repositories"
)

// ErrNotFound is returned when no visible post matches a lookup.
var ErrNotFound = repositories.ErrNotFound

// DefaultPostsPerPage is the list page size when none is configured.
const DefaultPostsPerPage = 3

// PostDetail is a published post with its active comments.
type PostDetail struct {
	Post     *models.Post
	Comments []*models.Comment
}

// PostService handles reader-facing retrieval of published posts
type PostService struct {
	postRepo    repositories.PostRepository
	commentRepo repositories.CommentRepository
	perPage     int
	loc         *time.Location
	now         func() time.Time
}

// NewPostService creates a new PostService. Dates in URLs are evaluated in loc.
func NewPostService(postRepo repositories.PostRepository, commentRepo repositories.CommentRepository, perPage int, loc *time.Location) *PostService {
	if perPage < 1 {
		perPage = DefaultPostsPerPage
	}
	if loc == nil {
		loc = time.UTC
	}
	return &PostService{
		postRepo:    postRepo,
		commentRepo: commentRepo,
		perPage:     perPage,
		loc:         loc,
		now:         time.Now,
	}
}

// WithClock replaces the time source used for the visibility predicate.
func (s *PostService) WithClock(now func() time.Time) *PostService {
	s.now = now
	return s
}

// Location returns the zone publish dates are evaluated in.
func (s *PostService) Location() *time.Location {
	return s.loc
}

// PerPage returns the list page size.
func (s *PostService) PerPage() int {
	return s.perPage
}

// ListPage returns the requested page of published posts, newest first.
// rawPage is the unparsed page token; invalid values fall back per pagination.Paginate.
func (s *PostService) ListPage(ctx context.Context, rawPage string) (pagination.Page[*models.Post], error) {
	posts, err := s.postRepo.FindPublished(ctx, repositories.PostFilter{Now: s.now()}, repositories.NewestFirst)
	if err != nil {
		return pagination.Page[*models.Post]{}, fmt.Errorf("failed to list posts: %w", err)
	}
	return pagination.Paginate(posts, s.perPage, rawPage), nil
}

// GetByDate returns the single published post with slug published on the
// given calendar day. Zero or several matches yield ErrNotFound, as does a
// date that does not exist on the calendar.
func (s *PostService) GetByDate(ctx context.Context, year, month, day int, slug string) (*models.Post, error) {
	if !validDate(year, month, day, s.loc) {
		return nil, ErrNotFound
	}
	filter := repositories.PostFilter{
		Now:  s.now(),
		Slug: slug,
		Date: &repositories.Date{Year: year, Month: time.Month(month), Day: day, Location: s.loc},
	}
	posts, err := s.postRepo.FindPublished(ctx, filter, repositories.NewestFirst)
	if err != nil {
		return nil, fmt.Errorf("failed to find post: %w", err)
	}
	if len(posts) != 1 {
		return nil, ErrNotFound
	}
	return posts[0], nil
}

// validDate reports whether year-month-day names a real calendar day.
func validDate(year, month, day int, loc *time.Location) bool {
	if year < 1 {
		return false
	}
	y, m, d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc).Date()
	return y == year && int(m) == month && d == day
}

// GetDetail returns a post by date and slug together with its active comments.
func (s *PostService) GetDetail(ctx context.Context, year, month, day int, slug string) (*PostDetail, error) {
	post, err := s.GetByDate(ctx, year, month, day, slug)
	if err != nil {
		return nil, err
	}
	comments, err := s.ActiveComments(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	return &PostDetail{Post: post, Comments: comments}, nil
}

// GetPublished returns a published post by id.
func (s *PostService) GetPublished(ctx context.Context, id int) (*models.Post, error) {
	if id < 1 {
		return nil, ErrNotFound
	}
	posts, err := s.postRepo.FindPublished(ctx, repositories.PostFilter{Now: s.now(), ID: id}, repositories.NewestFirst)
	if err != nil {
		return nil, fmt.Errorf("failed to find post %d: %w", id, err)
	}
	if len(posts) != 1 {
		return nil, ErrNotFound
	}
	return posts[0], nil
}

// Latest returns up to n of the newest published posts.
func (s *PostService) Latest(ctx context.Context, n int) ([]*models.Post, error) {
	posts, err := s.postRepo.FindPublished(ctx, repositories.PostFilter{Now: s.now(), Limit: n}, repositories.NewestFirst)
	if err != nil {
		return nil, fmt.Errorf("failed to list latest posts: %w", err)
	}
	return posts, nil
}

// ActiveComments returns the comments readers may see, oldest first.
func (s *PostService) ActiveComments(ctx context.Context, postID int) ([]*models.Comment, error) {
	comments, err := s.commentRepo.ListByPost(ctx, postID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to get comments: %w", err)
	}
	return comments, nil
}

// IsNotFound reports whether err means no visible post matched.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

package services

import (
	"context"
	"fmt"

	"blog/app/forms"
	"blog/app/models"
	"blog/app/repositories"

	log "github.com/sirupsen/logrus"
)

// CommentResult is the outcome of a comment submission. Comment is nil when
// the form failed validation; Form then carries the field errors.
type CommentResult struct {
	Post    *models.Post
	Form    *forms.CommentForm
	Comment *models.Comment
}

// CommentService handles reader comment submission
type CommentService struct {
	commentRepo repositories.CommentRepository
	posts       *PostService
	onCreate    func(*models.Comment)
}

// NewCommentService creates a new CommentService
func NewCommentService(commentRepo repositories.CommentRepository, posts *PostService) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		posts:       posts,
	}
}

// OnCreate registers a callback run after each stored comment.
func (s *CommentService) OnCreate(fn func(*models.Comment)) {
	s.onCreate = fn
}

// PublishedPost returns the published post comments may be added to.
func (s *CommentService) PublishedPost(ctx context.Context, postID int) (*models.Post, error) {
	return s.posts.GetPublished(ctx, postID)
}

// AddComment validates form and stores a new active comment on the published
// post postID. Nothing is stored when validation fails.
func (s *CommentService) AddComment(ctx context.Context, postID int, form *forms.CommentForm) (*CommentResult, error) {
	post, err := s.PublishedPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	return s.AddCommentTo(ctx, post, form)
}

// AddCommentTo is AddComment for a post already resolved by PublishedPost.
func (s *CommentService) AddCommentTo(ctx context.Context, post *models.Post, form *forms.CommentForm) (*CommentResult, error) {
	result := &CommentResult{Post: post, Form: form}
	if !form.Valid() {
		return result, nil
	}

	comment := form.Comment()
	if err := comment.SetPost(post); err != nil {
		return nil, err
	}
	comment.BeforeCreate()
	if err := comment.Validate(); err != nil {
		return nil, fmt.Errorf("invalid comment: %w", err)
	}
	if err := s.commentRepo.Insert(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to save comment: %w", err)
	}

	log.WithFields(log.Fields{"post_id": post.ID, "comment_id": comment.ID}).Info("[comment] comment created")
	if s.onCreate != nil {
		s.onCreate(comment)
	}
	result.Comment = comment
	return result, nil
}

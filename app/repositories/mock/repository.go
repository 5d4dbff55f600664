package mock

import (
	"context"
	"sync"
	"time"

	"blog/app/models"
	"blog/app/repositories"
)

// PostRepository is an in-memory repositories.PostRepository.
type PostRepository struct {
	posts  map[int]*models.Post
	slugs  map[string]int
	nextID int
	mutex  sync.RWMutex

	// Err, when set, is returned by every method.
	Err error
}

// CommentRepository is an in-memory repositories.CommentRepository.
type CommentRepository struct {
	comments map[int]*models.Comment
	nextID   int
	mutex    sync.RWMutex

	Err error
}

func NewPostRepository() *PostRepository {
	return &PostRepository{
		posts:  make(map[int]*models.Post),
		slugs:  make(map[string]int),
		nextID: 1,
	}
}

func (m *PostRepository) Clear() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.posts = make(map[int]*models.Post)
	m.slugs = make(map[string]int)
	m.nextID = 1
}

func NewCommentRepository() *CommentRepository {
	return &CommentRepository{
		comments: make(map[int]*models.Comment),
		nextID:   1,
	}
}

// PostRepository implementation
func (m *PostRepository) Insert(ctx context.Context, post *models.Post) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.Err != nil {
		return m.Err
	}

	post.BeforeCreate()
	key := repositories.SlugDateKey(post, time.UTC)
	if _, exists := m.slugs[key]; exists {
		return repositories.ErrDuplicateSlug
	}

	post.ID = m.nextID
	m.nextID++
	stored := *post
	m.posts[post.ID] = &stored
	m.slugs[key] = post.ID
	return nil
}

func (m *PostRepository) FindByID(ctx context.Context, id int) (*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}

	post, exists := m.posts[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	out := *post
	return &out, nil
}

func (m *PostRepository) FindPublished(ctx context.Context, filter repositories.PostFilter, order repositories.PostOrder) ([]*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}

	filter = filter.WithDefaults()
	posts := []*models.Post{}
	for _, post := range m.posts {
		if filter.Match(post) {
			out := *post
			posts = append(posts, &out)
		}
	}
	repositories.SortPosts(posts, order)
	return repositories.LimitPosts(posts, filter.Limit), nil
}

// CommentRepository implementation
func (m *CommentRepository) Insert(ctx context.Context, comment *models.Comment) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.Err != nil {
		return m.Err
	}

	comment.BeforeCreate()
	comment.ID = m.nextID
	m.nextID++
	stored := *comment
	stored.Post = nil
	m.comments[comment.ID] = &stored
	return nil
}

func (m *CommentRepository) ListByPost(ctx context.Context, postID int, activeOnly bool) ([]*models.Comment, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}

	comments := []*models.Comment{}
	for _, comment := range m.comments {
		if comment.PostID != postID || (activeOnly && !comment.Active) {
			continue
		}
		out := *comment
		comments = append(comments, &out)
	}
	repositories.SortComments(comments)
	return comments, nil
}

// Count returns the number of stored comments, active or not.
func (m *CommentRepository) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.comments)
}

var (
	_ repositories.PostRepository    = (*PostRepository)(nil)
	_ repositories.CommentRepository = (*CommentRepository)(nil)
)

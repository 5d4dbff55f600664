package repositories

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"blog/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerPostRepository implements PostRepository using BadgerDB
type BadgerPostRepository struct {
	db  *badger.DB
	loc *time.Location
}

// NewBadgerPostRepository creates a new BadgerPostRepository. loc is the time
// zone publish dates are evaluated in for slug uniqueness.
func NewBadgerPostRepository(db *badger.DB, loc *time.Location) *BadgerPostRepository {
	if loc == nil {
		loc = time.UTC
	}
	return &BadgerPostRepository{db: db, loc: loc}
}

// Insert creates a new post, rejecting a slug already used on the same publish date.
func (r *BadgerPostRepository) Insert(ctx context.Context, post *models.Post) error {
	post.BeforeCreate()
	indexKey := []byte(PostSlugIndexPrefix + SlugDateKey(post, r.loc))

	return r.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(indexKey)
		if err == nil {
			return ErrDuplicateSlug
		}
		if err != badger.ErrKeyNotFound {
			return err
		}

		// Get next ID
		id, err := getNextID(txn, PostSeqKey)
		if err != nil {
			return err
		}
		post.ID = id

		// Marshal post
		data, err := marshalEntity(post)
		if err != nil {
			return err
		}

		if err := txn.Set(indexKey, []byte(strconv.Itoa(post.ID))); err != nil {
			return err
		}
		return txn.Set(postKey(post.ID), data)
	})
}

// FindByID retrieves a post by ID regardless of status
func (r *BadgerPostRepository) FindByID(ctx context.Context, id int) (*models.Post, error) {
	var post models.Post

	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(postKey(id))
		if err == badger.ErrKeyNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return unmarshalEntity(val, &post)
		})
	})

	if err != nil {
		return nil, err
	}
	return &post, nil
}

// FindPublished scans all posts and returns the visible ones matching filter.
func (r *BadgerPostRepository) FindPublished(ctx context.Context, filter PostFilter, order PostOrder) ([]*models.Post, error) {
	filter = filter.WithDefaults()
	if filter.ID != 0 {
		post, err := r.FindByID(ctx, filter.ID)
		if err == ErrNotFound {
			return []*models.Post{}, nil
		}
		if err != nil {
			return nil, err
		}
		if !filter.Match(post) {
			return []*models.Post{}, nil
		}
		return []*models.Post{post}, nil
	}

	posts := []*models.Post{}
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(PostKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var post models.Post
			err := it.Item().Value(func(val []byte) error {
				return unmarshalEntity(val, &post)
			})
			if err != nil {
				return fmt.Errorf("failed to unmarshal post: %w", err)
			}
			if filter.Match(&post) {
				posts = append(posts, &post)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	SortPosts(posts, order)
	return LimitPosts(posts, filter.Limit), nil
}

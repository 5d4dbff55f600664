// Package postgres implements the blog repositories on PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"blog/app/models"
	"blog/app/repositories"

	"github.com/lib/pq"
)

const uniqueViolation = "23505"

const postColumns = `id, title, slug, author, body, publish, created, updated, status`

// PostRepository stores posts in the posts table.
type PostRepository struct {
	db  *sql.DB
	loc *time.Location
}

// NewPostRepository creates a PostRepository. loc is the zone publish dates
// are evaluated in.
func NewPostRepository(db *sql.DB, loc *time.Location) *PostRepository {
	if loc == nil {
		loc = time.UTC
	}
	return &PostRepository{db: db, loc: loc}
}

// Insert creates a post. A slug already used on the same publish date yields
// repositories.ErrDuplicateSlug.
func (r *PostRepository) Insert(ctx context.Context, post *models.Post) error {
	post.BeforeCreate()
	y, m, d := post.PublishDate(r.loc)
	publishDate := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	err := r.db.QueryRowContext(ctx,
		`INSERT INTO posts (title, slug, author, body, publish, publish_date, created, updated, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id`,
		post.Title, post.Slug, post.Author, post.Body,
		post.Publish, publishDate, post.CreatedAt, post.UpdatedAt, string(post.Status),
	).Scan(&post.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return repositories.ErrDuplicateSlug
		}
		return fmt.Errorf("failed to insert post: %w", err)
	}
	return nil
}

// FindByID returns a post regardless of status.
func (r *PostRepository) FindByID(ctx context.Context, id int) (*models.Post, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id)
	post, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post %d: %w", id, err)
	}
	return post, nil
}

// FindPublished runs the visibility predicate and filter in SQL.
func (r *PostRepository) FindPublished(ctx context.Context, filter repositories.PostFilter, order repositories.PostOrder) ([]*models.Post, error) {
	query, args := buildPublishedQuery(filter.WithDefaults(), order)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	defer rows.Close()

	posts := []*models.Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate posts: %w", err)
	}
	return posts, nil
}

func buildPublishedQuery(filter repositories.PostFilter, order repositories.PostOrder) (string, []interface{}) {
	var b strings.Builder
	args := []interface{}{string(models.StatusPublished), filter.Now}
	b.WriteString(`SELECT ` + postColumns + ` FROM posts WHERE status = $1 AND publish <= $2`)

	if filter.ID != 0 {
		args = append(args, filter.ID)
		fmt.Fprintf(&b, ` AND id = $%d`, len(args))
	}
	if filter.Slug != "" {
		args = append(args, filter.Slug)
		fmt.Fprintf(&b, ` AND slug = $%d`, len(args))
	}
	if filter.Date != nil {
		zone := time.UTC
		if filter.Date.Location != nil {
			zone = filter.Date.Location
		}
		day := fmt.Sprintf("%04d-%02d-%02d", filter.Date.Year, int(filter.Date.Month), filter.Date.Day)
		args = append(args, zone.String(), day)
		fmt.Fprintf(&b, ` AND (publish AT TIME ZONE $%d)::date = $%d::date`, len(args)-1, len(args))
	}

	if order == repositories.OldestFirst {
		b.WriteString(` ORDER BY publish ASC, id ASC`)
	} else {
		b.WriteString(` ORDER BY publish DESC, id DESC`)
	}
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		fmt.Fprintf(&b, ` LIMIT $%d`, len(args))
	}
	return b.String(), args
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanPost(s scanner) (*models.Post, error) {
	var post models.Post
	var status string
	err := s.Scan(
		&post.ID, &post.Title, &post.Slug, &post.Author, &post.Body,
		&post.Publish, &post.CreatedAt, &post.UpdatedAt, &status,
	)
	if err != nil {
		return nil, err
	}
	post.Status = models.Status(status)
	return &post, nil
}

var _ repositories.PostRepository = (*PostRepository)(nil)

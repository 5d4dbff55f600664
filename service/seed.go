package service

import (
	"context"
	"fmt"
	"time"

	"blog/app/models"
	"blog/app/repositories"

	"github.com/BurntSushi/toml"
)

// SeedFile is the TOML layout accepted by "db seed".
//
//	[[posts]]
//	title = "Hello"
//	slug = "hello"
//	author = "admin"
//	body = "First post."
//	publish = 2024-01-15T10:00:00Z
//	status = "PB"
//
//	  [[posts.comments]]
//	  name = "Ana"
//	  email = "ana@example.com"
//	  body = "Nice."
type SeedFile struct {
	Posts []SeedPost `toml:"posts"`
}

type SeedPost struct {
	Title    string        `toml:"title"`
	Slug     string        `toml:"slug"`
	Author   string        `toml:"author"`
	Body     string        `toml:"body"`
	Publish  time.Time     `toml:"publish"`
	Status   string        `toml:"status"`
	Comments []SeedComment `toml:"comments"`
}

type SeedComment struct {
	Name   string `toml:"name"`
	Email  string `toml:"email"`
	Body   string `toml:"body"`
	Active *bool  `toml:"active"`
}

// LoadSeedFile decodes a seed file from disk.
func LoadSeedFile(path string) (*SeedFile, error) {
	var seed SeedFile
	if _, err := toml.DecodeFile(path, &seed); err != nil {
		return nil, fmt.Errorf("failed to read seed file %s: %w", path, err)
	}
	return &seed, nil
}

// Seed inserts every post of the seed file with its comments and returns
// the number of posts and comments written.
func Seed(ctx context.Context, seed *SeedFile, posts repositories.PostRepository, comments repositories.CommentRepository) (int, int, error) {
	var nPosts, nComments int
	for _, sp := range seed.Posts {
		post := &models.Post{
			Title:   sp.Title,
			Slug:    sp.Slug,
			Author:  sp.Author,
			Body:    sp.Body,
			Publish: sp.Publish,
			Status:  models.Status(sp.Status),
		}
		post.BeforeCreate()
		if err := post.Validate(); err != nil {
			return nPosts, nComments, fmt.Errorf("post %q: %w", sp.Slug, err)
		}
		if err := posts.Insert(ctx, post); err != nil {
			return nPosts, nComments, fmt.Errorf("post %q: %w", sp.Slug, err)
		}
		nPosts++

		for i, sc := range sp.Comments {
			comment := &models.Comment{
				Name:   sc.Name,
				Email:  sc.Email,
				Body:   sc.Body,
				Active: sc.Active == nil || *sc.Active,
			}
			if err := comment.SetPost(post); err != nil {
				return nPosts, nComments, err
			}
			comment.BeforeCreate()
			if err := comment.Validate(); err != nil {
				return nPosts, nComments, fmt.Errorf("post %q comment %d: %w", sp.Slug, i+1, err)
			}
			if err := comments.Insert(ctx, comment); err != nil {
				return nPosts, nComments, fmt.Errorf("post %q comment %d: %w", sp.Slug, i+1, err)
			}
			nComments++
		}
	}
	return nPosts, nComments, nil
}

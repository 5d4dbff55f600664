// Package views renders the blog's HTML pages from embedded templates.
package views

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"blog/app/forms"
	"blog/app/models"
	"blog/app/pagination"
)

//go:embed templates
var templatesFS embed.FS

// Page names.
const (
	PostList    = "post/list"
	PostDetail  = "post/detail"
	PostShare   = "post/share"
	PostComment = "post/comment"
)

// Renderer renders a named page to w.
type Renderer interface {
	Render(w io.Writer, name string, data any) error
}

// Site carries layout-wide values.
type Site struct {
	Title       string
	Description string
	Location    *time.Location
}

// ListData is rendered by PostList.
type ListData struct {
	Page pagination.Page[*models.Post]
}

// DetailData is rendered by PostDetail.
type DetailData struct {
	Post     *models.Post
	Comments []*models.Comment
	Form     *forms.CommentForm
}

// ShareData is rendered by PostShare. Sent is true only after a successful POST.
type ShareData struct {
	Post *models.Post
	Form *forms.EmailPostForm
	Sent bool
}

// CommentData is rendered by PostComment. Comment is nil when Form has errors.
type CommentData struct {
	Post    *models.Post
	Form    *forms.CommentForm
	Comment *models.Comment
}

// TemplateRenderer implements Renderer with html/template.
type TemplateRenderer struct {
	templates map[string]*template.Template
}

// pages maps each page to the files parsed for it, layout first.
var pages = map[string][]string{
	PostList:    {"templates/base.html", "templates/post/list.html", "templates/pagination.html"},
	PostDetail:  {"templates/base.html", "templates/post/detail.html", "templates/comment_form.html"},
	PostShare:   {"templates/base.html", "templates/post/share.html"},
	PostComment: {"templates/base.html", "templates/post/comment.html", "templates/comment_form.html"},
}

// New parses every page template.
func New(site Site) (*TemplateRenderer, error) {
	templates := make(map[string]*template.Template, len(pages))
	for name, files := range pages {
		tmpl, err := template.New("base.html").Funcs(funcMap(site)).ParseFS(templatesFS, files...)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		templates[name] = tmpl
	}
	return &TemplateRenderer{templates: templates}, nil
}

// Render executes the layout of page name with data.
func (r *TemplateRenderer) Render(w io.Writer, name string, data any) error {
	tmpl, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("unknown template %q", name)
	}
	return tmpl.ExecuteTemplate(w, "base", data)
}

var _ Renderer = (*TemplateRenderer)(nil)

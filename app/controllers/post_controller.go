package controllers

import (
	"net/http"
	"time"

	"blog/app/forms"
	"blog/app/services"
	"blog/app/views"

	"github.com/gorilla/feeds"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// FeedOptions configures the RSS feed.
type FeedOptions struct {
	Title       string
	Description string
	Items       int
	// SummaryWords is the number of words kept from each post body.
	SummaryWords int
}

// PostController handles HTTP requests for blog posts
type PostController struct {
	controller
	postService  *services.PostService
	shareService *services.ShareService
	feed         FeedOptions
}

// NewPostController creates a new PostController. baseURL may be empty.
func NewPostController(postService *services.PostService, shareService *services.ShareService, renderer views.Renderer, baseURL string, feed FeedOptions) *PostController {
	if feed.Items < 1 {
		feed.Items = 5
	}
	if feed.SummaryWords < 1 {
		feed.SummaryWords = 30
	}
	return &PostController{
		controller:   controller{renderer: renderer, baseURL: baseURL},
		postService:  postService,
		shareService: shareService,
		feed:         feed,
	}
}

// List handles the paginated list of published posts
func (pc *PostController) List(w http.ResponseWriter, r *http.Request) {
	page, err := pc.postService.ListPage(r.Context(), r.URL.Query().Get("page"))
	if err != nil {
		pc.handleError(w, r, err)
		return
	}

	if wantsJSON(r) {
		pc.sendJSON(w, map[string]interface{}{
			"posts":        page.Items,
			"page":         page.Number,
			"total_pages":  page.TotalPages,
			"has_next":     page.HasNext,
			"has_previous": page.HasPrevious,
		})
		return
	}
	pc.render(w, r, views.PostList, views.ListData{Page: page})
}

// Detail handles displaying a single post by publish date and slug
func (pc *PostController) Detail(w http.ResponseWriter, r *http.Request) {
	year, okY := intVar(r, "year")
	month, okM := intVar(r, "month")
	day, okD := intVar(r, "day")
	if !okY || !okM || !okD {
		pc.sendError(w, r, "Not Found", http.StatusNotFound)
		return
	}

	detail, err := pc.postService.GetDetail(r.Context(), year, month, day, mux.Vars(r)["slug"])
	if err != nil {
		pc.handleError(w, r, err)
		return
	}

	if wantsJSON(r) {
		pc.sendJSON(w, map[string]interface{}{
			"post":     detail.Post,
			"comments": detail.Comments,
		})
		return
	}
	pc.render(w, r, views.PostDetail, views.DetailData{
		Post:     detail.Post,
		Comments: detail.Comments,
		Form:     forms.NewCommentForm(nil),
	})
}

// Share handles recommending a post by email. GET shows an empty form; POST
// validates it and sends one message.
func (pc *PostController) Share(w http.ResponseWriter, r *http.Request) {
	id, ok := intVar(r, "id")
	if !ok {
		pc.sendError(w, r, "Not Found", http.StatusNotFound)
		return
	}
	post, err := pc.postService.GetPublished(r.Context(), id)
	if err != nil {
		pc.handleError(w, r, err)
		return
	}

	data := views.ShareData{Post: post, Form: forms.NewEmailPostForm(nil)}
	if r.Method == http.MethodPost {
		if err := parseForm(w, r); err != nil {
			pc.sendError(w, r, "Bad Request", http.StatusBadRequest)
			return
		}
		data.Form = forms.NewEmailPostForm(r.PostForm)
		postURL := pc.absoluteURL(r, post.AbsoluteURL(pc.postService.Location()))
		data.Sent, err = pc.shareService.Share(r.Context(), post, data.Form, postURL)
		if err != nil {
			pc.handleError(w, r, err)
			return
		}
	}
	pc.render(w, r, views.PostShare, data)
}

// Feed serves the newest published posts as RSS 2.0
func (pc *PostController) Feed(w http.ResponseWriter, r *http.Request) {
	posts, err := pc.postService.Latest(r.Context(), pc.feed.Items)
	if err != nil {
		pc.handleError(w, r, err)
		return
	}

	feed := &feeds.Feed{
		Title:       pc.feed.Title,
		Link:        &feeds.Link{Href: pc.absoluteURL(r, "/")},
		Description: pc.feed.Description,
		Created:     time.Now(),
	}
	loc := pc.postService.Location()
	for _, post := range posts {
		link := pc.absoluteURL(r, post.AbsoluteURL(loc))
		feed.Items = append(feed.Items, &feeds.Item{
			Id:          link,
			Title:       post.Title,
			Link:        &feeds.Link{Href: link},
			Author:      &feeds.Author{Name: post.Author},
			Description: views.Summary(post.Body, pc.feed.SummaryWords),
			Created:     post.Publish,
		})
	}
	if len(posts) > 0 {
		feed.Created = posts[0].Publish
	}

	rss, err := feed.ToRss()
	if err != nil {
		log.WithError(err).Error("[feed] failed to build RSS")
		pc.sendError(w, r, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	w.Write([]byte(rss))
}

package controllers

import (
	"net/http"

	"blog/app/forms"
	"blog/app/services"
	"blog/app/views"
)

// CommentController handles HTTP requests for comments
type CommentController struct {
	controller
	commentService *services.CommentService
}

// NewCommentController creates a new CommentController
func NewCommentController(commentService *services.CommentService, renderer views.Renderer) *CommentController {
	return &CommentController{
		controller:     controller{renderer: renderer},
		commentService: commentService,
	}
}

// Comment handles a submitted comment. Only POST is accepted.
func (cc *CommentController) Comment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		cc.sendError(w, r, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	id, ok := intVar(r, "id")
	if !ok {
		cc.sendError(w, r, "Not Found", http.StatusNotFound)
		return
	}
	post, err := cc.commentService.PublishedPost(r.Context(), id)
	if err != nil {
		cc.handleError(w, r, err)
		return
	}
	if err := parseForm(w, r); err != nil {
		cc.sendError(w, r, "Bad Request", http.StatusBadRequest)
		return
	}

	result, err := cc.commentService.AddCommentTo(r.Context(), post, forms.NewCommentForm(r.PostForm))
	if err != nil {
		cc.handleError(w, r, err)
		return
	}
	cc.render(w, r, views.PostComment, views.CommentData{
		Post:    result.Post,
		Form:    result.Form,
		Comment: result.Comment,
	})
}

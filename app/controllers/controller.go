package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"blog/app/middleware"
	"blog/app/services"
	"blog/app/views"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// maxFormBytes caps submitted form bodies.
const maxFormBytes = 64 << 10

// controller holds what every controller needs to answer a request.
type controller struct {
	renderer views.Renderer
	baseURL  string
}

// render writes page name with data. The page is rendered into a buffer so a
// template error still yields a clean 500.
func (c *controller) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	var buf bytes.Buffer
	if err := c.renderer.Render(&buf, name, data); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"template":   name,
			"request_id": middleware.RequestIDFromContext(r.Context()),
		}).Error("[http] template error")
		c.sendError(w, r, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func (c *controller) sendJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func (c *controller) sendError(w http.ResponseWriter, r *http.Request, message string, status int) {
	if wantsJSON(r) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]string{"error": message})
		return
	}
	http.Error(w, message, status)
}

// handleError maps a service error to a response.
func (c *controller) handleError(w http.ResponseWriter, r *http.Request, err error) {
	if services.IsNotFound(err) {
		c.sendError(w, r, "Not Found", http.StatusNotFound)
		return
	}
	log.WithError(err).WithFields(log.Fields{
		"method":     r.Method,
		"path":       r.URL.Path,
		"request_id": middleware.RequestIDFromContext(r.Context()),
	}).Error("[http] request failed")
	c.sendError(w, r, "Internal Server Error", http.StatusInternalServerError)
}

// absoluteURL joins path to the configured base URL, or to the request's
// scheme and host when none is configured.
func (c *controller) absoluteURL(r *http.Request, path string) string {
	if c.baseURL != "" {
		return strings.TrimRight(c.baseURL, "/") + path
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "https" || proto == "http" {
		scheme = proto
	}
	return scheme + "://" + r.Host + path
}

// parseForm reads a bounded urlencoded or multipart body.
func parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	return r.ParseForm()
}

func wantsJSON(r *http.Request) bool {
	return r.Header.Get("Accept") == "application/json"
}

// intVar returns the named mux path variable as an int.
func intVar(r *http.Request, name string) (int, bool) {
	n, err := strconv.Atoi(mux.Vars(r)[name])
	if err != nil {
		return 0, false
	}
	return n, true
}

package views

import (
	"bytes"
	"html/template"
	"net/url"
	"strings"
	"testing"
	"time"

	"blog/app/forms"
	"blog/app/models"
	"blog/app/pagination"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRenderer(t *testing.T) *TemplateRenderer {
	r, err := New(Site{Title: "My Blog", Description: "Notes", Location: time.UTC})
	require.NoError(t, err)
	return r
}

func testPost() *models.Post {
	return &models.Post{
		ID:      3,
		Title:   "Hello <World>",
		Slug:    "hello-world",
		Author:  "admin",
		Body:    "Some **bold** text",
		Publish: time.Date(2024, time.January, 7, 9, 30, 0, 0, time.UTC),
		Status:  models.StatusPublished,
	}
}

func TestMarkdown(t *testing.T) {
	assert.Equal(t, "", string(Markdown("  ")))
	assert.Contains(t, string(Markdown("**bold**")), "<strong>bold</strong>")
	assert.Contains(t, string(Markdown("| a |\n|---|\n| b |")), "<table>")

	out := string(Markdown("<script>alert(1)</script>\n\nok"))
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "ok")
}

func TestTruncateWords(t *testing.T) {
	tests := []struct {
		n    int
		in   string
		want string
	}{
		{3, "one two three four", "one two three ..."},
		{3, "one  two\nthree", "one two three"},
		{5, "short", "short"},
		{0, "anything", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TruncateWords(tt.n, tt.in))
	}
}

func TestSummary(t *testing.T) {
	assert.Equal(t, "Some bold text", Summary("Some **bold** text", 30))
	assert.Equal(t, "a b ...", Summary("a b c d", 2))
	assert.Equal(t, "Tom & Jerry", Summary("Tom & Jerry", 30))
}

func TestLinebreaks(t *testing.T) {
	assert.Equal(t, template.HTML("<p>a<br>b</p>\n\n<p>c</p>"), Linebreaks("a\nb\n\nc"))
	assert.Equal(t, template.HTML("<p>&lt;b&gt;</p>"), Linebreaks("<b>"))
	assert.Equal(t, template.HTML(""), Linebreaks("  "))
}

func TestPluralize(t *testing.T) {
	assert.Equal(t, "s", Pluralize(0))
	assert.Equal(t, "", Pluralize(1))
	assert.Equal(t, "s", Pluralize(2))
}

func TestRenderList(t *testing.T) {
	r := testRenderer(t)
	posts := []*models.Post{testPost()}
	var buf bytes.Buffer

	require.NoError(t, r.Render(&buf, PostList, ListData{Page: pagination.Paginate(posts, 3, "")}))
	out := buf.String()
	assert.Contains(t, out, "<title>My Blog</title>")
	assert.Contains(t, out, `href="/2024/1/7/hello-world/"`)
	assert.Contains(t, out, "Hello &lt;World&gt;")
	assert.Contains(t, out, "Page 1 of 1.")
	assert.NotContains(t, out, "Next")
}

func TestRenderListPaginationLinks(t *testing.T) {
	r := testRenderer(t)
	posts := make([]*models.Post, 7)
	for i := range posts {
		posts[i] = testPost()
	}
	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, PostList, ListData{Page: pagination.Paginate(posts, 3, "2")}))
	out := buf.String()
	assert.Contains(t, out, `href="?page=1"`)
	assert.Contains(t, out, `href="?page=3"`)
	assert.Contains(t, out, "Page 2 of 3.")
}

func TestRenderDetail(t *testing.T) {
	r := testRenderer(t)
	post := testPost()
	comments := []*models.Comment{
		{ID: 1, PostID: post.ID, Name: "Ann", Body: "first\nline", Active: true, CreatedAt: post.Publish},
	}
	var buf bytes.Buffer

	require.NoError(t, r.Render(&buf, PostDetail, DetailData{Post: post, Comments: comments, Form: forms.NewCommentForm(nil)}))
	out := buf.String()
	assert.Contains(t, out, "<strong>bold</strong>")
	assert.Contains(t, out, "1 comment</h2>")
	assert.Contains(t, out, "Comment 1 by Ann")
	assert.Contains(t, out, "first<br>line")
	assert.Contains(t, out, `action="/3/comment/"`)
	assert.Contains(t, out, `href="/3/share/"`)
}

func TestRenderDetailWithoutComments(t *testing.T) {
	r := testRenderer(t)
	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, PostDetail, DetailData{Post: testPost(), Form: forms.NewCommentForm(nil)}))
	assert.Contains(t, buf.String(), "There are no comments.")
}

func TestRenderShareStates(t *testing.T) {
	r := testRenderer(t)
	post := testPost()

	t.Run("fresh form", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, r.Render(&buf, PostShare, ShareData{Post: post, Form: forms.NewEmailPostForm(nil)}))
		assert.Contains(t, buf.String(), "by e-mail</h1>")
		assert.NotContains(t, buf.String(), "class=\"error\"")
	})

	t.Run("with errors", func(t *testing.T) {
		form := forms.NewEmailPostForm(url.Values{"name": {"Ann"}, "email": {"ann@example.com"}, "to": {"bad"}})
		require.False(t, form.Valid())
		var buf bytes.Buffer
		require.NoError(t, r.Render(&buf, PostShare, ShareData{Post: post, Form: form}))
		assert.Contains(t, buf.String(), "Enter a valid email address.")
		assert.Contains(t, buf.String(), `value="Ann"`)
	})

	t.Run("sent", func(t *testing.T) {
		form := forms.NewEmailPostForm(url.Values{"to": {"bob@example.com"}})
		var buf bytes.Buffer
		require.NoError(t, r.Render(&buf, PostShare, ShareData{Post: post, Form: form, Sent: true}))
		assert.Contains(t, buf.String(), "E-mail successfully sent")
		assert.Contains(t, buf.String(), "bob@example.com")
		assert.NotContains(t, buf.String(), "<form")
	})
}

func TestRenderComment(t *testing.T) {
	r := testRenderer(t)
	post := testPost()

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, PostComment, CommentData{Post: post, Form: forms.NewCommentForm(nil), Comment: &models.Comment{ID: 1}}))
	assert.Contains(t, buf.String(), "Your comment has been added.")

	form := forms.NewCommentForm(url.Values{"name": {"Ann"}})
	require.False(t, form.Valid())
	buf.Reset()
	require.NoError(t, r.Render(&buf, PostComment, CommentData{Post: post, Form: form}))
	assert.Equal(t, 2, strings.Count(buf.String(), "This field is required."))
}

func TestRenderUnknown(t *testing.T) {
	r := testRenderer(t)
	assert.Error(t, r.Render(&bytes.Buffer{}, "nope", nil))
}

package views

import (
	"bytes"
	"html"
	"html/template"
	"strings"
	"time"

	"blog/app/models"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	md        = goldmark.New(goldmark.WithExtensions(extension.GFM))
	ugcPolicy = bluemonday.UGCPolicy()
	stripTags = bluemonday.StrictPolicy()
)

// Markdown renders GFM markdown to sanitised HTML.
func Markdown(input string) template.HTML {
	if strings.TrimSpace(input) == "" {
		return ""
	}
	var b bytes.Buffer
	if err := md.Convert([]byte(input), &b); err != nil {
		return template.HTML(template.HTMLEscapeString(input))
	}
	return template.HTML(ugcPolicy.SanitizeBytes(b.Bytes()))
}

// TruncateWords keeps the first n whitespace separated words of s, adding
// " ..." when anything was cut.
func TruncateWords(n int, s string) string {
	if n < 1 {
		return ""
	}
	words := strings.Fields(s)
	if len(words) <= n {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:n], " ") + " ..."
}

// Summary renders markdown, drops the markup and truncates the text to n words.
func Summary(body string, n int) string {
	text := html.UnescapeString(stripTags.Sanitize(string(Markdown(body))))
	return TruncateWords(n, text)
}

// Linebreaks escapes s and converts blank-line separated blocks to paragraphs
// and single newlines to <br>.
func Linebreaks(s string) template.HTML {
	s = strings.ReplaceAll(strings.TrimSpace(s), "\r\n", "\n")
	if s == "" {
		return ""
	}
	var b strings.Builder
	for i, para := range strings.Split(s, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if i > 0 {
			b.WriteString("\n\n")
		}
		lines := strings.Split(para, "\n")
		for j := range lines {
			lines[j] = template.HTMLEscapeString(lines[j])
		}
		b.WriteString("<p>" + strings.Join(lines, "<br>") + "</p>")
	}
	return template.HTML(b.String())
}

// Pluralize returns "" for one and "s" otherwise.
func Pluralize(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

func funcMap(site Site) template.FuncMap {
	loc := site.Location
	if loc == nil {
		loc = time.UTC
	}
	return template.FuncMap{
		"markdown":      Markdown,
		"truncatewords": TruncateWords,
		"linebreaks":    Linebreaks,
		"pluralize":     Pluralize,
		"add1":          func(i int) int { return i + 1 },
		"date": func(t time.Time) string {
			return t.In(loc).Format("January 2, 2006, 15:04")
		},
		"postURL": func(p *models.Post) string {
			return p.AbsoluteURL(loc)
		},
		"siteTitle":       func() string { return site.Title },
		"siteDescription": func() string { return site.Description },
	}
}

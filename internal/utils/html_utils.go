package utils

import (
	"html/template"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// StripImages removes <img> tags, replacing each with its alt text.
func StripImages(htmlStr string) template.HTML {
	if htmlStr == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return template.HTML(template.HTMLEscapeString(htmlStr))
	}
	doc.Find("img").Each(func(i int, s *goquery.Selection) {
		alt, _ := s.Attr("alt")
		s.ReplaceWithHtml(template.HTMLEscapeString(alt))
	})

	out, _ := doc.Find("body").Html()
	return template.HTML(out)
}

// Excerpt returns the first max runes of the text content of htmlStr,
// with an ellipsis when it was cut.
func Excerpt(htmlStr string, max int) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return ""
	}
	text := strings.Join(strings.Fields(doc.Text()), " ")
	if utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:max])) + "…"
}

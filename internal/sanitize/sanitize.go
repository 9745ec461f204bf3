// Package sanitize cleans user-submitted rich text before storage.
package sanitize

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// allowedTags is the set of formatting tags preserved in comments and reviews.
// Everything else is dropped along with all attributes.
var allowedTags = map[string]bool{
	"b":      true,
	"i":      true,
	"u":      true,
	"s":      true,
	"strike": true,
	"p":      true,
	"strong": true,
	"em":     true,
	"br":     true,
}

// selfClosing tags render without a closing counterpart.
var selfClosing = map[string]bool{
	"br": true,
}

// HTML strips every tag outside the formatting allowlist and removes all
// attributes from the tags it keeps. Text inside disallowed tags survives,
// the tags themselves do not. Script and style subtrees are removed entirely.
func HTML(s string) string {
	if s == "" {
		return ""
	}

	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		// If parsing fails, fall back to stripping everything
		return stripAllTags(s)
	}

	var buf strings.Builder
	renderSanitized(doc, &buf)
	return strings.TrimSpace(buf.String())
}

// renderSanitized walks the parsed tree and writes allowed markup to buf.
func renderSanitized(n *html.Node, buf *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		buf.WriteString(html.EscapeString(n.Data))
	case html.ElementNode:
		switch n.Data {
		case "script", "style":
			return
		}
		if allowedTags[n.Data] {
			buf.WriteString("<")
			buf.WriteString(n.Data)
			buf.WriteString(">")
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		renderSanitized(c, buf)
	}

	if n.Type == html.ElementNode && allowedTags[n.Data] && !selfClosing[n.Data] {
		buf.WriteString("</")
		buf.WriteString(n.Data)
		buf.WriteString(">")
	}
}

var tagRegex = regexp.MustCompile(`<[^>]*>`)

func stripAllTags(s string) string {
	s = tagRegex.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

package readerfeed

import (
	"bytes"
	"fmt"
	gohtml "html"
	"io"
	"log"
	"strings"

	epub "github.com/go-shiori/go-epub"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// isAllowedAttr reports whether an attribute is safe for XHTML epub content.
func isAllowedAttr(a html.Attribute) bool {
	switch a.Key {
	case "id", "class", "style", "title", "lang", "dir",
		"href", "src", "alt", "width", "height",
		"colspan", "rowspan", "scope", "headers",
		"cite", "datetime", "name", "value", "type",
		"rel", "media", "start", "reversed":
		return true
	}
	if strings.HasPrefix(a.Key, "aria-") {
		return true
	}
	return a.Key == "epub:type"
}

// voidElements are HTML elements that must be self-closing in XHTML.
var voidElements = map[atom.Atom]bool{
	atom.Area: true, atom.Base: true, atom.Br: true, atom.Col: true,
	atom.Embed: true, atom.Hr: true, atom.Img: true, atom.Input: true,
	atom.Link: true, atom.Meta: true, atom.Source: true, atom.Wbr: true,
}

// sanitizeForXHTML converts extracted article HTML to valid XHTML for epub:
// it strips non-standard attributes and self-closes void elements.
func sanitizeForXHTML(htmlStr string) string {
	doc, err := html.Parse(strings.NewReader(htmlStr))
	if err != nil {
		return htmlStr // fallback: return as-is
	}

	var clean func(*html.Node)
	clean = func(n *html.Node) {
		if n.Type == html.ElementNode {
			var filtered []html.Attribute
			for _, a := range n.Attr {
				if isAllowedAttr(a) {
					filtered = append(filtered, a)
				}
			}
			n.Attr = filtered
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			clean(c)
		}
	}
	clean(doc)

	var buf bytes.Buffer
	renderXHTML(&buf, doc)
	result := buf.String()

	// html.Parse wraps everything in <html><head><body>; keep just the body.
	if idx := strings.Index(result, "<body>"); idx >= 0 {
		result = result[idx+len("<body>"):]
		if end := strings.LastIndex(result, "</body>"); end >= 0 {
			result = result[:end]
		}
	}
	return result
}

// renderXHTML renders an html.Node tree as XHTML (self-closing void elements).
func renderXHTML(buf *bytes.Buffer, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		buf.WriteString(html.EscapeString(n.Data))
	case html.ElementNode:
		buf.WriteByte('<')
		buf.WriteString(n.Data)
		for _, a := range n.Attr {
			buf.WriteByte(' ')
			buf.WriteString(a.Key)
			buf.WriteString(`="`)
			buf.WriteString(html.EscapeString(a.Val))
			buf.WriteByte('"')
		}
		if voidElements[n.DataAtom] && n.FirstChild == nil {
			buf.WriteString("/>")
			return
		}
		buf.WriteByte('>')
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			renderXHTML(buf, c)
		}
		buf.WriteString("</")
		buf.WriteString(n.Data)
		buf.WriteByte('>')
	case html.DocumentNode:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			renderXHTML(buf, c)
		}
	case html.CommentNode:
		// skip comments
	case html.RawNode:
		buf.WriteString(n.Data)
	}
}

// buildTOCBody generates the front-matter table of contents.
func buildTOCBody(articles []article) string {
	var b strings.Builder
	b.WriteString("<h1>Contents</h1>\n<ol class=\"toc\">\n")
	for i, a := range articles {
		filename := fmt.Sprintf("article%03d.xhtml", i+1)
		title := a.Title
		if title == "" {
			title = fmt.Sprintf("Article %d", i+1)
		}
		b.WriteString("<li>\n")
		b.WriteString(fmt.Sprintf(`<a href="%s">%s</a>`, filename, gohtml.EscapeString(title)))
		b.WriteByte('\n')
		if a.URL != "" {
			b.WriteString(fmt.Sprintf(`<p class="toc-meta"><a href="%s">%s</a></p>`,
				gohtml.EscapeString(a.URL), gohtml.EscapeString(a.URL)))
			b.WriteByte('\n')
		}
		b.WriteString("</li>\n")
	}
	b.WriteString("</ol>\n")
	return b.String()
}

// writeEpub builds an epub3 from the extracted articles and writes it to w.
func writeEpub(articles []article, title string, w io.Writer) error {
	e, err := epub.NewEpub(title)
	if err != nil {
		return fmt.Errorf("creating epub: %w", err)
	}
	e.SetLang("en")
	e.SetAuthor("feedmill")

	tocBody := buildTOCBody(articles)
	if _, err := e.AddSection(tocBody, "Contents", "contents.xhtml", ""); err != nil {
		log.Printf("could not add table of contents: %v", err)
	}

	for i, a := range articles {
		chTitle := a.Title
		if chTitle == "" {
			chTitle = fmt.Sprintf("Article %d", i+1)
		}
		body := sanitizeForXHTML(a.Content)
		filename := fmt.Sprintf("article%03d.xhtml", i+1)
		if _, err := e.AddSection(body, chTitle, filename, ""); err != nil {
			log.Printf("could not add section %q: %v", chTitle, err)
			continue
		}
	}

	if _, err := e.WriteTo(w); err != nil {
		return fmt.Errorf("writing epub: %w", err)
	}
	return nil
}

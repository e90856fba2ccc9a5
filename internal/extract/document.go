package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Document is a parsed registry page. It embeds goquery so callers can run
// selector queries directly, while the label and checkbox helpers below cover
// the table layouts the registries use instead of field names.
type Document struct {
	*goquery.Document
}

// Parse builds a Document from raw HTML bytes. The HTML5 parser is lenient,
// so an error here means the reader failed, not that the markup is bad.
func Parse(input []byte) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(input))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return &Document{Document: doc}, nil
}

// MustParse is Parse for inputs known to be in memory, such as fixtures.
func MustParse(input string) *Document {
	doc, err := Parse([]byte(input))
	if err != nil {
		panic(err)
	}
	return doc
}

// BodyText returns the raw concatenated text of <body>, newlines included.
func (d *Document) BodyText() string {
	if d == nil || d.Document == nil {
		return ""
	}
	return d.Find("body").Text()
}

// segments returns the normalized text of every direct child of n, treating
// <br> as a separator and dropping empty pieces.
func segments(n *html.Node) []string {
	var parts []string
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		var t string
		switch c.Type {
		case html.TextNode:
			t = CleanText(c.Data)
		case html.ElementNode:
			if strings.EqualFold(c.Data, "br") {
				continue
			}
			t = CleanText(nodeText(c))
		}
		if t != "" {
			parts = append(parts, t)
		}
	}
	return parts
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(cur *html.Node) {
		if cur.Type == html.TextNode {
			b.WriteString(cur.Data)
		}
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

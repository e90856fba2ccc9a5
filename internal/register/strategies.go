package register

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/hyperifyio/carrierscope/internal/domain"
	"github.com/hyperifyio/carrierscope/internal/extract"
)

// rowCells returns the normalized text of the first three td cells of row, or
// ok=false when the row has fewer than three.
func rowCells(row *goquery.Selection) (number, title, decided string, ok bool) {
	cells := row.Find("td")
	if cells.Length() < 3 {
		return "", "", "", false
	}
	return extract.CleanText(cells.Eq(0).Text()),
		extract.CleanText(cells.Eq(1).Text()),
		extract.CleanText(cells.Eq(2).Text()),
		true
}

// TableRows reads number/title/decided from the first three cells of every
// table row. The category comes from the text of all rows above the entry in
// the same table, classified by list priority, so a heading far above can win
// over a nearer one. DocumentWalk tracks the nearest heading instead.
type TableRows struct{}

func (TableRows) Name() string { return "table-rows" }

func (TableRows) Extract(doc *extract.Document) []domain.RegisterEntry {
	var out []domain.RegisterEntry
	if doc == nil || doc.Document == nil {
		return out
	}
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		table.Find("tr").Each(func(_ int, row *goquery.Selection) {
			number, title, decided, ok := rowCells(row)
			if !ok || !isDocketNumber(number) || title == "" || decided == "" {
				return
			}
			out = append(out, domain.RegisterEntry{
				Number:   number,
				Title:    title,
				Decided:  decided,
				Category: Classify(row.PrevAll().Text()),
			})
		})
	})
	return out
}

// DocumentWalk visits every element under body in document order. An element
// whose whole text is a category label switches the current category; rows
// after it are tagged with that category. A missing decided date becomes N/A.
type DocumentWalk struct{}

func (DocumentWalk) Name() string { return "document-walk" }

func (DocumentWalk) Extract(doc *extract.Document) []domain.RegisterEntry {
	var out []domain.RegisterEntry
	if doc == nil || doc.Document == nil {
		return out
	}
	current := domain.CategoryMiscellaneous
	doc.Find("body *").Each(func(_ int, el *goquery.Selection) {
		if c, ok := headingCategory(extract.CleanText(el.Text())); ok {
			current = c
			return
		}
		if goquery.NodeName(el) != "tr" {
			return
		}
		number, title, decided, ok := rowCells(el)
		if !ok || !isDocketNumber(number) || title == "" {
			return
		}
		if decided == "" {
			decided = domain.NotAvailable
		}
		out = append(out, domain.RegisterEntry{Number: number, Title: title, Decided: decided, Category: current})
	})
	return out
}

var (
	docketPattern = regexp.MustCompile(`(MC-\d+|FF-\d+|MX-\d+)`)
	titlePattern  = regexp.MustCompile(`(?:MC-\d+|FF-\d+|MX-\d+)\s+(.+?)(?:\d{2}/\d{2}/\d{4}|$)`)
	datePattern   = regexp.MustCompile(`\d{2}/\d{2}/\d{4}`)
)

// FlatText ignores markup and scans the body text line by line. Any line
// containing a category label switches the current category.
type FlatText struct{}

func (FlatText) Name() string { return "flat-text" }

func (FlatText) Extract(doc *extract.Document) []domain.RegisterEntry {
	var out []domain.RegisterEntry
	if doc == nil {
		return out
	}
	current := domain.CategoryMiscellaneous
	for _, line := range strings.Split(doc.BodyText(), "\n") {
		line = strings.TrimSpace(line)
		if c, ok := containedCategory(line); ok {
			current = c
		}
		number := docketPattern.FindString(line)
		if number == "" {
			continue
		}
		m := titlePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		decided := datePattern.FindString(line)
		if decided == "" {
			decided = domain.NotAvailable
		}
		out = append(out, domain.RegisterEntry{
			Number:   number,
			Title:    strings.TrimSpace(m[1]),
			Decided:  decided,
			Category: current,
		})
	}
	return out
}

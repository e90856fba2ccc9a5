package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var brTag = regexp.MustCompile(`(?i)<br\s*/?>`)

// ValueByLabel scans th/td cells in document order and returns the value cell
// following the first cell whose text contains label. Labels mentioning
// "Address" join the value's line segments with ", ". It returns "" when no
// cell matches or no matching cell is followed by a td.
func (d *Document) ValueByLabel(label string) string {
	if d == nil || d.Document == nil {
		return ""
	}
	address := strings.Contains(label, "Address")
	var value string
	d.Find("th, td").EachWithBreak(func(_ int, cell *goquery.Selection) bool {
		if !strings.Contains(CleanText(cell.Text()), label) {
			return true
		}
		next := cell.NextFiltered("td")
		if next.Length() == 0 {
			return true
		}
		if address {
			value = joinAddress(next)
		} else {
			value = CleanText(next.Text())
		}
		return false
	})
	return value
}

func joinAddress(cell *goquery.Selection) string {
	if parts := segments(cell.Get(0)); len(parts) > 0 {
		return strings.Join(parts, ", ")
	}
	inner, err := cell.Html()
	if err != nil {
		return ""
	}
	return CleanText(brTag.ReplaceAllString(inner, ", "))
}

// Marked returns the labels ticked with an "X" marker cell inside the table
// whose summary attribute equals summary. Each label is the text of the cell
// right after its marker. A missing table yields an empty list.
func (d *Document) Marked(summary string) []string {
	out := []string{}
	if d == nil || d.Document == nil {
		return out
	}
	tables := d.Find("table").FilterFunction(func(_ int, t *goquery.Selection) bool {
		v, ok := t.Attr("summary")
		return ok && v == summary
	})
	tables.Find("td").Each(func(_ int, cell *goquery.Selection) {
		if CleanText(cell.Text()) != "X" {
			return
		}
		if next := cell.Next(); next.Length() > 0 {
			out = append(out, CleanText(next.Text()))
		}
	})
	return out
}

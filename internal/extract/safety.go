package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/hyperifyio/carrierscope/internal/domain"
)

// ParseSafety reads the rating, BASIC measures and out-of-service rates from
// an SMS complete profile page. BASIC measures are aligned by position with
// domain.BasicCategories; cells past the seventh are ignored.
func ParseSafety(doc *Document) domain.SafetyProfile {
	p := domain.SafetyProfile{
		Rating:      domain.NotAvailable,
		RatingDate:  domain.NotAvailable,
		BasicScores: []domain.BasicScore{},
		OOSRates:    []domain.OOSRate{},
	}
	if doc == nil || doc.Document == nil {
		return p
	}

	if el := doc.Find("#Rating"); el.Length() > 0 {
		p.Rating = CleanText(el.Text())
	}
	if el := doc.Find("#RatingDate"); el.Length() > 0 {
		d := CleanText(el.Text())
		for _, junk := range []string{"Rating Date:", "(", ")"} {
			d = strings.Replace(d, junk, "", 1)
		}
		p.RatingDate = strings.TrimSpace(d)
	}

	doc.Find("tr.sumData").Find("td").Each(func(i int, cell *goquery.Selection) {
		if i >= len(domain.BasicCategories) {
			return
		}
		var val string
		if span := cell.Find("span.val"); span.Length() > 0 {
			val = CleanText(span.Text())
		} else {
			val = CleanText(cell.Text())
		}
		if val == "" {
			val = "0"
		}
		p.BasicScores = append(p.BasicScores, domain.BasicScore{Category: domain.BasicCategories[i], Measure: val})
	})

	table := doc.Find("#SafetyRating").Find("table").First()
	table.Find("tbody tr").Each(func(_ int, row *goquery.Selection) {
		cols := row.Find("th, td")
		if cols.Length() < 3 {
			return
		}
		p.OOSRates = append(p.OOSRates, domain.OOSRate{
			Type:        CleanText(cols.Eq(0).Text()),
			Rate:        CleanText(cols.Eq(1).Text()),
			NationalAvg: CleanText(cols.Eq(2).Text()),
		})
	})
	return p
}

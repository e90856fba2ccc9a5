package extract

import (
	"errors"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/hyperifyio/carrierscope/internal/domain"
)

// ErrNotFound is returned when a page renders without the container that
// holds a profile, which is how SAFER answers unknown identifiers.
var ErrNotFound = errors.New("profile not found")

// Checkbox group names used by the SAFER snapshot.
const (
	GroupOperationClassification = "Operation Classification"
	GroupCarrierOperation        = "Carrier Operation"
	GroupCargoCarried            = "Cargo Carried"
)

// ParseCarrier assembles a CarrierProfile from a SAFER company snapshot.
// Fields that are not on the page stay empty.
func ParseCarrier(doc *Document, mcNumber string, scraped time.Time) (domain.CarrierProfile, error) {
	if doc == nil || doc.Find("center").Length() == 0 {
		return domain.CarrierProfile{}, ErrNotFound
	}
	return domain.CarrierProfile{
		MCNumber:                mcNumber,
		DOTNumber:               doc.ValueByLabel("USDOT Number:"),
		LegalName:               doc.ValueByLabel("Legal Name:"),
		DBAName:                 doc.ValueByLabel("DBA Name:"),
		EntityType:              doc.ValueByLabel("Entity Type:"),
		Status:                  doc.ValueByLabel("Operating Authority Status:"),
		Phone:                   doc.ValueByLabel("Phone:"),
		PowerUnits:              doc.ValueByLabel("Power Units:"),
		NonCMVUnits:             doc.ValueByLabel("Non-CMV Units:"),
		Drivers:                 doc.ValueByLabel("Drivers:"),
		PhysicalAddress:         doc.ValueByLabel("Physical Address:"),
		MailingAddress:          doc.ValueByLabel("Mailing Address:"),
		DateScraped:             scraped.Format("1/2/2006"),
		MCS150Date:              doc.ValueByLabel("MCS-150 Form Date:"),
		MCS150Mileage:           doc.ValueByLabel("MCS-150 Mileage (Year):"),
		OperationClassification: uniq(doc.Marked(GroupOperationClassification)),
		CarrierOperation:        uniq(doc.Marked(GroupCarrierOperation)),
		CargoCarried:            uniq(doc.Marked(GroupCargoCarried)),
		OutOfServiceDate:        doc.ValueByLabel("Out of Service Date:"),
		StateCarrierID:          doc.ValueByLabel("State Carrier ID Number:"),
		DUNSNumber:              doc.ValueByLabel("DUNS Number:"),
	}, nil
}

// ParseCarrierEmail reads the contact email from an SMS carrier registration
// page. Obfuscated addresses are decoded; a plain-text value is accepted only
// if it looks like an address.
func ParseCarrierEmail(doc *Document) string {
	if doc == nil || doc.Document == nil {
		return ""
	}
	var email string
	doc.Find("label").EachWithBreak(func(_ int, label *goquery.Selection) bool {
		if !strings.Contains(label.Text(), "Email:") {
			return true
		}
		parent := label.Parent()
		if protected := parent.Find("[data-cfemail]").First(); protected.Length() > 0 {
			encoded, _ := protected.Attr("data-cfemail")
			email = DecodeEmail(encoded)
			return false
		}
		text := CleanText(strings.Replace(parent.Text(), "Email:", "", 1))
		if strings.Contains(text, "@") {
			email = text
		}
		return false
	})
	return email
}

// uniq drops repeated labels, keeping the first occurrence.
func uniq(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	return out
}

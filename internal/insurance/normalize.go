package insurance

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/hyperifyio/carrierscope/internal/domain"
)

// Source field aliases, in lookup priority.
var (
	CarrierAliases   = []string{"name_company", "insurance_company", "insurance_company_name", "company_name"}
	PolicyAliases    = []string{"policy_no", "policy_number", "pol_num"}
	EffectiveAliases = []string{"effective_date"}
	CoverageAliases  = []string{"max_cov_amount", "coverage_to", "coverage_amount"}
	TypeAliases      = []string{"ins_type_code"}
	ClassAliases     = []string{"ins_class_code"}
)

const notSpecified = "NOT SPECIFIED"

var (
	typeCodes  = map[string]string{"1": domain.InsuranceTypeBIPD, "2": domain.InsuranceTypeCargo, "3": domain.InsuranceTypeBond}
	classCodes = map[string]string{"P": domain.InsuranceClassPrimary, "E": domain.InsuranceClassExcess}

	usd = message.NewPrinter(language.AmericanEnglish)
)

// Normalize maps one upstream record onto the canonical policy shape.
func Normalize(dot string, r Record) domain.InsurancePolicy {
	effective := r.String(domain.NotAvailable, EffectiveAliases...)
	if i := strings.IndexByte(effective, ' '); i >= 0 {
		effective = effective[:i]
	}
	return domain.InsurancePolicy{
		DOT:            dot,
		Carrier:        strings.ToUpper(r.String(notSpecified, CarrierAliases...)),
		PolicyNumber:   strings.ToUpper(r.String(domain.NotAvailable, PolicyAliases...)),
		EffectiveDate:  effective,
		CoverageAmount: Coverage(r.String(domain.NotAvailable, CoverageAliases...)),
		Type:           TypeLabel(r.String(domain.NotAvailable, TypeAliases...)),
		Class:          ClassLabel(r.String(domain.NotAvailable, ClassAliases...)),
	}
}

// NormalizeAll returns one policy per record, in order.
func NormalizeAll(dot string, records []Record) []domain.InsurancePolicy {
	out := make([]domain.InsurancePolicy, 0, len(records))
	for _, r := range records {
		out = append(out, Normalize(dot, r))
	}
	return out
}

// Coverage renders a coverage figure as dollars. Figures strictly between 0
// and 10000 are in thousands and are scaled up first. Non-numeric values,
// N/A included, pass through unchanged.
func Coverage(raw string) string {
	if raw == domain.NotAvailable {
		return raw
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return raw
	}
	if n > 0 && n < 10000 {
		n *= 1000
	}
	return "$" + formatAmount(n)
}

func formatAmount(n float64) string {
	if n == math.Trunc(n) && math.Abs(n) < 1<<53 {
		return usd.Sprintf("%d", int64(n))
	}
	return usd.Sprint(number.Decimal(n, number.MaxFractionDigits(3)))
}

// TypeLabel maps an ins_type_code to its label; unknown codes pass through
// upper-cased.
func TypeLabel(code string) string {
	if label, ok := typeCodes[code]; ok {
		return label
	}
	return strings.ToUpper(code)
}

// ClassLabel maps an ins_class_code, compared case-insensitively, to its
// label; unknown codes pass through upper-cased.
func ClassLabel(code string) string {
	code = strings.ToUpper(code)
	if label, ok := classCodes[code]; ok {
		return label
	}
	return code
}

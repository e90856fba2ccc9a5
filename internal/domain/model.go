package domain

// Records produced by the extractors. Absent values are empty strings; the
// engine never guesses a value it did not find on the page.

// CarrierProfile is the SAFER company snapshot for one MC number. MCNumber is
// the identity key for upserts.
type CarrierProfile struct {
	MCNumber                string   `json:"mcNumber"`
	DOTNumber               string   `json:"dotNumber"`
	LegalName               string   `json:"legalName"`
	DBAName                 string   `json:"dbaName"`
	EntityType              string   `json:"entityType"`
	Status                  string   `json:"status"`
	Phone                   string   `json:"phone"`
	PowerUnits              string   `json:"powerUnits"`
	NonCMVUnits             string   `json:"nonCmvUnits"`
	Drivers                 string   `json:"drivers"`
	PhysicalAddress         string   `json:"physicalAddress"`
	MailingAddress          string   `json:"mailingAddress"`
	DateScraped             string   `json:"dateScraped"`
	MCS150Date              string   `json:"mcs150Date"`
	MCS150Mileage           string   `json:"mcs150Mileage"`
	OperationClassification []string `json:"operationClassification"`
	CarrierOperation        []string `json:"carrierOperation"`
	CargoCarried            []string `json:"cargoCarried"`
	OutOfServiceDate        string   `json:"outOfServiceDate"`
	StateCarrierID          string   `json:"stateCarrierId"`
	DUNSNumber              string   `json:"dunsNumber"`
	Email                   string   `json:"email"`
}

// BasicCategories is the fixed column order of the SMS BASIC summary row.
var BasicCategories = []string{
	"Unsafe Driving",
	"Crash Indicator",
	"HOS Compliance",
	"Vehicle Maintenance",
	"Controlled Substances",
	"Hazmat Compliance",
	"Driver Fitness",
}

type BasicScore struct {
	Category string `json:"category"`
	Measure  string `json:"measure"`
}

// OOSRate is one out-of-service row: inspection type, carrier rate and the
// national average it is compared against.
type OOSRate struct {
	Type        string `json:"type"`
	Rate        string `json:"rate"`
	NationalAvg string `json:"nationalAvg"`
}

// SafetyProfile is the SMS complete-profile summary for one DOT number.
type SafetyProfile struct {
	Rating      string       `json:"rating"`
	RatingDate  string       `json:"ratingDate"`
	BasicScores []BasicScore `json:"basicScores"`
	OOSRates    []OOSRate    `json:"oosRates"`
}

// Canonical insurance type and class labels.
const (
	InsuranceTypeBIPD  = "BI&PD"
	InsuranceTypeCargo = "CARGO"
	InsuranceTypeBond  = "BOND"

	InsuranceClassPrimary = "PRIMARY"
	InsuranceClassExcess  = "EXCESS"

	NotAvailable = "N/A"
)

type InsurancePolicy struct {
	DOT            string `json:"dot"`
	Carrier        string `json:"carrier"`
	PolicyNumber   string `json:"policyNumber"`
	EffectiveDate  string `json:"effectiveDate"`
	CoverageAmount string `json:"coverageAmount"`
	Type           string `json:"type"`
	Class          string `json:"class"`
}

// Category is one section heading of the daily decision register.
type Category string

const (
	CategoryNameChange     Category = "NAME CHANGE"
	CategoryCertificate    Category = "CERTIFICATE, PERMIT, LICENSE"
	CategoryRegistration   Category = "CERTIFICATE OF REGISTRATION"
	CategoryDismissal      Category = "DISMISSAL"
	CategoryWithdrawal     Category = "WITHDRAWAL"
	CategoryRevocation     Category = "REVOCATION"
	CategoryMiscellaneous  Category = "MISCELLANEOUS"
	CategoryTransfers      Category = "TRANSFERS"
	CategoryGrantDecisions Category = "GRANT DECISION NOTICES"
)

// Categories lists every register category in classification priority order.
var Categories = []Category{
	CategoryNameChange,
	CategoryCertificate,
	CategoryRegistration,
	CategoryDismissal,
	CategoryWithdrawal,
	CategoryRevocation,
	CategoryMiscellaneous,
	CategoryTransfers,
	CategoryGrantDecisions,
}

// RegisterEntry is one decision line of the register.
type RegisterEntry struct {
	Number   string   `json:"number"`
	Title    string   `json:"title"`
	Decided  string   `json:"decided"`
	Category Category `json:"category"`
}

// EntryKey is the identity of a register entry.
type EntryKey struct {
	Number string
	Title  string
}

func (e RegisterEntry) Key() EntryKey { return EntryKey{Number: e.Number, Title: e.Title} }

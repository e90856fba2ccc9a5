package scrape

import (
	"net/url"
	"strings"
)

// Sources holds upstream URL templates. "{id}" is replaced with the MC or
// DOT number being looked up.
type Sources struct {
	Carrier   string `yaml:"carrier" json:"carrier"`
	Email     string `yaml:"email" json:"email"`
	Safety    string `yaml:"safety" json:"safety"`
	Insurance string `yaml:"insurance" json:"insurance"`
	Register  string `yaml:"register" json:"register"`
}

func DefaultSources() Sources {
	return Sources{
		Carrier:   "https://safer.fmcsa.dot.gov/query.asp?searchtype=ANY&query_type=queryCarrierSnapshot&query_param=MC_MX&query_string={id}",
		Email:     "https://ai.fmcsa.dot.gov/SMS/Carrier/{id}/CarrierRegistration.aspx",
		Safety:    "https://ai.fmcsa.dot.gov/SMS/Carrier/{id}/CompleteProfile.aspx",
		Insurance: "https://searchcarriers.com/company/{id}/insurances",
		Register:  "https://li-public.fmcsa.dot.gov/LIVIEW/PKG_register.prc_reg_detail",
	}
}

// WithDefaults fills empty templates from DefaultSources.
func (s Sources) WithDefaults() Sources {
	d := DefaultSources()
	if s.Carrier == "" {
		s.Carrier = d.Carrier
	}
	if s.Email == "" {
		s.Email = d.Email
	}
	if s.Safety == "" {
		s.Safety = d.Safety
	}
	if s.Insurance == "" {
		s.Insurance = d.Insurance
	}
	if s.Register == "" {
		s.Register = d.Register
	}
	return s
}

func expand(template, id string) string {
	return strings.ReplaceAll(template, "{id}", url.PathEscape(id))
}

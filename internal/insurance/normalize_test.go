package insurance

import (
	"testing"

	"github.com/hyperifyio/carrierscope/internal/domain"
)

func TestCoverage(t *testing.T) {
	cases := map[string]string{
		"750":      "$750,000",
		"2000000":  "$2,000,000",
		"N/A":      "N/A",
		"10000":    "$10,000",
		"9999":     "$9,999,000",
		"1.5":      "$1,500",
		"-5":       "$-5",
		"$750,000": "$750,000",
		"pending":  "pending",
	}
	for in, want := range cases {
		if got := Coverage(in); got != want {
			t.Fatalf("Coverage(%q)=%q, want %q", in, got, want)
		}
	}
}

func TestTypeAndClassLabels(t *testing.T) {
	types := map[string]string{"1": "BI&PD", "2": "CARGO", "3": "BOND", "9": "9", "n/a": "N/A", "x": "X"}
	for in, want := range types {
		if got := TypeLabel(in); got != want {
			t.Fatalf("TypeLabel(%q)=%q, want %q", in, got, want)
		}
	}
	classes := map[string]string{"p": "PRIMARY", "P": "PRIMARY", "e": "EXCESS", "x": "X", "N/A": "N/A"}
	for in, want := range classes {
		if got := ClassLabel(in); got != want {
			t.Fatalf("ClassLabel(%q)=%q, want %q", in, got, want)
		}
	}
}

func TestDecodeAndNormalize(t *testing.T) {
	payload := []byte(`{"data":[
		{"insurance_company":"acme mutual","policy_number":"ab-12","effective_date":"2024-01-15 00:00:00","max_cov_amount":750,"ins_type_code":"1","ins_class_code":"p"},
		{"name_company":"","company_name":"second co","pol_num":"z9","coverage_to":"2000000","ins_type_code":2,"ins_class_code":"E"},
		42,
		{"coverage_amount":0,"policy_no":null}
	]}`)

	records, err := Decode(payload)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("expected 4 records, got %d", len(records))
	}
	got := NormalizeAll("1234567", records)

	want := []domain.InsurancePolicy{
		{DOT: "1234567", Carrier: "ACME MUTUAL", PolicyNumber: "AB-12", EffectiveDate: "2024-01-15", CoverageAmount: "$750,000", Type: "BI&PD", Class: "PRIMARY"},
		{DOT: "1234567", Carrier: "SECOND CO", PolicyNumber: "Z9", EffectiveDate: "N/A", CoverageAmount: "$2,000,000", Type: "CARGO", Class: "EXCESS"},
		{DOT: "1234567", Carrier: "NOT SPECIFIED", PolicyNumber: "N/A", EffectiveDate: "N/A", CoverageAmount: "N/A", Type: "N/A", Class: "N/A"},
		{DOT: "1234567", Carrier: "NOT SPECIFIED", PolicyNumber: "N/A", EffectiveDate: "N/A", CoverageAmount: "N/A", Type: "N/A", Class: "N/A"},
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("policy %d:\n got %+v\nwant %+v", i, got[i], want[i])
		}
	}
}

func TestDecode_Shapes(t *testing.T) {
	bare, err := Decode([]byte(`[{"policy_no":"a"}]`))
	if err != nil || len(bare) != 1 {
		t.Fatalf("bare array: %v %d", err, len(bare))
	}
	other, err := Decode([]byte(`{"message":"rate limited"}`))
	if err != nil || len(other) != 0 {
		t.Fatalf("object without data: %v %d", err, len(other))
	}
	if _, err := Decode([]byte(`<html>`)); err == nil {
		t.Fatalf("expected error for non-JSON payload")
	}
}

func TestLookup_FirstPresentWins(t *testing.T) {
	r := Record{"a": "", "b": false, "c": nil, "d": "found", "e": "later"}
	v, ok := r.Lookup("a", "b", "c", "missing", "d", "e")
	if !ok || v != "found" {
		t.Fatalf("Lookup=%v,%v", v, ok)
	}
	if _, ok := r.Lookup("a", "b"); ok {
		t.Fatalf("empty values should not count as present")
	}
}

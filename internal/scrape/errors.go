package scrape

import (
	"fmt"

	"github.com/hyperifyio/carrierscope/internal/extract"
)

// ErrNotFound reports that the registry has no carrier for the MC number.
var ErrNotFound = extract.ErrNotFound

// Upstream sources named in UpstreamError.
const (
	SourceCarrier   = "carrier"
	SourceEmail     = "email"
	SourceSafety    = "safety"
	SourceInsurance = "insurance"
	SourceRegister  = "register"
)

// UpstreamError wraps a failure to fetch or read an upstream document.
type UpstreamError struct {
	Source string
	Err    error
}

func (e *UpstreamError) Error() string { return fmt.Sprintf("%s: %v", e.Source, e.Err) }

func (e *UpstreamError) Unwrap() error { return e.Err }

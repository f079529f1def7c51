package core

import (
	"errors"
	"fmt"
	"strings"
)

// TimeFrequency is the forecast horizon for one analysis run.
type TimeFrequency string

// Supported forecast horizons.
const (
	Freq1D TimeFrequency = "1D"
	Freq1W TimeFrequency = "1W"
	Freq1M TimeFrequency = "1M"
	Freq3M TimeFrequency = "3M"
	Freq6M TimeFrequency = "6M"
	Freq1Y TimeFrequency = "1Y"
)

// TimeFrequencies lists all supported horizons in ascending order.
func TimeFrequencies() []TimeFrequency {
	return []TimeFrequency{Freq1D, Freq1W, Freq1M, Freq3M, Freq6M, Freq1Y}
}

// Valid reports whether the frequency is one of the supported horizons.
func (f TimeFrequency) Valid() bool {
	switch f {
	case Freq1D, Freq1W, Freq1M, Freq3M, Freq6M, Freq1Y:
		return true
	}
	return false
}

// Validation errors returned by AnalysisRequest.Validate. They are fatal at
// the orchestrator entry point: the run never starts and no session row is
// created.
var (
	ErrInvalidSymbol        = errors.New("symbol must be 1-10 characters")
	ErrInvalidTimeFrequency = errors.New("invalid time frequency")
)

// AnalysisRequest is the immutable input to one pipeline run. Symbol is a
// ticker for single-stock runs or a synthetic composite label for portfolio
// runs (composite labels skip the ticker length check).
type AnalysisRequest struct {
	Symbol        string        `json:"symbol"`
	TimeFrequency TimeFrequency `json:"time_frequency"`
	UserContext   string        `json:"user_context,omitempty"`

	// Composite marks a synthetic portfolio request whose Symbol is a
	// rendered holdings label rather than a ticker.
	Composite bool `json:"composite,omitempty"`
}

// NewAnalysisRequest normalizes the symbol to upper case.
func NewAnalysisRequest(symbol string, freq TimeFrequency, userContext string) AnalysisRequest {
	return AnalysisRequest{
		Symbol:        strings.ToUpper(strings.TrimSpace(symbol)),
		TimeFrequency: freq,
		UserContext:   userContext,
	}
}

// Validate checks the request before any record or session state is created.
func (r AnalysisRequest) Validate() error {
	if r.Symbol == "" {
		return ErrInvalidSymbol
	}
	if !r.Composite && len(r.Symbol) > 10 {
		return ErrInvalidSymbol
	}
	if !r.TimeFrequency.Valid() {
		return fmt.Errorf("%w: %q (use one of %v)", ErrInvalidTimeFrequency, r.TimeFrequency, TimeFrequencies())
	}
	return nil
}

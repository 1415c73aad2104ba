package oxm

import (
	"github.com/uber-go/tally/v4"
)

// Metrics tracks marshal and unmarshal activity of a Context.
type Metrics struct {
	MarshalCalls  tally.Counter
	MarshalSwaRef tally.Counter
	MarshalMTOM   tally.Counter
	MarshalInline tally.Counter
	MarshalErrors tally.Counter

	UnmarshalCalls        tally.Counter
	UnmarshalErrors       tally.Counter
	UnmarshalDecodeErrors tally.Counter
	UnmarshalNullValues   tally.Counter
	UnmarshalEvents       tally.Counter
}

// NewMetrics returns a new Metrics struct, with all metrics initialized
// and rooted at the given tally.Scope
func NewMetrics(scope tally.Scope) *Metrics {
	marshalScope := scope.SubScope("marshal")
	unmarshalScope := scope.SubScope("unmarshal")

	return &Metrics{
		MarshalCalls:  marshalScope.Counter("calls"),
		MarshalSwaRef: marshalScope.Counter("swaref"),
		MarshalMTOM:   marshalScope.Counter("mtom"),
		MarshalInline: marshalScope.Counter("inline"),
		MarshalErrors: marshalScope.Counter("errors"),

		UnmarshalCalls:        unmarshalScope.Counter("calls"),
		UnmarshalErrors:       unmarshalScope.Counter("errors"),
		UnmarshalDecodeErrors: unmarshalScope.Counter("decode_errors"),
		UnmarshalNullValues:   unmarshalScope.Counter("null_values"),
		UnmarshalEvents:       unmarshalScope.Counter("validation_events"),
	}
}

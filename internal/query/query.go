// Package query maps a (property, value) pair to the structured query that
// finds the entities having that value for that property.
package query

import (
	"math"

	"github.com/ppiankov/wikitree/internal/errors"
	"github.com/ppiankov/wikitree/internal/model"
)

// Kind names a query variant
type Kind string

const (
	KindClaim    Kind = "claim"
	KindString   Kind = "string"
	KindQuantity Kind = "quantity"
	KindAround   Kind = "around"
	KindBetween  Kind = "between"
)

// Query is the closed set of query descriptors produced by Build
type Query interface {
	Kind() Kind
	// Pattern renders the SPARQL graph pattern binding ?item
	Pattern() string
	query()
}

// ClaimQuery matches entities with a statement pointing to Target
type ClaimQuery struct {
	Property model.EntityID
	Target   model.EntityID
}

// StringQuery matches entities with a statement equal to Value
type StringQuery struct {
	Property model.EntityID
	Value    string
}

// QuantityQuery matches entities whose amount lies within Tolerance of Amount
type QuantityQuery struct {
	Property  model.EntityID
	Amount    float64
	Tolerance float64
}

// AroundQuery matches entities located within Radius decimal degrees of a point
type AroundQuery struct {
	Property  model.EntityID
	Latitude  float64
	Longitude float64
	Radius    float64
}

// BetweenQuery matches entities whose time lies in [Begin, End]
type BetweenQuery struct {
	Property model.EntityID
	Begin    model.TimeValue
	End      model.TimeValue
}

func (ClaimQuery) Kind() Kind    { return KindClaim }
func (StringQuery) Kind() Kind   { return KindString }
func (QuantityQuery) Kind() Kind { return KindQuantity }
func (AroundQuery) Kind() Kind   { return KindAround }
func (BetweenQuery) Kind() Kind  { return KindBetween }

func (ClaimQuery) query()    {}
func (StringQuery) query()   {}
func (QuantityQuery) query() {}
func (AroundQuery) query()   {}
func (BetweenQuery) query()  {}

// coordinatePrecisionFactor widens the search radius around a point, since
// stored coordinates are rarely more accurate than their stated precision
const coordinatePrecisionFactor = 10

// Build returns the query finding entities whose property has the given
// value. Values with no query rule (booleans) fail with ErrNoApplicableQuery.
func Build(property model.EntityID, value model.Value) (Query, error) {
	switch v := value.(type) {
	case model.EntityID:
		return ClaimQuery{Property: property, Target: v}, nil
	case model.StringValue:
		return StringQuery{Property: property, Value: v.Value}, nil
	case model.QuantityValue:
		return QuantityQuery{
			Property:  property,
			Amount:    v.Amount,
			Tolerance: math.Max(v.Amount-v.LowerBound, v.UpperBound-v.Amount),
		}, nil
	case model.GlobeCoordinateValue:
		return AroundQuery{
			Property:  property,
			Latitude:  v.Latitude,
			Longitude: v.Longitude,
			Radius:    v.Precision * coordinatePrecisionFactor,
		}, nil
	case model.TimeValue:
		return BetweenQuery{Property: property, Begin: v, End: v}, nil
	case nil:
		return nil, errors.Wrap(errors.ErrNoApplicableQuery, "no value")
	default:
		return nil, errors.Wrapf(errors.ErrNoApplicableQuery, "values of type %s", value.Type())
	}
}

// Supports reports whether Build accepts the value
func Supports(value model.Value) bool {
	switch value.(type) {
	case model.EntityID, model.StringValue, model.QuantityValue, model.GlobeCoordinateValue, model.TimeValue:
		return true
	default:
		return false
	}
}

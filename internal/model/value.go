package model

import (
	"fmt"
	"strconv"
	"strings"
)

// ValueType names the runtime type carried by a Resource
type ValueType string

const (
	ValueTypeEntity          ValueType = "wikibase-entity"
	ValueTypeString          ValueType = "string"
	ValueTypeQuantity        ValueType = "quantity"
	ValueTypeGlobeCoordinate ValueType = "globe-coordinate"
	ValueTypeTime            ValueType = "time"
	ValueTypeBoolean         ValueType = "boolean"
)

// Value is the closed set of literal or entity values a Resource can hold.
// All implementations are comparable, so two values can be tested with ==.
type Value interface {
	Type() ValueType
	String() string
	value()
}

// EntityType of a knowledge-base entity
type EntityType string

const (
	EntityTypeItem     EntityType = "item"
	EntityTypeProperty EntityType = "property"
	EntityTypeLexeme   EntityType = "lexeme"
)

// EntityID is an immutable reference to a knowledge-base item or property
type EntityID struct {
	ID string
}

// NewEntityID returns the reference for an identifier such as "Q42" or "P19"
func NewEntityID(id string) EntityID {
	return EntityID{ID: strings.ToUpper(strings.TrimSpace(id))}
}

func (EntityID) Type() ValueType  { return ValueTypeEntity }
func (e EntityID) String() string { return e.ID }
func (EntityID) value()           {}

// EntityType derives the entity type from the identifier prefix
func (e EntityID) EntityType() EntityType {
	if e.ID == "" {
		return ""
	}
	switch e.ID[0] {
	case 'Q':
		return EntityTypeItem
	case 'P':
		return EntityTypeProperty
	case 'L':
		return EntityTypeLexeme
	default:
		return ""
	}
}

// IsItem reports whether the reference points to an item
func (e EntityID) IsItem() bool { return e.EntityType() == EntityTypeItem }

// IsProperty reports whether the reference points to a property
func (e EntityID) IsProperty() bool { return e.EntityType() == EntityTypeProperty }

// StringValue is a plain string literal
type StringValue struct {
	Value string
}

func (StringValue) Type() ValueType  { return ValueTypeString }
func (s StringValue) String() string { return s.Value }
func (StringValue) value()           {}

// QuantityValue is a number with a unit and an uncertainty interval
type QuantityValue struct {
	Amount     float64
	Unit       string
	LowerBound float64
	UpperBound float64
}

// NewExactQuantity returns a quantity whose bounds equal its amount
func NewExactQuantity(amount float64, unit string) QuantityValue {
	return QuantityValue{Amount: amount, Unit: unit, LowerBound: amount, UpperBound: amount}
}

func (QuantityValue) Type() ValueType { return ValueTypeQuantity }
func (q QuantityValue) String() string {
	return strconv.FormatFloat(q.Amount, 'f', -1, 64)
}
func (QuantityValue) value() {}

// GlobeCoordinateValue is a point on a globe. Precision is in decimal degrees.
type GlobeCoordinateValue struct {
	Latitude  float64
	Longitude float64
	Precision float64
	Globe     string
}

func (GlobeCoordinateValue) Type() ValueType { return ValueTypeGlobeCoordinate }
func (g GlobeCoordinateValue) String() string {
	return fmt.Sprintf("%s,%s",
		strconv.FormatFloat(g.Latitude, 'f', -1, 64),
		strconv.FormatFloat(g.Longitude, 'f', -1, 64))
}
func (GlobeCoordinateValue) value() {}

// Time precisions as used by Wikibase
const (
	PrecisionYear  = 9
	PrecisionMonth = 10
	PrecisionDay   = 11
)

// TimeValue is a point in time in Wikibase notation, e.g. "+1952-03-11T00:00:00Z"
type TimeValue struct {
	Time      string
	Precision int
	Calendar  string
}

func (TimeValue) Type() ValueType  { return ValueTypeTime }
func (t TimeValue) String() string { return t.Time }
func (TimeValue) value()           {}

// BooleanValue is a truth value; the knowledge base cannot be queried with it
type BooleanValue struct {
	Value bool
}

func (BooleanValue) Type() ValueType  { return ValueTypeBoolean }
func (b BooleanValue) String() string { return strconv.FormatBool(b.Value) }
func (BooleanValue) value()           {}

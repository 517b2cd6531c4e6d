package model

import (
	"encoding/json"

	"github.com/ppiankov/wikitree/internal/errors"
)

// jsonValue is the wire form of a Value
type jsonValue struct {
	Type       ValueType `json:"type"`
	ID         string    `json:"id,omitempty"`
	Text       string    `json:"text,omitempty"`
	Amount     float64   `json:"amount,omitempty"`
	Unit       string    `json:"unit,omitempty"`
	LowerBound float64   `json:"lower-bound,omitempty"`
	UpperBound float64   `json:"upper-bound,omitempty"`
	Latitude   float64   `json:"latitude,omitempty"`
	Longitude  float64   `json:"longitude,omitempty"`
	Precision  float64   `json:"precision,omitempty"`
	Globe      string    `json:"globe,omitempty"`
	Time       string    `json:"time,omitempty"`
	Calendar   string    `json:"calendar,omitempty"`
	Bool       bool      `json:"bool,omitempty"`
}

func encodeValue(v Value) *jsonValue {
	switch val := v.(type) {
	case EntityID:
		return &jsonValue{Type: ValueTypeEntity, ID: val.ID}
	case StringValue:
		return &jsonValue{Type: ValueTypeString, Text: val.Value}
	case QuantityValue:
		return &jsonValue{Type: ValueTypeQuantity, Amount: val.Amount, Unit: val.Unit,
			LowerBound: val.LowerBound, UpperBound: val.UpperBound}
	case GlobeCoordinateValue:
		return &jsonValue{Type: ValueTypeGlobeCoordinate, Latitude: val.Latitude,
			Longitude: val.Longitude, Precision: val.Precision, Globe: val.Globe}
	case TimeValue:
		return &jsonValue{Type: ValueTypeTime, Time: val.Time,
			Precision: float64(val.Precision), Calendar: val.Calendar}
	case BooleanValue:
		return &jsonValue{Type: ValueTypeBoolean, Bool: val.Value}
	default:
		return nil
	}
}

func (j *jsonValue) decode() (Value, error) {
	switch j.Type {
	case ValueTypeEntity:
		return NewEntityID(j.ID), nil
	case ValueTypeString:
		return StringValue{Value: j.Text}, nil
	case ValueTypeQuantity:
		return QuantityValue{Amount: j.Amount, Unit: j.Unit, LowerBound: j.LowerBound, UpperBound: j.UpperBound}, nil
	case ValueTypeGlobeCoordinate:
		return GlobeCoordinateValue{Latitude: j.Latitude, Longitude: j.Longitude, Precision: j.Precision, Globe: j.Globe}, nil
	case ValueTypeTime:
		return TimeValue{Time: j.Time, Precision: int(j.Precision), Calendar: j.Calendar}, nil
	case ValueTypeBoolean:
		return BooleanValue{Value: j.Bool}, nil
	default:
		return nil, errors.Newf("unknown value type %q", j.Type)
	}
}

type jsonStatement struct {
	Property string     `json:"property"`
	SnakType SnakType   `json:"snaktype"`
	Rank     string     `json:"rank,omitempty"`
	Value    *jsonValue `json:"value,omitempty"`
}

// MarshalJSON implements json.Marshaler
func (s Statement) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonStatement{
		Property: s.Property,
		SnakType: s.SnakType,
		Rank:     s.Rank,
		Value:    encodeValue(s.Value),
	})
}

// UnmarshalJSON implements json.Unmarshaler
func (s *Statement) UnmarshalJSON(data []byte) error {
	var raw jsonStatement
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.Property = raw.Property
	s.SnakType = raw.SnakType
	s.Rank = raw.Rank
	s.Value = nil
	if raw.Value != nil {
		v, err := raw.Value.decode()
		if err != nil {
			return err
		}
		s.Value = v
	}
	return nil
}

// outNode is the encoded form of a Node in the module tree format
type outNode struct {
	Type      NodeType   `json:"type"`
	Value     *string    `json:"value,omitempty"`
	DataValue *jsonValue `json:"datavalue,omitempty"`
	List      *[]outNode `json:"list,omitempty"`
	Subject   *outNode   `json:"subject,omitempty"`
	Predicate *outNode   `json:"predicate,omitempty"`
	Object    *outNode   `json:"object,omitempty"`
}

// inNode is the decoded form of a Node in the module tree format
type inNode struct {
	Type      NodeType          `json:"type"`
	Value     string            `json:"value"`
	DataValue *jsonValue        `json:"datavalue"`
	List      []json.RawMessage `json:"list"`
	Subject   json.RawMessage   `json:"subject"`
	Predicate json.RawMessage   `json:"predicate"`
	Object    json.RawMessage   `json:"object"`
}

// MarshalNode encodes a tree in the module JSON format
func MarshalNode(n Node) ([]byte, error) {
	out, err := encodeNode(n)
	if err != nil {
		return nil, err
	}
	return json.Marshal(out)
}

func encodeNodes(nodes []Node) (*[]outNode, error) {
	list := make([]outNode, 0, len(nodes))
	for _, child := range nodes {
		enc, err := encodeNode(child)
		if err != nil {
			return nil, err
		}
		list = append(list, *enc)
	}
	return &list, nil
}

func encodeNode(n Node) (*outNode, error) {
	switch v := n.(type) {
	case Missing:
		return &outNode{Type: NodeTypeMissing}, nil
	case Resource:
		label := v.Label
		out := &outNode{Type: NodeTypeResource, Value: &label}
		if _, plain := v.Value.(StringValue); !plain || v.Value.String() != v.Label {
			out.DataValue = encodeValue(v.Value)
		}
		return out, nil
	case ResourceList:
		list, err := encodeNodes(v.Items)
		if err != nil {
			return nil, err
		}
		return &outNode{Type: NodeTypeResourceList, List: list}, nil
	case Sentence:
		text := v.Text
		return &outNode{Type: NodeTypeSentence, Value: &text}, nil
	case Triple:
		out := &outNode{Type: NodeTypeTriple}
		var err error
		if out.Subject, err = encodeNode(v.Subject); err != nil {
			return nil, err
		}
		if out.Predicate, err = encodeNode(v.Predicate); err != nil {
			return nil, err
		}
		if out.Object, err = encodeNode(v.Object); err != nil {
			return nil, err
		}
		return out, nil
	case Intersection:
		list, err := encodeNodes(v.Operands)
		if err != nil {
			return nil, err
		}
		return &outNode{Type: NodeTypeIntersection, List: list}, nil
	default:
		return nil, errors.Newf("cannot encode node %T", n)
	}
}

// UnmarshalNode decodes a tree from the module JSON format. A resource
// without datavalue is a plain string resource.
func UnmarshalNode(data []byte) (Node, error) {
	var raw inNode
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "decode node")
	}

	switch raw.Type {
	case NodeTypeMissing:
		return Missing{}, nil
	case NodeTypeResource:
		if raw.DataValue == nil {
			return NewResource(StringValue{Value: raw.Value}), nil
		}
		v, err := raw.DataValue.decode()
		if err != nil {
			return nil, err
		}
		return NewLabelledResource(raw.Value, v), nil
	case NodeTypeResourceList:
		items, err := decodeNodes(raw.List)
		if err != nil {
			return nil, err
		}
		return ResourceList{Items: items}, nil
	case NodeTypeSentence:
		return Sentence{Text: raw.Value}, nil
	case NodeTypeTriple:
		subject, err := decodeChild(raw.Subject, "subject")
		if err != nil {
			return nil, err
		}
		predicate, err := decodeChild(raw.Predicate, "predicate")
		if err != nil {
			return nil, err
		}
		object, err := decodeChild(raw.Object, "object")
		if err != nil {
			return nil, err
		}
		return Triple{Subject: subject, Predicate: predicate, Object: object}, nil
	case NodeTypeIntersection:
		operands, err := decodeNodes(raw.List)
		if err != nil {
			return nil, err
		}
		return Intersection{Operands: operands}, nil
	default:
		return nil, errors.Newf("unknown node type %q", raw.Type)
	}
}

func decodeChild(data json.RawMessage, position string) (Node, error) {
	if len(data) == 0 {
		return nil, errors.Newf("triple without %s", position)
	}
	return UnmarshalNode(data)
}

func decodeNodes(raw []json.RawMessage) ([]Node, error) {
	nodes := make([]Node, 0, len(raw))
	for _, item := range raw {
		n, err := UnmarshalNode(item)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

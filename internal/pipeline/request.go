package pipeline

import (
	"encoding/json"

	"github.com/ppiankov/wikitree/internal/errors"
	"github.com/ppiankov/wikitree/internal/model"
)

// Request is one question tree sent to the module
type Request struct {
	ID       string
	Language string
	Tree     model.Node
	Measures map[string]float64
	Trace    []json.RawMessage
}

// Response is one answer tree
type Response struct {
	Language string
	Tree     model.Node
	Measures map[string]float64
	Trace    []json.RawMessage
}

type wireRequest struct {
	ID       string             `json:"id"`
	Language string             `json:"language"`
	Tree     json.RawMessage    `json:"tree"`
	Measures map[string]float64 `json:"measures,omitempty"`
	Trace    []json.RawMessage  `json:"trace,omitempty"`
}

type wireResponse struct {
	Language string             `json:"language"`
	Tree     json.RawMessage    `json:"tree"`
	Measures map[string]float64 `json:"measures"`
	Trace    []json.RawMessage  `json:"trace"`
}

// UnmarshalJSON implements json.Unmarshaler
func (r *Request) UnmarshalJSON(data []byte) error {
	var wire wireRequest
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	if len(wire.Tree) == 0 {
		return errors.New("request without tree")
	}

	tree, err := model.UnmarshalNode(wire.Tree)
	if err != nil {
		return errors.Wrap(err, "decode tree")
	}

	*r = Request{
		ID:       wire.ID,
		Language: wire.Language,
		Tree:     tree,
		Measures: wire.Measures,
		Trace:    wire.Trace,
	}
	return nil
}

// MarshalJSON implements json.Marshaler
func (r Request) MarshalJSON() ([]byte, error) {
	tree, err := model.MarshalNode(r.Tree)
	if err != nil {
		return nil, err
	}
	return json.Marshal(wireRequest{
		ID:       r.ID,
		Language: r.Language,
		Tree:     tree,
		Measures: r.Measures,
		Trace:    r.Trace,
	})
}

// MarshalJSON implements json.Marshaler
func (r Response) MarshalJSON() ([]byte, error) {
	tree, err := model.MarshalNode(r.Tree)
	if err != nil {
		return nil, err
	}

	measures := r.Measures
	if measures == nil {
		measures = map[string]float64{}
	}
	trace := r.Trace
	if trace == nil {
		trace = []json.RawMessage{}
	}

	return json.Marshal(wireResponse{
		Language: r.Language,
		Tree:     tree,
		Measures: measures,
		Trace:    trace,
	})
}

// UnmarshalJSON implements json.Unmarshaler
func (r *Response) UnmarshalJSON(data []byte) error {
	var wire wireResponse
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	tree, err := model.UnmarshalNode(wire.Tree)
	if err != nil {
		return errors.Wrap(err, "decode tree")
	}
	*r = Response{Language: wire.Language, Tree: tree, Measures: wire.Measures, Trace: wire.Trace}
	return nil
}

// NewSentenceRequest wraps free text into a request
func NewSentenceRequest(id, language, text string) Request {
	return Request{
		ID:       id,
		Language: language,
		Tree:     model.Sentence{Text: text},
		Measures: map[string]float64{"accuracy": 1, "relevance": 0},
	}
}

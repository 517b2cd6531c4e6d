package model

// SnakType tells whether a statement carries a value, an unknown value or no value
type SnakType string

const (
	SnakValue     SnakType = "value"
	SnakSomeValue SnakType = "somevalue"
	SnakNoValue   SnakType = "novalue"
)

// Statement ranks
const (
	RankPreferred  = "preferred"
	RankNormal     = "normal"
	RankDeprecated = "deprecated"
)

// Statement is a claim (property, value-or-marker) attached to an entity
type Statement struct {
	Property string
	SnakType SnakType
	Value    Value
	Rank     string
}

// Entity is the full record of a knowledge-base item or property
type Entity struct {
	ID           string                 `json:"id"`
	Type         EntityType             `json:"type"`
	Datatype     string                 `json:"datatype,omitempty"`
	Labels       map[string]string      `json:"labels,omitempty"`
	Descriptions map[string]string      `json:"descriptions,omitempty"`
	Aliases      map[string][]string    `json:"aliases,omitempty"`
	Statements   map[string][]Statement `json:"statements,omitempty"`
}

// StatementsFor returns the non-deprecated statements for a property
func (e *Entity) StatementsFor(propertyID string) []Statement {
	if e == nil {
		return nil
	}
	var out []Statement
	for _, st := range e.Statements[propertyID] {
		if st.Rank == RankDeprecated {
			continue
		}
		out = append(out, st)
	}
	return out
}

// Label returns the label in the given language, or "" when absent
func (e *Entity) Label(languageCode string) string {
	if e == nil {
		return ""
	}
	return e.Labels[languageCode]
}

// HasValue reports whether the entity has a value statement for the
// property whose value equals v.
func (e *Entity) HasValue(propertyID string, v Value) bool {
	for _, st := range e.StatementsFor(propertyID) {
		if st.SnakType == SnakValue && st.Value == v {
			return true
		}
	}
	return false
}

// SearchRequest is a query to the entity search index
type SearchRequest struct {
	Search     string
	Language   string
	EntityType EntityType
	Limit      int
}

// SearchResult is one candidate returned by the search index
type SearchResult struct {
	ID      string
	Label   string
	Aliases []string
}

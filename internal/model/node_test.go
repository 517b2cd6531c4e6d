package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntityIDType(t *testing.T) {
	tests := []struct {
		id   string
		want EntityType
	}{
		{"Q42", EntityTypeItem},
		{"p19", EntityTypeProperty},
		{" L7 ", EntityTypeLexeme},
		{"X1", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.want, NewEntityID(tt.id).EntityType())
		})
	}
}

func TestResourceLabelAlwaysPopulated(t *testing.T) {
	r := NewResource(NewEntityID("Q42"))
	assert.Equal(t, "Q42", r.Label)

	r = NewLabelledResource("", StringValue{Value: "113230702"})
	assert.Equal(t, "113230702", r.Label)

	r = NewLabelledResource("Douglas Adams", NewEntityID("Q42"))
	assert.Equal(t, "Douglas Adams", r.Label)
}

func TestResourceListResourcesFlattensAndDedupes(t *testing.T) {
	list := NewResourceList(
		NewResourceList(NewResource(NewEntityID("Q42")), NewResource(NewEntityID("Q5"))),
		NewResource(NewEntityID("Q42")),
		NewResourceList(),
		NewResource(StringValue{Value: "x"}),
	)

	got := list.Resources()
	assert.Equal(t, []Resource{
		NewResource(NewEntityID("Q42")),
		NewResource(NewEntityID("Q5")),
		NewResource(StringValue{Value: "x"}),
	}, got)
	assert.False(t, list.IsEmpty())
	assert.True(t, NewResourceList(NewResourceList()).IsEmpty())
}

func TestTripleMissingCount(t *testing.T) {
	assert.Equal(t, 2, Triple{Subject: Missing{}, Predicate: NewResource(NewEntityID("P19")), Object: Missing{}}.MissingCount())
	assert.Equal(t, 0, Triple{Subject: Sentence{}, Predicate: Sentence{}, Object: Sentence{}}.MissingCount())
}

func TestAsResources(t *testing.T) {
	res, ok := AsResources(NewResource(NewEntityID("Q1")))
	assert.True(t, ok)
	assert.Len(t, res, 1)

	_, ok = AsResources(Missing{})
	assert.False(t, ok)
	_, ok = AsResources(Sentence{Text: "x"})
	assert.False(t, ok)
}

func TestEntityStatementsForSkipsDeprecated(t *testing.T) {
	e := &Entity{
		ID: "Q42",
		Statements: map[string][]Statement{
			"P214": {
				{Property: "P214", SnakType: SnakValue, Value: StringValue{Value: "113230702"}, Rank: RankNormal},
				{Property: "P214", SnakType: SnakValue, Value: StringValue{Value: "old"}, Rank: RankDeprecated},
			},
		},
	}

	assert.Len(t, e.StatementsFor("P214"), 1)
	assert.True(t, e.HasValue("P214", StringValue{Value: "113230702"}))
	assert.False(t, e.HasValue("P214", StringValue{Value: "old"}))
	assert.Nil(t, (*Entity)(nil).StatementsFor("P214"))
}

func TestQuantityString(t *testing.T) {
	assert.Equal(t, "491268", NewExactQuantity(491268, "1").String())
	assert.Equal(t, "45.75972,4.8422", GlobeCoordinateValue{Latitude: 45.75972, Longitude: 4.8422}.String())
}

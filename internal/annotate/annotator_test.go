package annotate

import (
	"context"
	"fmt"
	"testing"

	"github.com/ppiankov/wikitree/internal/errors"
	"github.com/ppiankov/wikitree/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResolver struct {
	answers map[string][]model.EntityID
	err     error
}

func (f *fakeResolver) Resolve(_ context.Context, mention string, entityType model.EntityType, _ string) ([]model.EntityID, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.answers[string(entityType)+":"+mention], nil
}

type fakeEntities map[string]*model.Entity

func (f fakeEntities) GetEntity(_ context.Context, id string) (*model.Entity, error) {
	if e, ok := f[id]; ok {
		return e, nil
	}
	return nil, errors.Mark(fmt.Errorf("entity %s", id), errors.ErrNotFound)
}

func (f fakeEntities) LoadEntities(context.Context, []string) error { return nil }

func str(s string) model.Resource { return model.NewResource(model.StringValue{Value: s}) }

func labelled(label string, v model.Value) model.Resource { return model.NewLabelledResource(label, v) }

var id = model.NewEntityID

func newAnnotator() *Annotator {
	resolver := &fakeResolver{answers: map[string][]model.EntityID{
		"item:Douglas Adams":      {id("Q42")},
		"item:Berlin":             {id("Q64")},
		"item:Hitchhiker's Guide": {id("Q25169")},
		"property:birth place":    {id("P19")},
		"property:VIAF":           {id("P214")},
		"property:population":     {id("P1082")},
		"property:birth date":     {id("P569")},
		"property:location":       {id("P625")},
		"property:author":         {id("P50")},
	}}
	entities := fakeEntities{
		"P19":   {ID: "P19", Type: model.EntityTypeProperty, Datatype: DatatypeItem},
		"P214":  {ID: "P214", Type: model.EntityTypeProperty, Datatype: DatatypeExternalID},
		"P1082": {ID: "P1082", Type: model.EntityTypeProperty, Datatype: DatatypeQuantity},
		"P569":  {ID: "P569", Type: model.EntityTypeProperty, Datatype: DatatypeTime},
		"P625":  {ID: "P625", Type: model.EntityTypeProperty, Datatype: DatatypeCoordinate},
		"P50":   {ID: "P50", Type: model.EntityTypeProperty, Datatype: DatatypeItem},
	}
	return New(resolver, entities, "en", []string{"identity", "name", "definition"})
}

func TestAnnotateMissingObjectTriple(t *testing.T) {
	out, err := newAnnotator().Annotate(context.Background(), model.Triple{
		Subject:   str("Douglas Adams"),
		Predicate: str("birth place"),
		Object:    model.Missing{},
	})
	require.NoError(t, err)
	assert.Equal(t, model.Triple{
		Subject:   model.NewResourceList(labelled("Douglas Adams", id("Q42"))),
		Predicate: model.NewResourceList(labelled("birth place", id("P19"))),
		Object:    model.Missing{},
	}, out)
}

func TestAnnotateObjectByDatatype(t *testing.T) {
	tests := []struct {
		predicate string
		object    string
		want      model.Node
	}{
		{"birth place", "Berlin", model.NewResourceList(labelled("Berlin", id("Q64")))},
		{"VIAF", "113230702", model.NewResourceList(str("113230702"))},
		{"population", "491,268", model.NewResourceList(labelled("491,268", model.NewExactQuantity(491268, "1")))},
		{"birth date", "1952-03-11", model.NewResourceList(labelled("1952-03-11", model.TimeValue{
			Time: "+1952-03-11T00:00:00Z", Precision: model.PrecisionDay, Calendar: gregorianCalendar,
		}))},
		{"location", "52.5,13.4", model.NewResourceList(labelled("52.5,13.4", model.GlobeCoordinateValue{
			Latitude: 52.5, Longitude: 13.4, Precision: DefaultCoordinatePrecision, Globe: earthGlobe,
		}))},
		{"population", "many", model.NewResourceList()},
	}

	for _, tt := range tests {
		t.Run(tt.predicate+"/"+tt.object, func(t *testing.T) {
			out, err := newAnnotator().Annotate(context.Background(), model.Triple{
				Subject:   model.Missing{},
				Predicate: str(tt.predicate),
				Object:    str(tt.object),
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.(model.Triple).Object)
		})
	}
}

func TestAnnotateKeepsMeaninglessPredicate(t *testing.T) {
	out, err := newAnnotator().Annotate(context.Background(), model.Triple{
		Subject:   str("Douglas Adams"),
		Predicate: str("identity"),
		Object:    model.Missing{},
	})
	require.NoError(t, err)
	assert.Equal(t, str("identity"), out.(model.Triple).Predicate)
}

func TestAnnotateNestedAndIntersection(t *testing.T) {
	tree := model.Intersection{Operands: []model.Node{
		model.Triple{Subject: model.Missing{}, Predicate: str("birth place"), Object: str("Berlin")},
		model.Triple{
			Subject:   model.Triple{Subject: str("Hitchhiker's Guide"), Predicate: str("author"), Object: model.Missing{}},
			Predicate: str("birth place"),
			Object:    model.Missing{},
		},
		model.Sentence{Text: "left alone"},
	}}

	out, err := newAnnotator().Annotate(context.Background(), tree)
	require.NoError(t, err)

	operands := out.(model.Intersection).Operands
	require.Len(t, operands, 3)
	assert.Equal(t, model.NewResourceList(labelled("Berlin", id("Q64"))), operands[0].(model.Triple).Object)

	nested := operands[1].(model.Triple).Subject.(model.Triple)
	assert.Equal(t, model.NewResourceList(labelled("Hitchhiker's Guide", id("Q25169"))), nested.Subject)
	assert.Equal(t, model.NewResourceList(labelled("author", id("P50"))), nested.Predicate)
	assert.Equal(t, model.Sentence{Text: "left alone"}, operands[2])
}

func TestAnnotateTypedLeavesUntouched(t *testing.T) {
	tree := model.Triple{Subject: model.NewResource(id("Q42")), Predicate: model.NewResource(id("P19")), Object: model.Missing{}}
	out, err := newAnnotator().Annotate(context.Background(), tree)
	require.NoError(t, err)
	assert.Equal(t, tree, out)
}

func TestAnnotateResolutionError(t *testing.T) {
	a := New(&fakeResolver{err: errors.Mark(fmt.Errorf("down"), errors.ErrResolutionFailed)}, fakeEntities{}, "en", nil)
	_, err := a.Annotate(context.Background(), model.Triple{Subject: str("x"), Predicate: str("y"), Object: model.Missing{}})
	assert.True(t, errors.IsResolutionFailed(err))
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		in        string
		time      string
		precision int
	}{
		{"1952-03-11", "+1952-03-11T00:00:00Z", model.PrecisionDay},
		{"March 11, 1952", "+1952-03-11T00:00:00Z", model.PrecisionDay},
		{"11 March 1952", "+1952-03-11T00:00:00Z", model.PrecisionDay},
		{"March 1952", "+1952-03-00T00:00:00Z", model.PrecisionMonth},
		{"1952", "+1952-00-00T00:00:00Z", model.PrecisionYear},
	}
	for _, tt := range tests {
		got, err := ParseTime(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.time, got.Time, tt.in)
		assert.Equal(t, tt.precision, got.Precision, tt.in)
	}

	_, err := ParseTime("yesterday")
	assert.Error(t, err)
}

func TestParseQuantityAndCoordinate(t *testing.T) {
	q, err := ParseQuantity(" 1,000.5 ")
	require.NoError(t, err)
	assert.Equal(t, 1000.5, q.Amount)

	_, err = ParseQuantity("NaN")
	assert.Error(t, err)

	c, err := ParseCoordinate("-33.86, 151.2")
	require.NoError(t, err)
	assert.Equal(t, -33.86, c.Latitude)
	assert.Equal(t, 151.2, c.Longitude)

	_, err = ParseCoordinate("95,10")
	assert.Error(t, err)
	_, err = ParseCoordinate("Berlin")
	assert.Error(t, err)
}

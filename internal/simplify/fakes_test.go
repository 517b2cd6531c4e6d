package simplify

import (
	"context"
	"fmt"

	"github.com/ppiankov/wikitree/internal/errors"
	"github.com/ppiankov/wikitree/internal/model"
	"github.com/ppiankov/wikitree/internal/query"
)

type fakeResolver struct {
	answers map[string][]model.EntityID
	// typed answers are keyed by "type:mention" and win over answers
	typed map[string][]model.EntityID
	err   error
	calls   []string
}

func (f *fakeResolver) Resolve(_ context.Context, mention string, entityType model.EntityType, _ string) ([]model.EntityID, error) {
	key := string(entityType) + ":" + mention
	f.calls = append(f.calls, key)
	if f.err != nil {
		return nil, f.err
	}
	if ids, ok := f.typed[key]; ok {
		return ids, nil
	}
	return f.answers[mention], nil
}

type fakeEntities struct {
	entities map[string]*model.Entity
	err      error
}

func (f *fakeEntities) GetEntity(_ context.Context, id string) (*model.Entity, error) {
	if f.err != nil {
		return nil, f.err
	}
	entity, ok := f.entities[id]
	if !ok {
		return nil, errors.Mark(fmt.Errorf("entity %s", id), errors.ErrNotFound)
	}
	return entity, nil
}

func (f *fakeEntities) LoadEntities(context.Context, []string) error { return nil }

type fakeQueries struct {
	answers map[query.Query][]model.EntityID
	err     error
	asked   []query.Query
}

func (f *fakeQueries) Query(_ context.Context, q query.Query) ([]model.EntityID, error) {
	f.asked = append(f.asked, q)
	if f.err != nil {
		return nil, f.err
	}
	return f.answers[q], nil
}

var id = model.NewEntityID

func res(v model.Value) model.Resource { return model.NewResource(v) }

func str(s string) model.Resource { return model.NewResource(model.StringValue{Value: s}) }

func list(items ...model.Node) model.ResourceList { return model.NewResourceList(items...) }

func statement(property string, snak model.SnakType, v model.Value) model.Statement {
	return model.Statement{Property: property, SnakType: snak, Value: v, Rank: model.RankNormal}
}

func entity(eid string, statements ...model.Statement) *model.Entity {
	e := &model.Entity{ID: eid, Type: model.EntityTypeItem, Statements: map[string][]model.Statement{}}
	for _, st := range statements {
		e.Statements[st.Property] = append(e.Statements[st.Property], st)
	}
	return e
}

package simplify

import (
	"github.com/ppiankov/wikitree/internal/model"
	"github.com/ppiankov/wikitree/internal/query"
)

// entityIDs returns the entity references held by a Resource or
// ResourceList when every resource is an entity accepted by keep. An empty
// list matches with no references: a leaf that resolved to nothing.
func entityIDs(n model.Node, keep func(model.EntityID) bool) ([]model.EntityID, bool) {
	resources, ok := model.AsResources(n)
	if !ok {
		return nil, false
	}

	ids := make([]model.EntityID, 0, len(resources))
	for _, res := range resources {
		id, isEntity := res.EntityID()
		if !isEntity || !keep(id) {
			return nil, false
		}
		ids = append(ids, id)
	}
	return ids, true
}

func itemIDs(n model.Node) ([]model.EntityID, bool) {
	return entityIDs(n, model.EntityID.IsItem)
}

func propertyIDs(n model.Node) ([]model.EntityID, bool) {
	return entityIDs(n, model.EntityID.IsProperty)
}

// isMissingSubjectTriple matches Triple(Missing, properties, values)
func isMissingSubjectTriple(n model.Node) (model.Triple, bool) {
	t, ok := n.(model.Triple)
	if !ok || !model.IsMissing(t.Subject) || model.IsMissing(t.Object) {
		return t, false
	}
	if _, ok := propertyIDs(t.Predicate); !ok {
		return t, false
	}
	if _, ok := model.AsResources(t.Object); !ok {
		return t, false
	}
	return t, true
}

// isQueryable reports whether every object value of a missing-subject
// triple can be turned into a query
func isQueryable(t model.Triple) bool {
	values, _ := model.AsResources(t.Object)
	for _, v := range values {
		if !query.Supports(v.Value) {
			return false
		}
	}
	return true
}

func resourceList(ids []model.EntityID) model.ResourceList {
	items := make([]model.Node, 0, len(ids))
	for _, id := range ids {
		items = append(items, model.NewResource(id))
	}
	return model.ResourceList{Items: items}
}

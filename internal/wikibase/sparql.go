package wikibase

import (
	"context"
	"net/url"
	"strings"

	"github.com/ppiankov/wikitree/internal/errors"
	"github.com/ppiankov/wikitree/internal/logger"
	"github.com/ppiankov/wikitree/internal/model"
	"github.com/ppiankov/wikitree/internal/query"
)

type sparqlResponse struct {
	Results struct {
		Bindings []map[string]struct {
			Type  string `json:"type"`
			Value string `json:"value"`
		} `json:"bindings"`
	} `json:"results"`
}

// Query runs q against the SPARQL endpoint and returns the matching
// entities in result order
func (c *Client) Query(ctx context.Context, q query.Query) ([]model.EntityID, error) {
	sparql := query.Sparql(q, c.queryLimit)
	logger.FromContext(ctx, c.logger).Debugw("Running query", logger.FieldQuery, sparql)

	params := url.Values{}
	params.Set("query", sparql)
	params.Set("format", "json")

	var resp sparqlResponse
	rawURL := c.sparqlURL + "?" + params.Encode()
	if err := c.getJSON(ctx, "sparql", rawURL, "application/sparql-results+json", &resp); err != nil {
		return nil, errors.Wrap(err, "run query")
	}

	ids := make([]model.EntityID, 0, len(resp.Results.Bindings))
	seen := make(map[string]bool)
	for _, binding := range resp.Results.Bindings {
		item, ok := binding["item"]
		if !ok || item.Type != "uri" || !strings.HasPrefix(item.Value, c.entityURI) {
			continue
		}
		id := strings.TrimPrefix(item.Value, c.entityURI)
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, model.NewEntityID(id))
	}
	return ids, nil
}

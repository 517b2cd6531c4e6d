package wikibase

import (
	"context"
	"net/url"
	"strconv"

	"github.com/ppiankov/wikitree/internal/errors"
	"github.com/ppiankov/wikitree/internal/model"
)

type searchResponse struct {
	Search []struct {
		ID      string   `json:"id"`
		Label   string   `json:"label"`
		Aliases []string `json:"aliases"`
		Match   struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"match"`
	} `json:"search"`
	Error *apiError `json:"error"`
}

// SearchEntities queries wbsearchentities. The alias a result matched on
// is returned among its aliases.
func (c *Client) SearchEntities(ctx context.Context, req model.SearchRequest) ([]model.SearchResult, error) {
	entityType := req.EntityType
	if entityType == "" {
		entityType = model.EntityTypeItem
	}

	params := url.Values{}
	params.Set("action", "wbsearchentities")
	params.Set("search", req.Search)
	params.Set("language", req.Language)
	params.Set("uselang", req.Language)
	params.Set("type", string(entityType))
	if req.Limit > 0 {
		params.Set("limit", strconv.Itoa(req.Limit))
	}

	var resp searchResponse
	if err := c.getJSON(ctx, "search", c.apiURL(params), "application/json", &resp); err != nil {
		return nil, errors.Wrap(err, "search entities")
	}
	if resp.Error != nil {
		return nil, errors.Wrap(resp.Error, "search entities")
	}

	results := make([]model.SearchResult, 0, len(resp.Search))
	for _, hit := range resp.Search {
		aliases := hit.Aliases
		if hit.Match.Type == "alias" && hit.Match.Text != "" && !contains(aliases, hit.Match.Text) {
			aliases = append(aliases, hit.Match.Text)
		}
		results = append(results, model.SearchResult{
			ID:      hit.ID,
			Label:   hit.Label,
			Aliases: aliases,
		})
	}
	return results, nil
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

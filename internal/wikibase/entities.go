package wikibase

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"github.com/ppiankov/wikitree/internal/errors"
	"github.com/ppiankov/wikitree/internal/model"
)

// maxEntitiesPerRequest is the wbgetentities ids limit for anonymous clients
const maxEntitiesPerRequest = 50

type entitiesResponse struct {
	Entities map[string]rawEntity `json:"entities"`
	Error    *apiError            `json:"error"`
}

type rawTerm struct {
	Value string `json:"value"`
}

type rawEntity struct {
	ID           string                `json:"id"`
	Type         string                `json:"type"`
	Datatype     string                `json:"datatype"`
	Missing      interface{}           `json:"missing"`
	Labels       map[string]rawTerm    `json:"labels"`
	Descriptions map[string]rawTerm    `json:"descriptions"`
	Aliases      map[string][]rawTerm  `json:"aliases"`
	Claims       map[string][]rawClaim `json:"claims"`
}

type rawClaim struct {
	Mainsnak struct {
		SnakType  string `json:"snaktype"`
		Property  string `json:"property"`
		DataValue *struct {
			Type  string          `json:"type"`
			Value json.RawMessage `json:"value"`
		} `json:"datavalue"`
	} `json:"mainsnak"`
	Rank string `json:"rank"`
}

// GetEntities fetches entity records with wbgetentities. Identifiers the
// knowledge base does not know are absent from the result.
func (c *Client) GetEntities(ctx context.Context, ids []string) (map[string]*model.Entity, error) {
	out := make(map[string]*model.Entity, len(ids))

	for start := 0; start < len(ids); start += maxEntitiesPerRequest {
		end := start + maxEntitiesPerRequest
		if end > len(ids) {
			end = len(ids)
		}

		params := url.Values{}
		params.Set("action", "wbgetentities")
		params.Set("ids", strings.Join(ids[start:end], "|"))
		params.Set("props", "info|datatype|labels|descriptions|aliases|claims")

		var resp entitiesResponse
		if err := c.getJSON(ctx, "entities", c.apiURL(params), "application/json", &resp); err != nil {
			return nil, errors.Wrap(err, "get entities")
		}
		if resp.Error != nil {
			// no-such-entity aborts the whole batch
			if resp.Error.Code == "no-such-entity" {
				continue
			}
			return nil, errors.Wrap(resp.Error, "get entities")
		}

		for id, raw := range resp.Entities {
			if raw.Missing != nil {
				continue
			}
			entity, err := raw.toEntity()
			if err != nil {
				return nil, errors.Wrapf(err, "parse entity %s", id)
			}
			out[entity.ID] = entity
		}
	}

	return out, nil
}

func (r rawEntity) toEntity() (*model.Entity, error) {
	entity := &model.Entity{
		ID:           r.ID,
		Type:         model.EntityType(r.Type),
		Datatype:     r.Datatype,
		Labels:       make(map[string]string, len(r.Labels)),
		Descriptions: make(map[string]string, len(r.Descriptions)),
		Aliases:      make(map[string][]string, len(r.Aliases)),
		Statements:   make(map[string][]model.Statement, len(r.Claims)),
	}

	for lang, term := range r.Labels {
		entity.Labels[lang] = term.Value
	}
	for lang, term := range r.Descriptions {
		entity.Descriptions[lang] = term.Value
	}
	for lang, terms := range r.Aliases {
		for _, term := range terms {
			entity.Aliases[lang] = append(entity.Aliases[lang], term.Value)
		}
	}

	for pid, claims := range r.Claims {
		for _, claim := range claims {
			st := model.Statement{
				Property: pid,
				SnakType: model.SnakType(claim.Mainsnak.SnakType),
				Rank:     claim.Rank,
			}
			if st.SnakType == model.SnakValue && claim.Mainsnak.DataValue != nil {
				v, err := parseDataValue(claim.Mainsnak.DataValue.Type, claim.Mainsnak.DataValue.Value)
				if err != nil {
					return nil, errors.Wrapf(err, "claim on %s", pid)
				}
				if v == nil {
					// unsupported datavalue type
					continue
				}
				st.Value = v
			}
			entity.Statements[pid] = append(entity.Statements[pid], st)
		}
	}

	return entity, nil
}

// parseDataValue converts a Wikibase datavalue. Types without a model
// counterpart return a nil value.
func parseDataValue(kind string, raw json.RawMessage) (model.Value, error) {
	switch kind {
	case "wikibase-entityid":
		var v struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return model.NewEntityID(v.ID), nil

	case "string":
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return model.StringValue{Value: s}, nil

	case "monolingualtext":
		var v struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return model.StringValue{Value: v.Text}, nil

	case "quantity":
		var v struct {
			Amount     string `json:"amount"`
			Unit       string `json:"unit"`
			LowerBound string `json:"lowerBound"`
			UpperBound string `json:"upperBound"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		amount, err := ParseAmount(v.Amount)
		if err != nil {
			return nil, err
		}
		q := model.NewExactQuantity(amount, v.Unit)
		if v.LowerBound != "" {
			if q.LowerBound, err = ParseAmount(v.LowerBound); err != nil {
				return nil, err
			}
		}
		if v.UpperBound != "" {
			if q.UpperBound, err = ParseAmount(v.UpperBound); err != nil {
				return nil, err
			}
		}
		return q, nil

	case "globecoordinate":
		var v struct {
			Latitude  float64  `json:"latitude"`
			Longitude float64  `json:"longitude"`
			Precision *float64 `json:"precision"`
			Globe     string   `json:"globe"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		g := model.GlobeCoordinateValue{Latitude: v.Latitude, Longitude: v.Longitude, Globe: v.Globe}
		if v.Precision != nil {
			g.Precision = *v.Precision
		}
		return g, nil

	case "time":
		var v struct {
			Time          string `json:"time"`
			Precision     int    `json:"precision"`
			CalendarModel string `json:"calendarmodel"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return model.TimeValue{Time: v.Time, Precision: v.Precision, Calendar: v.CalendarModel}, nil

	default:
		return nil, nil
	}
}

// ParseAmount parses a Wikibase decimal such as "+491268" or "-1.5"
func ParseAmount(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimPrefix(s, "+"), 64)
	if err != nil {
		return 0, errors.Wrapf(err, "parse amount %q", s)
	}
	return f, nil
}

package wikibase

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/wikitree/internal/cache"
	"github.com/ppiankov/wikitree/internal/errors"
	"github.com/ppiankov/wikitree/internal/model"
	"github.com/ppiankov/wikitree/internal/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noSleep(t *testing.T) {
	orig := retrySleepFunc
	retrySleepFunc = func(context.Context, time.Duration) error { return nil }
	t.Cleanup(func() { retrySleepFunc = orig })
}

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := model.DefaultConfig().API
	cfg.MediaWikiURL = server.URL + "/w/api.php"
	cfg.SparqlURL = server.URL + "/sparql"
	cfg.Timeout = 5 * time.Second

	client, err := NewClient(cfg, 100, nil)
	require.NoError(t, err)
	return client
}

const douglasAdams = `{
  "entities": {
    "Q42": {
      "id": "Q42",
      "type": "item",
      "labels": {"en": {"language": "en", "value": "Douglas Adams"}},
      "descriptions": {"en": {"language": "en", "value": "English writer"}},
      "aliases": {"en": [{"language": "en", "value": "Douglas Noël Adams"}]},
      "claims": {
        "P31": [{"mainsnak": {"snaktype": "value", "property": "P31",
          "datavalue": {"type": "wikibase-entityid", "value": {"entity-type": "item", "numeric-id": 5, "id": "Q5"}}}, "rank": "normal"}],
        "P214": [{"mainsnak": {"snaktype": "value", "property": "P214",
          "datavalue": {"type": "string", "value": "113230702"}}, "rank": "normal"}],
        "P1082": [{"mainsnak": {"snaktype": "value", "property": "P1082",
          "datavalue": {"type": "quantity", "value": {"amount": "+491268", "unit": "1", "upperBound": "+491268", "lowerBound": "+491267"}}}, "rank": "preferred"}],
        "P625": [{"mainsnak": {"snaktype": "value", "property": "P625",
          "datavalue": {"type": "globecoordinate", "value": {"latitude": 52.5, "longitude": 13.4, "precision": 0.1, "globe": "http://www.wikidata.org/entity/Q2"}}}, "rank": "normal"}],
        "P569": [{"mainsnak": {"snaktype": "value", "property": "P569",
          "datavalue": {"type": "time", "value": {"time": "+1952-03-11T00:00:00Z", "precision": 11, "calendarmodel": "http://www.wikidata.org/entity/Q1985727"}}}, "rank": "normal"}],
        "P1477": [{"mainsnak": {"snaktype": "value", "property": "P1477",
          "datavalue": {"type": "monolingualtext", "value": {"text": "Douglas Noël Adams", "language": "en"}}}, "rank": "normal"}],
        "P40": [{"mainsnak": {"snaktype": "somevalue", "property": "P40"}, "rank": "normal"}],
        "P1196": [{"mainsnak": {"snaktype": "novalue", "property": "P1196"}, "rank": "deprecated"}]
      }
    },
    "Q999999999": {"id": "Q999999999", "missing": true}
  }
}`

func TestSearchEntities(t *testing.T) {
	var got string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.RawQuery
		assert.Equal(t, "wbsearchentities", r.URL.Query().Get("action"))
		assert.Contains(t, r.Header.Get("User-Agent"), "wikitree")
		fmt.Fprint(w, `{"search": [
			{"id": "Q42", "label": "Douglas Adams", "match": {"type": "label", "text": "Douglas Adams"}},
			{"id": "Q1", "label": "Other", "aliases": ["X"], "match": {"type": "alias", "text": "DNA"}}
		]}`)
	}))

	results, err := client.SearchEntities(context.Background(), model.SearchRequest{
		Search: "Douglas Adams", Language: "en", EntityType: model.EntityTypeItem, Limit: 50,
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, model.SearchResult{ID: "Q42", Label: "Douglas Adams"}, results[0])
	assert.Equal(t, []string{"X", "DNA"}, results[1].Aliases)
	assert.Contains(t, got, "limit=50")
	assert.Contains(t, got, "type=item")
}

func TestSearchEntitiesAPIError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error": {"code": "param-missing", "info": "The required parameter \"search\" was missing."}}`)
	}))

	_, err := client.SearchEntities(context.Background(), model.SearchRequest{Language: "en"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "param-missing")
}

func TestGetEntities(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Q42|Q999999999", r.URL.Query().Get("ids"))
		fmt.Fprint(w, douglasAdams)
	}))

	entities, err := client.GetEntities(context.Background(), []string{"Q42", "Q999999999"})
	require.NoError(t, err)
	require.Len(t, entities, 1)

	q42 := entities["Q42"]
	require.NotNil(t, q42)
	assert.Equal(t, "Douglas Adams", q42.Label("en"))
	assert.Equal(t, []string{"Douglas Noël Adams"}, q42.Aliases["en"])

	assert.True(t, q42.HasValue("P31", model.NewEntityID("Q5")))
	assert.True(t, q42.HasValue("P214", model.StringValue{Value: "113230702"}))
	assert.True(t, q42.HasValue("P1477", model.StringValue{Value: "Douglas Noël Adams"}))
	assert.Equal(t, model.QuantityValue{Amount: 491268, Unit: "1", LowerBound: 491267, UpperBound: 491268},
		q42.StatementsFor("P1082")[0].Value)
	assert.Equal(t, model.GlobeCoordinateValue{Latitude: 52.5, Longitude: 13.4, Precision: 0.1, Globe: "http://www.wikidata.org/entity/Q2"},
		q42.StatementsFor("P625")[0].Value)
	assert.Equal(t, model.TimeValue{Time: "+1952-03-11T00:00:00Z", Precision: 11, Calendar: "http://www.wikidata.org/entity/Q1985727"},
		q42.StatementsFor("P569")[0].Value)

	someValue := q42.StatementsFor("P40")
	require.Len(t, someValue, 1)
	assert.Equal(t, model.SnakSomeValue, someValue[0].SnakType)
	assert.Nil(t, someValue[0].Value)

	assert.Empty(t, q42.StatementsFor("P1196"))
}

func TestGetEntitiesBatches(t *testing.T) {
	var requests atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		ids := strings.Split(r.URL.Query().Get("ids"), "|")
		assert.LessOrEqual(t, len(ids), maxEntitiesPerRequest)
		fmt.Fprint(w, `{"entities": {}}`)
	}))

	ids := make([]string, 120)
	for i := range ids {
		ids[i] = fmt.Sprintf("Q%d", i+1)
	}
	_, err := client.GetEntities(context.Background(), ids)
	require.NoError(t, err)
	assert.Equal(t, int32(3), requests.Load())
}

func TestQuery(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sparql", r.URL.Path)
		assert.Contains(t, r.URL.Query().Get("query"), "?item wdt:P19 wd:Q350 .")
		assert.Contains(t, r.URL.Query().Get("query"), "LIMIT 100")
		assert.Equal(t, "application/sparql-results+json", r.Header.Get("Accept"))
		fmt.Fprint(w, `{"head": {"vars": ["item"]}, "results": {"bindings": [
			{"item": {"type": "uri", "value": "http://www.wikidata.org/entity/Q42"}},
			{"item": {"type": "uri", "value": "http://www.wikidata.org/entity/Q42"}},
			{"item": {"type": "literal", "value": "not an entity"}},
			{"item": {"type": "uri", "value": "http://example.org/other"}}
		]}}`)
	}))

	ids, err := client.Query(context.Background(), query.ClaimQuery{
		Property: model.NewEntityID("P19"),
		Target:   model.NewEntityID("Q350"),
	})
	require.NoError(t, err)
	assert.Equal(t, []model.EntityID{model.NewEntityID("Q42")}, ids)
}

func TestRetryOnServerError(t *testing.T) {
	noSleep(t)

	var attempts atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `{"search": []}`)
	}))

	results, err := client.SearchEntities(context.Background(), model.SearchRequest{Search: "x", Language: "en"})
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, int32(3), attempts.Load())
}

func TestRetryBackoffStopsOnDeadline(t *testing.T) {
	var attempts atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := client.SearchEntities(ctx, model.SearchRequest{Search: "x", Language: "en"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 900*time.Millisecond)
	assert.Equal(t, int32(1), attempts.Load())
}

func TestSleepContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := sleepContext(ctx, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)

	assert.NoError(t, sleepContext(context.Background(), time.Millisecond))
}

func TestNoRetryOnClientError(t *testing.T) {
	noSleep(t)

	var attempts atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := client.SearchEntities(context.Background(), model.SearchRequest{Search: "x", Language: "en"})
	require.Error(t, err)
	assert.Equal(t, int32(1), attempts.Load())
}

func TestRetryGivesUp(t *testing.T) {
	noSleep(t)

	var attempts atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))

	_, err := client.SearchEntities(context.Background(), model.SearchRequest{Search: "x", Language: "en"})
	require.Error(t, err)
	assert.Equal(t, int32(maxRetries), attempts.Load())
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		err       error
		retryable bool
	}{
		{nil, false},
		{&statusError{Code: 503, Status: "503 Service Unavailable"}, true},
		{&statusError{Code: 500, Status: "500 Internal Server Error"}, true},
		{&statusError{Code: 429, Status: "429 Too Many Requests"}, true},
		{&statusError{Code: 404, Status: "404 Not Found"}, false},
		{errors.Wrap(&statusError{Code: 502, Status: "502 Bad Gateway"}, "search entities"), true},
		{errors.New("fetch: connection refused"), true},
		{errors.New("fetch: connection reset by peer"), true},
		{errors.New("decode response: unexpected EOF"), false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.retryable, isRetryable(tt.err), "%v", tt.err)
	}
}

func TestRobotsDisallow(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "User-agent: *\nDisallow: /w/\n")
	})
	mux.HandleFunc("/w/api.php", func(w http.ResponseWriter, r *http.Request) {
		t.Error("API must not be called when robots.txt disallows it")
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	cfg := model.DefaultConfig().API
	cfg.MediaWikiURL = server.URL + "/w/api.php"
	cfg.RespectRobots = true

	client, err := NewClient(cfg, 100, nil)
	require.NoError(t, err)

	_, err = client.SearchEntities(context.Background(), model.SearchRequest{Search: "x", Language: "en"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "robots.txt disallows")
}

func TestParseAmount(t *testing.T) {
	v, err := ParseAmount("+491268")
	require.NoError(t, err)
	assert.Equal(t, 491268.0, v)

	v, err = ParseAmount("-1.5")
	require.NoError(t, err)
	assert.Equal(t, -1.5, v)

	_, err = ParseAmount("abc")
	assert.Error(t, err)
}

type countingFetcher struct {
	entities map[string]*model.Entity
	calls    [][]string
	err      error
}

func (f *countingFetcher) GetEntities(_ context.Context, ids []string) (map[string]*model.Entity, error) {
	f.calls = append(f.calls, ids)
	if f.err != nil {
		return nil, f.err
	}
	out := map[string]*model.Entity{}
	for _, id := range ids {
		if e, ok := f.entities[id]; ok {
			out[id] = e
		}
	}
	return out, nil
}

func TestEntityProvider(t *testing.T) {
	fetcher := &countingFetcher{entities: map[string]*model.Entity{
		"Q42": {ID: "Q42", Type: model.EntityTypeItem, Labels: map[string]string{"en": "Douglas Adams"}},
	}}
	provider := NewEntityProvider(fetcher, nil)
	ctx := WithEntityMemo(context.Background())

	require.NoError(t, provider.LoadEntities(ctx, []string{"Q42", "q42", "Q1"}))
	assert.Equal(t, [][]string{{"Q42", "Q1"}}, fetcher.calls)

	entity, err := provider.GetEntity(ctx, "Q42")
	require.NoError(t, err)
	assert.Equal(t, "Douglas Adams", entity.Label("en"))

	_, err = provider.GetEntity(ctx, "Q1")
	assert.True(t, errors.IsNotFound(err))
	assert.Len(t, fetcher.calls, 1)
}

func TestEntityProviderMissRetriedOnLaterRequest(t *testing.T) {
	fetcher := &countingFetcher{entities: map[string]*model.Entity{}}
	provider := NewEntityProvider(fetcher, nil)

	first := WithEntityMemo(context.Background())
	_, err := provider.GetEntity(first, "Q1")
	assert.True(t, errors.IsNotFound(err))
	_, err = provider.GetEntity(first, "Q1")
	assert.True(t, errors.IsNotFound(err))
	assert.Len(t, fetcher.calls, 1)

	fetcher.entities["Q1"] = &model.Entity{ID: "Q1", Type: model.EntityTypeItem}

	second := WithEntityMemo(context.Background())
	entity, err := provider.GetEntity(second, "Q1")
	require.NoError(t, err)
	assert.Equal(t, "Q1", entity.ID)
	assert.Len(t, fetcher.calls, 2)
}

func TestEntityProviderWithoutMemo(t *testing.T) {
	entityCache := cache.NewEntityCache(cache.NewMemoryCache(0, time.Minute))
	fetcher := &countingFetcher{entities: map[string]*model.Entity{
		"Q42": {ID: "Q42", Type: model.EntityTypeItem},
	}}
	provider := NewEntityProvider(fetcher, entityCache)
	ctx := context.Background()

	require.NoError(t, provider.LoadEntities(ctx, []string{"Q42"}))
	_, err := provider.GetEntity(ctx, "Q42")
	require.NoError(t, err)
	assert.Len(t, fetcher.calls, 1, "found entities come back from the cache")
}

func TestEntityProviderUsesCache(t *testing.T) {
	entityCache := cache.NewEntityCache(cache.NewMemoryCache(0, time.Minute))
	require.NoError(t, entityCache.Save(&model.Entity{ID: "Q5", Type: model.EntityTypeItem}))

	fetcher := &countingFetcher{}
	provider := NewEntityProvider(fetcher, entityCache)

	entity, err := provider.GetEntity(context.Background(), "Q5")
	require.NoError(t, err)
	assert.Equal(t, "Q5", entity.ID)
	assert.Empty(t, fetcher.calls)
}

func TestEntityProviderFetchError(t *testing.T) {
	provider := NewEntityProvider(&countingFetcher{err: errors.New("boom")}, nil)

	_, err := provider.GetEntity(context.Background(), "Q42")
	require.Error(t, err)
	assert.True(t, errors.IsResolutionFailed(err))
	assert.False(t, errors.IsNotFound(err))
}

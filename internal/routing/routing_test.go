package routing_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/food-delivery-platform/backend/internal/routing"
	"github.com/go-redis/redismock/v9"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var stops = []string{"1 Rue A, 69001 Lyon", "2 Rue B, 69002 Lyon", "3 Rue C, 69003 Lyon"}

func TestMockPlanner(t *testing.T) {
	p := routing.NewMockPlanner()

	it, err := p.Plan(context.Background(), stops)
	require.NoError(t, err)

	assert.Equal(t, stops, it.Stops)
	assert.Equal(t, 3000.0, it.DistanceMeters)
	assert.Equal(t, "3 stops, 3.0 km, about 8 min", it.Summary())
	assert.Len(t, p.Calls(), 1)
}

func TestHTTPPlanner(t *testing.T) {
	var geocoded []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/geocode/search":
			assert.Equal(t, "secret", r.URL.Query().Get("api_key"))
			geocoded = append(geocoded, r.URL.Query().Get("text"))
			_, _ = w.Write([]byte(`{"features":[{"geometry":{"coordinates":[4.83,45.76]}}]}`))
		case "/v2/directions/driving-car":
			assert.Equal(t, "secret", r.Header.Get("Authorization"))
			var body struct {
				Coordinates [][]float64 `json:"coordinates"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Len(t, body.Coordinates, 3)
			_, _ = w.Write([]byte(`{"routes":[{"summary":{"distance":5400.5,"duration":900}}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	p := routing.NewHTTPPlanner(srv.URL+"/", "secret", "", srv.Client())
	it, err := p.Plan(context.Background(), stops)
	require.NoError(t, err)

	assert.Equal(t, stops, geocoded)
	assert.Equal(t, 5400.5, it.DistanceMeters)
	assert.Equal(t, 900.0, it.DurationSeconds)
	assert.Equal(t, "openrouteservice", it.Provider)
}

func TestHTTPPlanner_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := routing.NewHTTPPlanner(srv.URL, "k", "driving-car", srv.Client())
	_, err := p.Plan(context.Background(), stops)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestHTTPPlanner_SingleStopNeedsNoCall(t *testing.T) {
	p := routing.NewHTTPPlanner("http://127.0.0.1:1", "k", "", nil)
	it, err := p.Plan(context.Background(), stops[:1])
	require.NoError(t, err)
	assert.Zero(t, it.DistanceMeters)
}

func newLogger() logrus.FieldLogger {
	log, _ := test.NewNullLogger()
	return log
}

func TestCachedPlanner_MissThenStore(t *testing.T) {
	db, mock := redismock.NewClientMock()
	inner := routing.NewMockPlanner()
	ttl := 10 * time.Minute
	p := routing.NewCachedPlanner(inner, db, ttl, newLogger())

	expected, err := routing.NewMockPlanner().Plan(context.Background(), stops)
	require.NoError(t, err)
	payload, err := json.Marshal(expected)
	require.NoError(t, err)

	key := routing.CacheKey(stops)
	mock.ExpectGet(key).RedisNil()
	mock.ExpectGet(key).RedisNil()
	mock.ExpectSet(key, string(payload), ttl).SetVal("OK")

	it, err := p.Plan(context.Background(), stops)
	require.NoError(t, err)
	assert.Equal(t, expected, it)
	assert.Len(t, inner.Calls(), 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedPlanner_Hit(t *testing.T) {
	db, mock := redismock.NewClientMock()
	inner := routing.NewMockPlanner()
	p := routing.NewCachedPlanner(inner, db, time.Minute, newLogger())

	cached := &routing.Itinerary{Stops: stops, DistanceMeters: 42, Provider: "cache-test"}
	payload, err := json.Marshal(cached)
	require.NoError(t, err)
	mock.ExpectGet(routing.CacheKey(stops)).SetVal(string(payload))

	it, err := p.Plan(context.Background(), stops)
	require.NoError(t, err)
	assert.Equal(t, cached, it)
	assert.Empty(t, inner.Calls())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedPlanner_RedisDownFallsThrough(t *testing.T) {
	db, mock := redismock.NewClientMock()
	inner := routing.NewMockPlanner()
	p := routing.NewCachedPlanner(inner, db, time.Minute, newLogger())

	key := routing.CacheKey(stops)
	mock.ExpectGet(key).SetErr(errors.New("connection refused"))
	mock.ExpectGet(key).SetErr(errors.New("connection refused"))

	it, err := p.Plan(context.Background(), stops)
	require.NoError(t, err)
	assert.Equal(t, "mock", it.Provider)
	assert.Len(t, inner.Calls(), 1)
}

func TestCacheKey_DependsOnOrder(t *testing.T) {
	reversed := []string{stops[2], stops[1], stops[0]}
	assert.NotEqual(t, routing.CacheKey(stops), routing.CacheKey(reversed))
	assert.Equal(t, routing.CacheKey(stops), routing.CacheKey(append([]string(nil), stops...)))
}

package listing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const feedPage = `{
  "properties": [
    {"id": 1, "title": "Serenity Heights", "type": "Apartment", "price": 4500000, "bedrooms": 3, "bathrooms": 2, "area": 140,
     "location": "Bole, Addis Ababa", "description": "Elegant apartment.", "image": "https://img/1.jpeg", "featured": true},
    {"id": "66", "name": "Heritage Mansion", "type": "villa", "price": "13,500,000", "bedrooms": "7", "area": 550.0,
     "location": " Old Airport, Addis Ababa ", "images": ["https://img/66.jpeg"]},
    {"id": 0, "title": "No id", "type": "Villa", "price": 1},
    {"id": 9, "title": "Castle", "type": "Castle", "price": 1}
  ]
}`

func TestMapFeedPayload(t *testing.T) {
	props, skipped, err := MapFeedPayload([]byte(feedPage))
	require.NoError(t, err)
	require.Len(t, props, 2)
	assert.Len(t, skipped, 2)

	assert.Equal(t, Property{
		ID: 1, Title: "Serenity Heights", Type: TypeApartment, Price: 4500000, Bedrooms: 3, Bathrooms: 2, Area: 140,
		Location: "Bole, Addis Ababa", Description: "Elegant apartment.", Image: "https://img/1.jpeg", Featured: true,
	}, props[0])

	assert.Equal(t, int64(66), props[1].ID)
	assert.Equal(t, "Heritage Mansion", props[1].Title)
	assert.Equal(t, TypeVilla, props[1].Type)
	assert.Equal(t, int64(13500000), props[1].Price)
	assert.Equal(t, 7, props[1].Bedrooms)
	assert.Equal(t, 550, props[1].Area)
	assert.Equal(t, "Old Airport, Addis Ababa", props[1].Location)
	assert.Equal(t, "https://img/66.jpeg", props[1].Image)
}

func TestMapFeedPayload_ListingsAlias(t *testing.T) {
	props, _, err := MapFeedPayload([]byte(`{"listings":[{"id":5,"title":"Harmony Suites","type":"Apartment","price":5100000}]}`))
	require.NoError(t, err)
	require.Len(t, props, 1)
	assert.Equal(t, int64(5), props[0].ID)
}

func TestMapFeedPayload_InvalidJSON(t *testing.T) {
	_, _, err := MapFeedPayload([]byte(`{"properties": [`))
	assert.Error(t, err)
}

func TestClientFetchPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "25", r.URL.Query().Get("pagesize"))
		assert.Equal(t, "abc", r.URL.Query().Get("agency"))
		assert.Equal(t, "Bearer secret", r.Header.Get("authorization"))
		w.Header().Set("content-type", "application/json")
		_, _ = w.Write([]byte(feedPage))
	}))
	defer srv.Close()

	c := NewClient(ClientOptions{Token: "secret"})
	raw, err := c.FetchPage(context.Background(), srv.URL+"/feed?agency=abc", 2, 25)
	require.NoError(t, err)
	assert.JSONEq(t, feedPage, string(raw))
}

func TestClientFetchPage_QuotaIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(ClientOptions{})
	_, err := c.FetchPage(context.Background(), srv.URL, 1, 10)
	assert.ErrorIs(t, err, ErrQuotaExceeded)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClientFetchPage_ClientError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"no such feed"}`))
	}))
	defer srv.Close()

	c := NewClient(ClientOptions{})
	_, err := c.FetchPage(context.Background(), srv.URL, 1, 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

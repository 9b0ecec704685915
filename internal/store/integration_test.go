//go:build integration

package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/yourorg/estate-api/internal/catalog"
	"github.com/yourorg/estate-api/internal/config"
	"github.com/yourorg/estate-api/listing"
)

func startPostgres(t *testing.T) string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:17-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "estate",
				"POSTGRES_PASSWORD": "estate",
				"POSTGRES_DB":       "estate",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)
	return fmt.Sprintf("postgres://estate:estate@%s:%s/estate?sslmode=disable", host, port.Port())
}

// The SQL search must agree with listing.Apply over the same data.
func TestStore_SearchMatchesInMemory(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, config.DatabaseConfig{DSN: startPostgres(t), MaxConns: 4})
	require.NoError(t, err)
	t.Cleanup(s.Close)
	require.NoError(t, s.Migrate(ctx))

	c, err := catalog.Default()
	require.NoError(t, err)
	props := append(c.PropertiesCopy(), listing.Property{
		ID: 900, Title: "Garden  Loft", Type: listing.TypeApartment, Price: 3100000, Bedrooms: 2,
		Location: "Kazanchis,\n Addis Ababa", Description: "Quiet\tcourtyard\n\nnear the park",
	})
	n, err := s.UpsertProperties(ctx, Batch{Properties: props})
	require.NoError(t, err)
	require.Equal(t, len(props), n)

	villa := listing.TypeVilla
	lo, hi := int64(3000000), int64(9000000)
	beds := 3
	queries := []listing.Query{
		{},
		{Sort: listing.SortPriceAsc, Visible: 60},
		{Sort: listing.SortNewest},
		{Sort: listing.SortBedrooms, Visible: 40},
		{Type: &villa},
		{PriceMin: &lo, PriceMax: &hi, MinBedrooms: &beds},
		{Search: "bole"},
		{Search: "100%"},
		{Search: "garden loft"},
		{Search: "quiet courtyard near"},
		{Search: "kazanchis, addis"},
	}
	for _, q := range queries {
		want := listing.Apply(props, q)
		got, err := s.Search(ctx, q)
		require.NoError(t, err)
		assert.Equal(t, want.Total, got.Total, "query %+v", q)
		assert.Equal(t, want.HasMore, got.HasMore, "query %+v", q)
		assert.InDelta(t, want.AveragePrice, got.AveragePrice, 0.5, "query %+v", q)
		require.Len(t, got.Items, len(want.Items))
		for i := range want.Items {
			assert.Equal(t, want.Items[i].ID, got.Items[i].ID, "query %+v position %d", q, i)
		}
	}

	loft, err := s.Search(ctx, listing.Query{Search: "garden loft"})
	require.NoError(t, err)
	require.Equal(t, 1, loft.Total, "whitespace runs in stored text fold to one space")
	assert.Equal(t, int64(900), loft.Items[0].ID)

	f, err := s.Facets(ctx)
	require.NoError(t, err)
	assert.Equal(t, listing.ComputeFacets(props).PriceMax, f.PriceMax)

	_, err = s.Get(ctx, 999999)
	assert.ErrorIs(t, err, listing.ErrNotFound)
}

package services

import (
	"context"
	"rentkart_server/database"
	"rentkart_server/structs"
	"rentkart_server/structs/tables"
	"testing"
	"time"

	"github.com/MonkyMars/gecho"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCacheService(t *testing.T) *CacheService {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return &CacheService{
		logger: gecho.NewLogger(gecho.NewConfig()),
		config: &structs.Config{Cache: &structs.CacheConfig{CatalogTTL: time.Minute}},
		client: client,
	}
}

func TestCatalogPageKeepsPaginationMetadata(t *testing.T) {
	cs := newTestCacheService(t)

	page := &CatalogPage{
		Products: []tables.ProductTemplate{
			{Name: "Canon EOS R5", SKU: "CAN-3F9K2A"},
			{Name: "Godox AD600", SKU: "GOD-7Q1MZP"},
		},
		Pagination: database.Pagination{Page: 1, PageSize: 20, Total: 200},
	}
	require.NoError(t, cs.SetCatalogPage("1:20:created_at:DESC", page))

	cached, err := cs.GetCatalogPage("1:20:created_at:DESC")
	require.NoError(t, err)
	require.NotNil(t, cached)

	// The catalog-wide total must survive the round trip, not collapse
	// to the page length
	assert.Equal(t, 200, cached.Pagination.Total)
	assert.Len(t, cached.Products, 2)
}

func TestCatalogPageMissReturnsNil(t *testing.T) {
	cs := newTestCacheService(t)

	cached, err := cs.GetCatalogPage("2:20:created_at:DESC")
	require.NoError(t, err)
	assert.Nil(t, cached)
}

func TestListStorefrontWarmCacheHit(t *testing.T) {
	cs := newTestCacheService(t)
	ps := &ProductService{
		logger:       gecho.NewLogger(gecho.NewConfig()),
		cacheService: cs,
	}

	require.NoError(t, cs.SetCatalogPage("1:20:created_at:DESC", &CatalogPage{
		Products:   []tables.ProductTemplate{{Name: "Canon EOS R5"}},
		Pagination: database.Pagination{Page: 1, PageSize: 20, Total: 200},
	}))

	// db stays nil: a warm hit must never reach the database
	result, err := ps.ListStorefront(context.Background(), &structs.ProductListOptions{})
	require.NoError(t, err)

	assert.Len(t, result.Products, 1)
	assert.Equal(t, 200, result.Pagination.Total)
	assert.Equal(t, 1, result.Pagination.Page)
	assert.Equal(t, 20, result.Pagination.PageSize)
}

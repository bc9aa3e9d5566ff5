package shoprepo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/merchant-insights/internal/domain/auth"
)

func TestMemoryRepositoryReinstallKeepsIdentity(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	first := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	later := first.Add(48 * time.Hour)

	_, err := repo.UpsertShop(ctx, auth.Shop{ID: "demo", Domain: "demo.myshopify.com", AccessToken: "a", InstalledAt: first, UpdatedAt: first})
	require.NoError(t, err)
	shop, err := repo.UpsertShop(ctx, auth.Shop{ID: "ignored", Domain: "demo.myshopify.com", AccessToken: "b", Scope: "read_orders", InstalledAt: later, UpdatedAt: later})
	require.NoError(t, err)
	require.Equal(t, "demo", shop.ID)
	require.Equal(t, "b", shop.AccessToken)
	require.Equal(t, first, shop.InstalledAt)
	require.Equal(t, later, shop.UpdatedAt)

	got, found, err := repo.GetShopByDomain(ctx, "demo.myshopify.com")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "read_orders", got.Scope)

	require.NoError(t, repo.DeleteShop(ctx, "demo"))
	_, found, err = repo.GetShopByDomain(ctx, "demo.myshopify.com")
	require.NoError(t, err)
	require.False(t, found)
}

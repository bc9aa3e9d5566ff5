package competitorrepo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/merchant-insights/internal/domain/insight"
)

func TestMemoryRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	product := "gid://shopify/Product/5"
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	_, err := repo.CreateCompetitor(ctx, "demo", insight.Competitor{ID: "c1", ProductID: product, Name: "Old", Price: "10.00", LastChecked: base})
	require.NoError(t, err)
	_, err = repo.CreateCompetitor(ctx, "demo", insight.Competitor{ID: "c2", ProductID: product, Name: "New", Price: "9.00", LastChecked: base.Add(time.Hour)})
	require.NoError(t, err)
	_, err = repo.CreateCompetitor(ctx, "other", insight.Competitor{ID: "c3", ProductID: product, Name: "Foreign", Price: "1.00", LastChecked: base})
	require.NoError(t, err)

	list, err := repo.ListCompetitors(ctx, "demo", product)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "New", list[0].Name)

	deleted, err := repo.DeleteCompetitor(ctx, "demo", "c3")
	require.NoError(t, err)
	require.False(t, deleted)
	deleted, err = repo.DeleteCompetitor(ctx, "demo", "c1")
	require.NoError(t, err)
	require.True(t, deleted)

	require.NoError(t, repo.PurgeShop(ctx, "demo"))
	list, err = repo.ListCompetitors(ctx, "demo", product)
	require.NoError(t, err)
	require.Empty(t, list)
	list, err = repo.ListCompetitors(ctx, "other", product)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

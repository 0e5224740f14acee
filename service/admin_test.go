package service

import (
	"testing"

	"burger-order-api/models"
	"burger-order-api/pricing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboard(t *testing.T) {
	f := newFixture(t, OrderOptions{})

	delivered := f.place(t, f.customer, pricing.BurgerLine(f.classic.ID, 2))
	f.setStatus(t, delivered.OrderID, models.StatusDelivered)
	f.place(t, f.other, pricing.BurgerLine(f.zinger.ID, 1))
	cancelled := f.place(t, f.other, pricing.BurgerLine(f.zinger.ID, 3))
	f.setStatus(t, cancelled.OrderID, models.StatusCancelled)

	dash, err := f.admin.Dashboard(f.ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(3), dash.TotalOrders)
	// 200 + 160; the cancelled 400 is excluded.
	assert.True(t, dec(360).Equal(dash.TotalRevenue), dash.TotalRevenue.String())
	assert.Equal(t, int64(2), dash.TotalUsers)

	assert.Equal(t, 2, dash.LowStockCount)
	require.Len(t, dash.LowStockItems, 2)
	assert.Equal(t, "Lettuce", dash.LowStockItems[0].Name)
	assert.Equal(t, "Cheddar", dash.LowStockItems[1].Name)

	require.Len(t, dash.RecentOrders, 3)
	assert.Equal(t, cancelled.OrderID, dash.RecentOrders[0].OrderID)
	require.NotNil(t, dash.RecentOrders[0].User)

	// Best sellers count cancelled orders too.
	require.Len(t, dash.TopBurgers, 2)
	assert.Equal(t, f.zinger.ID, dash.TopBurgers[0].BurgerID)
	assert.Equal(t, 4, dash.TopBurgers[0].TotalSold)
	assert.True(t, dec(480).Equal(dash.TopBurgers[0].Revenue))
}

func TestAnalytics(t *testing.T) {
	f := newFixture(t, OrderOptions{})

	f.place(t, f.customer,
		pricing.CustomLine("Mine", []uint{f.bun.ID, f.patty.ID}, 2),
		pricing.BurgerLine(f.classic.ID, 1),
	)
	f.place(t, f.other, pricing.CustomLine("Cheesy", []uint{f.cheese.ID, f.bun.ID}, 1))

	stats, err := f.admin.Analytics(f.ctx)
	require.NoError(t, err)

	require.Len(t, stats.DailySales, 1)
	assert.Equal(t, 2, stats.DailySales[0].Orders)

	require.Len(t, stats.IngredientUsage, 3)
	assert.Equal(t, f.bun.ID, stats.IngredientUsage[0].IngredientID)
	assert.Equal(t, "Sesame Bun", stats.IngredientUsage[0].Name)
	assert.Equal(t, 3, stats.IngredientUsage[0].Count)

	require.Len(t, stats.TopBurgers, 1)
	assert.Equal(t, f.classic.ID, stats.TopBurgers[0].BurgerID)
}

package reports

import (
	"testing"
	"time"

	"burger-order-api/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func order(status models.OrderStatus, at time.Time, total int64, items ...models.OrderItem) models.Order {
	return models.Order{Status: status, CreatedAt: at, TotalAmount: d(total), Items: items}
}

func custom(qty int, ids ...uint) models.OrderItem {
	item := models.NewCustomItem("Custom Burger", ids, qty, d(100))
	for i := range item.Ingredients {
		item.Ingredients[i].Ingredient = &models.Ingredient{ID: ids[i], Name: map[uint]string{1: "Bun", 2: "Patty", 3: "Cheese"}[ids[i]]}
	}
	return item
}

func TestRevenueSkipsCancelled(t *testing.T) {
	now := time.Now()
	orders := []models.Order{
		order(models.StatusDelivered, now, 200),
		order(models.StatusPlaced, now, 150),
		order(models.StatusCancelled, now, 999),
	}
	assert.True(t, d(350).Equal(Revenue(orders)))
	assert.True(t, decimal.Zero.Equal(Revenue(nil)))
}

func TestTopBurgers(t *testing.T) {
	now := time.Now()
	orders := []models.Order{
		order(models.StatusDelivered, now, 0,
			models.NewBurgerItem(1, "Classic", 2, d(80)),
			models.NewBurgerItem(2, "Zinger", 3, d(120)),
			custom(5, 1, 2),
		),
		order(models.StatusCancelled, now, 0,
			models.NewBurgerItem(1, "Classic", 1, d(80)),
			models.NewBurgerItem(3, "Paneer", 3, d(90)),
		),
	}

	top := TopBurgers(orders, 5)
	require.Len(t, top, 3)

	// All three sold 3 units, so revenue decides.
	assert.Equal(t, uint(2), top[0].BurgerID)
	assert.Equal(t, uint(3), top[1].BurgerID)
	assert.Equal(t, uint(1), top[2].BurgerID)
	assert.Equal(t, 3, top[2].TotalSold)
	assert.True(t, d(240).Equal(top[2].Revenue))
	assert.Equal(t, "Classic", top[2].Name)

	assert.Len(t, TopBurgers(orders, 1), 1)
	assert.Empty(t, TopBurgers(nil, 5))
}

func TestSalesByDay(t *testing.T) {
	day := func(s string) time.Time {
		ts, err := time.Parse(time.RFC3339, s)
		require.NoError(t, err)
		return ts
	}
	orders := []models.Order{
		order(models.StatusDelivered, day("2026-10-16T10:00:00Z"), 100),
		order(models.StatusPlaced, day("2026-10-16T23:30:00Z"), 50),
		order(models.StatusCancelled, day("2026-10-17T12:00:00Z"), 500),
		order(models.StatusPreparing, day("2026-10-18T01:00:00+05:30"), 70),
	}

	sales := SalesByDay(orders, 30)
	require.Len(t, sales, 2)

	// 01:00 IST on the 18th is the 17th in UTC.
	assert.Equal(t, "2026-10-17", sales[0].Date)
	assert.Equal(t, 1, sales[0].Orders)
	assert.Equal(t, "2026-10-16", sales[1].Date)
	assert.Equal(t, 2, sales[1].Orders)
	assert.True(t, d(150).Equal(sales[1].Revenue))

	assert.Len(t, SalesByDay(orders, 1), 1)
}

func TestTopIngredients(t *testing.T) {
	orders := []models.Order{
		order(models.StatusDelivered, time.Now(), 0, custom(2, 1, 2), custom(1, 2, 3)),
		order(models.StatusCancelled, time.Now(), 0, custom(4, 3), models.NewBurgerItem(1, "Classic", 9, d(80))),
	}

	usage := TopIngredients(orders, 10)
	require.Len(t, usage, 3)
	assert.Equal(t, IngredientUsage{IngredientID: 3, Name: "Cheese", Count: 5}, usage[0])
	assert.Equal(t, IngredientUsage{IngredientID: 2, Name: "Patty", Count: 3}, usage[1])
	assert.Equal(t, IngredientUsage{IngredientID: 1, Name: "Bun", Count: 2}, usage[2])
}

func TestLowStock(t *testing.T) {
	low := LowStock([]models.Ingredient{
		{ID: 1, Stock: 5, MinStock: 10},
		{ID: 2, Stock: 10, MinStock: 10},
		{ID: 3, Stock: 11, MinStock: 10},
	})
	require.Len(t, low, 2)
	assert.Equal(t, uint(1), low[0].ID)
	assert.Equal(t, uint(2), low[1].ID)
}
